package generator

import (
	"strconv"

	"github.com/ridoystarlord/ssc/schema"
)

// Job returns the script recreating a SQL Agent job with its steps,
// schedules and job server.
func (g *Generator) Job(job schema.Job, steps []schema.JobStep, schedules []schema.JobSchedule) string {
	s := &script{}

	switch g.opts.Idempotency.Jobs {
	case schema.IfExistsDrop:
		s.linef("IF EXISTS (SELECT 1 FROM msdb.dbo.sysjobs WHERE name = %s)", quote(job.Name))
		s.linef("EXEC msdb.dbo.sp_delete_job @job_name = %s", quote(job.Name))
		s.batch()
		s.blank()
		addJob(s, job, steps, schedules, true)
	case schema.IfNotExists:
		// A batch cannot end inside BEGIN ... END, so statements are only
		// terminated, not separated.
		s.linef("IF NOT EXISTS (SELECT 1 FROM msdb.dbo.sysjobs WHERE name = %s)", quote(job.Name))
		s.line("BEGIN")
		addJob(s, job, steps, schedules, false)
		s.line("END")
	default:
		addJob(s, job, steps, schedules, true)
	}

	return s.String()
}

// arg is one named argument of a system procedure call.
type arg struct {
	name  string
	value string
}

func intArg(name string, v int) arg { return arg{name, strconv.Itoa(v)} }

func strArg(name, v string) arg { return arg{name, nquote(v)} }

// exec appends a system procedure call with one argument per line.
func exec(s *script, proc string, args []arg, separate bool) {
	s.line("EXEC " + proc)
	for i, a := range args {
		end := ","
		if i == len(args)-1 {
			end = ";"
		}
		s.indented(1, "@"+a.name+" = "+a.value+end)
	}
	if separate {
		s.batch()
	}
	s.blank()
}

func addJob(s *script, job schema.Job, steps []schema.JobStep, schedules []schema.JobSchedule, separate bool) {
	exec(s, "msdb.dbo.sp_add_job", []arg{
		strArg("job_name", job.Name),
		intArg("enabled", job.Enabled),
		strArg("description", job.Description),
		intArg("notify_level_eventlog", job.NotifyLevelEventlog),
		intArg("notify_level_email", job.NotifyLevelEmail),
		intArg("notify_level_netsend", job.NotifyLevelNetsend),
		intArg("notify_level_page", job.NotifyLevelPage),
		intArg("delete_level", job.DeleteLevel),
	}, separate)

	for _, step := range steps {
		args := []arg{
			strArg("job_name", step.JobName),
			strArg("step_name", step.StepName),
			strArg("subsystem", step.Subsystem),
			strArg("command", step.Command),
		}
		if step.AdditionalParameters != "" {
			args = append(args, strArg("additional_parameters", step.AdditionalParameters))
		}
		args = append(args,
			intArg("cmdexec_success_code", step.CmdExecSuccessCode),
			intArg("on_success_action", step.OnSuccessAction),
			intArg("on_success_step_id", step.OnSuccessStepID),
			intArg("on_fail_action", step.OnFailAction),
			intArg("on_fail_step_id", step.OnFailStepID),
			strArg("database_name", step.DatabaseName),
		)
		if step.DatabaseUserName != "" {
			args = append(args, strArg("database_user_name", step.DatabaseUserName))
		}
		args = append(args,
			intArg("retry_attempts", step.RetryAttempts),
			intArg("retry_interval", step.RetryInterval),
			intArg("os_run_priority", step.OSRunPriority),
			intArg("flags", step.Flags),
		)
		exec(s, "msdb.dbo.sp_add_jobstep", args, separate)
	}

	for _, sched := range schedules {
		exec(s, "msdb.dbo.sp_add_schedule", []arg{
			strArg("schedule_name", sched.ScheduleName),
			intArg("enabled", sched.Enabled),
			intArg("freq_type", sched.FreqType),
			intArg("freq_interval", sched.FreqInterval),
			intArg("freq_subday_type", sched.FreqSubdayType),
			intArg("freq_subday_interval", sched.FreqSubdayInterval),
			intArg("freq_relative_interval", sched.FreqRelativeInterval),
			intArg("freq_recurrence_factor", sched.FreqRecurrenceFactor),
			intArg("active_start_date", sched.ActiveStartDate),
			intArg("active_end_date", sched.ActiveEndDate),
			intArg("active_start_time", sched.ActiveStartTime),
			intArg("active_end_time", sched.ActiveEndTime),
		}, separate)
		exec(s, "msdb.dbo.sp_attach_schedule", []arg{
			strArg("job_name", job.Name),
			strArg("schedule_name", sched.ScheduleName),
		}, separate)
	}

	exec(s, "msdb.dbo.sp_add_jobserver", []arg{
		strArg("job_name", job.Name),
	}, separate)
}
