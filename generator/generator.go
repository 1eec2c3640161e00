package generator

import (
	"github.com/ridoystarlord/ssc/schema"
)

// Options control how scripts are generated.
type Options struct {
	Idempotency           schema.Idempotency
	IncludeConstraintName bool
}

// Generator turns catalog rows into T-SQL scripts. It does no I/O and the
// same input always yields byte identical output.
type Generator struct {
	opts Options
}

// New creates a Generator.
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Schema returns the script creating a schema when it is missing.
func (g *Generator) Schema(item schema.Schema) string {
	s := &script{}
	s.linef("IF NOT EXISTS (SELECT 1 FROM sys.schemas WHERE name = %s)", quote(item.Name))
	s.linef("EXEC(%s)", quote("CREATE SCHEMA ["+item.Name+"]"))
	return s.String()
}

// Routine returns the script for a procedure, function, view or trigger.
func (g *Generator) Routine(item schema.Routine) string {
	kind := item.Kind()
	id := objectID(item.Schema, item.Name)
	s := &script{}

	switch g.opts.Idempotency.For(kind) {
	case schema.IfExistsDrop:
		s.line(objectExists(false, id, item.TypeCode()))
		s.linef("DROP %s %s", dropKeyword(kind), id)
		s.batch()
		s.raw(item.Text)
	case schema.IfNotExists:
		// CREATE for these kinds must open a batch, so the guarded creation
		// runs through EXEC.
		s.line(objectExists(true, id, item.TypeCode()))
		s.linef("EXEC(%s)", nquote(item.Text))
	default:
		s.raw(item.Text)
	}
	return s.String()
}

func objectExists(negate bool, id, typeCode string) string {
	op := "IF EXISTS"
	if negate {
		op = "IF NOT EXISTS"
	}
	return op + " (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(" + quote(id) + ") AND type = " + quote(typeCode) + ")"
}

func dropKeyword(kind schema.Kind) string {
	switch kind {
	case schema.KindProcedure:
		return "PROCEDURE"
	case schema.KindView:
		return "VIEW"
	case schema.KindFunction:
		return "FUNCTION"
	case schema.KindTrigger:
		return "TRIGGER"
	case schema.KindTable:
		return "TABLE"
	}
	return "TYPE"
}

// Units generates every script for a catalog, tagged with the directory its
// kind is written to.
func (g *Generator) Units(cat *schema.Catalog, layout schema.Layout) []schema.ScriptUnit {
	var units []schema.ScriptUnit
	add := func(kind schema.Kind, file, content string) {
		units = append(units, schema.ScriptUnit{
			Dir:     layout.Dir(kind),
			File:    file,
			Content: content,
		})
	}

	for _, item := range cat.Schemas() {
		add(schema.KindSchema, item.Name+".sql", g.Schema(item))
	}

	for _, kind := range []schema.Kind{schema.KindProcedure, schema.KindView, schema.KindFunction, schema.KindTrigger} {
		for _, item := range cat.Routines {
			if item.Kind() != kind {
				continue
			}
			add(kind, item.Schema+"."+item.Name+".sql", g.Routine(item))
		}
	}

	for _, item := range cat.Tables {
		content := g.Table(item, cat.Columns, cat.PrimaryKeys, cat.ForeignKeys, cat.Indexes)
		add(schema.KindTable, item.Schema+"."+item.Name+".sql", content)
	}

	for _, item := range cat.Types {
		if item.Kind() == schema.KindType {
			add(schema.KindType, item.Schema+"."+item.Name+".sql", g.UserType(item))
		}
	}
	for _, item := range cat.Types {
		if item.Kind() == schema.KindTableType {
			add(schema.KindTableType, item.Schema+"."+item.Name+".sql", g.TableType(item, cat.Columns))
		}
	}

	for _, item := range cat.Data {
		add(schema.KindData, item.Schema+"."+item.Name+".sql", g.Data(item))
	}

	for _, job := range cat.Jobs {
		var steps []schema.JobStep
		for _, step := range cat.JobSteps {
			if step.JobID == job.JobID {
				steps = append(steps, step)
			}
		}
		var schedules []schema.JobSchedule
		for _, sched := range cat.JobSchedules {
			if sched.JobID == job.JobID {
				schedules = append(schedules, sched)
			}
		}
		add(schema.KindJob, job.Name+".sql", g.Job(job, steps, schedules))
	}

	return units
}
