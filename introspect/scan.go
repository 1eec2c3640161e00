package introspect

import (
	"database/sql"

	"github.com/ridoystarlord/ssc/schema"
)

func scanRoutine(rows *sql.Rows) (schema.Routine, error) {
	var r schema.Routine
	var text sql.NullString
	err := rows.Scan(&r.Name, &r.Schema, &r.Type, &text)
	r.Text = text.String
	return r, err
}

func scanTable(rows *sql.Rows) (schema.Table, error) {
	var t schema.Table
	err := rows.Scan(&t.ObjectID, &t.Type, &t.Schema, &t.Name, &t.IdentityCount)
	return t, err
}

func scanColumn(rows *sql.Rows) (schema.Column, error) {
	var c schema.Column
	var (
		collation, definition, formula, defaultName sql.NullString
		isIdentity, isPersisted                     sql.NullBool
		seed, increment                             sql.NullInt64
	)
	err := rows.Scan(
		&c.ObjectID,
		&c.Name,
		&c.DataType,
		&c.IsUserDefined,
		&c.MaxLength,
		&c.IsComputed,
		&c.Precision,
		&c.Scale,
		&collation,
		&c.IsNullable,
		&definition,
		&isIdentity,
		&seed,
		&increment,
		&formula,
		&isPersisted,
		&defaultName,
	)
	if err != nil {
		return c, err
	}

	c.Collation = collation.String
	c.Definition = definition.String
	c.IsIdentity = isIdentity.Bool
	c.Formula = formula.String
	c.IsPersisted = isPersisted.Bool
	c.DefaultName = defaultName.String
	if seed.Valid {
		c.SeedValue = &seed.Int64
	}
	if increment.Valid {
		c.Increment = &increment.Int64
	}
	return c, nil
}

func scanPrimaryKey(rows *sql.Rows) (schema.PrimaryKey, error) {
	var pk schema.PrimaryKey
	err := rows.Scan(&pk.ObjectID, &pk.IsDescending, &pk.Name, &pk.Column, &pk.Type)
	return pk, err
}

func scanForeignKey(rows *sql.Rows) (schema.ForeignKey, error) {
	var fk schema.ForeignKey
	err := rows.Scan(
		&fk.ObjectID,
		&fk.ConstraintID,
		&fk.IsNotTrusted,
		&fk.Column,
		&fk.Reference,
		&fk.Name,
		&fk.Schema,
		&fk.Table,
		&fk.ParentSchema,
		&fk.ParentTable,
		&fk.DeleteAction,
		&fk.UpdateAction,
		&fk.ConstraintCol,
	)
	return fk, err
}

func scanIndex(rows *sql.Rows) (schema.Index, error) {
	var ix schema.Index
	err := rows.Scan(
		&ix.ObjectID,
		&ix.IndexID,
		&ix.IsDescending,
		&ix.IsIncluded,
		&ix.IsUnique,
		&ix.Name,
		&ix.Column,
		&ix.Schema,
		&ix.Table,
		&ix.Type,
	)
	return ix, err
}

func scanUserType(rows *sql.Rows) (schema.UserType, error) {
	var t schema.UserType
	var objectID sql.NullInt64
	var typ sql.NullString
	err := rows.Scan(
		&objectID,
		&typ,
		&t.Schema,
		&t.Name,
		&t.SystemType,
		&t.MaxLength,
		&t.Precision,
		&t.Scale,
		&t.IsNullable,
	)
	t.ObjectID = objectID.Int64
	t.Type = typ.String
	return t, err
}

func scanJob(rows *sql.Rows) (schema.Job, error) {
	var j schema.Job
	var description sql.NullString
	err := rows.Scan(
		&j.JobID,
		&j.Name,
		&j.Enabled,
		&description,
		&j.NotifyLevelEventlog,
		&j.NotifyLevelEmail,
		&j.NotifyLevelNetsend,
		&j.NotifyLevelPage,
		&j.DeleteLevel,
	)
	j.Description = description.String
	return j, err
}

func scanJobStep(rows *sql.Rows) (schema.JobStep, error) {
	var s schema.JobStep
	var stepUID, command, params, database, user sql.NullString
	err := rows.Scan(
		&s.JobID,
		&s.JobName,
		&stepUID,
		&s.StepNumber,
		&s.StepName,
		&s.Subsystem,
		&command,
		&params,
		&s.CmdExecSuccessCode,
		&s.OnSuccessAction,
		&s.OnSuccessStepID,
		&s.OnFailAction,
		&s.OnFailStepID,
		&database,
		&user,
		&s.RetryAttempts,
		&s.RetryInterval,
		&s.OSRunPriority,
		&s.Flags,
	)
	s.StepUID = stepUID.String
	s.Command = command.String
	s.AdditionalParameters = params.String
	s.DatabaseName = database.String
	s.DatabaseUserName = user.String
	return s, err
}

func scanJobSchedule(rows *sql.Rows) (schema.JobSchedule, error) {
	var s schema.JobSchedule
	err := rows.Scan(
		&s.JobID,
		&s.ScheduleUID,
		&s.ScheduleName,
		&s.Enabled,
		&s.FreqType,
		&s.FreqInterval,
		&s.FreqSubdayType,
		&s.FreqSubdayInterval,
		&s.FreqRelativeInterval,
		&s.FreqRecurrenceFactor,
		&s.ActiveStartDate,
		&s.ActiveEndDate,
		&s.ActiveStartTime,
		&s.ActiveEndTime,
	)
	return s, err
}
