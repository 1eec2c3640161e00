package schema

import "strings"

// Kind identifies a category of database object. Every kind has its own
// output directory and idempotency policy.
type Kind string

const (
	KindSchema    Kind = "schema"
	KindTable     Kind = "table"
	KindType      Kind = "type"
	KindTableType Kind = "table-type"
	KindView      Kind = "view"
	KindFunction  Kind = "function"
	KindProcedure Kind = "procedure"
	KindTrigger   Kind = "trigger"
	KindData      Kind = "data"
	KindJob       Kind = "job"
)

// Object is implemented by every top-level metadata variant.
type Object interface {
	Kind() Kind
}

type Schema struct {
	Name string
}

func (Schema) Kind() Kind { return KindSchema }

// Routine is a procedure, function, view or trigger whose definition is
// stored as text in the catalog.
type Routine struct {
	Schema string
	Name   string
	Type   string // catalog type code: P, V, FN, IF, TF, TR
	Text   string
}

// TypeCode returns the catalog type code without padding.
func (r Routine) TypeCode() string {
	return strings.TrimSpace(r.Type)
}

func (r Routine) Kind() Kind {
	switch r.TypeCode() {
	case "P":
		return KindProcedure
	case "V":
		return KindView
	case "FN", "IF", "TF":
		return KindFunction
	case "TR":
		return KindTrigger
	}
	return ""
}

type Table struct {
	ObjectID      int64
	Schema        string
	Name          string
	Type          string
	IdentityCount int
}

func (Table) Kind() Kind { return KindTable }

// Column belongs to a table or a table type through ObjectID.
type Column struct {
	ObjectID      int64
	Name          string
	DataType      string
	IsUserDefined bool
	MaxLength     int
	IsComputed    bool
	Precision     int
	Scale         int
	Collation     string
	IsNullable    bool
	Definition    string // default expression
	IsIdentity    bool
	SeedValue     *int64
	Increment     *int64
	Formula       string
	IsPersisted   bool
	DefaultName   string
}

// PrimaryKey is one column of a primary key constraint.
type PrimaryKey struct {
	ObjectID     int64
	Name         string
	Column       string
	IsDescending bool
	Type         string // CLUSTERED, NONCLUSTERED or HEAP
}

// ForeignKey is one column pair of a foreign key constraint.
type ForeignKey struct {
	ObjectID      int64
	ConstraintID  int64
	IsNotTrusted  bool
	Column        string
	Reference     string
	Name          string
	Schema        string
	Table         string
	ParentSchema  string
	ParentTable   string
	DeleteAction  int
	UpdateAction  int
	ConstraintCol int
}

// Index is one key column of a non primary key index.
type Index struct {
	ObjectID     int64
	IndexID      int
	IsDescending bool
	IsIncluded   bool
	IsUnique     bool
	Name         string
	Column       string
	Schema       string
	Table        string
	Type         string // CLUSTERED or NONCLUSTERED
}

// UserType is either a scalar alias type or a table type (Type == "TT").
type UserType struct {
	ObjectID   int64
	Type       string
	Schema     string
	Name       string
	SystemType string
	MaxLength  int
	Precision  int
	Scale      int
	IsNullable bool
}

func (t UserType) Kind() Kind {
	if strings.TrimSpace(t.Type) == "TT" {
		return KindTableType
	}
	return KindType
}

// Field is a single named value of a data row.
type Field struct {
	Name  string
	Value any
}

// Row keeps fields in result-set column order.
type Row []Field

// RawValue is a value that is already a valid literal, such as the digits of
// a decimal or money column.
type RawValue string

// DataSet holds the rows of one table selected for data scripting.
type DataSet struct {
	Schema      string
	Name        string
	HasIdentity bool
	Rows        []Row
}

func (DataSet) Kind() Kind { return KindData }

type Job struct {
	JobID               string
	Name                string
	Enabled             int
	Description         string
	NotifyLevelEventlog int
	NotifyLevelEmail    int
	NotifyLevelNetsend  int
	NotifyLevelPage     int
	DeleteLevel         int
}

func (Job) Kind() Kind { return KindJob }

type JobStep struct {
	JobID                string
	JobName              string
	StepUID              string
	StepNumber           int
	StepName             string
	Subsystem            string
	Command              string
	AdditionalParameters string
	CmdExecSuccessCode   int
	OnSuccessAction      int
	OnSuccessStepID      int
	OnFailAction         int
	OnFailStepID         int
	DatabaseName         string
	DatabaseUserName     string
	RetryAttempts        int
	RetryInterval        int
	OSRunPriority        int
	Flags                int
}

type JobSchedule struct {
	JobID                string
	ScheduleUID          string
	ScheduleName         string
	Enabled              int
	FreqType             int
	FreqInterval         int
	FreqSubdayType       int
	FreqSubdayInterval   int
	FreqRelativeInterval int
	FreqRecurrenceFactor int
	ActiveStartDate      int
	ActiveEndDate        int
	ActiveStartTime      int
	ActiveEndTime        int
}

// Catalog is everything read from one database during a pull.
type Catalog struct {
	Routines     []Routine
	Tables       []Table
	Columns      []Column
	PrimaryKeys  []PrimaryKey
	ForeignKeys  []ForeignKey
	Indexes      []Index
	Types        []UserType
	Jobs         []Job
	JobSteps     []JobStep
	JobSchedules []JobSchedule
	Data         []DataSet
}

// Schemas returns the distinct schemas owning at least one table, in table order.
func (c *Catalog) Schemas() []Schema {
	seen := map[string]bool{}
	var out []Schema
	for _, t := range c.Tables {
		if seen[t.Schema] {
			continue
		}
		seen[t.Schema] = true
		out = append(out, Schema{Name: t.Schema})
	}
	return out
}

// ScriptUnit is one generated file. An empty Dir means the object kind is
// disabled and nothing is written.
type ScriptUnit struct {
	Dir     string
	File    string
	Content string
}

// GroupBy groups rows by key while keeping the order in which keys first
// appear, so output built from the groups is deterministic.
func GroupBy[T any](items []T, key func(T) string) ([]string, map[string][]T) {
	var order []string
	groups := map[string][]T{}
	for _, item := range items {
		k := key(item)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], item)
	}
	return order, groups
}
