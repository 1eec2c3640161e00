package schema

// Policy is the guard strategy applied to every object of one kind.
type Policy string

const (
	IfExistsDrop    Policy = "if-exists-drop"
	IfNotExists     Policy = "if-not-exists"
	Delete          Policy = "delete"
	DeleteAndReseed Policy = "delete-and-reseed"
	Truncate        Policy = "truncate"
)

// ObjectPolicies are the policies accepted for schema objects.
var ObjectPolicies = []Policy{IfExistsDrop, IfNotExists}

// DataPolicies are the policies accepted for data scripts.
var DataPolicies = []Policy{Delete, DeleteAndReseed, Truncate}

// Idempotency holds the active policy per kind for one run.
type Idempotency struct {
	Tables    Policy `json:"tables" yaml:"tables"`
	Types     Policy `json:"types" yaml:"types"`
	Views     Policy `json:"views" yaml:"views"`
	Functions Policy `json:"functions" yaml:"functions"`
	Procs     Policy `json:"procs" yaml:"procs"`
	Triggers  Policy `json:"triggers" yaml:"triggers"`
	Data      Policy `json:"data" yaml:"data"`
	Jobs      Policy `json:"jobs" yaml:"jobs"`
}

// DefaultIdempotency mirrors what a freshly initialized project uses.
func DefaultIdempotency() Idempotency {
	return Idempotency{
		Tables:    IfNotExists,
		Types:     IfNotExists,
		Views:     IfExistsDrop,
		Functions: IfExistsDrop,
		Procs:     IfExistsDrop,
		Triggers:  IfExistsDrop,
		Data:      Truncate,
		Jobs:      IfExistsDrop,
	}
}

// For returns the policy for a kind. Table types share the types policy.
func (i Idempotency) For(k Kind) Policy {
	switch k {
	case KindTable:
		return i.Tables
	case KindType, KindTableType:
		return i.Types
	case KindView:
		return i.Views
	case KindFunction:
		return i.Functions
	case KindProcedure:
		return i.Procs
	case KindTrigger:
		return i.Triggers
	case KindData:
		return i.Data
	case KindJob:
		return i.Jobs
	}
	return ""
}

// Allowed returns the closed set of policies valid for a kind. Schemas have
// no policy.
func Allowed(k Kind) []Policy {
	switch k {
	case KindSchema:
		return nil
	case KindData:
		return DataPolicies
	}
	return ObjectPolicies
}

// Layout maps kinds to output directories relative to the root. An empty
// directory disables the kind.
type Layout struct {
	Schemas   string
	Tables    string
	Types     string
	Views     string
	Functions string
	Procs     string
	Triggers  string
	Data      string
	Jobs      string
}

// Dir returns the directory for a kind.
func (l Layout) Dir(k Kind) string {
	switch k {
	case KindSchema:
		return l.Schemas
	case KindTable:
		return l.Tables
	case KindType, KindTableType:
		return l.Types
	case KindView:
		return l.Views
	case KindFunction:
		return l.Functions
	case KindProcedure:
		return l.Procs
	case KindTrigger:
		return l.Triggers
	case KindData:
		return l.Data
	case KindJob:
		return l.Jobs
	}
	return ""
}
