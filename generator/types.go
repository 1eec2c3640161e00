package generator

import (
	"strings"

	"github.com/ridoystarlord/ssc/schema"
)

// UserType returns the script for a scalar alias type.
func (g *Generator) UserType(item schema.UserType) string {
	id := objectID(item.Schema, item.Name)
	s := &script{}
	g.typeGuard(s, "sys.types", item)

	s.linef("CREATE TYPE %s", id)
	s.line("FROM " + strings.ToUpper(item.SystemType) +
		sizeSuffix(item.SystemType, item.MaxLength, item.Precision, item.Scale) +
		nullability(item.IsNullable))
	return s.String()
}

// TableType returns the script for a user defined table type. Its columns
// are looked up by the type's table object id.
func (g *Generator) TableType(item schema.UserType, columns []schema.Column) string {
	id := objectID(item.Schema, item.Name)
	s := &script{}
	g.typeGuard(s, "sys.table_types", item)

	var defs []string
	for _, col := range columns {
		if col.ObjectID == item.ObjectID {
			defs = append(defs, g.Column(col))
		}
	}

	s.linef("CREATE TYPE %s AS TABLE", id)
	s.line("(")
	s.list(1, defs)
	s.line(")")
	return s.String()
}

func (g *Generator) typeGuard(s *script, catalog string, item schema.UserType) {
	var op string
	switch g.opts.Idempotency.Types {
	case schema.IfExistsDrop:
		op = "IF EXISTS ("
	case schema.IfNotExists:
		op = "IF NOT EXISTS ("
	default:
		return
	}

	s.line(op)
	s.indented(1, "SELECT 1 FROM "+catalog+" AS t")
	s.indented(1, "JOIN sys.schemas s ON t.schema_id = s.schema_id")
	s.indented(1, "WHERE t.name = "+quote(item.Name)+" AND s.name = "+quote(item.Schema))
	s.line(")")

	if g.opts.Idempotency.Types == schema.IfExistsDrop {
		s.line("DROP TYPE " + objectID(item.Schema, item.Name))
		s.batch()
	}
}
