package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ridoystarlord/ssc/schema"
)

// Table returns the script for a table. Columns, keys and indexes are the
// full row sets of the catalog and are filtered by the table's object id.
// Foreign keys and indexes follow the table body as separately guarded
// statements so they can be re-run against an existing table.
func (g *Generator) Table(
	item schema.Table,
	columns []schema.Column,
	primaryKeys []schema.PrimaryKey,
	foreignKeys []schema.ForeignKey,
	indexes []schema.Index,
) string {
	id := objectID(item.Schema, item.Name)
	s := &script{}

	switch g.opts.Idempotency.Tables {
	case schema.IfExistsDrop:
		s.line(objectExists(false, id, strings.TrimSpace(item.Type)))
		s.linef("DROP TABLE %s", id)
		s.batch()
	case schema.IfNotExists:
		s.line(objectExists(true, id, strings.TrimSpace(item.Type)))
	}

	var clauses []string
	for _, col := range columns {
		if col.ObjectID == item.ObjectID {
			clauses = append(clauses, indent(1)+g.Column(col))
		}
	}

	var keys []schema.PrimaryKey
	for _, pk := range primaryKeys {
		if pk.ObjectID == item.ObjectID {
			keys = append(keys, pk)
		}
	}
	names, grouped := schema.GroupBy(keys, func(pk schema.PrimaryKey) string { return pk.Name })
	for _, name := range names {
		clauses = append(clauses, g.PrimaryKey(grouped[name]))
	}

	s.linef("CREATE TABLE %s", id)
	s.line("(")
	for i, clause := range clauses {
		if i < len(clauses)-1 {
			clause += ","
		}
		s.raw(clause)
	}
	s.line(")")

	var fks []schema.ForeignKey
	for _, fk := range foreignKeys {
		if fk.ObjectID == item.ObjectID {
			fks = append(fks, fk)
		}
	}
	fkNames, fkGroups := schema.GroupBy(fks, func(fk schema.ForeignKey) string { return fk.Name })
	for _, name := range fkNames {
		s.blank()
		s.raw(g.ForeignKey(fkGroups[name]))
	}

	var ixs []schema.Index
	for _, ix := range indexes {
		if ix.ObjectID == item.ObjectID {
			ixs = append(ixs, ix)
		}
	}
	ixNames, ixGroups := schema.GroupBy(ixs, func(ix schema.Index) string { return ix.Name })
	for _, name := range ixNames {
		s.blank()
		s.raw(g.Index(ixGroups[name]))
	}

	return s.String()
}

// Column renders a single column definition.
func (g *Generator) Column(col schema.Column) string {
	var b strings.Builder
	b.WriteString("[" + col.Name + "]")

	if col.IsComputed {
		b.WriteString(" AS " + col.Formula)
		if col.IsPersisted {
			b.WriteString(" PERSISTED")
			b.WriteString(nullability(col.IsNullable))
		}
		return b.String()
	}

	b.WriteString(" " + col.DataType)
	b.WriteString(sizeSuffix(col.DataType, col.MaxLength, col.Precision, col.Scale))

	if col.Collation != "" && !col.IsUserDefined {
		b.WriteString(" COLLATE " + col.Collation)
	}

	b.WriteString(nullability(col.IsNullable))

	if col.Definition != "" {
		if g.opts.IncludeConstraintName && col.DefaultName != "" {
			b.WriteString(" CONSTRAINT [" + col.DefaultName + "]")
		}
		b.WriteString(" DEFAULT" + col.Definition)
	}

	if col.IsIdentity {
		seed, increment := int64(0), int64(1)
		if col.SeedValue != nil {
			seed = *col.SeedValue
		}
		if col.Increment != nil && *col.Increment != 0 {
			increment = *col.Increment
		}
		fmt.Fprintf(&b, " IDENTITY(%d, %d)", seed, increment)
	}

	return b.String()
}

// sizeSuffix renders the length or precision part of a data type. Lengths
// are reported in bytes, so double-byte types are halved; -1 means max.
func sizeSuffix(dataType string, maxLength, precision, scale int) string {
	switch strings.ToLower(dataType) {
	case "varchar", "char", "varbinary", "binary":
		return "(" + length(maxLength, 1) + ")"
	case "nvarchar", "nchar":
		return "(" + length(maxLength, 2) + ")"
	case "datetime2", "time", "datetimeoffset":
		return fmt.Sprintf("(%d)", scale)
	case "decimal", "numeric":
		return fmt.Sprintf("(%d, %d)", precision, scale)
	}
	return ""
}

func length(maxLength, bytesPerChar int) string {
	if maxLength == -1 {
		return "max"
	}
	return strconv.Itoa(maxLength / bytesPerChar)
}

func nullability(nullable bool) string {
	if nullable {
		return " NULL"
	}
	return " NOT NULL"
}

func direction(descending bool) string {
	if descending {
		return "DESC"
	}
	return "ASC"
}

// PrimaryKey renders the constraint clause for the rows of one key. Rows
// arrive in key ordinal order.
func (g *Generator) PrimaryKey(items []schema.PrimaryKey) string {
	first := items[0]
	head := indent(1) + "CONSTRAINT [" + first.Name + "] PRIMARY KEY "
	switch first.Type {
	case "CLUSTERED", "NONCLUSTERED":
		head += first.Type + " "
	}

	if len(items) == 1 {
		return head + "([" + first.Column + "] " + direction(first.IsDescending) + ")"
	}

	s := &script{}
	s.line(strings.TrimRight(head, " "))
	s.indented(1, "(")
	cols := make([]string, len(items))
	for i, item := range items {
		cols[i] = "[" + item.Column + "] " + direction(item.IsDescending)
	}
	s.list(2, cols)
	s.indented(1, ")")
	return s.String()
}

// ForeignKey renders a guarded ALTER TABLE for the rows of one constraint.
// Column and reference lists are built in row order and match positionally.
func (g *Generator) ForeignKey(items []schema.ForeignKey) string {
	first := items[0]
	id := objectID(first.Schema, first.Table)
	keyID := objectID(first.Schema, first.Name)
	parentID := objectID(first.ParentSchema, first.ParentTable)

	columns := make([]string, len(items))
	references := make([]string, len(items))
	for i, item := range items {
		columns[i] = "[" + item.Column + "]"
		references[i] = "[" + item.Reference + "]"
	}

	check := "CHECK"
	if first.IsNotTrusted {
		check = "NOCHECK"
	}

	s := &script{}
	s.linef("IF NOT EXISTS (SELECT 1 FROM sys.foreign_keys WHERE object_id = OBJECT_ID(%s) AND parent_object_id = OBJECT_ID(%s))", quote(keyID), quote(id))
	s.line("BEGIN")
	s.indented(1, fmt.Sprintf(
		"ALTER TABLE %s WITH %s ADD CONSTRAINT [%s] FOREIGN KEY (%s) REFERENCES %s (%s)%s%s",
		id, check, first.Name,
		strings.Join(columns, ", "),
		parentID,
		strings.Join(references, ", "),
		referentialAction("DELETE", first.DeleteAction),
		referentialAction("UPDATE", first.UpdateAction),
	))
	s.indented(1, fmt.Sprintf("ALTER TABLE %s CHECK CONSTRAINT [%s]", id, first.Name))
	s.line("END")
	return s.String()
}

// referentialAction maps catalog action codes to clauses. Code 0 (no
// action) and unknown codes render nothing.
func referentialAction(event string, code int) string {
	switch code {
	case 1:
		return " ON " + event + " CASCADE"
	case 2:
		return " ON " + event + " SET NULL"
	case 3:
		return " ON " + event + " SET DEFAULT"
	}
	return ""
}

// Index renders a guarded CREATE INDEX for the rows of one index.
func (g *Generator) Index(items []schema.Index) string {
	first := items[0]
	id := objectID(first.Schema, first.Table)

	create := "CREATE"
	if first.IsUnique {
		create += " UNIQUE"
	}
	create += " " + first.Type + " INDEX [" + first.Name + "] ON " + id + "("

	s := &script{}
	s.linef("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE object_id = OBJECT_ID(%s) AND name = %s)", quote(id), quote(first.Name))
	if len(items) == 1 {
		s.line(create + "[" + first.Column + "] " + direction(first.IsDescending) + ")")
		return s.String()
	}

	s.line(create)
	cols := make([]string, len(items))
	for i, item := range items {
		cols[i] = "[" + item.Column + "] " + direction(item.IsDescending)
	}
	s.list(1, cols)
	s.line(")")
	return s.String()
}
