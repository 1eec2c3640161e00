package generator

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ridoystarlord/ssc/schema"
)

// Data returns the script re-inserting every row of a data set.
func (g *Generator) Data(item schema.DataSet) string {
	id := objectID(item.Schema, item.Name)
	s := &script{}

	switch g.opts.Idempotency.Data {
	case schema.Delete:
		s.line("DELETE FROM " + id)
	case schema.DeleteAndReseed:
		s.line("DELETE FROM " + id)
		s.linef("DBCC CHECKIDENT (%s, RESEED, 0)", quote(id))
	case schema.Truncate:
		s.line("TRUNCATE TABLE " + id)
	}
	s.blank()

	if item.HasIdentity {
		s.linef("SET IDENTITY_INSERT %s ON", id)
		s.blank()
	}

	for _, row := range item.Rows {
		columns := make([]string, len(row))
		values := make([]string, len(row))
		for i, field := range row {
			columns[i] = "[" + field.Name + "]"
			values[i] = SafeValue(field.Value)
		}
		s.linef("INSERT INTO %s (%s) VALUES (%s)", id, strings.Join(columns, ", "), strings.Join(values, ", "))
	}

	if item.HasIdentity {
		s.blank()
		s.linef("SET IDENTITY_INSERT %s OFF", id)
	}

	return s.String()
}

// SafeValue renders a column value as a T-SQL literal. Line breaks are kept
// verbatim, so a string with a line holding only GO will be split by the
// batch separator on push.
func SafeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(v)
	case time.Time:
		return quote(v.UTC().Format("2006-01-02T15:04:05.000Z"))
	case bool:
		if v {
			return "1"
		}
		return "0"
	case []byte:
		return "0x" + strings.ToUpper(hex.EncodeToString(v))
	case schema.RawValue:
		return string(v)
	}
	return fmt.Sprint(value)
}
