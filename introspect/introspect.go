package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	mssql "github.com/microsoft/go-mssqldb"
	"golang.org/x/sync/errgroup"

	"github.com/ridoystarlord/ssc/schema"
	"github.com/ridoystarlord/ssc/utils"
)

// Querier runs read-only queries. *sql.DB satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Options select what is read besides the schema objects.
type Options struct {
	// Database filters agent jobs to those with a step in this database.
	Database string
	// Jobs enables reading agent jobs from msdb.
	Jobs bool
	// Data lists globs matched against "schema.name" of every table; the
	// rows of matching tables are read.
	Data []string
	// Parallel caps concurrent queries. Zero means four.
	Parallel int
}

// Fetch reads the catalog of the connected database. Catalog queries run
// concurrently and every result lands in its own Catalog field, so nothing
// depends on the order in which queries are submitted. Data queries start
// once the table list is known.
func Fetch(ctx context.Context, db Querier, opts Options) (*schema.Catalog, error) {
	limit := opts.Parallel
	if limit <= 0 {
		limit = 4
	}

	cat := &schema.Catalog{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	run := func(name string, read func(context.Context) error) {
		g.Go(func() error {
			slog.Debug("reading catalog", "query", name)
			if err := read(gctx); err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			return nil
		})
	}

	run("routines", func(ctx context.Context) (err error) {
		cat.Routines, err = collect(ctx, db, routinesQuery, scanRoutine)
		return err
	})
	run("tables", func(ctx context.Context) (err error) {
		cat.Tables, err = collect(ctx, db, tablesQuery, scanTable)
		return err
	})
	run("columns", func(ctx context.Context) (err error) {
		cat.Columns, err = collect(ctx, db, columnsQuery, scanColumn)
		return err
	})
	run("primary keys", func(ctx context.Context) (err error) {
		cat.PrimaryKeys, err = collect(ctx, db, primaryKeysQuery, scanPrimaryKey)
		return err
	})
	run("foreign keys", func(ctx context.Context) (err error) {
		cat.ForeignKeys, err = collect(ctx, db, foreignKeysQuery, scanForeignKey)
		return err
	})
	run("indexes", func(ctx context.Context) (err error) {
		cat.Indexes, err = collect(ctx, db, indexesQuery, scanIndex)
		return err
	})
	run("types", func(ctx context.Context) (err error) {
		cat.Types, err = collect(ctx, db, typesQuery, scanUserType)
		return err
	})

	if opts.Jobs {
		database := sql.Named("database", opts.Database)
		run("jobs", func(ctx context.Context) (err error) {
			cat.Jobs, err = collect(ctx, db, jobsQuery, scanJob, database)
			return err
		})
		run("job steps", func(ctx context.Context) (err error) {
			cat.JobSteps, err = collect(ctx, db, jobStepsQuery, scanJobStep, database)
			return err
		})
		run("job schedules", func(ctx context.Context) (err error) {
			cat.JobSchedules, err = collect(ctx, db, jobSchedulesQuery, scanJobSchedule)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := fetchData(ctx, db, cat.Tables, opts.Data, limit)
	if err != nil {
		return nil, err
	}
	cat.Data = data
	return cat, nil
}

// fetchData reads the rows of every table selected by the globs. Results are
// keyed by table name and returned in table order.
func fetchData(ctx context.Context, db Querier, tables []schema.Table, globs []string, limit int) ([]schema.DataSet, error) {
	var selected []schema.Table
	for _, t := range tables {
		if utils.MatchGlobs(globs, t.Schema+"."+t.Name) {
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	results := make(map[string]schema.DataSet, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, t := range selected {
		g.Go(func() error {
			rows, err := readRows(gctx, db, t.Schema, t.Name)
			if err != nil {
				return fmt.Errorf("read data of [%s].[%s]: %w", t.Schema, t.Name, err)
			}
			slog.Debug("read table data", "table", t.Schema+"."+t.Name, "rows", len(rows))

			mu.Lock()
			defer mu.Unlock()
			results[t.Schema+"."+t.Name] = schema.DataSet{
				Schema:      t.Schema,
				Name:        t.Name,
				HasIdentity: t.IdentityCount > 0,
				Rows:        rows,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := make([]schema.DataSet, 0, len(selected))
	for _, t := range selected {
		data = append(data, results[t.Schema+"."+t.Name])
	}
	return data, nil
}

func readRows(ctx context.Context, db Querier, schemaName, name string) ([]schema.Row, error) {
	query := fmt.Sprintf("SELECT * FROM [%s].[%s]", escapeIdent(schemaName), escapeIdent(name))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var out []schema.Row
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(schema.Row, len(types))
		for i, ct := range types {
			v, err := convert(ct.DatabaseTypeName(), values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", ct.Name(), err)
			}
			row[i] = schema.Field{Name: ct.Name(), Value: v}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// convert maps a driver value to what the generator renders. The driver
// hands back uniqueidentifiers as raw bytes and exact numerics as digit
// strings, so both need help to round trip.
func convert(typeName string, value any) (any, error) {
	b, ok := value.([]byte)
	if !ok {
		return value, nil
	}

	switch strings.ToUpper(typeName) {
	case "UNIQUEIDENTIFIER":
		var id mssql.UniqueIdentifier
		if err := id.Scan(b); err != nil {
			return nil, err
		}
		return id.String(), nil
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return schema.RawValue(string(b)), nil
	case "BINARY", "VARBINARY", "IMAGE", "TIMESTAMP", "ROWVERSION":
		return b, nil
	}
	return string(b), nil
}

func escapeIdent(s string) string {
	return strings.ReplaceAll(s, "]", "]]")
}

func collect[T any](ctx context.Context, db Querier, query string, scan func(*sql.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
