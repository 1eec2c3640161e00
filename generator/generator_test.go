package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/ssc/schema"
)

func int64Ptr(v int64) *int64 { return &v }

func sampleCatalog() *schema.Catalog {
	return &schema.Catalog{
		Routines: []schema.Routine{
			{Schema: "dbo", Name: "ActiveUsers", Type: "V ", Text: "CREATE VIEW dbo.ActiveUsers AS SELECT 1 AS One"},
			{Schema: "dbo", Name: "GetUser", Type: "P ", Text: "CREATE PROCEDURE dbo.GetUser AS SELECT 1"},
		},
		Tables: []schema.Table{
			{ObjectID: 1, Schema: "dbo", Name: "Users", Type: "U ", IdentityCount: 1},
			{ObjectID: 2, Schema: "sales", Name: "Orders", Type: "U "},
		},
		Columns: []schema.Column{
			{ObjectID: 1, Name: "Id", DataType: "int", IsIdentity: true, SeedValue: int64Ptr(1), Increment: int64Ptr(1)},
			{ObjectID: 1, Name: "Name", DataType: "nvarchar", MaxLength: 100, IsNullable: true, Collation: "Latin1_General_CI_AS"},
			{ObjectID: 2, Name: "UserId", DataType: "int"},
			{ObjectID: 2, Name: "Total", DataType: "decimal", Precision: 18, Scale: 2},
		},
		PrimaryKeys: []schema.PrimaryKey{
			{ObjectID: 1, Name: "PK_Users", Column: "Id", Type: "CLUSTERED"},
		},
		ForeignKeys: []schema.ForeignKey{
			{
				ObjectID: 2, Name: "FK_Orders_Users", Column: "UserId", Reference: "Id",
				Schema: "sales", Table: "Orders", ParentSchema: "dbo", ParentTable: "Users",
				DeleteAction: 1,
			},
		},
		Types: []schema.UserType{
			{ObjectID: 10, Type: "UT", Schema: "dbo", Name: "Money2", SystemType: "decimal", Precision: 10, Scale: 2},
		},
		Data: []schema.DataSet{
			{Schema: "dbo", Name: "Users", HasIdentity: true, Rows: []schema.Row{
				{{Name: "Id", Value: int64(1)}, {Name: "Name", Value: "O'Brien"}},
			}},
		},
		Jobs: []schema.Job{{JobID: "j1", Name: "Nightly", Enabled: 1}},
		JobSteps: []schema.JobStep{
			{JobID: "j1", JobName: "Nightly", StepName: "Run", Subsystem: "TSQL", Command: "EXEC dbo.GetUser", DatabaseName: "app"},
			{JobID: "j2", JobName: "Other", StepName: "Skip"},
		},
	}
}

func defaultLayout() schema.Layout {
	return schema.Layout{
		Schemas:   "./schemas",
		Tables:    "./tables",
		Types:     "./types",
		Views:     "./views",
		Functions: "./functions",
		Procs:     "./stored-procedures",
		Triggers:  "./triggers",
		Data:      "./data",
		Jobs:      "./jobs",
	}
}

func newGenerator(mutate func(*Options)) *Generator {
	opts := Options{Idempotency: schema.DefaultIdempotency()}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func TestUnitsAreDeterministic(t *testing.T) {
	g := newGenerator(nil)
	first := g.Units(sampleCatalog(), defaultLayout())
	second := g.Units(sampleCatalog(), defaultLayout())
	assert.Equal(t, first, second)
}

func TestUnitsOrderAndNames(t *testing.T) {
	units := newGenerator(nil).Units(sampleCatalog(), defaultLayout())

	var got []string
	for _, u := range units {
		got = append(got, u.Dir+"/"+u.File)
	}
	assert.Equal(t, []string{
		"./schemas/dbo.sql",
		"./schemas/sales.sql",
		"./stored-procedures/dbo.GetUser.sql",
		"./views/dbo.ActiveUsers.sql",
		"./tables/dbo.Users.sql",
		"./tables/sales.Orders.sql",
		"./types/dbo.Money2.sql",
		"./data/dbo.Users.sql",
		"./jobs/Nightly.sql",
	}, got)
}

func TestUnitsCarryEmptyDirForDisabledKinds(t *testing.T) {
	layout := defaultLayout()
	layout.Views = ""

	for _, u := range newGenerator(nil).Units(sampleCatalog(), layout) {
		if u.File == "dbo.ActiveUsers.sql" {
			assert.Empty(t, u.Dir)
		}
	}
}

func TestSchema(t *testing.T) {
	got := newGenerator(nil).Schema(schema.Schema{Name: "sales"})
	assert.Equal(t, "IF NOT EXISTS (SELECT 1 FROM sys.schemas WHERE name = 'sales')\n"+
		"EXEC('CREATE SCHEMA [sales]')", got)
}

func TestRoutine(t *testing.T) {
	view := schema.Routine{Schema: "dbo", Name: "V1", Type: "V ", Text: "CREATE VIEW dbo.V1 AS SELECT 'a' AS A"}

	t.Run("if-exists-drop", func(t *testing.T) {
		got := newGenerator(nil).Routine(view)
		assert.Equal(t, "IF EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID('[dbo].[V1]') AND type = 'V')\n"+
			"DROP VIEW [dbo].[V1]\n"+
			"GO\n"+
			"CREATE VIEW dbo.V1 AS SELECT 'a' AS A", got)
	})

	t.Run("if-not-exists", func(t *testing.T) {
		g := newGenerator(func(o *Options) { o.Idempotency.Views = schema.IfNotExists })
		got := g.Routine(view)
		assert.Equal(t, "IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID('[dbo].[V1]') AND type = 'V')\n"+
			"EXEC(N'CREATE VIEW dbo.V1 AS SELECT ''a'' AS A')", got)
	})

	t.Run("procedure keyword", func(t *testing.T) {
		proc := schema.Routine{Schema: "dbo", Name: "P1", Type: "P ", Text: "CREATE PROCEDURE dbo.P1 AS SELECT 1"}
		assert.Contains(t, newGenerator(nil).Routine(proc), "DROP PROCEDURE [dbo].[P1]\nGO\n")
	})
}

func TestTable(t *testing.T) {
	cat := sampleCatalog()
	g := newGenerator(nil)

	got := g.Table(cat.Tables[0], cat.Columns, cat.PrimaryKeys, cat.ForeignKeys, cat.Indexes)
	assert.Equal(t, "IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID('[dbo].[Users]') AND type = 'U')\n"+
		"CREATE TABLE [dbo].[Users]\n"+
		"(\n"+
		"    [Id] int NOT NULL IDENTITY(1, 1),\n"+
		"    [Name] nvarchar(50) COLLATE Latin1_General_CI_AS NULL,\n"+
		"    CONSTRAINT [PK_Users] PRIMARY KEY CLUSTERED ([Id] ASC)\n"+
		")", got)
}

func TestTableWithoutPrimaryKeyHasNoTrailingComma(t *testing.T) {
	cat := sampleCatalog()
	got := newGenerator(nil).Table(cat.Tables[1], cat.Columns, cat.PrimaryKeys, cat.ForeignKeys, cat.Indexes)

	assert.Contains(t, got, "    [Total] decimal(18, 2) NOT NULL\n)")
	assert.Contains(t, got, "REFERENCES [dbo].[Users] ([Id]) ON DELETE CASCADE")
}

func TestTableIfExistsDrop(t *testing.T) {
	cat := sampleCatalog()
	g := newGenerator(func(o *Options) { o.Idempotency.Tables = schema.IfExistsDrop })

	got := g.Table(cat.Tables[0], cat.Columns, nil, nil, nil)
	assert.True(t, strings.HasPrefix(got,
		"IF EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID('[dbo].[Users]') AND type = 'U')\n"+
			"DROP TABLE [dbo].[Users]\n"+
			"GO\n"+
			"CREATE TABLE [dbo].[Users]\n"), got)
}

func TestColumn(t *testing.T) {
	tests := []struct {
		name    string
		include bool
		col     schema.Column
		want    string
	}{
		{
			name: "max length",
			col:  schema.Column{Name: "Body", DataType: "nvarchar", MaxLength: -1, IsNullable: true},
			want: "[Body] nvarchar(max) NULL",
		},
		{
			name: "varbinary bytes",
			col:  schema.Column{Name: "Hash", DataType: "varbinary", MaxLength: 32},
			want: "[Hash] varbinary(32) NOT NULL",
		},
		{
			name: "datetime2 scale",
			col:  schema.Column{Name: "At", DataType: "datetime2", Scale: 7},
			want: "[At] datetime2(7) NOT NULL",
		},
		{
			name: "default without name",
			col:  schema.Column{Name: "Created", DataType: "datetime", Definition: "(getdate())", DefaultName: "DF_Created"},
			want: "[Created] datetime NOT NULL DEFAULT(getdate())",
		},
		{
			name:    "default with name",
			include: true,
			col:     schema.Column{Name: "Created", DataType: "datetime", Definition: "(getdate())", DefaultName: "DF_Created"},
			want:    "[Created] datetime NOT NULL CONSTRAINT [DF_Created] DEFAULT(getdate())",
		},
		{
			name: "persisted computed",
			col:  schema.Column{Name: "Full", IsComputed: true, Formula: "([A]+[B])", IsPersisted: true},
			want: "[Full] AS ([A]+[B]) PERSISTED NOT NULL",
		},
		{
			name: "computed",
			col:  schema.Column{Name: "Full", IsComputed: true, Formula: "([A]+[B])"},
			want: "[Full] AS ([A]+[B])",
		},
		{
			name: "user defined type skips collation",
			col:  schema.Column{Name: "Code", DataType: "CodeType", IsUserDefined: true, Collation: "Latin1_General_CI_AS"},
			want: "[Code] CodeType NOT NULL",
		},
		{
			name: "identity defaults",
			col:  schema.Column{Name: "Id", DataType: "bigint", IsIdentity: true},
			want: "[Id] bigint NOT NULL IDENTITY(0, 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(func(o *Options) { o.IncludeConstraintName = tt.include })
			assert.Equal(t, tt.want, g.Column(tt.col))
		})
	}
}

func TestCompositePrimaryKey(t *testing.T) {
	got := newGenerator(nil).PrimaryKey([]schema.PrimaryKey{
		{Name: "PK_Lines", Column: "OrderId", Type: "CLUSTERED"},
		{Name: "PK_Lines", Column: "LineNo", Type: "CLUSTERED", IsDescending: true},
	})
	assert.Equal(t, "    CONSTRAINT [PK_Lines] PRIMARY KEY CLUSTERED\n"+
		"    (\n"+
		"        [OrderId] ASC,\n"+
		"        [LineNo] DESC\n"+
		"    )", got)
}

func TestForeignKeyActions(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{1, " ON DELETE CASCADE"},
		{2, " ON DELETE SET NULL"},
		{3, " ON DELETE SET DEFAULT"},
		{0, ""},
		{7, ""},
	}

	for _, tt := range tests {
		fk := schema.ForeignKey{
			Name: "FK_A_B", Column: "BId", Reference: "Id",
			Schema: "dbo", Table: "A", ParentSchema: "dbo", ParentTable: "B",
			DeleteAction: tt.code,
		}
		got := newGenerator(nil).ForeignKey([]schema.ForeignKey{fk})
		assert.Contains(t, got, "REFERENCES [dbo].[B] ([Id])"+tt.want+"\n", "code %d", tt.code)
	}
}

func TestForeignKeyComposite(t *testing.T) {
	base := schema.ForeignKey{
		Name: "FK_Lines_Orders", Schema: "dbo", Table: "Lines",
		ParentSchema: "dbo", ParentTable: "Orders", IsNotTrusted: true, UpdateAction: 1,
	}
	a, b := base, base
	a.Column, a.Reference = "OrderId", "Id"
	b.Column, b.Reference = "Region", "Region"

	got := newGenerator(nil).ForeignKey([]schema.ForeignKey{a, b})
	assert.Equal(t, "IF NOT EXISTS (SELECT 1 FROM sys.foreign_keys WHERE object_id = OBJECT_ID('[dbo].[FK_Lines_Orders]') AND parent_object_id = OBJECT_ID('[dbo].[Lines]'))\n"+
		"BEGIN\n"+
		"    ALTER TABLE [dbo].[Lines] WITH NOCHECK ADD CONSTRAINT [FK_Lines_Orders] FOREIGN KEY ([OrderId], [Region]) REFERENCES [dbo].[Orders] ([Id], [Region]) ON UPDATE CASCADE\n"+
		"    ALTER TABLE [dbo].[Lines] CHECK CONSTRAINT [FK_Lines_Orders]\n"+
		"END", got)
}

func TestIndex(t *testing.T) {
	g := newGenerator(nil)

	single := g.Index([]schema.Index{{Name: "IX_Name", Column: "Name", Schema: "dbo", Table: "Users", Type: "NONCLUSTERED", IsUnique: true}})
	assert.Equal(t, "IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE object_id = OBJECT_ID('[dbo].[Users]') AND name = 'IX_Name')\n"+
		"CREATE UNIQUE NONCLUSTERED INDEX [IX_Name] ON [dbo].[Users]([Name] ASC)", single)

	multi := g.Index([]schema.Index{
		{Name: "IX_Multi", Column: "A", Schema: "dbo", Table: "T", Type: "NONCLUSTERED"},
		{Name: "IX_Multi", Column: "B", Schema: "dbo", Table: "T", Type: "NONCLUSTERED", IsDescending: true},
	})
	assert.Equal(t, "IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE object_id = OBJECT_ID('[dbo].[T]') AND name = 'IX_Multi')\n"+
		"CREATE NONCLUSTERED INDEX [IX_Multi] ON [dbo].[T](\n"+
		"    [A] ASC,\n"+
		"    [B] DESC\n"+
		")", multi)
}

func TestUserType(t *testing.T) {
	got := newGenerator(nil).UserType(schema.UserType{
		Schema: "dbo", Name: "Money2", SystemType: "decimal", Precision: 10, Scale: 2, IsNullable: true,
	})
	assert.Equal(t, "IF NOT EXISTS (\n"+
		"    SELECT 1 FROM sys.types AS t\n"+
		"    JOIN sys.schemas s ON t.schema_id = s.schema_id\n"+
		"    WHERE t.name = 'Money2' AND s.name = 'dbo'\n"+
		")\n"+
		"CREATE TYPE [dbo].[Money2]\n"+
		"FROM DECIMAL(10, 2) NULL", got)
}

func TestTableType(t *testing.T) {
	g := newGenerator(func(o *Options) { o.Idempotency.Types = schema.IfExistsDrop })
	got := g.TableType(
		schema.UserType{ObjectID: 20, Type: "TT", Schema: "dbo", Name: "IdList"},
		[]schema.Column{
			{ObjectID: 20, Name: "Id", DataType: "int"},
			{ObjectID: 21, Name: "Other", DataType: "int"},
		},
	)
	assert.Equal(t, "IF EXISTS (\n"+
		"    SELECT 1 FROM sys.table_types AS t\n"+
		"    JOIN sys.schemas s ON t.schema_id = s.schema_id\n"+
		"    WHERE t.name = 'IdList' AND s.name = 'dbo'\n"+
		")\n"+
		"DROP TYPE [dbo].[IdList]\n"+
		"GO\n"+
		"CREATE TYPE [dbo].[IdList] AS TABLE\n"+
		"(\n"+
		"    [Id] int NOT NULL\n"+
		")", got)
}

func TestData(t *testing.T) {
	set := sampleCatalog().Data[0]

	t.Run("truncate with identity", func(t *testing.T) {
		got := newGenerator(nil).Data(set)
		assert.Equal(t, "TRUNCATE TABLE [dbo].[Users]\n"+
			"\n"+
			"SET IDENTITY_INSERT [dbo].[Users] ON\n"+
			"\n"+
			"INSERT INTO [dbo].[Users] ([Id], [Name]) VALUES (1, 'O''Brien')\n"+
			"\n"+
			"SET IDENTITY_INSERT [dbo].[Users] OFF", got)
	})

	t.Run("delete and reseed", func(t *testing.T) {
		g := newGenerator(func(o *Options) { o.Idempotency.Data = schema.DeleteAndReseed })
		set := set
		set.HasIdentity = false
		got := g.Data(set)
		assert.Equal(t, "DELETE FROM [dbo].[Users]\n"+
			"DBCC CHECKIDENT ('[dbo].[Users]', RESEED, 0)\n"+
			"\n"+
			"INSERT INTO [dbo].[Users] ([Id], [Name]) VALUES (1, 'O''Brien')", got)
	})
}

func TestSafeValue(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 20, 30, 123000000, time.FixedZone("x", 3600))

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"string", "O'Brien", "'O''Brien'"},
		{"every quote", "a'b'c", "'a''b''c'"},
		{"true", true, "1"},
		{"false", false, "0"},
		{"time", at, "'2024-03-05T09:20:30.123Z'"},
		{"bytes", []byte{0xde, 0xad}, "0xDEAD"},
		{"raw", schema.RawValue("12.50"), "12.50"},
		{"int", int64(42), "42"},
		{"float", 1.5, "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeValue(tt.value))
		})
	}
}

func TestJob(t *testing.T) {
	cat := sampleCatalog()
	steps := cat.JobSteps[:1]
	schedules := []schema.JobSchedule{{JobID: "j1", ScheduleName: "Daily", Enabled: 1, FreqType: 4}}

	t.Run("if-exists-drop", func(t *testing.T) {
		got := newGenerator(nil).Job(cat.Jobs[0], steps, schedules)
		require.True(t, strings.HasPrefix(got,
			"IF EXISTS (SELECT 1 FROM msdb.dbo.sysjobs WHERE name = 'Nightly')\n"+
				"EXEC msdb.dbo.sp_delete_job @job_name = 'Nightly'\n"+
				"GO\n"), got)
		assert.Contains(t, got, "EXEC msdb.dbo.sp_add_jobstep\n    @job_name = N'Nightly',\n    @step_name = N'Run',")
		assert.Contains(t, got, "EXEC msdb.dbo.sp_attach_schedule\n    @job_name = N'Nightly',\n    @schedule_name = N'Daily';\nGO\n")
		assert.True(t, strings.HasSuffix(got, "EXEC msdb.dbo.sp_add_jobserver\n    @job_name = N'Nightly';\nGO\n"), got)
		assert.NotContains(t, got, "database_user_name")
	})

	t.Run("if-not-exists", func(t *testing.T) {
		g := newGenerator(func(o *Options) { o.Idempotency.Jobs = schema.IfNotExists })
		got := g.Job(cat.Jobs[0], steps, schedules)
		assert.True(t, strings.HasPrefix(got, "IF NOT EXISTS (SELECT 1 FROM msdb.dbo.sysjobs WHERE name = 'Nightly')\nBEGIN\n"), got)
		assert.True(t, strings.HasSuffix(got, "END"), got)
		assert.NotContains(t, got, "\nGO\n")
		assert.Equal(t, 1, strings.Count(got, "sp_add_schedule"))
	})
}

func TestGroupByKeepsFirstAppearance(t *testing.T) {
	rows := []schema.Index{{Name: "B", Column: "x"}, {Name: "A", Column: "y"}, {Name: "B", Column: "z"}}
	names, groups := schema.GroupBy(rows, func(ix schema.Index) string { return ix.Name })

	assert.Equal(t, []string{"B", "A"}, names)
	assert.Len(t, groups["B"], 2)
	assert.Equal(t, "z", groups["B"][1].Column)
}
