package filesync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/ssc/cache"
	"github.com/ridoystarlord/ssc/schema"
)

func unit(dir, file, content string) schema.ScriptUnit {
	return schema.ScriptUnit{Dir: dir, File: file, Content: content}
}

func newEngine(t *testing.T, root string, files ...string) *Engine {
	t.Helper()
	e, err := New(Options{Root: root, Files: files, EOL: EOLLF})
	require.NoError(t, err)
	return e
}

func runSync(t *testing.T, root string, units ...schema.ScriptUnit) Stats {
	t.Helper()
	e := newEngine(t, root)
	for _, u := range units {
		require.NoError(t, e.Write(u))
	}
	stats, err := e.Finalize()
	require.NoError(t, err)
	return stats
}

func TestFirstRunAddsEverything(t *testing.T) {
	root := t.TempDir()

	stats := runSync(t, root,
		unit("tables", "dbo.A.sql", "CREATE TABLE A\n\n"),
		unit("views", "dbo.V.sql", "CREATE VIEW V"),
	)

	assert.Equal(t, Stats{Added: 2}, stats)
	data, err := os.ReadFile(filepath.Join(root, "tables", "dbo.A.sql"))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE A", string(data))
	assert.FileExists(t, filepath.Join(root, cache.FileName))
}

func TestCacheDelta(t *testing.T) {
	root := t.TempDir()
	runSync(t, root,
		unit("tables", "dbo.A.sql", "one"),
		unit("tables", "dbo.B.sql", "same"),
		unit("tables", "dbo.C.sql", "gone"),
	)

	stats := runSync(t, root,
		unit("tables", "dbo.A.sql", "two"),
		unit("tables", "dbo.B.sql", "same"),
		unit("tables", "dbo.D.sql", "new"),
	)

	assert.Equal(t, Stats{Added: 1, Updated: 1, Removed: 1}, stats)
	assert.NoFileExists(t, filepath.Join(root, "tables", "dbo.C.sql"))
	assert.FileExists(t, filepath.Join(root, "tables", "dbo.B.sql"))
}

func TestUnchangedFileIsRewritten(t *testing.T) {
	root := t.TempDir()
	runSync(t, root, unit("tables", "dbo.A.sql", "same"))

	path := filepath.Join(root, "tables", "dbo.A.sql")
	require.NoError(t, os.WriteFile(path, []byte("edited by hand"), 0644))

	stats := runSync(t, root, unit("tables", "dbo.A.sql", "same"))
	assert.Equal(t, Stats{}, stats)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "same", string(data))
}

func TestCollidingNamesKeepFirst(t *testing.T) {
	root := t.TempDir()

	stats := runSync(t, root,
		unit("procs", "dbo.a/b.sql", "first"),
		unit("procs", "dbo.a<b.sql", "second"),
	)

	assert.Equal(t, Stats{Added: 1}, stats)
	data, err := os.ReadFile(filepath.Join(root, "procs", "dbo.a!b.sql"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "procs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDisabledDirIsSkipped(t *testing.T) {
	root := t.TempDir()
	stats := runSync(t, root, unit("", "dbo.A.sql", "x"))

	assert.Equal(t, Stats{}, stats)
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the cache file is written")
}

func TestFilterExcludesFiles(t *testing.T) {
	root := t.TempDir()

	e := newEngine(t, root, "!dbo.Hand*")
	require.NoError(t, e.Write(unit("procs", "dbo.HandEdited.sql", "generated")))
	require.NoError(t, e.Write(unit("procs", "dbo.Other.sql", "generated")))
	stats, err := e.Finalize()
	require.NoError(t, err)

	assert.Equal(t, Stats{Added: 1}, stats)
	assert.NoFileExists(t, filepath.Join(root, "procs", "dbo.HandEdited.sql"))

	loaded := cache.New(root)
	require.NoError(t, loaded.Load())
	assert.Equal(t, 1, loaded.Len())
}

func TestFilteredFilesAreNotPruned(t *testing.T) {
	root := t.TempDir()
	hand := filepath.Join(root, "procs", "dbo.HandEdited.sql")
	require.NoError(t, os.MkdirAll(filepath.Dir(hand), 0755))
	require.NoError(t, os.WriteFile(hand, []byte("mine"), 0644))

	e := newEngine(t, root, "!dbo.Hand*")
	stats, err := e.Finalize()
	require.NoError(t, err)

	assert.Equal(t, Stats{}, stats)
	assert.FileExists(t, hand)
}

func TestShouldWrite(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		file  string
		want  bool
	}{
		{"no filter", nil, "dbo.A.sql", true},
		{"include match", []string{"dbo.*"}, "dbo.A.sql", true},
		{"include miss", []string{"dbo.*"}, "sales.A.sql", false},
		{"exclude only", []string{"!sales.*"}, "dbo.A.sql", true},
		{"exclude hit", []string{"!sales.*"}, "sales.A.sql", false},
		{"include then exclude", []string{"*.sql", "!dbo.Tmp*"}, "dbo.TmpX.sql", false},
		{"later include wins", []string{"!dbo.*", "dbo.Keep.sql"}, "dbo.Keep.sql", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Engine{opts: Options{Files: tt.files}}
			assert.Equal(t, tt.want, e.shouldWrite(tt.file))
		})
	}
}

func TestNormalize(t *testing.T) {
	e := &Engine{opts: Options{Root: "./_sql-database"}}
	assert.Equal(t, "./_sql-database/tables/dbo.A.sql", e.normalize(`_sql-database\tables\dbo.A.sql`))

	abs := &Engine{opts: Options{Root: "/srv/sql"}}
	assert.Equal(t, "/srv/sql/tables/dbo.A.sql", abs.normalize("/srv/sql/tables/dbo.A.sql"))
}

func TestRelativeRootKeys(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	runSync(t, "./out", unit("./tables", "dbo.A.sql", "one"))
	stats := runSync(t, "./out", unit("./tables", "dbo.A.sql", "two"))
	assert.Equal(t, Stats{Updated: 1}, stats)

	data, err := os.ReadFile(filepath.Join("out", cache.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"./out/tables/dbo.A.sql"`)
}

func TestLineEndings(t *testing.T) {
	root := t.TempDir()
	e, err := New(Options{Root: root, EOL: EOLCRLF})
	require.NoError(t, err)
	require.NoError(t, e.Write(unit("views", "dbo.V.sql", "a\nb\r\nc\n")))
	_, err = e.Finalize()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "views", "dbo.V.sql"))
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\nc", string(data))

	_, err = New(Options{Root: root, EOL: "cr"})
	assert.Error(t, err)
}

func TestCorruptCacheIsFatal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, cache.FileName), []byte("]"), 0644))

	_, err := New(Options{Root: root})
	assert.ErrorIs(t, err, cache.ErrCorrupt)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dbo.Users.sql", "dbo.Users.sql"},
		{"dbo.a/b.sql", "dbo.a!b.sql"},
		{"dbo.a<>b.sql", "dbo.a!b.sql"},
		{"CON.sql", "CON!.sql"},
		{"nul", "nul!"},
		{"..", "!"},
		{"tab\there.sql", "tab!here.sql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}

	long := Sanitize(strings.Repeat("é", 200) + ".sql")
	assert.LessOrEqual(t, len(long), maxNameLen)
}

func TestStatsString(t *testing.T) {
	assert.Equal(t, "Successfully added 1, updated 2, and removed 3 files.", Stats{1, 2, 3}.String())
}
