package filesync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"

	"github.com/ridoystarlord/ssc/cache"
	"github.com/ridoystarlord/ssc/schema"
	"github.com/ridoystarlord/ssc/utils"
)

// Line ending settings.
const (
	EOLAuto = "auto"
	EOLLF   = "lf"
	EOLCRLF = "crlf"
)

// Options configure one synchronization run.
type Options struct {
	// Root is the generated-file root, as configured.
	Root string
	// Files is an ordered list of globs matched against file names.
	// Patterns starting with "!" exclude.
	Files []string
	// EOL is one of auto, lf or crlf.
	EOL string
}

// Stats counts what a run changed on disk.
type Stats struct {
	Added   int
	Updated int
	Removed int
}

func (s Stats) String() string {
	return fmt.Sprintf("Successfully added %d, updated %d, and removed %d files.", s.Added, s.Updated, s.Removed)
}

// Colored returns the summary line with each count highlighted.
func (s Stats) Colored() string {
	return fmt.Sprintf("Successfully added %s, updated %s, and removed %s files.",
		color.GreenString("%d", s.Added),
		color.CyanString("%d", s.Updated),
		color.RedString("%d", s.Removed),
	)
}

// Engine writes generated scripts under a root and reconciles the tree with
// what was there before the run. An Engine serves exactly one run.
type Engine struct {
	opts     Options
	eol      string
	previous *cache.Cache
	next     *cache.Cache

	// existed is the managed tree as discovered at construction; stale
	// shrinks as files are written and holds what finalize removes.
	existed map[string]string
	stale   map[string]string
	// written maps keys stored this run to the unit file that produced them.
	written map[string]string

	stats Stats
}

// New discovers the managed files under the root and loads the cache of the
// previous run.
func New(opts Options) (*Engine, error) {
	eol, err := lineEnding(opts.EOL)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:     opts,
		eol:      eol,
		previous: cache.New(opts.Root),
		next:     cache.New(opts.Root),
		existed:  map[string]string{},
		stale:    map[string]string{},
		written:  map[string]string{},
	}

	if err := e.previous.Load(); err != nil {
		return nil, err
	}
	if err := e.discover(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) discover() error {
	if _, err := os.Stat(e.opts.Root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(e.opts.Root), "**/*.sql", doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("discover existing files: %w", err)
	}
	for _, rel := range matches {
		if !e.shouldWrite(filepath.Base(rel)) {
			continue
		}
		path := filepath.Join(e.opts.Root, filepath.FromSlash(rel))
		key := e.normalize(path)
		e.existed[key] = path
		e.stale[key] = path
	}
	slog.Debug("discovered managed files", "root", e.opts.Root, "count", len(e.stale))
	return nil
}

// Write stores one generated script. Disabled kinds and files rejected by
// the filter are skipped without touching stats or the cache. Files are
// always rewritten, even when their checksum did not change. When two units
// sanitize to the same file the first one wins and the second is skipped.
func (e *Engine) Write(unit schema.ScriptUnit) error {
	r, ok := e.Render(unit)
	if !ok {
		return nil
	}
	key, path, content := r.Key, r.Path, r.Content
	if first, dup := e.written[key]; dup {
		slog.Warn("skipping script with colliding file name", "file", path, "unit", unit.File, "kept", first)
		return nil
	}
	e.written[key] = unit.File
	sum := cache.Checksum(content)
	e.next.Add(key, sum)

	if _, seen := e.existed[key]; !seen {
		e.stats.Added++
	} else if e.previous.DidChange(key, sum) {
		e.stats.Updated++
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	delete(e.stale, key)
	return nil
}

// Rendered is a script as it would be stored on disk.
type Rendered struct {
	// Key is the normalized path used by the cache.
	Key     string
	Path    string
	Content string
}

// Render resolves where and how a unit is stored. ok is false when the
// unit's kind is disabled or its file is rejected by the filter.
func (e *Engine) Render(unit schema.ScriptUnit) (r Rendered, ok bool) {
	if unit.Dir == "" {
		return r, false
	}

	name := Sanitize(unit.File)
	if !e.shouldWrite(name) {
		slog.Debug("skipping filtered file", "file", name)
		return r, false
	}

	r.Path = filepath.Join(e.opts.Root, unit.Dir, name)
	r.Key = e.normalize(r.Path)
	r.Content = e.convert(strings.TrimRightFunc(unit.Content, unicode.IsSpace))
	return r, true
}

// Managed returns the files discovered under the root at construction,
// keyed like Rendered.Key.
func (e *Engine) Managed() map[string]string {
	files := make(map[string]string, len(e.existed))
	for key, path := range e.existed {
		files[key] = path
	}
	return files
}

// Finalize removes every managed file the run did not write, persists the
// new cache and returns the run's stats.
func (e *Engine) Finalize() (Stats, error) {
	keys := make([]string, 0, len(e.stale))
	for key := range e.stale {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := os.Remove(e.stale[key]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return e.stats, fmt.Errorf("remove %s: %w", e.stale[key], err)
		}
		slog.Debug("removed stale file", "file", key)
		e.stats.Removed++
		delete(e.stale, key)
	}

	if err := e.next.Write(); err != nil {
		return e.stats, err
	}
	slog.Debug("wrote cache", "path", e.next.Path(), "entries", e.next.Len())
	return e.stats, nil
}

// shouldWrite reports whether name passes the configured filter. Without a
// filter every file is managed.
func (e *Engine) shouldWrite(name string) bool {
	if len(e.opts.Files) == 0 {
		return true
	}
	return utils.MatchGlobs(e.opts.Files, name)
}

// normalize makes a path comparable with cache keys from any platform.
func (e *Engine) normalize(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	root := strings.ReplaceAll(e.opts.Root, `\`, "/")
	if strings.HasPrefix(root, "./") && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}
	return path
}

func (e *Engine) convert(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if e.eol == "\r\n" {
		content = strings.ReplaceAll(content, "\n", "\r\n")
	}
	return content
}

func lineEnding(setting string) (string, error) {
	switch strings.ToLower(setting) {
	case "", EOLAuto:
		if runtime.GOOS == "windows" {
			return "\r\n", nil
		}
		return "\n", nil
	case EOLLF:
		return "\n", nil
	case EOLCRLF:
		return "\r\n", nil
	}
	return "", fmt.Errorf("unknown eol %q: expected auto, lf or crlf", setting)
}
