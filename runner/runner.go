package runner

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ridoystarlord/ssc/schema"
)

// ReplayOrder is the order kinds are replayed in. Each kind may depend on
// objects of the kinds before it.
var ReplayOrder = []schema.Kind{
	schema.KindSchema,
	schema.KindTable,
	schema.KindType,
	schema.KindView,
	schema.KindFunction,
	schema.KindProcedure,
	schema.KindTrigger,
	schema.KindData,
	schema.KindJob,
}

// File is a script scheduled for replay.
type File struct {
	Kind schema.Kind
	Path string
}

// Execer submits one batch. *sql.Conn and *sql.DB satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BatchError reports the batch that stopped a replay.
type BatchError struct {
	File  string
	Batch int // 1-based
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: batch %d: %v", e.File, e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Options tune a replay.
type Options struct {
	// Out receives one progress line per file. Nil discards.
	Out io.Writer
}

// Files lists the scripts under root in replay order. Kinds without a
// directory are skipped and files within a kind are sorted by path.
func Files(root string, layout schema.Layout) ([]File, error) {
	var files []File
	seen := map[string]bool{}

	for _, kind := range ReplayOrder {
		dir := layout.Dir(kind)
		if dir == "" {
			continue
		}
		base := filepath.Join(root, dir)
		if seen[base] {
			continue
		}
		seen[base] = true

		if _, err := os.Stat(base); os.IsNotExist(err) {
			slog.Debug("no scripts for kind", "kind", kind, "dir", base)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(base), "**/*.sql", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", base, err)
		}
		sort.Strings(matches)
		for _, rel := range matches {
			files = append(files, File{Kind: kind, Path: filepath.Join(base, filepath.FromSlash(rel))})
		}
	}
	return files, nil
}

// SplitBatches splits script text on lines holding only GO. The separator
// is case insensitive and may be followed by whitespace but not preceded. Batches with no
// statements are dropped. Quoting is not tracked: a string literal with a
// line holding only GO is split too.
func SplitBatches(text string) []string {
	var batches []string
	var current []string

	flush := func() {
		batch := strings.TrimSpace(strings.Join(current, "\n"))
		if batch != "" {
			batches = append(batches, batch)
		}
		current = current[:0]
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.EqualFold(strings.TrimRight(line, " \t"), "GO") {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return batches
}

// Run submits every batch of every file in order. The first failure stops
// the replay; nothing is rolled back.
func Run(ctx context.Context, exec Execer, files []File, opts Options) error {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Path, err)
		}

		start := time.Now()
		batches := SplitBatches(string(data))
		for i, batch := range batches {
			slog.Debug("executing batch", "file", f.Path, "batch", i+1, "of", len(batches))
			if _, err := exec.ExecContext(ctx, batch); err != nil {
				return &BatchError{File: f.Path, Batch: i + 1, Err: err}
			}
		}
		fmt.Fprintf(out, "Applied: %s (%d batch(es), %s)\n", f.Path, len(batches), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// Preview writes what Run would submit without touching the database.
func Preview(files []File, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "KIND\tFILE\tBATCHES")
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Path, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", f.Kind, f.Path, len(SplitBatches(string(data))))
	}
	return tw.Flush()
}
