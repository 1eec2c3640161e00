package diff

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ridoystarlord/ssc/filesync"
	"github.com/ridoystarlord/ssc/schema"
)

type OperationType string

const (
	CreateFile OperationType = "CREATE_FILE"
	UpdateFile OperationType = "UPDATE_FILE"
	DeleteFile OperationType = "DELETE_FILE"
)

// Operation is one change a pull would make to the working tree.
type Operation struct {
	Type OperationType
	Path string
	// Added and Removed count changed lines for UPDATE_FILE.
	Added   int
	Removed int
}

// Plan compares the scripts generated from the database with the files on
// disk and returns the operations a pull would perform, sorted by path.
// Files whose content already matches are left out. Nothing is written.
func Plan(engine *filesync.Engine, units []schema.ScriptUnit) ([]Operation, error) {
	var ops []Operation
	managed := engine.Managed()

	for _, unit := range units {
		r, ok := engine.Render(unit)
		if !ok {
			continue
		}
		delete(managed, r.Key)

		current, err := os.ReadFile(r.Path)
		if errors.Is(err, fs.ErrNotExist) {
			ops = append(ops, Operation{Type: CreateFile, Path: r.Path})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.Path, err)
		}
		if string(current) == r.Content {
			continue
		}
		added, removed := LineDelta(string(current), r.Content)
		ops = append(ops, Operation{Type: UpdateFile, Path: r.Path, Added: added, Removed: removed})
	}

	for _, path := range managed {
		ops = append(ops, Operation{Type: DeleteFile, Path: path})
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].Path < ops[j].Path })
	return ops, nil
}

// LineDelta counts lines only in b (added) and only in a (removed), as a
// multiset comparison. Line endings are ignored.
func LineDelta(a, b string) (added, removed int) {
	counts := map[string]int{}
	for _, line := range splitLines(a) {
		counts[line]++
	}
	for _, line := range splitLines(b) {
		if counts[line] > 0 {
			counts[line]--
			continue
		}
		added++
	}
	for _, n := range counts {
		removed += n
	}
	return added, removed
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Summary counts operations by type.
func Summary(ops []Operation) map[OperationType]int {
	counts := map[OperationType]int{}
	for _, op := range ops {
		counts[op.Type]++
	}
	return counts
}
