package filesync

import (
	"fmt"
	"os"
	"sort"

	"github.com/ridoystarlord/ssc/cache"
)

// Report compares the managed tree with the cache of the last pull.
type Report struct {
	// Modified files were edited after the last pull.
	Modified []string
	// Untracked files are managed by the filter but were never pulled.
	Untracked []string
	// Missing files were pulled but are gone from disk.
	Missing []string
	// Clean counts files that match the cache.
	Clean int
}

// Dirty reports whether anything differs from the last pull.
func (r *Report) Dirty() bool {
	return len(r.Modified)+len(r.Untracked)+len(r.Missing) > 0
}

// Status inspects the tree under opts.Root without writing anything.
func Status(opts Options) (*Report, error) {
	e, err := New(opts)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for key, path := range e.existed {
		recorded, ok := e.previous.Lookup(key)
		if !ok {
			report.Untracked = append(report.Untracked, key)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if cache.Checksum(string(data)) != recorded {
			report.Modified = append(report.Modified, key)
			continue
		}
		report.Clean++
	}

	for _, key := range e.previous.Keys() {
		if _, ok := e.existed[key]; !ok {
			report.Missing = append(report.Missing, key)
		}
	}

	sort.Strings(report.Modified)
	sort.Strings(report.Untracked)
	return report, nil
}
