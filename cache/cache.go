package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/xxh3"
)

// FileName is the cache file kept in the generated-file root.
const FileName = "cache.json"

// ErrCorrupt is returned when a cache file exists but cannot be parsed.
// Callers must treat it as fatal: an unreadable cache would report every
// file as changed.
var ErrCorrupt = errors.New("cache file is corrupt")

type document struct {
	Files map[string]string `json:"files"`
}

// Cache maps normalized file paths to content checksums.
type Cache struct {
	path  string
	files map[string]string
}

// New returns an empty cache persisted under root.
func New(root string) *Cache {
	return &Cache{
		path:  filepath.Join(root, FileName),
		files: map[string]string{},
	}
}

// Path returns the location of the cache file.
func (c *Cache) Path() string {
	return c.path
}

// Load replaces the in-memory entries with the persisted ones. A missing
// file leaves the cache empty.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, c.path, err)
	}
	c.files = doc.Files
	if c.files == nil {
		c.files = map[string]string{}
	}
	return nil
}

// DidChange reports whether sum differs from the recorded checksum. Paths
// without an entry count as changed.
func (c *Cache) DidChange(path, sum string) bool {
	old, ok := c.files[path]
	return !ok || old != sum
}

// Add records or replaces the checksum of path.
func (c *Cache) Add(path, sum string) {
	c.files[path] = sum
}

// Lookup returns the recorded checksum of path.
func (c *Cache) Lookup(path string) (string, bool) {
	sum, ok := c.files[path]
	return sum, ok
}

// Keys returns the recorded paths in sorted order.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.files))
	for key := range c.files {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.files)
}

// Write persists every entry, replacing any previous cache file.
func (c *Cache) Write() error {
	data, err := json.MarshalIndent(document{Files: c.files}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Checksum returns the 128-bit xxh3 digest of content as hex.
func Checksum(content string) string {
	h := xxh3.HashString128(content)
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}
