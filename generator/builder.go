package generator

import (
	"fmt"
	"strings"
)

const (
	indentUnit     = "    "
	batchSeparator = "GO"
)

// script collects the lines of one generated file. Callers append a guard,
// then the body, then any trailing statements; the builder only knows about
// lines, indentation and batch separators.
type script struct {
	lines []string
}

func (s *script) line(text string) {
	s.lines = append(s.lines, text)
}

func (s *script) linef(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

// indented appends text prefixed with depth levels of indentation.
func (s *script) indented(depth int, text string) {
	s.lines = append(s.lines, indent(depth)+text)
}

func (s *script) blank() {
	s.lines = append(s.lines, "")
}

// batch ends the current batch.
func (s *script) batch() {
	s.lines = append(s.lines, batchSeparator)
}

// raw appends text verbatim, which may span several lines.
func (s *script) raw(text string) {
	s.lines = append(s.lines, text)
}

// list appends items one per line, separated by commas, each at depth.
func (s *script) list(depth int, items []string) {
	for i, item := range items {
		if i < len(items)-1 {
			item += ","
		}
		s.indented(depth, item)
	}
}

func (s *script) String() string {
	return strings.Join(s.lines, "\n")
}

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}

// objectID renders a two part bracketed name.
func objectID(schemaName, name string) string {
	return "[" + schemaName + "].[" + name + "]"
}

// quote renders s as a string literal with embedded quotes doubled.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// nquote renders s as a unicode string literal.
func nquote(s string) string {
	return "N" + quote(s)
}
