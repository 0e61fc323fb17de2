// Package keyword loads the process-wide keyword table the lexer uses to
// distinguish KEYWORD tokens from plain IDENT tokens.
package keyword

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// document mirrors the on-disk keyword configuration resource: a handful of
// named sections, each a flat list of spellings.
type document struct {
	Verbs   []string `yaml:"verbs"`
	Types   []string `yaml:"types"`
	Special []string `yaml:"special"`
}

// minimum is the built-in fallback keyword set: the language's required
// minimum keywords plus the words the parser's Sort, If/Else and On Error
// productions expect as KEYWORD tokens. Used when no keyword document is
// found, or when the found one fails to parse.
var minimum = []string{
	"Open", "workbook", "In", "sheet", "treat", "range", "as", "table",
	"Set", "to", "Add", "column", "Filter", "where", "Export", "Use",
	"system", "version", "Log", "in", "out", "credential", "Go", "page",
	"Enter", "Click", "Extract", "from", "field", "element", "For",
	"each", "Call", "result", "date", "row", "and", "or", "not",
	"Sort", "by", "ascending", "descending", "If", "Else", "On", "Error",
}

var (
	once  sync.Once
	table map[string]struct{}
)

// Table is the immutable, process-wide keyword set. LoadFile must be
// called before first use by a lexer; Table will otherwise lazily fall
// back to the built-in minimum set.
func Table() map[string]struct{} {
	once.Do(func() {
		table = setOf(minimum)
	})
	return table
}

// LoadFile reads a keyword document from path and installs it as the
// process-wide keyword table. It must be called before the first lexer run
// in the process — the table is immutable after first load, matching the
// language specification's "process-wide, immutable after first load"
// contract. A missing file is not an error: it falls back to the built-in
// minimum set silently, per spec.
func LoadFile(path string) error {
	var installed bool
	var loadErr error
	once.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				table = setOf(minimum)
				installed = true
				return
			}
			loadErr = err
			table = setOf(minimum)
			installed = true
			return
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			loadErr = err
			table = setOf(minimum)
			installed = true
			return
		}
		words := append([]string{}, doc.Verbs...)
		words = append(words, doc.Types...)
		words = append(words, doc.Special...)
		if len(words) == 0 {
			table = setOf(minimum)
		} else {
			table = setOf(words)
		}
		installed = true
	})
	_ = installed
	return loadErr
}

// IsKeyword reports whether spelling is in the currently-loaded keyword
// table.
func IsKeyword(spelling string) bool {
	_, ok := Table()[spelling]
	return ok
}

func setOf(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// reset is only used by tests that need a fresh process-wide table; it is
// not part of the public contract (the spec requires the table to be
// immutable after first load within one process run).
func reset() {
	once = sync.Once{}
	table = nil
}
