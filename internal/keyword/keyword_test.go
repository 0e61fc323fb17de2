package keyword_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eac-lang/eac/internal/keyword"
)

func TestMinimumKeywordsPresent(t *testing.T) {
	required := []string{
		"Open", "workbook", "In", "sheet", "treat", "range", "as", "table",
		"Set", "to", "Add", "column", "Filter", "where", "Export", "Use",
		"system", "version", "Log", "in", "out", "credential", "Go", "page",
		"Enter", "Click", "Extract", "from", "field", "element", "For",
		"each", "Call", "result", "date", "row", "and", "or", "not",
	}
	for _, w := range required {
		assert.True(t, keyword.IsKeyword(w), "expected %q to be a keyword", w)
	}
}

func TestNonKeywordIdentifiersNotInTable(t *testing.T) {
	assert.False(t, keyword.IsKeyword("Invoices"))
	assert.False(t, keyword.IsKeyword("Balance"))
}
