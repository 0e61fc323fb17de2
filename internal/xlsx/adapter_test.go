package xlsx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eac-lang/eac/internal/checker"
	"github.com/eac-lang/eac/internal/interp"
	"github.com/eac-lang/eac/internal/ir"
	"github.com/eac-lang/eac/internal/keyword"
	"github.com/eac-lang/eac/internal/lexer"
	"github.com/eac-lang/eac/internal/lower"
	"github.com/eac-lang/eac/internal/parser"
	"github.com/eac-lang/eac/internal/xlsx"
)

func compile(t *testing.T, src, path string) *ir.Program {
	t.Helper()
	toks, err := lexer.New(src, path, keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, path)
	require.NoError(t, err)
	require.NoError(t, checker.Check(prog))
	return lower.Lower(prog)
}

// S4 — end-to-end filter and export.
func TestEndToEndFilterAndExportCSV(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.csv")

	adapter := xlsx.NewAdapter()
	adapter.LoadFixture("data.xlsx", xlsx.Fixture{
		Sheets: map[string]xlsx.Sheet{
			"Data": {
				{"Amount", "Balance", "Name"},
				{100.0, 50.0, "Alice"},
				{200.0, 0.0, "Bob"},
				{300.0, 75.5, "Carol"},
			},
		},
	})
	reg := interp.NewRegistry()
	adapter.Register(reg)

	src := "Open workbook \"data.xlsx\".\n" +
		"In sheet \"Data\", treat range A1C4 as table T.\n" +
		"Filter T where T.Balance > 0.\n" +
		"Export T to \"" + outPath + "\".\n"
	prog := compile(t, src, "s4.eac")

	trace, err := interp.Run(prog, reg, interp.Options{})
	require.NoError(t, err)
	require.Len(t, trace, 4)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Alice")
	assert.Contains(t, content, "Carol")
	assert.NotContains(t, content, "Bob")
}

// S6 — multiple workbooks; reading addresses the most recently opened one.
func TestMultipleWorkbooksAddressMostRecentlyOpened(t *testing.T) {
	adapter := xlsx.NewAdapter()
	adapter.LoadFixture("a.xlsx", xlsx.Fixture{Sheets: map[string]xlsx.Sheet{
		"Sheet1": {{"FromA"}, {1.0}},
	}})
	adapter.LoadFixture("b.xlsx", xlsx.Fixture{Sheets: map[string]xlsx.Sheet{
		"Sheet1": {{"FromB"}, {2.0}},
	}})
	reg := interp.NewRegistry()
	adapter.Register(reg)

	src := "Open workbook \"a.xlsx\".\n" +
		"In sheet \"Sheet1\", treat range A1A2 as table T1.\n" +
		"Open workbook \"b.xlsx\".\n" +
		"In sheet \"Sheet1\", treat range A1A2 as table T2.\n"
	prog := compile(t, src, "s6.eac")

	trace, err := interp.Run(prog, reg, interp.Options{})
	require.NoError(t, err)
	require.Len(t, trace, 4)

	t1 := trace[1].Result.(interp.Table)
	t2 := trace[3].Result.(interp.Table)
	require.Len(t, t1, 1)
	require.Len(t, t2, 1)
	_, hasFromA := t1[0]["FromA"]
	_, hasFromB := t2[0]["FromB"]
	assert.True(t, hasFromA)
	assert.True(t, hasFromB)
}

// Invariant 4 — table.filter returns a subsequence (order preserved, no
// new rows), every kept row satisfying the comparison under coercion.
func TestFilterIsOrderPreservingSubsequence(t *testing.T) {
	adapter := xlsx.NewAdapter()
	reg := interp.NewRegistry()
	adapter.Register(reg)

	table := interp.Table{
		{"Balance": 10.0}, {"Balance": -5.0}, {"Balance": 20.0}, {"Balance": 0.0},
	}
	result, err := reg.Call("table.filter", map[string]any{
		"table": table,
		"condition": map[string]any{
			"type": "comparison", "op": ">",
			"left":  map[string]any{"type": "qualified", "base": "T", "field": "Balance"},
			"right": 0.0,
		},
	})
	require.NoError(t, err)
	out := result.(interp.Table)
	require.Len(t, out, 2)
	assert.Equal(t, 10.0, out[0]["Balance"])
	assert.Equal(t, 20.0, out[1]["Balance"])
}

// Invariant 5 — table.sort is a stable permutation; sorting ascending
// then reversing equals sorting descending.
func TestSortStableAndReversible(t *testing.T) {
	adapter := xlsx.NewAdapter()
	reg := interp.NewRegistry()
	adapter.Register(reg)

	table := interp.Table{
		{"k": "b", "seq": 1.0}, {"k": "a", "seq": 2.0}, {"k": "a", "seq": 3.0}, {"k": nil, "seq": 4.0},
	}

	asc, err := reg.Call("table.sort", map[string]any{"table": table, "by": "k", "ascending": true})
	require.NoError(t, err)
	ascTable := asc.(interp.Table)
	// nil sorts first; "a" rows keep their relative order (2 before 3).
	assert.Nil(t, ascTable[0]["k"])
	assert.Equal(t, "a", ascTable[1]["k"])
	assert.Equal(t, 2.0, ascTable[1]["seq"])
	assert.Equal(t, "a", ascTable[2]["k"])
	assert.Equal(t, 3.0, ascTable[2]["seq"])

	desc, err := reg.Call("table.sort", map[string]any{"table": table, "by": "k", "ascending": false})
	require.NoError(t, err)
	descTable := desc.(interp.Table)

	reversed := make(interp.Table, len(ascTable))
	for i, row := range ascTable {
		reversed[len(ascTable)-1-i] = row
	}
	assert.Equal(t, reversed, descTable)
}

func TestAddColumnBroadcastsConstant(t *testing.T) {
	adapter := xlsx.NewAdapter()
	reg := interp.NewRegistry()
	adapter.Register(reg)

	table := interp.Table{{"x": 1.0}, {"x": 2.0}}
	result, err := reg.Call("table.add_column", map[string]any{
		"table": table, "name": "flag", "expr": true,
	})
	require.NoError(t, err)
	out := result.(interp.Table)
	for _, row := range out {
		assert.Equal(t, true, row["flag"])
	}
}

func TestHeaderBlankSubstitution(t *testing.T) {
	adapter := xlsx.NewAdapter()
	adapter.LoadFixture("h.xlsx", xlsx.Fixture{Sheets: map[string]xlsx.Sheet{
		"S": {{"Name", "", nil}, {"Alice", 1.0, 2.0}},
	}})
	reg := interp.NewRegistry()
	adapter.Register(reg)

	handle, err := reg.Call("excel.open_workbook", map[string]any{"path": "h.xlsx"})
	require.NoError(t, err)
	result, err := reg.Call("excel.read_table", map[string]any{
		"workbook": handle, "sheet": "S", "range": "A1C2",
	})
	require.NoError(t, err)
	table := result.(interp.Table)
	require.Len(t, table, 1)
	assert.Equal(t, "Alice", table[0]["Name"])
	assert.Equal(t, 1.0, table[0]["_c1"])
	assert.Equal(t, 2.0, table[0]["_c2"])
}
