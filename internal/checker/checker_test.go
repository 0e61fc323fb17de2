package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eac-lang/eac/internal/checker"
	"github.com/eac-lang/eac/internal/keyword"
	"github.com/eac-lang/eac/internal/lexer"
	"github.com/eac-lang/eac/internal/parser"
)

// S3 — Checker rejects undeclared table.
func TestRejectsUndeclaredTable(t *testing.T) {
	toks, err := lexer.New("Filter MissingTable where MissingTable.x > 0.\n", "s3.eac", keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, "s3.eac")
	require.NoError(t, err)

	err = checker.Check(prog)
	require.Error(t, err)
	var tcErr *checker.TypeCheckError
	require.ErrorAs(t, err, &tcErr)
	assert.Contains(t, tcErr.Message, "MissingTable")
	assert.Contains(t, tcErr.Message, "not defined")
}

func TestTableDeclaredByTreatRangeThenFiltered(t *testing.T) {
	src := "In sheet \"S\", treat range A1B3 as table Invoices.\n" +
		"Filter Invoices where Invoices.Amount > 0.\n"
	toks, err := lexer.New(src, "ok.eac", keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, "ok.eac")
	require.NoError(t, err)
	assert.NoError(t, checker.Check(prog))
}

func TestForEachLoopVarDoesNotLeak(t *testing.T) {
	src := "In sheet \"S\", treat range A1B3 as table Invoices.\n" +
		"For each inv in Invoices:\n" +
		"    Set v to inv.Amount.\n" +
		"Set w to inv.Amount.\n"
	toks, err := lexer.New(src, "leak.eac", keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, "leak.eac")
	require.NoError(t, err)

	err = checker.Check(prog)
	require.Error(t, err)
	var tcErr *checker.TypeCheckError
	require.ErrorAs(t, err, &tcErr)
	assert.Contains(t, tcErr.Message, "inv")
}

func TestTreatRangeThenExportTable(t *testing.T) {
	src := "In sheet \"S\", treat range A1B3 as table T.\nExport T to \"out.csv\".\n"
	toks, err := lexer.New(src, "exp.eac", keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, "exp.eac")
	require.NoError(t, err)
	assert.NoError(t, checker.Check(prog))
}

func TestCallResultRequiresPriorDeclaration(t *testing.T) {
	toks, err := lexer.New("Call result total.\n", "cr.eac", keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, "cr.eac")
	require.NoError(t, err)

	err = checker.Check(prog)
	require.Error(t, err)
	var tcErr *checker.TypeCheckError
	require.ErrorAs(t, err, &tcErr)
	assert.Contains(t, tcErr.Message, "total")
}
