package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eac-lang/eac/internal/ast"
	"github.com/eac-lang/eac/internal/keyword"
	"github.com/eac-lang/eac/internal/lexer"
	"github.com/eac-lang/eac/internal/parser"
)

func parseSource(t *testing.T, src, path string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src, path, keyword.Table()).All()
	require.NoError(t, err)
	prog, err := parser.ParseProgram(toks, path)
	require.NoError(t, err)
	return prog
}

// S2 — Parser sentence with currency.
func TestFilterWithMoneyLiteral(t *testing.T) {
	prog := parseSource(t, `Filter OpenItems where OpenItems.Balance > USD 0.00.`+"\n", "s2.eac")
	require.Len(t, prog.Statements, 1)
	ft, ok := prog.Statements[0].(*ast.FilterTable)
	require.True(t, ok)
	assert.Equal(t, "OpenItems", ft.Table)

	cmp, ok := ft.Condition.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.OpGT, cmp.Op)

	qref, ok := cmp.Left.(*ast.QualifiedRef)
	require.True(t, ok)
	assert.Equal(t, "OpenItems", qref.BaseName)
	assert.Equal(t, "Balance", qref.Field)

	money, ok := cmp.Right.(*ast.MoneyLit)
	require.True(t, ok)
	assert.Equal(t, "USD", money.Currency)
	assert.Equal(t, "0.00", money.Amount)
}

func TestOpenWorkbookAndTreatRangeAsTable(t *testing.T) {
	prog := parseSource(t, "Open workbook \"data.xlsx\".\nIn sheet \"Data\", treat range A1C4 as table T.\n", "p.eac")
	require.Len(t, prog.Statements, 2)
	ow, ok := prog.Statements[0].(*ast.OpenWorkbook)
	require.True(t, ok)
	assert.Equal(t, "data.xlsx", ow.Path)

	tr, ok := prog.Statements[1].(*ast.TreatRangeAsTable)
	require.True(t, ok)
	assert.Equal(t, "Data", tr.Sheet)
	assert.Equal(t, "A1C4", tr.RangeSpec)
	assert.Equal(t, "T", tr.TableName)
}

func TestForEachRowScope(t *testing.T) {
	src := "In sheet \"S\", treat range A1B3 as table Invoices.\nFor each row in Invoices:\n    Set v to row.Amount.\n"
	prog := parseSource(t, src, "f.eac")
	require.Len(t, prog.Statements, 2)
	fe, ok := prog.Statements[1].(*ast.ForEach)
	require.True(t, ok)
	assert.Equal(t, "row", fe.Var)
	require.Len(t, fe.Body, 1)
	sv, ok := fe.Body[0].(*ast.SetVar)
	require.True(t, ok)
	assert.Equal(t, "v", sv.Name)
	qref, ok := sv.Expr.(*ast.QualifiedRef)
	require.True(t, ok)
	assert.Equal(t, "row", qref.BaseName)
	assert.Equal(t, "Amount", qref.Field)
}

func TestSortTableDirection(t *testing.T) {
	prog := parseSource(t, "Sort T by T.Balance (descending).\n", "srt.eac")
	st, ok := prog.Statements[0].(*ast.SortTable)
	require.True(t, ok)
	assert.False(t, st.Ascending)
}

func TestNotExpression(t *testing.T) {
	prog := parseSource(t, "Filter T where not T.Flag.\n", "n.eac")
	ft := prog.Statements[0].(*ast.FilterTable)
	not, ok := ft.Condition.(*ast.NotExpr)
	require.True(t, ok)
	_, ok = not.Inner.(*ast.QualifiedRef)
	require.True(t, ok)
}

func TestDotDisambiguationBetweenQualifiedRefAndTerminator(t *testing.T) {
	prog := parseSource(t, "Filter T where T.Balance > 0.\n", "q.eac")
	ft := prog.Statements[0].(*ast.FilterTable)
	cmp := ft.Condition.(*ast.Comparison)
	_, ok := cmp.Right.(*ast.NumberLit)
	require.True(t, ok)
}

func TestUnexpectedTokenIsParseError(t *testing.T) {
	toks, err := lexer.New("Filter T where.\n", "bad.eac", keyword.Table()).All()
	require.NoError(t, err)
	_, err = parser.ParseProgram(toks, "bad.eac")
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.eac", perr.Path)
}

func TestLogInOutAndWebStatements(t *testing.T) {
	src := "Use system \"Portal\" version \"1.0\".\n" +
		"Log in as credential \"svc-acct\".\n" +
		"Go to page \"https://example.com\".\n" +
		"Enter \"#name\" = \"Alice\".\n" +
		"Click \"#submit\".\n" +
		"Extract total from field \"#total\".\n" +
		"Log out.\n"
	prog := parseSource(t, src, "web.eac")
	require.Len(t, prog.Statements, 7)
	_, ok := prog.Statements[0].(*ast.UseSystem)
	require.True(t, ok)
	_, ok = prog.Statements[1].(*ast.LogIn)
	require.True(t, ok)
	_, ok = prog.Statements[2].(*ast.GoToPage)
	require.True(t, ok)
	ef, ok := prog.Statements[3].(*ast.EnterField)
	require.True(t, ok)
	assert.Equal(t, "#name", ef.Selector)
	_, ok = prog.Statements[4].(*ast.ClickElement)
	require.True(t, ok)
	xf, ok := prog.Statements[5].(*ast.ExtractField)
	require.True(t, ok)
	assert.Equal(t, "field", xf.Mode)
	_, ok = prog.Statements[6].(*ast.LogOut)
	require.True(t, ok)
}
