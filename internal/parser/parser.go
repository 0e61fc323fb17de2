// Package parser implements a recursive-descent parser over the eac
// sentence grammar: one production per statement pattern, dispatched by
// the leading KEYWORD token.
//
// CONVENTION: every parseXxx function for a statement expects the cursor
// positioned on the statement's leading keyword, and returns with the
// cursor positioned just after the statement's terminating DOT (or, for
// block statements, after the closing DEDENT of the body). Expression
// parsers expect the cursor on the first token of the expression and
// return positioned just after the last token consumed.
package parser

import (
	"fmt"

	"github.com/eac-lang/eac/internal/ast"
	"github.com/eac-lang/eac/internal/token"
)

// Error is a parse-time failure: an unexpected token where a particular
// kind/value was required.
type Error struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

var currencyWords = map[string]struct{}{"USD": {}, "EUR": {}, "GBP": {}}

type Parser struct {
	toks []token.Token
	pos  int
	path string
}

// New constructs a parser over an already-tokenized source.
func New(toks []token.Token, path string) *Parser {
	return &Parser{toks: toks, path: path}
}

// ParseProgram parses the whole token stream into a Program.
func ParseProgram(toks []token.Token, path string) (*ast.Program, error) {
	return New(toks, path).ParseProgram()
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) atKeyword(word string) bool {
	t := p.peek()
	return t.Kind == token.KEYWORD && t.Value == word
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	t := p.advance()
	if t.Kind != kind {
		return t, p.errf(t, "expected %s, got %s", kind, describeToken(t))
	}
	return t, nil
}

func (p *Parser) expectKeyword(word string) (token.Token, error) {
	t := p.advance()
	if t.Kind != token.KEYWORD || t.Value != word {
		return t, p.errf(t, "expected keyword %q, got %s", word, describeToken(t))
	}
	return t, nil
}

func describeToken(t token.Token) string {
	if t.Value == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
}

func (p *Parser) errf(t token.Token, format string, args ...interface{}) *Error {
	return &Error{Path: p.path, Line: t.Line, Column: t.Column, Message: fmt.Sprintf(format, args...)}
}

func pos(path string, t token.Token) ast.Pos {
	return ast.Pos{Path: path, Line: t.Line, Column: t.Column}
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// ParseProgram is the top-level entry point.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{Path: p.path}
	for !p.at(token.EOF) {
		p.skipNewlines()
		if p.at(token.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	t := p.peek()
	if t.Kind != token.KEYWORD {
		if t.Kind == token.NEWLINE {
			p.advance()
			return nil, nil
		}
		return nil, p.errf(t, "unexpected token %s, expected a statement", describeToken(t))
	}

	switch t.Value {
	case "For":
		return p.parseForEach()
	case "Open":
		return p.parseOpenWorkbook()
	case "In":
		return p.parseTreatRangeAsTable()
	case "Set":
		return p.parseSetVar()
	case "Call":
		return p.parseCallResult()
	case "Add":
		return p.parseAddColumn()
	case "Filter":
		return p.parseFilterTable()
	case "Sort":
		return p.parseSortTable()
	case "Export":
		return p.parseExportTable()
	case "Use":
		return p.parseUseSystem()
	case "Log":
		return p.parseLogInOut()
	case "Go":
		return p.parseGoToPage()
	case "Enter":
		return p.parseEnterField()
	case "Click":
		return p.parseClickElement()
	case "Extract":
		return p.parseExtractField()
	case "If":
		return p.parseIfElse()
	case "On":
		return p.parseOnError()
	default:
		return nil, p.errf(t, "unexpected keyword %q, expected a statement", t.Value)
	}
}

func (p *Parser) parseOpenWorkbook() (ast.Stmt, error) {
	start := p.advance() // Open
	if _, err := p.expectKeyword("workbook"); err != nil {
		return nil, err
	}
	pathTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.OpenWorkbook{Node: ast.At(pos(p.path, start)), Path: pathTok.Value}, nil
}

func (p *Parser) parseTreatRangeAsTable() (ast.Stmt, error) {
	start := p.advance() // In
	if _, err := p.expectKeyword("sheet"); err != nil {
		return nil, err
	}
	sheetTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("treat"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("range"); err != nil {
		return nil, err
	}
	// Range spec is an IDENT, either "A1B2" or the colon form "A1:G999"
	// (the lexer canonicalizes the latter into a single IDENT; see
	// internal/lexer's range-canonicalization design).
	var rangeTok token.Token
	if p.at(token.IDENT) {
		rangeTok, _ = p.expect(token.IDENT)
	} else {
		return nil, p.errf(p.peek(), "expected a range spec, got %s", describeToken(p.peek()))
	}
	if _, err := p.expectKeyword("as"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("table"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.TreatRangeAsTable{
		Node:      ast.At(pos(p.path, start)),
		Sheet:     sheetTok.Value,
		RangeSpec: rangeTok.Value,
		TableName: nameTok.Value,
	}, nil
}

func (p *Parser) parseSetVar() (ast.Stmt, error) {
	start := p.advance() // Set
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.SetVar{Node: ast.At(pos(p.path, start)), Name: nameTok.Value, Expr: expr}, nil
}

func (p *Parser) parseCallResult() (ast.Stmt, error) {
	start := p.advance() // Call
	if _, err := p.expectKeyword("result"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.CallResult{Node: ast.At(pos(p.path, start)), Name: nameTok.Value}, nil
}

func (p *Parser) parseAddColumn() (ast.Stmt, error) {
	start := p.advance() // Add
	if _, err := p.expectKeyword("column"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("as"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.AddColumn{
		Node:       ast.At(pos(p.path, start)),
		Table:      tableTok.Value,
		ColumnName: nameTok.Value,
		Expr:       expr,
	}, nil
}

func (p *Parser) parseFilterTable() (ast.Stmt, error) {
	start := p.advance() // Filter
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("where"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.FilterTable{Node: ast.At(pos(p.path, start)), Table: tableTok.Value, Condition: cond}, nil
}

func (p *Parser) parseSortTable() (ast.Stmt, error) {
	start := p.advance() // Sort
	tableTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("by"); err != nil {
		return nil, err
	}
	by, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	dirTok := p.advance()
	var ascending bool
	switch {
	case dirTok.Kind == token.KEYWORD && dirTok.Value == "ascending":
		ascending = true
	case dirTok.Kind == token.KEYWORD && dirTok.Value == "descending":
		ascending = false
	default:
		return nil, p.errf(dirTok, "expected 'ascending' or 'descending', got %s", describeToken(dirTok))
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.SortTable{Node: ast.At(pos(p.path, start)), Table: tableTok.Value, By: by, Ascending: ascending}, nil
}

func (p *Parser) parseExportTable() (ast.Stmt, error) {
	start := p.advance() // Export
	source, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	pathTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.ExportTable{Node: ast.At(pos(p.path, start)), Source: source, Path: pathTok.Value}, nil
}

func (p *Parser) parseUseSystem() (ast.Stmt, error) {
	start := p.advance() // Use
	if _, err := p.expectKeyword("system"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("version"); err != nil {
		return nil, err
	}
	verTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.UseSystem{Node: ast.At(pos(p.path, start)), Name: nameTok.Value, Version: verTok.Value}, nil
}

func (p *Parser) parseLogInOut() (ast.Stmt, error) {
	start := p.advance() // Log
	dir, err := p.expect(token.KEYWORD)
	if err != nil {
		return nil, err
	}
	switch dir.Value {
	case "out":
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return &ast.LogOut{Node: ast.At(pos(p.path, start))}, nil
	case "in":
		if _, err := p.expectKeyword("as"); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("credential"); err != nil {
			return nil, err
		}
		credTok, err := p.expect(token.STRING)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		return &ast.LogIn{Node: ast.At(pos(p.path, start)), Credential: credTok.Value}, nil
	default:
		return nil, p.errf(dir, "expected 'in' or 'out' after 'Log', got %q", dir.Value)
	}
}

func (p *Parser) parseGoToPage() (ast.Stmt, error) {
	start := p.advance() // Go
	if _, err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("page"); err != nil {
		return nil, err
	}
	pageTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.GoToPage{Node: ast.At(pos(p.path, start)), Page: pageTok.Value}, nil
}

func (p *Parser) parseEnterField() (ast.Stmt, error) {
	start := p.advance() // Enter
	selTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQ); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.EnterField{Node: ast.At(pos(p.path, start)), Selector: selTok.Value, Value: value}, nil
}

func (p *Parser) parseClickElement() (ast.Stmt, error) {
	start := p.advance() // Click
	selTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.ClickElement{Node: ast.At(pos(p.path, start)), Selector: selTok.Value}, nil
}

func (p *Parser) parseExtractField() (ast.Stmt, error) {
	start := p.advance() // Extract
	varTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	kindTok := p.advance()
	if kindTok.Kind != token.KEYWORD || (kindTok.Value != "field" && kindTok.Value != "element") {
		return nil, p.errf(kindTok, "expected 'field' or 'element', got %s", describeToken(kindTok))
	}
	selTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.ExtractField{
		Node:     ast.At(pos(p.path, start)),
		Var:      varTok.Value,
		Mode:     kindTok.Value,
		Selector: selTok.Value,
	}, nil
}

func (p *Parser) parseForEach() (ast.Stmt, error) {
	start := p.advance() // For
	if _, err := p.expectKeyword("each"); err != nil {
		return nil, err
	}
	var varName string
	if p.atKeyword("row") {
		p.advance()
		varName = "row"
	} else {
		varTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		varName = varTok.Value
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	collection, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForEach{Node: ast.At(pos(p.path, start)), Var: varName, Collection: collection, Body: body}, nil
}

func (p *Parser) parseIfElse() (ast.Stmt, error) {
	start := p.advance() // If
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Stmt
	if p.atKeyword("Else") {
		p.advance()
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfElse{Node: ast.At(pos(p.path, start)), Condition: cond, Then: thenBody, Else: elseBody}, nil
}

var errorActionByWord = map[string]ast.ErrorAction{
	"retry":    ast.ActionRetry,
	"skip":     ast.ActionSkip,
	"stop":     ast.ActionStop,
	"continue": ast.ActionContinue,
	"escalate": ast.ActionEscalate,
}

func (p *Parser) parseOnError() (ast.Stmt, error) {
	start := p.advance() // On
	if _, err := p.expectKeyword("Error"); err != nil {
		return nil, err
	}
	actionTok := p.advance()
	action, ok := errorActionByWord[actionTok.Value]
	if !ok {
		return nil, p.errf(actionTok, "expected an error action (retry/skip/stop/continue/escalate), got %s", describeToken(actionTok))
	}
	var arg string
	if p.at(token.STRING) {
		argTok, _ := p.expect(token.STRING)
		arg = argTok.Value
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	return &ast.OnError{Node: ast.At(pos(p.path, start)), Action: action, Arg: arg}, nil
}

// parseBlock expects the cursor just after a statement's COLON, and parses
// a NEWLINE INDENT statement+ DEDENT body.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	p.skipNewlines()
	var body []ast.Stmt
	if !p.at(token.INDENT) {
		return body, nil
	}
	p.advance() // INDENT
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		p.skipNewlines()
		if p.at(token.DEDENT) || p.at(token.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
		p.skipNewlines()
	}
	if p.at(token.DEDENT) {
		p.advance()
	}
	return body, nil
}

// ---- Expressions --------------------------------------------------------
//
// Precedence, low to high: or, and, (optional single comparison), not,
// primary. `not` binds tighter than a comparison so that `not T.Flag` can
// itself be compared, and looser than primary so it can prefix a
// parenthesized expression.

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		opTok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Node: ast.At(pos(p.path, opTok)), Left: left, Op: ast.OpOr, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		opTok := p.advance()
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Node: ast.At(pos(p.path, opTok)), Left: left, Op: ast.OpAnd, Right: right}
	}
	return left, nil
}

var compareOpByKind = map[token.Kind]ast.CompareOp{
	token.EQ:  ast.OpEQ,
	token.NE:  ast.OpNE,
	token.GT:  ast.OpGT,
	token.LT:  ast.OpLT,
	token.GTE: ast.OpGTE,
	token.LTE: ast.OpLTE,
}

func (p *Parser) parseCompare() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if op, ok := compareOpByKind[p.peek().Kind]; ok {
		opTok := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Comparison{Node: ast.At(pos(p.path, opTok)), Left: left, Op: op, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if p.atKeyword("not") {
		opTok := p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Node: ast.At(pos(p.path, opTok)), Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.peek()

	switch {
	case t.Kind == token.NUMBER:
		p.advance()
		return &ast.NumberLit{Node: ast.At(pos(p.path, t)), Value: t.Value}, nil

	case t.Kind == token.STRING:
		p.advance()
		return &ast.StringLit{Node: ast.At(pos(p.path, t)), Value: t.Value}, nil

	case t.Kind == token.KEYWORD && t.Value == "row" && p.peekAt(1).Kind == token.DOT && p.peekAt(2).Kind == token.IDENT:
		p.advance() // row
		p.advance() // .
		field, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.QualifiedRef{Node: ast.At(pos(p.path, t)), BaseName: "row", Field: field.Value}, nil

	case (t.Kind == token.KEYWORD || t.Kind == token.IDENT) && isCurrencyWord(t.Value) && p.peekAt(1).Kind == token.NUMBER:
		p.advance() // currency
		amount, err := p.expect(token.NUMBER)
		if err != nil {
			return nil, err
		}
		return &ast.MoneyLit{Node: ast.At(pos(p.path, t)), Currency: t.Value, Amount: amount.Value}, nil

	case t.Kind == token.KEYWORD && t.Value == "date":
		p.advance()
		dateTok, err := p.expect(token.STRING)
		if err != nil {
			return nil, err
		}
		return &ast.DateLit{Node: ast.At(pos(p.path, t)), ISO: dateTok.Value}, nil

	case t.Kind == token.IDENT:
		p.advance()
		// Only consume '.' inside an expression when it is followed by
		// IDENT; otherwise it is left for the statement terminator.
		if p.at(token.DOT) && p.peekAt(1).Kind == token.IDENT {
			p.advance() // .
			field, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			return &ast.QualifiedRef{Node: ast.At(pos(p.path, t)), BaseName: t.Value, Field: field.Value}, nil
		}
		return &ast.Identifier{Node: ast.At(pos(p.path, t)), Name: t.Value}, nil

	case t.Kind == token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errf(t, "expected expression, got %s", describeToken(t))
	}
}

func isCurrencyWord(v string) bool {
	_, ok := currencyWords[v]
	return ok
}
