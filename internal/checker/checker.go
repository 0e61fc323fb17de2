// Package checker performs a single static name/scope pass over a parsed
// Program, rejecting statements that reference undeclared tables or
// variables before lowering ever sees them.
package checker

import (
	"fmt"

	"github.com/eac-lang/eac/internal/ast"
)

// TypeCheckError is the sole failure mode of Check. It carries the
// offending name and its source location.
type TypeCheckError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *TypeCheckError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

// kind tags a declared name's role in the symbol table.
type kind int

const (
	kindTable kind = iota + 1
	kindRow
	kindAny
)

// scope is one frame of the symbol table. ForEach pushes a fresh child
// scope for its body so loop-local declarations never leak to the parent.
type scope struct {
	names  map[string]kind
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]kind), parent: parent}
}

func (s *scope) declare(name string, k kind) {
	s.names[name] = k
}

func (s *scope) lookup(name string) (kind, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if k, ok := cur.names[name]; ok {
			return k, true
		}
	}
	return 0, false
}

// Check walks prog once and returns the first TypeCheckError it finds, or
// nil if every name reference resolves.
func Check(prog *ast.Program) error {
	c := &checker{path: prog.Path}
	root := newScope(nil)
	for _, stmt := range prog.Statements {
		if err := c.checkStmt(stmt, root); err != nil {
			return err
		}
	}
	return nil
}

type checker struct {
	path string
}

func (c *checker) errf(pos ast.Pos, format string, args ...any) error {
	return &TypeCheckError{
		Path:    c.path,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (c *checker) checkStmt(stmt ast.Stmt, sc *scope) error {
	switch s := stmt.(type) {
	case *ast.OpenWorkbook:
		return nil
	case *ast.TreatRangeAsTable:
		sc.declare(s.TableName, kindTable)
		return nil
	case *ast.SetVar:
		if err := c.checkExpr(s.Expr, sc); err != nil {
			return err
		}
		sc.declare(s.Name, kindAny)
		return nil
	case *ast.AddColumn:
		if _, ok := sc.lookup(s.Table); !ok {
			return c.errf(s.Pos, "table %q is not defined", s.Table)
		}
		return c.checkExpr(s.Expr, sc)
	case *ast.FilterTable:
		if _, ok := sc.lookup(s.Table); !ok {
			return c.errf(s.Pos, "table %q is not defined", s.Table)
		}
		return c.checkFilterCondition(s.Table, s.Condition, sc)
	case *ast.SortTable:
		if _, ok := sc.lookup(s.Table); !ok {
			return c.errf(s.Pos, "table %q is not defined", s.Table)
		}
		return c.checkExpr(s.By, sc)
	case *ast.GroupTable:
		if _, ok := sc.lookup(s.Table); !ok {
			return c.errf(s.Pos, "table %q is not defined", s.Table)
		}
		return c.checkExpr(s.By, sc)
	case *ast.ExportTable:
		if err := c.checkExpr(s.Source, sc); err != nil {
			return err
		}
		return nil
	case *ast.CallResult:
		if _, ok := sc.lookup(s.Name); !ok {
			return c.errf(s.Pos, "name %q is not defined", s.Name)
		}
		return nil
	case *ast.UseSystem, *ast.LogIn, *ast.LogOut, *ast.GoToPage, *ast.ClickElement:
		return nil
	case *ast.EnterField:
		return c.checkExpr(s.Value, sc)
	case *ast.ExtractField:
		sc.declare(s.Var, kindAny)
		return nil
	case *ast.ForEach:
		if err := c.checkExpr(s.Collection, sc); err != nil {
			return err
		}
		child := newScope(sc)
		loopVar := s.Var
		if loopVar == "" {
			loopVar = "row"
		}
		child.declare(loopVar, kindRow)
		for _, body := range s.Body {
			if err := c.checkStmt(body, child); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfElse:
		if err := c.checkExpr(s.Condition, sc); err != nil {
			return err
		}
		thenScope := newScope(sc)
		for _, body := range s.Then {
			if err := c.checkStmt(body, thenScope); err != nil {
				return err
			}
		}
		elseScope := newScope(sc)
		for _, body := range s.Else {
			if err := c.checkStmt(body, elseScope); err != nil {
				return err
			}
		}
		return nil
	case *ast.OnError:
		return nil
	case *ast.Comment:
		return nil
	default:
		return nil
	}
}

// checkFilterCondition allows the filtered table's own name (or "row") to
// appear as a qualified base without a prior declaration of that exact
// binding — filter conditions address the table being filtered implicitly.
func (c *checker) checkFilterCondition(table string, cond ast.Expr, sc *scope) error {
	switch e := cond.(type) {
	case *ast.QualifiedRef:
		if e.BaseName == table || e.BaseName == "row" {
			return nil
		}
		return c.checkExpr(e, sc)
	case *ast.Comparison:
		if _, isIdent := e.Left.(*ast.Identifier); isIdent {
			if err := c.checkExpr(e.Left, sc); err != nil {
				return err
			}
		} else if err := c.checkFilterOperand(table, e.Left, sc); err != nil {
			return err
		}
		return c.checkFilterOperand(table, e.Right, sc)
	case *ast.BinaryExpr:
		if err := c.checkFilterCondition(table, e.Left, sc); err != nil {
			return err
		}
		return c.checkFilterCondition(table, e.Right, sc)
	case *ast.NotExpr:
		return c.checkFilterCondition(table, e.Inner, sc)
	default:
		return c.checkExpr(cond, sc)
	}
}

// checkFilterOperand tolerates a bare literal or undeclared identifier on
// the right of a comparison inside a filter condition.
func (c *checker) checkFilterOperand(table string, e ast.Expr, sc *scope) error {
	switch v := e.(type) {
	case *ast.QualifiedRef:
		if v.BaseName == table || v.BaseName == "row" {
			return nil
		}
		return c.checkExpr(v, sc)
	case *ast.NumberLit, *ast.StringLit, *ast.MoneyLit, *ast.DateLit:
		return nil
	case *ast.Identifier:
		return nil
	default:
		return c.checkExpr(e, sc)
	}
}

func (c *checker) checkExpr(expr ast.Expr, sc *scope) error {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.NumberLit, *ast.StringLit, *ast.MoneyLit, *ast.DateLit:
		return nil
	case *ast.Identifier:
		if _, ok := sc.lookup(e.Name); !ok {
			return c.errf(e.Pos, "%q is not defined", e.Name)
		}
		return nil
	case *ast.QualifiedRef:
		if e.BaseName == "row" {
			return nil
		}
		if _, ok := sc.lookup(e.BaseName); !ok {
			return c.errf(e.Pos, "%q is not defined", e.BaseName)
		}
		return nil
	case *ast.Comparison:
		if err := c.checkExpr(e.Left, sc); err != nil {
			return err
		}
		return c.checkExpr(e.Right, sc)
	case *ast.BinaryExpr:
		if err := c.checkExpr(e.Left, sc); err != nil {
			return err
		}
		return c.checkExpr(e.Right, sc)
	case *ast.NotExpr:
		return c.checkExpr(e.Inner, sc)
	default:
		return nil
	}
}
