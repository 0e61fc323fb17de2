// Package lower performs the single AST → IR lowering pass: each checked
// statement becomes at most one top-level ir.Step (loop bodies nest inside
// their control.for_each step), every step with a monotonically
// increasing, globally unique step id.
package lower

import (
	"github.com/eac-lang/eac/internal/ast"
	"github.com/eac-lang/eac/internal/ir"
)

// CurrentWorkbookEnvKey is the reserved environment key that holds the
// handle most recently returned by excel.open_workbook. internal/interp
// injects it into excel.read_table's args so the adapter never needs a
// process-wide workbook stack.
const CurrentWorkbookEnvKey = "__workbook"

// Lower converts a checked Program into an ir.Program. It assumes prog has
// already passed internal/checker.Check.
func Lower(prog *ast.Program) *ir.Program {
	l := &lowerer{counter: 0}
	steps := make([]*ir.Step, 0, len(prog.Statements))
	for _, stmt := range prog.Statements {
		if s := l.stmtToStep(stmt); s != nil {
			steps = append(steps, s)
		}
	}
	return &ir.Program{
		Version:     ir.Version,
		Steps:       steps,
		ErrorPolicy: ir.ErrorPolicy{Default: "stop"},
		Permissions: []string{},
	}
}

type lowerer struct {
	counter int
}

// nextID advances the shared counter and formats "step_NNN". The counter is
// shared across nested ForEach bodies so ids stay unique and strictly
// increasing across the whole program, loop bodies included.
func (l *lowerer) nextID() string {
	l.counter++
	return ir.NextStepID(l.counter)
}

func (l *lowerer) stmtToStep(stmt ast.Stmt) *ir.Step {
	switch s := stmt.(type) {
	case *ast.OpenWorkbook:
		// The opened handle is threaded through env under a reserved key
		// instead of living on a process-wide stack, so a later
		// read_table can address "the most recently opened workbook"
		// without any global mutable state (see DESIGN.md).
		return &ir.Step{
			ID: l.nextID(), Op: "excel.open_workbook",
			Args:       map[string]ir.Value{"path": ir.Str("string", s.Path)},
			Result:     CurrentWorkbookEnvKey,
			ResultType: "workbook",
		}
	case *ast.TreatRangeAsTable:
		return &ir.Step{
			ID: l.nextID(), Op: "excel.read_table",
			Args: map[string]ir.Value{
				"sheet": ir.Str("string", s.Sheet),
				"range": ir.Str("string", s.RangeSpec),
			},
			Result:     s.TableName,
			ResultType: "table",
		}
	case *ast.SetVar:
		return &ir.Step{
			ID: l.nextID(), Op: "set_var",
			Args: map[string]ir.Value{
				"name":  ir.Raw(s.Name),
				"value": l.exprToValue(s.Expr),
			},
			Result: s.Name,
		}
	case *ast.AddColumn:
		return &ir.Step{
			ID: l.nextID(), Op: "table.add_column",
			Args: map[string]ir.Value{
				"table": ir.Raw(s.Table),
				"name":  ir.Raw(s.ColumnName),
				"expr":  l.exprToValue(s.Expr),
			},
			Result:     s.Table,
			ResultType: "table",
		}
	case *ast.FilterTable:
		return &ir.Step{
			ID: l.nextID(), Op: "table.filter",
			Args: map[string]ir.Value{
				"table":     ir.Raw(s.Table),
				"condition": l.exprToValue(s.Condition),
			},
			Result:     s.Table,
			ResultType: "table",
		}
	case *ast.SortTable:
		return &ir.Step{
			ID: l.nextID(), Op: "table.sort",
			Args: map[string]ir.Value{
				"table":     ir.Raw(s.Table),
				"by":        l.exprToValue(s.By),
				"ascending": ir.Raw(s.Ascending),
			},
			Result:     s.Table,
			ResultType: "table",
		}
	case *ast.ExportTable:
		return &ir.Step{
			ID: l.nextID(), Op: "excel.export",
			Args: map[string]ir.Value{
				"source": l.exprToValue(s.Source),
				"path":   ir.Str("string", s.Path),
			},
		}
	case *ast.CallResult:
		return &ir.Step{
			ID: l.nextID(), Op: "call_result",
			Args:   map[string]ir.Value{"name": ir.Raw(s.Name)},
			Result: s.Name,
		}
	case *ast.UseSystem:
		return &ir.Step{
			ID: l.nextID(), Op: "web.use_system",
			Args: map[string]ir.Value{
				"name":    ir.Str("string", s.Name),
				"version": ir.Str("string", s.Version),
			},
		}
	case *ast.LogIn:
		return &ir.Step{
			ID: l.nextID(), Op: "web.login",
			Args: map[string]ir.Value{"credential": ir.Str("string", s.Credential)},
		}
	case *ast.LogOut:
		return &ir.Step{ID: l.nextID(), Op: "web.logout", Args: map[string]ir.Value{}}
	case *ast.GoToPage:
		return &ir.Step{
			ID: l.nextID(), Op: "web.goto_page",
			Args: map[string]ir.Value{"page": ir.Str("string", s.Page)},
		}
	case *ast.EnterField:
		return &ir.Step{
			ID: l.nextID(), Op: "web.enter",
			Args: map[string]ir.Value{
				"field": ir.Str("string", s.Selector),
				"value": l.exprToValue(s.Value),
			},
		}
	case *ast.ClickElement:
		return &ir.Step{
			ID: l.nextID(), Op: "web.click",
			Args: map[string]ir.Value{"element": ir.Str("string", s.Selector)},
		}
	case *ast.ExtractField:
		return &ir.Step{
			ID: l.nextID(), Op: "web.extract",
			Args: map[string]ir.Value{
				"mode":     ir.Raw(s.Mode),
				"selector": ir.Str("string", s.Selector),
			},
			Result: s.Var,
		}
	case *ast.ForEach:
		// The wrapper takes its id before its body steps so ids increase in
		// program order.
		id := l.nextID()
		body := make([]*ir.Step, 0, len(s.Body))
		for _, inner := range s.Body {
			if step := l.stmtToStep(inner); step != nil {
				body = append(body, step)
			}
		}
		loopVar := s.Var
		if loopVar == "" {
			loopVar = "row"
		}
		return &ir.Step{
			ID: id, Op: "control.for_each",
			Args: map[string]ir.Value{
				"var":        ir.Raw(loopVar),
				"collection": l.exprToValue(s.Collection),
				"body":       ir.ForEachBody(body),
			},
		}
	case *ast.Comment, *ast.IfElse, *ast.OnError:
		// Reserved: checked for scope correctness but lowers to nothing.
		return nil
	default:
		return nil
	}
}

// exprToValue lowers an ast.Expr to its tagged ir.Value shape.
func (l *lowerer) exprToValue(expr ast.Expr) ir.Value {
	switch e := expr.(type) {
	case nil:
		return ir.Unknown()
	case *ast.NumberLit:
		return ir.Num(e.Value)
	case *ast.StringLit:
		return ir.Str("string", e.Value)
	case *ast.MoneyLit:
		return ir.Money(e.Currency, e.Amount)
	case *ast.DateLit:
		return ir.Str("date", e.ISO)
	case *ast.Identifier:
		return ir.Ref(e.Name)
	case *ast.QualifiedRef:
		return ir.Qualified(e.BaseName, e.Field)
	case *ast.Comparison:
		return ir.Comparison(l.exprToValue(e.Left), e.Op.String(), l.exprToValue(e.Right))
	case *ast.BinaryExpr:
		return ir.Binary(l.exprToValue(e.Left), e.Op.String(), l.exprToValue(e.Right))
	case *ast.NotExpr:
		return ir.Not(l.exprToValue(e.Inner))
	default:
		return ir.Unknown()
	}
}
