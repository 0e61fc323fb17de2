// Package interp runs a lowered ir.Program against a pluggable tool
// registry, maintaining the single per-run environment
// describes.
package interp

import (
	"strconv"

	"github.com/eac-lang/eac/internal/ir"
)

// Row is one spreadsheet row: a mapping from column name to cell value.
type Row map[string]any

// Table is an ordered sequence of rows sharing the same keys.
type Table []Row

// Money mirrors the IR's {currency, amount} literal shape at runtime.
type Money struct {
	Currency string
	Amount   string
}

// Env is the per-run name → value mapping. Its lifetime is one Run call.
type Env map[string]any

// resolve turns a lowered ir.Value into a concrete runtime value, per
// refs and qualified refs are substituted from env
// when they resolve; everything else keeps its tagged shape so a tool can
// still interpret it structurally (e.g. table.filter's condition tree).
func resolve(v ir.Value, env Env) any {
	if raw, ok := v.RawValue(); ok {
		return raw
	}
	switch v.Type {
	case "number":
		if f, err := strconv.ParseFloat(v.Number, 64); err == nil {
			return f
		}
		return v.Number
	case "string", "date":
		return v.Number
	case "money":
		return Money{Currency: v.Currency, Amount: v.Amount}
	case "ref":
		if val, ok := env[v.Name]; ok {
			return val
		}
		return map[string]any{"type": "ref", "name": v.Name}
	case "qualified":
		if base, ok := env[v.Base]; ok {
			if row, ok := base.(Row); ok {
				return row[v.Field]
			}
		}
		return map[string]any{"type": "qualified", "base": v.Base, "field": v.Field}
	case "comparison":
		return map[string]any{
			"type": "comparison", "op": v.Op,
			"left": resolve(*v.Left, env), "right": resolve(*v.Right, env),
		}
	case "binary":
		return map[string]any{
			"type": "binary", "op": v.Op,
			"left": resolve(*v.Left, env), "right": resolve(*v.Right, env),
		}
	case "not":
		return map[string]any{"type": "not", "expr": resolve(*v.Expr, env)}
	default:
		return map[string]any{"type": "unknown"}
	}
}

// resolveArgs resolves every value in a step's Args map.
func resolveArgs(args map[string]ir.Value, env Env) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = resolve(v, env)
	}
	return out
}
