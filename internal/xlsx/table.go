package xlsx

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/eac-lang/eac/internal/interp"
)

// addColumn implements table.add_column(table, name, expr): expr is a
// resolved constant, broadcast onto every row.
func (a *Adapter) addColumn(args map[string]any) (any, error) {
	table, _ := args["table"].(interp.Table)
	name, _ := args["name"].(string)
	expr := args["expr"]
	for _, row := range table {
		row[name] = expr
	}
	return table, nil
}

// filter implements table.filter(table, condition) for two condition
// shapes: a single comparison, or `not` of a qualified field reference.
// Any other condition shape returns the table unchanged.
func (a *Adapter) filter(args map[string]any) (any, error) {
	table, _ := args["table"].(interp.Table)
	condition, _ := args["condition"].(map[string]any)
	if table == nil || condition == nil {
		return table, nil
	}

	switch condition["type"] {
	case "not":
		inner, _ := condition["expr"].(map[string]any)
		field := qualifiedFieldOf(inner)
		if field == "" {
			return table, nil
		}
		var out interp.Table
		for _, row := range table {
			if !truthy(row[field]) {
				out = append(out, row)
			}
		}
		return out, nil
	case "comparison":
		left, _ := condition["left"].(map[string]any)
		field := qualifiedFieldOf(left)
		op, _ := condition["op"].(string)
		right := condition["right"]
		if field == "" || op == "" {
			return table, nil
		}
		var out interp.Table
		for _, row := range table {
			if compareOp(row[field], op, right) {
				out = append(out, row)
			}
		}
		return out, nil
	default:
		return table, nil
	}
}

func qualifiedFieldOf(m map[string]any) string {
	if m == nil {
		return ""
	}
	if m["type"] == "qualified" {
		if f, ok := m["field"].(string); ok {
			return f
		}
	}
	if m["type"] == "ref" {
		if n, ok := m["name"].(string); ok {
			return n
		}
	}
	return ""
}

func compareOp(left any, op string, right any) bool {
	switch op {
	case ">":
		return numericValue(left) > numericValue(right)
	case ">=":
		return numericValue(left) >= numericValue(right)
	case "<":
		return numericValue(left) < numericValue(right)
	case "<=":
		return numericValue(left) <= numericValue(right)
	case "=":
		if left == right {
			return true
		}
		return isNumeric(left) && isNumeric(right) && numericValue(left) == numericValue(right)
	case "!=":
		if left == right {
			return false
		}
		if isNumeric(left) && isNumeric(right) && numericValue(left) == numericValue(right) {
			return false
		}
		return true
	default:
		return true
	}
}

func numericValue(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case int:
		return float64(t)
	case interp.Money:
		f, _ := strconv.ParseFloat(t.Amount, 64)
		return f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func isNumeric(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case float64, int:
		return true
	case interp.Money:
		return true
	case string:
		_, err := strconv.ParseFloat(t, 64)
		return err == nil
	default:
		return false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return len(t) > 0
	default:
		return true
	}
}

// sort implements table.sort(table, by, ascending): a stable permutation
// keyed by the named field, nil sorting before all values, cross-type
// comparisons falling back to stringification. Descending order is the
// exact reverse of the stable ascending order.
func (a *Adapter) sort(args map[string]any) (any, error) {
	table, _ := args["table"].(interp.Table)
	ascending := true
	if v, ok := args["ascending"].(bool); ok {
		ascending = v
	}
	field := fieldOfSortKey(args["by"])
	if field == "" || table == nil {
		return table, nil
	}

	out := make(interp.Table, len(table))
	copy(out, table)
	sort.SliceStable(out, func(i, j int) bool {
		return sortKeyLess(out[i][field], out[j][field])
	})
	if !ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func fieldOfSortKey(by any) string {
	switch v := by.(type) {
	case string:
		return v
	case map[string]any:
		if v["type"] == "qualified" {
			if f, ok := v["field"].(string); ok {
				return f
			}
		}
	}
	return ""
}

// sortKeyLess compares two cell values: nil sorts first, same-type numbers
// compare numerically, and anything else (including number-vs-string) falls
// back to string comparison. See DESIGN.md, Open Question decision 5.
func sortKeyLess(a, b any) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil {
		return true
	}
	if b == nil {
		return false
	}
	if af, aok := a.(float64); aok {
		if bf, bok := b.(float64); bok {
			return af < bf
		}
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}
