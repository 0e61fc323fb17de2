// Package ir defines the JSON-serializable intermediate representation
// produced by internal/lower and consumed by internal/interp.
package ir

import (
	"encoding/json"
	"fmt"
)

// Version is the IR schema version emitted by this lowering pass.
const Version = "0.1.0"

// Program is the root IR artifact: {version, steps, error_policy, permissions}.
type Program struct {
	Version     string      `json:"version"`
	Steps       []*Step     `json:"steps"`
	ErrorPolicy ErrorPolicy `json:"error_policy"`
	Permissions []string    `json:"permissions"`
}

// ErrorPolicy names the fatal-error behavior. "stop" is the only behavior
// this interpreter implements: execution halts at the first fatal error.
type ErrorPolicy struct {
	Default string `json:"default"`
}

// Step is one IR instruction: {id, op, args, result?, result_type?}.
type Step struct {
	ID         string            `json:"id"`
	Op         string            `json:"op"`
	Args       map[string]Value  `json:"args"`
	Result     string            `json:"result,omitempty"`
	ResultType string            `json:"result_type,omitempty"`
}

// Value is a tagged node in an IR arg tree: a literal, a reference, a
// qualified reference, or a deferred boolean/comparison expression —
// a typed alternative to an untyped JSON dict for step args.
type Value struct {
	Type string `json:"type"`

	// literal payloads
	Number string `json:"value,omitempty"` // also used for StringLit/DateLit's "value" key
	String string `json:"-"`

	Currency string `json:"currency,omitempty"`
	Amount   string `json:"amount,omitempty"`

	// ref / qualified
	Name  string `json:"name,omitempty"`
	Base  string `json:"base,omitempty"`
	Field string `json:"field,omitempty"`

	// comparison / binary / not
	Left  *Value `json:"left,omitempty"`
	Op    string `json:"op,omitempty"`
	Right *Value `json:"right,omitempty"`
	Expr  *Value `json:"expr,omitempty"`

	// body carries nested steps for control.for_each.
	Body []*Step `json:"body,omitempty"`

	// raw holds a plain Go value for ad-hoc args (e.g. a sort direction
	// bool) that don't need the full tagged shape.
	raw   any
	isRaw bool
}

// Raw wraps a plain Go value (bool, string, …) as a Value whose JSON
// encoding is exactly that value, with no "type" envelope.
func Raw(v any) Value {
	return Value{raw: v, isRaw: true}
}

// IsRaw reports whether this Value was built with Raw.
func (v Value) IsRaw() bool { return v.isRaw }

// RawValue returns the wrapped value and true if this Value was built with Raw.
func (v Value) RawValue() (any, bool) { return v.raw, v.isRaw }

// String value constructor: StringLit/DateLit both render as {type, value}.
func Str(typ, value string) Value {
	return Value{Type: typ, Number: value}
}

// Num constructs a {type:"number", value} node.
func Num(value string) Value { return Value{Type: "number", Number: value} }

// Money constructs a {type:"money", currency, amount} node.
func Money(currency, amount string) Value {
	return Value{Type: "money", Currency: currency, Amount: amount}
}

// Ref constructs a {type:"ref", name} node.
func Ref(name string) Value { return Value{Type: "ref", Name: name} }

// Qualified constructs a {type:"qualified", base, field} node.
func Qualified(base, field string) Value {
	return Value{Type: "qualified", Base: base, Field: field}
}

// Comparison constructs a {type:"comparison", left, op, right} node.
func Comparison(left Value, op string, right Value) Value {
	return Value{Type: "comparison", Left: &left, Op: op, Right: &right}
}

// Binary constructs a {type:"binary", op, left, right} node.
func Binary(left Value, op string, right Value) Value {
	return Value{Type: "binary", Op: op, Left: &left, Right: &right}
}

// Not constructs a {type:"not", expr} node.
func Not(inner Value) Value {
	return Value{Type: "not", Expr: &inner}
}

// Unknown constructs the fallback {type:"unknown"} node.
func Unknown() Value { return Value{Type: "unknown"} }

// ForEachBody constructs the {type:"body"} carrier used by control.for_each's
// args.body key; it is marshaled as a bare JSON array of steps.
func ForEachBody(steps []*Step) Value {
	return Value{Type: "body", Body: steps}
}

// MarshalJSON renders a Value per its tag: number/string/date as
// {type,value}, money as {type,currency,amount}, ref as {type,name},
// qualified as {type,base,field}, comparison/binary as {type,op,left,right},
// not as {type,expr}, and a raw-wrapped value with no envelope at all.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isRaw {
		return json.Marshal(v.raw)
	}
	switch v.Type {
	case "body":
		return json.Marshal(v.Body)
	case "number", "string", "date":
		return json.Marshal(map[string]any{"type": v.Type, "value": v.Number})
	case "money":
		return json.Marshal(map[string]any{"type": "money", "currency": v.Currency, "amount": v.Amount})
	case "ref":
		return json.Marshal(map[string]any{"type": "ref", "name": v.Name})
	case "qualified":
		return json.Marshal(map[string]any{"type": "qualified", "base": v.Base, "field": v.Field})
	case "comparison":
		return json.Marshal(map[string]any{"type": "comparison", "left": v.Left, "op": v.Op, "right": v.Right})
	case "binary":
		return json.Marshal(map[string]any{"type": "binary", "op": v.Op, "left": v.Left, "right": v.Right})
	case "not":
		return json.Marshal(map[string]any{"type": "not", "expr": v.Expr})
	case "":
		return []byte("null"), nil
	default:
		return json.Marshal(map[string]any{"type": "unknown"})
	}
}

// UnmarshalJSON decodes a Value from its tagged shape, or a bare literal
// (bool/string/number) for Raw-wrapped args.
func (v *Value) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		// Not an object: either a bare array (body) or a raw scalar.
		var arr []*Step
		if err2 := json.Unmarshal(data, &arr); err2 == nil {
			*v = Value{Type: "body", Body: arr}
			return nil
		}
		var raw any
		if err2 := json.Unmarshal(data, &raw); err2 != nil {
			return err
		}
		*v = Raw(raw)
		return nil
	}

	var typ string
	if rawTyp, ok := probe["type"]; ok {
		if err := json.Unmarshal(rawTyp, &typ); err != nil {
			return err
		}
	}

	switch typ {
	case "number", "string", "date":
		var val string
		if raw, ok := probe["value"]; ok {
			if err := json.Unmarshal(raw, &val); err != nil {
				return err
			}
		}
		*v = Value{Type: typ, Number: val}
	case "money":
		var cur, amt string
		_ = json.Unmarshal(probe["currency"], &cur)
		_ = json.Unmarshal(probe["amount"], &amt)
		*v = Money(cur, amt)
	case "ref":
		var name string
		_ = json.Unmarshal(probe["name"], &name)
		*v = Ref(name)
	case "qualified":
		var base, field string
		_ = json.Unmarshal(probe["base"], &base)
		_ = json.Unmarshal(probe["field"], &field)
		*v = Qualified(base, field)
	case "comparison", "binary":
		var left, right Value
		var op string
		_ = json.Unmarshal(probe["op"], &op)
		if raw, ok := probe["left"]; ok {
			if err := json.Unmarshal(raw, &left); err != nil {
				return err
			}
		}
		if raw, ok := probe["right"]; ok {
			if err := json.Unmarshal(raw, &right); err != nil {
				return err
			}
		}
		if typ == "comparison" {
			*v = Comparison(left, op, right)
		} else {
			*v = Binary(left, op, right)
		}
	case "not":
		var inner Value
		if raw, ok := probe["expr"]; ok {
			if err := json.Unmarshal(raw, &inner); err != nil {
				return err
			}
		}
		*v = Not(inner)
	default:
		*v = Unknown()
	}
	return nil
}

// NextStepID formats the n-th step id as "step_NNN".
func NextStepID(n int) string {
	return fmt.Sprintf("step_%03d", n)
}
