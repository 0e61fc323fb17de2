// Package ast defines the syntax tree produced by internal/parser and
// consumed by internal/checker and internal/lower.
package ast

import "github.com/eac-lang/eac/internal/token"

// Pos is the source location a node was parsed from.
type Pos = token.Pos

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
	Position() Pos
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
	Position() Pos
}

// Node embeds a Pos and supplies Position() for every concrete node. It is
// exported so that other packages (internal/parser, internal/lower) can
// name it in composite literals.
type Node struct {
	Pos Pos
}

func (n Node) Position() Pos { return n.Pos }

// ---- Expressions ------------------------------------------------------

type NumberLit struct {
	Node
	Value string // raw digits, possibly with one '.'
}

type StringLit struct {
	Node
	Value string
}

type MoneyLit struct {
	Node
	Currency string
	Amount   string // raw numeric text of the amount
}

type DateLit struct {
	Node
	ISO string
}

type Identifier struct {
	Node
	Name string
}

type QualifiedRef struct {
	Node
	BaseName string
	Field    string
}

// CompareOp is the operator of a Comparison node.
type CompareOp int

const (
	OpEQ CompareOp = iota + 1
	OpNE
	OpGT
	OpLT
	OpGTE
	OpLTE
)

func (op CompareOp) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpNE:
		return "!="
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	case OpGTE:
		return ">="
	case OpLTE:
		return "<="
	default:
		return "?"
	}
}

type Comparison struct {
	Node
	Left  Expr
	Op    CompareOp
	Right Expr
}

// LogicalOp is the operator of a BinaryExpr node.
type LogicalOp int

const (
	OpAnd LogicalOp = iota + 1
	OpOr
)

func (op LogicalOp) String() string {
	if op == OpAnd {
		return "and"
	}
	return "or"
}

type BinaryExpr struct {
	Node
	Left  Expr
	Op    LogicalOp
	Right Expr
}

type NotExpr struct {
	Node
	Inner Expr
}

func (NumberLit) exprNode()    {}
func (StringLit) exprNode()    {}
func (MoneyLit) exprNode()     {}
func (DateLit) exprNode()      {}
func (Identifier) exprNode()   {}
func (QualifiedRef) exprNode() {}
func (Comparison) exprNode()   {}
func (BinaryExpr) exprNode()   {}
func (NotExpr) exprNode()      {}

// ---- Statements ---------------------------------------------------------

type OpenWorkbook struct {
	Node
	Path string
}

type TreatRangeAsTable struct {
	Node
	Sheet     string
	RangeSpec string
	TableName string
}

type SetVar struct {
	Node
	Name string
	Expr Expr
}

type AddColumn struct {
	Node
	Table      string
	ColumnName string
	Expr       Expr
}

type FilterTable struct {
	Node
	Table     string
	Condition Expr
}

type SortTable struct {
	Node
	Table     string
	By        Expr
	Ascending bool
}

// AggregateSpec names one aggregate computation within a GroupTable
// statement. GroupTable itself is parser-only (see DESIGN.md); it is
// modeled here so the grammar production has somewhere to put its tree,
// even though lowering does not emit IR for it.
type AggregateSpec struct {
	Func   string // e.g. "sum", "count", "avg"
	Column string
	As     string
}

type GroupTable struct {
	Node
	Table      string
	By         Expr
	Aggregates []AggregateSpec
}

type ExportTable struct {
	Node
	Source Expr
	Path   string
}

type CallResult struct {
	Node
	Name string
}

type UseSystem struct {
	Node
	Name    string
	Version string
}

type LogIn struct {
	Node
	Credential string
}

type LogOut struct {
	Node
}

type GoToPage struct {
	Node
	Page string
}

type EnterField struct {
	Node
	Selector string
	Value    Expr
}

type ClickElement struct {
	Node
	Selector string
}

type ExtractField struct {
	Node
	Var      string
	Mode     string // "field" or "element"
	Selector string
}

type ForEach struct {
	Node
	Var        string
	Collection Expr
	Body       []Stmt
}

// IfElse is parser-only; lowering emits no IR for it (see DESIGN.md,
// Open Question decision 1).
type IfElse struct {
	Node
	Condition Expr
	Then      []Stmt
	Else      []Stmt
}

// ErrorAction is the action named by an OnError statement.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota + 1
	ActionSkip
	ActionStop
	ActionContinue
	ActionEscalate
)

// OnError is parser-only; lowering emits no IR for it (see DESIGN.md,
// Open Question decision 1).
type OnError struct {
	Node
	Action ErrorAction
	Arg    string
}

type Comment struct {
	Node
	Text string
}

func (OpenWorkbook) stmtNode()      {}
func (TreatRangeAsTable) stmtNode() {}
func (SetVar) stmtNode()            {}
func (AddColumn) stmtNode()         {}
func (FilterTable) stmtNode()       {}
func (SortTable) stmtNode()         {}
func (GroupTable) stmtNode()        {}
func (ExportTable) stmtNode()       {}
func (CallResult) stmtNode()        {}
func (UseSystem) stmtNode()         {}
func (LogIn) stmtNode()             {}
func (LogOut) stmtNode()            {}
func (GoToPage) stmtNode()          {}
func (EnterField) stmtNode()        {}
func (ClickElement) stmtNode()      {}
func (ExtractField) stmtNode()      {}
func (ForEach) stmtNode()           {}
func (IfElse) stmtNode()            {}
func (OnError) stmtNode()           {}
func (Comment) stmtNode()           {}

// Program is the root of a parsed source file.
type Program struct {
	Path       string
	Statements []Stmt
}

// At constructs a Node with Pos set; a small helper so statement/expression
// constructors in the parser stay one-liners.
func At(pos Pos) Node { return Node{Pos: pos} }
