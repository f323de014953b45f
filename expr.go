package ooroo

import "fmt"

// Expr is the authored expression tree: a comparison against a field, a
// logical combination of sub-expressions, or a reference to another named
// rule. Builder methods produce new Exprs; nothing here is normalized
// (no constant folding, no De Morgan rewrites) — the tree is handed to the
// compiler exactly as authored.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// CompareExpr compares the value at FieldPath against Value using Op.
type CompareExpr struct {
	FieldPath string
	Op        CompareOp
	Value     Value
}

func (CompareExpr) isExpr() {}

func (e CompareExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.FieldPath, e.Op, e.Value)
}

// AndExpr is the short-circuiting logical AND of Left and Right.
type AndExpr struct {
	Left, Right Expr
}

func (AndExpr) isExpr() {}

func (e AndExpr) String() string {
	return fmt.Sprintf("(%s AND %s)", e.Left, e.Right)
}

// OrExpr is the short-circuiting logical OR of Left and Right.
type OrExpr struct {
	Left, Right Expr
}

func (OrExpr) isExpr() {}

func (e OrExpr) String() string {
	return fmt.Sprintf("(%s OR %s)", e.Left, e.Right)
}

// NotExpr is the logical complement of Inner.
type NotExpr struct {
	Inner Expr
}

func (NotExpr) isExpr() {}

func (e NotExpr) String() string {
	return fmt.Sprintf("(NOT %s)", e.Inner)
}

// RuleRefExpr refers to another rule by name. At evaluation time it
// resolves to that rule's already-computed boolean result.
type RuleRefExpr struct {
	Name string
}

func (RuleRefExpr) isExpr() {}

func (e RuleRefExpr) String() string {
	return e.Name
}

// And returns the left-associative conjunction of e and other.
func And(e, other Expr) Expr { return AndExpr{Left: e, Right: other} }

// Or returns the left-associative disjunction of e and other.
func Or(e, other Expr) Expr { return OrExpr{Left: e, Right: other} }

// Not returns the logical complement of e.
func Not(e Expr) Expr { return NotExpr{Inner: e} }

// FieldExpr is an intermediate builder produced by Field; it requires a
// comparison method to become a valid Expr.
type FieldExpr struct {
	path string
}

// Field begins a comparison against the context value at path.
func Field(path string) FieldExpr { return FieldExpr{path: path} }

// Eq builds FieldPath == value.
func (f FieldExpr) Eq(value Value) Expr { return CompareExpr{FieldPath: f.path, Op: OpEq, Value: value} }

// Neq builds FieldPath != value.
func (f FieldExpr) Neq(value Value) Expr {
	return CompareExpr{FieldPath: f.path, Op: OpNeq, Value: value}
}

// Gt builds FieldPath > value.
func (f FieldExpr) Gt(value Value) Expr { return CompareExpr{FieldPath: f.path, Op: OpGt, Value: value} }

// Gte builds FieldPath >= value.
func (f FieldExpr) Gte(value Value) Expr {
	return CompareExpr{FieldPath: f.path, Op: OpGte, Value: value}
}

// Lt builds FieldPath < value.
func (f FieldExpr) Lt(value Value) Expr { return CompareExpr{FieldPath: f.path, Op: OpLt, Value: value} }

// Lte builds FieldPath <= value.
func (f FieldExpr) Lte(value Value) Expr {
	return CompareExpr{FieldPath: f.path, Op: OpLte, Value: value}
}

// RuleRef references another rule's result by name.
func RuleRef(name string) Expr { return RuleRefExpr{Name: name} }

// compiledExpr is the post-compilation form of Expr: field paths replaced
// by registry indices, rule names replaced by topological indices. It is
// unexported because callers never construct it directly — it only comes
// into being as the output of Compile.
type compiledExpr interface {
	isCompiledExpr()
}

type compiledCompare struct {
	fieldIndex int
	op         CompareOp
	value      Value
}

func (compiledCompare) isCompiledExpr() {}

type compiledAnd struct {
	left, right compiledExpr
}

func (compiledAnd) isCompiledExpr() {}

type compiledOr struct {
	left, right compiledExpr
}

func (compiledOr) isCompiledExpr() {}

type compiledNot struct {
	inner compiledExpr
}

func (compiledNot) isCompiledExpr() {}

type compiledRuleRef struct {
	index int
}

func (compiledRuleRef) isCompiledExpr() {}
