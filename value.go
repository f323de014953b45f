package ooroo

import "fmt"

// CompareOp is one of the six comparison operators a Compare expression
// may use.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	default:
		return "?"
	}
}

// kind tags which branch of Value is populated.
type kind int

const (
	kindInt kind = iota
	kindFloat
	kindBool
	kindString
)

// Value is a tagged union of the four supported field/literal types:
// signed 64-bit integer, finite 64-bit float, boolean, and UTF-8 string.
// The zero Value is Int(0); use the constructors below to build others.
type Value struct {
	kind kind
	i    int64
	f    float64
	b    bool
	s    string
}

// IntValue constructs an integer Value.
func IntValue(v int64) Value { return Value{kind: kindInt, i: v} }

// FloatValue constructs a float Value.
func FloatValue(v float64) Value { return Value{kind: kindFloat, f: v} }

// BoolValue constructs a boolean Value.
func BoolValue(v bool) Value { return Value{kind: kindBool, b: v} }

// StringValue constructs a string Value.
func StringValue(v string) Value { return Value{kind: kindString, s: v} }

// String renders the value as a literal: strings are quoted with Go's %q
// escaping, and ints, floats and bools use Go's default formatting, so an
// integral float such as 10.0 prints as 10.
func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return fmt.Sprintf("%d", v.i)
	case kindFloat:
		return fmt.Sprintf("%v", v.f)
	case kindBool:
		return fmt.Sprintf("%v", v.b)
	case kindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return "<invalid>"
	}
}

// Compare applies op to (v, other). It returns (result, true) when the
// comparison is defined, or (false, false) when the pair is type-
// incompatible (including any comparison involving NaN) or the op is not
// meaningful for the pair's type (ordered comparison of two booleans).
func (v Value) Compare(op CompareOp, other Value) (bool, bool) {
	cmp, ok := v.partialCompare(other)
	if !ok {
		return false, false
	}
	if v.kind == kindBool && op != OpEq && op != OpNeq {
		return false, false
	}
	switch op {
	case OpEq:
		return cmp == 0, true
	case OpNeq:
		return cmp != 0, true
	case OpGt:
		return cmp > 0, true
	case OpGte:
		return cmp >= 0, true
	case OpLt:
		return cmp < 0, true
	case OpLte:
		return cmp <= 0, true
	default:
		return false, false
	}
}

// partialCompare returns a three-way ordering (-1/0/1) and whether the
// pair is comparable at all. Int/Float cross-compare by widening the int
// to float64. Two bools get an ordering (false < true) so that Eq/Neq
// work; Compare reports Gt/Gte/Lt/Lte on bools as undefined. NaN on
// either side is always incomparable.
func (v Value) partialCompare(other Value) (int, bool) {
	switch {
	case v.kind == kindInt && other.kind == kindInt:
		return compareInt64(v.i, other.i), true
	case v.kind == kindFloat && other.kind == kindFloat:
		return compareFloat64(v.f, other.f)
	case v.kind == kindInt && other.kind == kindFloat:
		return compareFloat64(float64(v.i), other.f)
	case v.kind == kindFloat && other.kind == kindInt:
		return compareFloat64(v.f, float64(other.i))
	case v.kind == kindBool && other.kind == kindBool:
		if v.b == other.b {
			return 0, true
		}
		if !v.b && other.b {
			return -1, true
		}
		return 1, true
	case v.kind == kindString && other.kind == kindString:
		return compareString(v.s, other.s), true
	default:
		return 0, false
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) (int, bool) {
	if a != a || b != b { // NaN compares unequal to anything, including itself
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
