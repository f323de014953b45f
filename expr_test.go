package ooroo

import "testing"

func TestFieldBuilderProducesCompareExpr(t *testing.T) {
	e := Field("user.age").Gte(IntValue(18))
	cmp, ok := e.(CompareExpr)
	if !ok {
		t.Fatalf("expected CompareExpr, got %T", e)
	}
	if cmp.FieldPath != "user.age" || cmp.Op != OpGte {
		t.Errorf("unexpected compare expr: %+v", cmp)
	}
}

func TestExprStringRoundTripsReadably(t *testing.T) {
	e := And(Field("age").Gte(IntValue(18)), Not(RuleRef("banned")))
	want := `(age >= 18 AND (NOT banned))`
	if got := e.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestOrExprString(t *testing.T) {
	e := Or(Field("x").Eq(IntValue(1)), Field("y").Eq(IntValue(2)))
	want := `(x == 1 OR y == 2)`
	if got := e.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
