package ooroo

import "testing"

func TestContextSetAndGetNested(t *testing.T) {
	ctx := NewContext().Set("user.profile.age", IntValue(30))
	v, ok := ctx.Get("user.profile.age")
	if !ok {
		t.Fatal("expected field to be present")
	}
	if result, ok := v.Compare(OpEq, IntValue(30)); !ok || !result {
		t.Errorf("expected 30, got %v", v)
	}
}

func TestContextGetAbsentField(t *testing.T) {
	ctx := NewContext()
	if _, ok := ctx.Get("missing"); ok {
		t.Fatal("expected absent field to report not-ok")
	}
}

func TestContextGetIntermediateBranchIsAbsent(t *testing.T) {
	ctx := NewContext().Set("user.age", IntValue(30))
	if _, ok := ctx.Get("user"); ok {
		t.Fatal("expected reading a branch path to be absent")
	}
}

func TestContextOverwriteLeafWithNested(t *testing.T) {
	ctx := NewContext().Set("user", IntValue(1))
	ctx.Set("user.age", IntValue(30))

	if _, ok := ctx.Get("user"); ok {
		t.Fatal("expected leaf to have been replaced by a branch")
	}
	v, ok := ctx.Get("user.age")
	if !ok {
		t.Fatal("expected nested field to be readable after leaf-to-branch collision")
	}
	if result, ok := v.Compare(OpEq, IntValue(30)); !ok || !result {
		t.Errorf("expected 30, got %v", v)
	}
}

func TestIndexedContextSetIgnoresUnregisteredPaths(t *testing.T) {
	registry := newFieldRegistry()
	registry.register("known")

	builder := NewContextBuilder(registry)
	builder.Set("known", IntValue(1))
	builder.Set("unknown", IntValue(2))
	ic := builder.Build()

	idx, _ := registry.Get("known")
	v, ok := ic.Get(idx)
	if !ok {
		t.Fatal("expected known field to be present")
	}
	if result, ok := v.Compare(OpEq, IntValue(1)); !ok || !result {
		t.Errorf("expected 1, got %v", v)
	}
}
