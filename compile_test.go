package ooroo

import "testing"

func TestCompileSimpleRuleset(t *testing.T) {
	rs, err := NewRuleSetBuilder().
		Rule("age_check", func(r RuleBuilder) RuleBuilder { return r.When(Field("age").Gte(IntValue(18))) }).
		Terminal("age_check", 0).
		Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs.rules) != 1 || rs.rules[0].name != "age_check" {
		t.Fatalf("unexpected compiled rules: %+v", rs.rules)
	}
}

func TestCompileDuplicateRule(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(Field("y").Eq(IntValue(2))) }).
		Terminal("r1", 0).
		Compile()
	if _, ok := err.(*DuplicateRuleError); !ok {
		t.Fatalf("expected *DuplicateRuleError, got %T (%v)", err, err)
	}
}

func TestCompileMissingCondition(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("bad_rule", func(r RuleBuilder) RuleBuilder { return r }).
		Terminal("bad_rule", 0).
		Compile()
	if _, ok := err.(*MissingConditionError); !ok {
		t.Fatalf("expected *MissingConditionError, got %T (%v)", err, err)
	}
}

func TestCompileNoTerminals(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Compile()
	if _, ok := err.(*NoTerminalsError); !ok {
		t.Fatalf("expected *NoTerminalsError, got %T (%v)", err, err)
	}
}

func TestCompileUndefinedTerminal(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Terminal("nonexistent", 0).
		Compile()
	if _, ok := err.(*UndefinedTerminalError); !ok {
		t.Fatalf("expected *UndefinedTerminalError, got %T (%v)", err, err)
	}
}

func TestCompileDuplicateTerminal(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Terminal("r1", 0).
		Terminal("r1", 1).
		Compile()
	if _, ok := err.(*DuplicateTerminalError); !ok {
		t.Fatalf("expected *DuplicateTerminalError, got %T (%v)", err, err)
	}
}

func TestCompileUndefinedRuleRef(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("nonexistent")) }).
		Terminal("r1", 0).
		Compile()
	if _, ok := err.(*UndefinedRuleRefError); !ok {
		t.Fatalf("expected *UndefinedRuleRefError, got %T (%v)", err, err)
	}
}

func TestCompileCycleDetection(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("a", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("b")) }).
		Rule("b", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("a")) }).
		Terminal("a", 0).
		Compile()
	cycleErr, ok := err.(*CyclicDependencyError)
	if !ok {
		t.Fatalf("expected *CyclicDependencyError, got %T (%v)", err, err)
	}
	if len(cycleErr.Path) < 2 {
		t.Errorf("expected cycle path with at least 2 entries, got %v", cycleErr.Path)
	}
}

func TestCompileThreeNodeCycle(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("a", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("b")) }).
		Rule("b", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("c")) }).
		Rule("c", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("a")) }).
		Terminal("a", 0).
		Compile()
	cycleErr, ok := err.(*CyclicDependencyError)
	if !ok {
		t.Fatalf("expected *CyclicDependencyError, got %T (%v)", err, err)
	}
	if len(cycleErr.Path) < 3 {
		t.Fatalf("expected cycle path with at least 3 nodes, got %v", cycleErr.Path)
	}
	if cycleErr.Path[0] != cycleErr.Path[len(cycleErr.Path)-1] {
		t.Errorf("expected cycle path to repeat its start: %v", cycleErr.Path)
	}
}

func TestCompileDiamondDependency(t *testing.T) {
	_, err := NewRuleSetBuilder().
		Rule("d", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Rule("b", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("d")) }).
		Rule("c", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("d")) }).
		Rule("a", func(r RuleBuilder) RuleBuilder { return r.When(And(RuleRef("b"), RuleRef("c"))) }).
		Terminal("a", 0).
		Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTopoSortDependenciesBeforeDependents(t *testing.T) {
	rs, err := NewRuleSetBuilder().
		Rule("leaf", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Rule("mid", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("leaf")) }).
		Rule("top", func(r RuleBuilder) RuleBuilder { return r.When(RuleRef("mid")) }).
		Terminal("top", 0).
		Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(rs.ruleIndices["leaf"] < rs.ruleIndices["mid"] && rs.ruleIndices["mid"] < rs.ruleIndices["top"]) {
		t.Fatalf("expected leaf < mid < top, got %v", rs.ruleIndices)
	}
}

func TestTerminalsSortedByPriority(t *testing.T) {
	rs, err := NewRuleSetBuilder().
		Rule("r1", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Eq(IntValue(1))) }).
		Rule("r2", func(r RuleBuilder) RuleBuilder { return r.When(Field("y").Eq(IntValue(2))) }).
		Terminal("r2", 10).
		Terminal("r1", 0).
		Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.terminals[0].RuleName != "r1" || rs.terminals[0].Priority != 0 {
		t.Errorf("expected r1 first, got %+v", rs.terminals[0])
	}
	if rs.terminals[1].RuleName != "r2" || rs.terminals[1].Priority != 10 {
		t.Errorf("expected r2 second, got %+v", rs.terminals[1])
	}
}
