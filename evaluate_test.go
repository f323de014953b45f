package ooroo

import "testing"

func TestScenarioSimpleEligibility(t *testing.T) {
	rs, err := NewRuleSetBuilder().
		Rule("age_ok", func(r RuleBuilder) RuleBuilder { return r.When(Field("user.age").Gte(IntValue(18))) }).
		Rule("active", func(r RuleBuilder) RuleBuilder { return r.When(Field("user.status").Eq(StringValue("active"))) }).
		Rule("allowed", func(r RuleBuilder) RuleBuilder { return r.When(And(RuleRef("age_ok"), RuleRef("active"))) }).
		Terminal("allowed", 0).
		Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	ctx := NewContext().Set("user.age", IntValue(25)).Set("user.status", StringValue("active"))
	verdict := rs.Evaluate(ctx)
	if verdict == nil || verdict.TerminalName != "allowed" {
		t.Fatalf("expected verdict allowed, got %v", verdict)
	}
}

func TestScenarioDenyBeforeAllow(t *testing.T) {
	rs := denyAllowRuleSet(t)
	ctx := NewContext().Set("user.banned", BoolValue(true)).Set("user.age", IntValue(30))
	verdict := rs.Evaluate(ctx)
	if verdict == nil || verdict.TerminalName != "deny" {
		t.Fatalf("expected verdict deny, got %v", verdict)
	}
}

func TestScenarioNoMatch(t *testing.T) {
	rs := denyAllowRuleSet(t)
	ctx := NewContext().Set("user.banned", BoolValue(false)).Set("user.age", IntValue(15))
	verdict := rs.Evaluate(ctx)
	if verdict != nil {
		t.Fatalf("expected no verdict, got %v", verdict)
	}
}

func denyAllowRuleSet(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewRuleSetBuilder().
		Rule("deny", func(r RuleBuilder) RuleBuilder { return r.When(Field("user.banned").Eq(BoolValue(true))) }).
		Rule("allow", func(r RuleBuilder) RuleBuilder { return r.When(Field("user.age").Gte(IntValue(18))) }).
		Terminal("deny", 0).
		Terminal("allow", 10).
		Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return rs
}

func TestScenarioCrossTypeComparison(t *testing.T) {
	rs, err := NewRuleSetBuilder().
		Rule("r", func(r RuleBuilder) RuleBuilder { return r.When(Field("score").Eq(FloatValue(10.0))) }).
		Terminal("r", 0).
		Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	ctx := NewContext().Set("score", IntValue(10))
	verdict := rs.Evaluate(ctx)
	if verdict == nil || verdict.TerminalName != "r" {
		t.Fatalf("expected verdict r, got %v", verdict)
	}
}

func TestMissingFieldEvaluatesFalse(t *testing.T) {
	rs, err := NewRuleSetBuilder().
		Rule("r", func(r RuleBuilder) RuleBuilder { return r.When(Field("absent").Eq(IntValue(1))) }).
		Terminal("r", 0).
		Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	verdict := rs.Evaluate(NewContext())
	if verdict != nil {
		t.Fatalf("expected no verdict for missing field, got %v", verdict)
	}
}

func TestEvaluateIndexedAgreesWithEvaluate(t *testing.T) {
	rs := denyAllowRuleSet(t)

	ctx := NewContext().Set("user.banned", BoolValue(true)).Set("user.age", IntValue(30))
	indexed := rs.ContextBuilder().Set("user.banned", BoolValue(true)).Set("user.age", IntValue(30)).Build()

	a := rs.Evaluate(ctx)
	b := rs.EvaluateIndexed(indexed)
	if a == nil || b == nil || a.TerminalName != b.TerminalName {
		t.Fatalf("expected matching verdicts, got %v and %v", a, b)
	}
}

func TestDoubleNegationPreservesVerdict(t *testing.T) {
	base, err := NewRuleSetBuilder().
		Rule("r", func(r RuleBuilder) RuleBuilder { return r.When(Field("x").Gte(IntValue(1))) }).
		Terminal("r", 0).
		Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	negated, err := NewRuleSetBuilder().
		Rule("r", func(r RuleBuilder) RuleBuilder { return r.When(Not(Not(Field("x").Gte(IntValue(1))))) }).
		Terminal("r", 0).
		Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	ctx := NewContext().Set("x", IntValue(5))
	a, b := base.Evaluate(ctx), negated.Evaluate(ctx)
	if (a == nil) != (b == nil) {
		t.Fatalf("expected matching verdict presence, got %v and %v", a, b)
	}
}

func TestEvaluateDetailedReportsExecutionOrderAndFired(t *testing.T) {
	rs := denyAllowRuleSet(t)
	ctx := NewContext().Set("user.banned", BoolValue(true)).Set("user.age", IntValue(30))
	report := rs.EvaluateDetailed(ctx)

	if report.Verdict == nil || report.Verdict.TerminalName != "deny" {
		t.Fatalf("expected verdict deny, got %v", report.Verdict)
	}
	if len(report.ExecutionOrder) != 2 {
		t.Fatalf("expected 2 rules in execution order, got %v", report.ExecutionOrder)
	}
	found := false
	for _, name := range report.Fired {
		if name == "deny" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected deny to be among fired rules, got %v", report.Fired)
	}
}
