package ooroo

import (
	"fmt"
	"os"
)

// RuleSetBuilder assembles rules and terminals for compilation into an
// immutable RuleSet. Use Rule to define a named condition and Terminal
// to mark a rule as an evaluation output.
type RuleSetBuilder struct {
	rules     []Rule
	terminals []Terminal
}

// NewRuleSetBuilder returns an empty builder.
func NewRuleSetBuilder() *RuleSetBuilder {
	return &RuleSetBuilder{}
}

// RuleBuilder is the intermediate value passed to the closure supplied
// to RuleSetBuilder.Rule; call When to set the rule's condition.
type RuleBuilder struct {
	condition Expr
}

// When sets the condition for this rule and returns the receiver.
func (b RuleBuilder) When(condition Expr) RuleBuilder {
	b.condition = condition
	return b
}

// Rule defines a named rule. f receives an empty RuleBuilder and must
// call When to set its condition; a rule without a condition fails
// compilation with MissingConditionError.
func (b *RuleSetBuilder) Rule(name string, f func(RuleBuilder) RuleBuilder) *RuleSetBuilder {
	built := f(RuleBuilder{})
	b.rules = append(b.rules, Rule{Name: name, Condition: built.condition})
	return b
}

// Terminal registers ruleName as a terminal with the given priority.
// Lower priority values are checked first during evaluation.
func (b *RuleSetBuilder) Terminal(ruleName string, priority uint32) *RuleSetBuilder {
	b.terminals = append(b.terminals, Terminal{RuleName: ruleName, Priority: priority})
	return b
}

// Compile validates and compiles the accumulated rules and terminals
// into an immutable RuleSet.
func (b *RuleSetBuilder) Compile() (*RuleSet, error) {
	return compile(b.rules, b.terminals)
}

// RuleSet is a compiled, immutable collection of rules and terminals.
// It is safe for concurrent use by multiple goroutines: evaluation
// never mutates the RuleSet.
type RuleSet struct {
	rules           []compiledRule
	terminals       []Terminal // sorted ascending by Priority
	terminalIndices []int      // terminals[i] evaluates rules[terminalIndices[i]]
	ruleIndices     map[string]int
	fields          *FieldRegistry
}

// Evaluate runs the ruleset against ctx and returns the verdict of the
// lowest-priority terminal whose rule evaluated true, or nil if none did.
func (rs *RuleSet) Evaluate(ctx *Context) *Verdict {
	values := flattenContext(ctx, rs.fields)
	return evaluate(rs.rules, rs.terminals, rs.terminalIndices, func(i int) (Value, bool) {
		v := values[i]
		return v.value, v.present
	})
}

// EvaluateIndexed runs the ruleset against a pre-indexed context,
// skipping the per-call field path resolution that Evaluate performs.
func (rs *RuleSet) EvaluateIndexed(ctx *IndexedContext) *Verdict {
	return evaluate(rs.rules, rs.terminals, rs.terminalIndices, ctx.Get)
}

// EvaluateDetailed behaves like Evaluate but also returns diagnostics:
// execution order, per-rule results, which rules fired, and timing.
func (rs *RuleSet) EvaluateDetailed(ctx *Context) *EvaluationReport {
	values := flattenContext(ctx, rs.fields)
	return evaluateDetailed(rs.rules, rs.terminals, rs.terminalIndices, func(i int) (Value, bool) {
		v := values[i]
		return v.value, v.present
	})
}

// EvaluateDetailedIndexed behaves like EvaluateIndexed but also returns
// diagnostics.
func (rs *RuleSet) EvaluateDetailedIndexed(ctx *IndexedContext) *EvaluationReport {
	return evaluateDetailed(rs.rules, rs.terminals, rs.terminalIndices, ctx.Get)
}

// ContextBuilder returns a builder bound to this ruleset's field
// registry, for constructing IndexedContext values for the fast path.
func (rs *RuleSet) ContextBuilder() *ContextBuilder {
	return NewContextBuilder(rs.fields)
}

// FromDSL parses a textual rule definition and compiles it into a
// RuleSet.
func FromDSL(source string) (*RuleSet, error) {
	rules, terminals, err := parseDSL(source)
	if err != nil {
		return nil, err
	}
	return compile(rules, terminals)
}

// FromFile reads path and compiles its contents as DSL source.
func FromFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromDSL(string(data))
}

// ExecutionOrder returns the compiled rule names in topological
// (execution) order: every dependency appears before the rule that
// depends on it.
func (rs *RuleSet) ExecutionOrder() []string {
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.name
	}
	return names
}

// TerminalOrder returns the terminal rule names and priorities in the
// order they are checked during evaluation (ascending priority).
func (rs *RuleSet) TerminalOrder() []Terminal {
	out := make([]Terminal, len(rs.terminals))
	copy(out, rs.terminals)
	return out
}

// DependenciesOf returns the names of rules that ruleName references
// via RuleRef, or (nil, false) if ruleName is not in the ruleset.
func (rs *RuleSet) DependenciesOf(ruleName string) ([]string, bool) {
	idx, ok := rs.ruleIndices[ruleName]
	if !ok {
		return nil, false
	}
	var indices []int
	collectRuleRefIndices(rs.rules[idx].condition, &indices)
	deps := make([]string, len(indices))
	for i, depIdx := range indices {
		deps[i] = rs.rules[depIdx].name
	}
	return deps, true
}

func collectRuleRefIndices(e compiledExpr, out *[]int) {
	switch ex := e.(type) {
	case compiledRuleRef:
		*out = append(*out, ex.index)
	case compiledAnd:
		collectRuleRefIndices(ex.left, out)
		collectRuleRefIndices(ex.right, out)
	case compiledOr:
		collectRuleRefIndices(ex.left, out)
		collectRuleRefIndices(ex.right, out)
	case compiledNot:
		collectRuleRefIndices(ex.inner, out)
	}
}

func (rs *RuleSet) String() string {
	return fmt.Sprintf("RuleSet(%d rules, %d terminals, %d fields)",
		len(rs.rules), len(rs.terminals), rs.fields.Len())
}
