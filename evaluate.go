package ooroo

import "time"

// stackThreshold is the rule count at or below which evaluation uses a
// fixed-size array on the stack instead of a heap-allocated slice for
// the per-rule result buffer.
const stackThreshold = 64

// evaluate runs every compiled rule in topological order against get,
// then returns the lowest-priority terminal whose rule is true.
func evaluate(rules []compiledRule, terminals []Terminal, terminalIndices []int, get func(int) (Value, bool)) *Verdict {
	if len(rules) <= stackThreshold {
		var buf [stackThreshold]bool
		results := buf[:len(rules)]
		evalAll(rules, results, get)
		return selectVerdict(results, terminals, terminalIndices)
	}
	results := make([]bool, len(rules))
	evalAll(rules, results, get)
	return selectVerdict(results, terminals, terminalIndices)
}

// evaluateDetailed behaves like evaluate but also records each rule's
// name and result in topological order and the wall-clock duration of
// the pass, for introspection and debugging.
func evaluateDetailed(rules []compiledRule, terminals []Terminal, terminalIndices []int, get func(int) (Value, bool)) *EvaluationReport {
	start := time.Now()
	results := make([]bool, len(rules))
	evalAll(rules, results, get)
	duration := time.Since(start)

	order := make([]string, len(rules))
	var fired []string
	for i, r := range rules {
		order[i] = r.name
		if results[i] {
			fired = append(fired, r.name)
		}
	}

	return &EvaluationReport{
		Verdict:         selectVerdict(results, terminals, terminalIndices),
		ExecutionOrder:  order,
		EvaluationOrder: results,
		Fired:           fired,
		Duration:        duration,
	}
}

func evalAll(rules []compiledRule, results []bool, get func(int) (Value, bool)) {
	for i, r := range rules {
		results[i] = evalExpr(r.condition, results, get)
	}
}

func selectVerdict(results []bool, terminals []Terminal, terminalIndices []int) *Verdict {
	for i, t := range terminals {
		if results[terminalIndices[i]] {
			return &Verdict{TerminalName: t.RuleName, Priority: t.Priority}
		}
	}
	return nil
}

// evalExpr evaluates a compiled expression against already-computed
// rule results and the context accessor get. A field comparison that
// cannot be evaluated -- because the field is absent or the pair of
// values is type-incompatible -- is treated as false rather than as an
// error.
func evalExpr(e compiledExpr, results []bool, get func(int) (Value, bool)) bool {
	switch ex := e.(type) {
	case compiledCompare:
		v, ok := get(ex.fieldIndex)
		if !ok {
			return false
		}
		result, ok := v.Compare(ex.op, ex.value)
		if !ok {
			return false
		}
		return result
	case compiledAnd:
		return evalExpr(ex.left, results, get) && evalExpr(ex.right, results, get)
	case compiledOr:
		return evalExpr(ex.left, results, get) || evalExpr(ex.right, results, get)
	case compiledNot:
		return !evalExpr(ex.inner, results, get)
	case compiledRuleRef:
		return results[ex.index]
	default:
		panic("ooroo: unreachable compiled expression variant")
	}
}
