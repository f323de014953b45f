package ooroo

import "sort"

// compile validates rules and terminals, resolves field paths and rule
// references, and orders rules topologically (dependencies before
// dependents) so evaluation can proceed in a single forward pass.
func compile(rules []Rule, terminals []Terminal) (*RuleSet, error) {
	if err := checkDuplicateRules(rules); err != nil {
		return nil, err
	}
	if err := checkConditions(rules); err != nil {
		return nil, err
	}
	if err := checkTerminals(rules, terminals); err != nil {
		return nil, err
	}

	ruleByName := make(map[string]*Rule, len(rules))
	for i := range rules {
		ruleByName[rules[i].Name] = &rules[i]
	}

	if err := checkReferences(rules, ruleByName); err != nil {
		return nil, err
	}

	sortedNames, err := topologicalSort(rules, ruleByName)
	if err != nil {
		return nil, err
	}

	ruleIndices := make(map[string]int, len(sortedNames))
	for i, name := range sortedNames {
		ruleIndices[name] = i
	}

	registry := newFieldRegistry()
	compiledRules := make([]compiledRule, len(sortedNames))
	for i, name := range sortedNames {
		rule := ruleByName[name]
		compiledRules[i] = compiledRule{
			name:      rule.Name,
			condition: compileExpr(rule.Condition, registry, ruleIndices),
			index:     i,
		}
	}

	sortedTerminals := make([]Terminal, len(terminals))
	copy(sortedTerminals, terminals)
	sort.SliceStable(sortedTerminals, func(i, j int) bool {
		return sortedTerminals[i].Priority < sortedTerminals[j].Priority
	})

	terminalIndices := make([]int, len(sortedTerminals))
	for i, t := range sortedTerminals {
		terminalIndices[i] = ruleIndices[t.RuleName]
	}

	return &RuleSet{
		rules:           compiledRules,
		terminals:       sortedTerminals,
		terminalIndices: terminalIndices,
		ruleIndices:     ruleIndices,
		fields:          registry,
	}, nil
}

func compileExpr(e Expr, registry *FieldRegistry, ruleIndices map[string]int) compiledExpr {
	switch ex := e.(type) {
	case CompareExpr:
		return compiledCompare{
			fieldIndex: registry.register(ex.FieldPath),
			op:         ex.Op,
			value:      ex.Value,
		}
	case AndExpr:
		return compiledAnd{
			left:  compileExpr(ex.Left, registry, ruleIndices),
			right: compileExpr(ex.Right, registry, ruleIndices),
		}
	case OrExpr:
		return compiledOr{
			left:  compileExpr(ex.Left, registry, ruleIndices),
			right: compileExpr(ex.Right, registry, ruleIndices),
		}
	case NotExpr:
		return compiledNot{inner: compileExpr(ex.Inner, registry, ruleIndices)}
	case RuleRefExpr:
		return compiledRuleRef{index: ruleIndices[ex.Name]}
	default:
		panic("ooroo: unreachable expression variant")
	}
}

func checkDuplicateRules(rules []Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, ok := seen[r.Name]; ok {
			return &DuplicateRuleError{Name: r.Name}
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

func checkConditions(rules []Rule) error {
	for _, r := range rules {
		if r.Condition == nil {
			return &MissingConditionError{Rule: r.Name}
		}
	}
	return nil
}

func checkTerminals(rules []Rule, terminals []Terminal) error {
	if len(terminals) == 0 {
		return &NoTerminalsError{}
	}
	ruleNames := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		ruleNames[r.Name] = struct{}{}
	}
	seen := make(map[string]struct{}, len(terminals))
	for _, t := range terminals {
		if _, ok := ruleNames[t.RuleName]; !ok {
			return &UndefinedTerminalError{Name: t.RuleName}
		}
		if _, ok := seen[t.RuleName]; ok {
			return &DuplicateTerminalError{Name: t.RuleName}
		}
		seen[t.RuleName] = struct{}{}
	}
	return nil
}

func checkReferences(rules []Rule, ruleByName map[string]*Rule) error {
	for _, r := range rules {
		if err := checkExprRefs(r.Condition, r.Name, ruleByName); err != nil {
			return err
		}
	}
	return nil
}

func checkExprRefs(e Expr, ruleName string, ruleByName map[string]*Rule) error {
	switch ex := e.(type) {
	case RuleRefExpr:
		if _, ok := ruleByName[ex.Name]; !ok {
			return &UndefinedRuleRefError{Rule: ruleName, Reference: ex.Name}
		}
		return nil
	case AndExpr:
		if err := checkExprRefs(ex.Left, ruleName, ruleByName); err != nil {
			return err
		}
		return checkExprRefs(ex.Right, ruleName, ruleByName)
	case OrExpr:
		if err := checkExprRefs(ex.Left, ruleName, ruleByName); err != nil {
			return err
		}
		return checkExprRefs(ex.Right, ruleName, ruleByName)
	case NotExpr:
		return checkExprRefs(ex.Inner, ruleName, ruleByName)
	case CompareExpr:
		return nil
	default:
		return nil
	}
}

// topologicalSort orders rule names so that every rule referenced by
// another appears before it, via Kahn's algorithm. A result shorter
// than rules indicates a cycle, which is then localized with a
// DFS pass for the error message.
func topologicalSort(rules []Rule, ruleByName map[string]*Rule) ([]string, error) {
	dependents := make(map[string][]string, len(rules))
	inDegree := make(map[string]int, len(rules))

	for _, r := range rules {
		if _, ok := inDegree[r.Name]; !ok {
			inDegree[r.Name] = 0
		}
		if _, ok := dependents[r.Name]; !ok {
			dependents[r.Name] = nil
		}
	}

	for _, r := range rules {
		for _, dep := range collectRuleRefs(r.Condition) {
			if _, ok := ruleByName[dep]; ok {
				dependents[dep] = append(dependents[dep], r.Name)
				inDegree[r.Name]++
			}
		}
	}

	var queue []string
	for _, r := range rules {
		if inDegree[r.Name] == 0 {
			queue = append(queue, r.Name)
		}
	}

	sorted := make([]string, 0, len(rules))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sorted = append(sorted, name)
	}

	if len(sorted) != len(rules) {
		return nil, &CyclicDependencyError{Path: findCycle(rules, ruleByName)}
	}
	return sorted, nil
}

func collectRuleRefs(e Expr) []string {
	var refs []string
	collectRuleRefsInner(e, &refs)
	return refs
}

func collectRuleRefsInner(e Expr, refs *[]string) {
	switch ex := e.(type) {
	case RuleRefExpr:
		*refs = append(*refs, ex.Name)
	case AndExpr:
		collectRuleRefsInner(ex.Left, refs)
		collectRuleRefsInner(ex.Right, refs)
	case OrExpr:
		collectRuleRefsInner(ex.Left, refs)
		collectRuleRefsInner(ex.Right, refs)
	case NotExpr:
		collectRuleRefsInner(ex.Inner, refs)
	}
}

type dfsState int

const (
	dfsUnvisited dfsState = iota
	dfsInStack
	dfsDone
)

// findCycle runs a DFS over the rule-reference graph to produce a
// concrete cycle path for the error, once Kahn's algorithm has already
// established that one exists.
func findCycle(rules []Rule, ruleByName map[string]*Rule) []string {
	adj := make(map[string][]string, len(rules))
	for _, r := range rules {
		var deps []string
		for _, dep := range collectRuleRefs(r.Condition) {
			if _, ok := ruleByName[dep]; ok {
				deps = append(deps, dep)
			}
		}
		adj[r.Name] = deps
	}

	state := make(map[string]dfsState, len(rules))
	for _, r := range rules {
		state[r.Name] = dfsUnvisited
	}

	var stack []string
	for _, r := range rules {
		if state[r.Name] == dfsUnvisited {
			if cycle := dfsFindCycle(r.Name, adj, state, &stack); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func dfsFindCycle(node string, adj map[string][]string, state map[string]dfsState, stack *[]string) []string {
	state[node] = dfsInStack
	*stack = append(*stack, node)

	for _, neighbor := range adj[node] {
		switch state[neighbor] {
		case dfsInStack:
			pos := -1
			for i, n := range *stack {
				if n == neighbor {
					pos = i
					break
				}
			}
			cycle := append([]string{}, (*stack)[pos:]...)
			cycle = append(cycle, neighbor)
			return cycle
		case dfsUnvisited:
			if cycle := dfsFindCycle(neighbor, adj, state, stack); cycle != nil {
				return cycle
			}
		}
	}

	*stack = (*stack)[:len(*stack)-1]
	state[node] = dfsDone
	return nil
}
