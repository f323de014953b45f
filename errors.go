package ooroo

import "fmt"

// CompileError is returned by RuleSetBuilder.Compile when a ruleset fails
// validation. Concrete failures are one of the typed errors below; use
// errors.As to recover the specific variant and its fields.
type CompileError interface {
	error
	compileError()
}

// DuplicateRuleError indicates the same rule name was defined twice.
type DuplicateRuleError struct {
	Name string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate rule: %q", e.Name)
}

func (*DuplicateRuleError) compileError() {}

// MissingConditionError indicates a rule was defined without a condition.
type MissingConditionError struct {
	Rule string
}

func (e *MissingConditionError) Error() string {
	return fmt.Sprintf("rule %q has no condition", e.Rule)
}

func (*MissingConditionError) compileError() {}

// NoTerminalsError indicates the ruleset has no terminal rules at all.
type NoTerminalsError struct{}

func (e *NoTerminalsError) Error() string {
	return "ruleset has no terminals"
}

func (*NoTerminalsError) compileError() {}

// UndefinedTerminalError indicates a terminal references a rule that was
// never defined.
type UndefinedTerminalError struct {
	Name string
}

func (e *UndefinedTerminalError) Error() string {
	return fmt.Sprintf("terminal references undefined rule: %q", e.Name)
}

func (*UndefinedTerminalError) compileError() {}

// DuplicateTerminalError indicates two terminals reference the same rule.
type DuplicateTerminalError struct {
	Name string
}

func (e *DuplicateTerminalError) Error() string {
	return fmt.Sprintf("rule %q is referenced by more than one terminal", e.Name)
}

func (*DuplicateTerminalError) compileError() {}

// UndefinedRuleRefError indicates a rule's condition references a rule
// name that was never defined.
type UndefinedRuleRefError struct {
	Rule      string
	Reference string
}

func (e *UndefinedRuleRefError) Error() string {
	return fmt.Sprintf("rule %q references undefined rule %q", e.Rule, e.Reference)
}

func (*UndefinedRuleRefError) compileError() {}

// CyclicDependencyError indicates the rule dependency graph contains a
// cycle. Path is the sequence of rule names around the cycle, with the
// starting rule repeated as the last element (Path[0] == Path[len(Path)-1]).
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic rule dependency: %v", e.Path)
}

func (*CyclicDependencyError) compileError() {}
