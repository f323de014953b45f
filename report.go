package ooroo

import "time"

// EvaluationReport augments a Verdict with diagnostics from a detailed
// evaluation: every rule's boolean result in topological order, the
// names of rules that evaluated true, and the wall-clock duration of
// the evaluation pass.
type EvaluationReport struct {
	Verdict         *Verdict
	ExecutionOrder  []string
	EvaluationOrder []bool
	Fired           []string
	Duration        time.Duration
}
