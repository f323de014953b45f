package ooroo

import "fmt"

// Verdict is the outcome of an evaluation: the name and priority of the
// lowest-priority terminal whose rule evaluated true. A nil *Verdict
// means no terminal fired.
type Verdict struct {
	TerminalName string
	Priority     uint32
}

func (v *Verdict) String() string {
	if v == nil {
		return "<no terminal fired>"
	}
	return fmt.Sprintf("%s (priority %d)", v.TerminalName, v.Priority)
}
