package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <ruleset>",
	Short: "print execution order, terminal order, and dependencies of a ruleset",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ruleset, err := loadRuleSet(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", ruleset)

	fmt.Fprintln(out, "execution order:")
	for i, name := range ruleset.ExecutionOrder() {
		deps, _ := ruleset.DependenciesOf(name)
		fmt.Fprintf(out, "  %d. %s  (depends on: %v)\n", i, name, deps)
	}

	fmt.Fprintln(out, "\nterminal order:")
	for i, t := range ruleset.TerminalOrder() {
		fmt.Fprintf(out, "  %d. %s (priority %d)\n", i, t.RuleName, t.Priority)
	}

	return nil
}
