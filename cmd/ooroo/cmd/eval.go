package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devsquared/ooroo"
	"github.com/devsquared/ooroo/internal/core/config"
	"github.com/spf13/cobra"
)

var (
	evalContextPath string
	evalDetailed    bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <ruleset>",
	Short: "evaluate a compiled or DSL ruleset against a JSON context",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalContextPath, "context", "", "path to a JSON object of field paths to values (default: stdin)")
	evalCmd.Flags().BoolVar(&evalDetailed, "detailed", false, "print execution order and fired rules alongside the verdict")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if outputFormat != "" {
		cfg.OutputFormat = outputFormat
	}

	ruleset, err := loadRuleSet(args[0])
	if err != nil {
		return err
	}

	ctx, err := loadContext(evalContextPath)
	if err != nil {
		return err
	}

	if evalDetailed {
		report := ruleset.EvaluateDetailed(ctx)
		return printDetailed(cmd, cfg, report)
	}

	verdict := ruleset.Evaluate(ctx)
	return printVerdict(cmd, cfg, verdict)
}

// loadRuleSet loads a ruleset from path: a binary cache when path ends
// in .oorc, DSL source otherwise -- the same heuristic the teacher's
// sensor API used for db connection strings.
func loadRuleSet(path string) (*ooroo.RuleSet, error) {
	if strings.HasSuffix(path, ".oorc") {
		rs, err := ooroo.FromBinaryFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load binary cache %s: %w", path, err)
		}
		return rs, nil
	}
	rs, err := ooroo.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ruleset %s: %w", path, err)
	}
	return rs, nil
}

func loadContext(path string) (*ooroo.Context, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read context: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse context JSON: %w", err)
	}

	ctx := ooroo.NewContext()
	for path, value := range fields {
		setJSONField(ctx, path, value)
	}
	return ctx, nil
}

// setJSONField flattens a possibly-nested JSON value into dotted paths
// on ctx, matching the shape Context.Get expects.
func setJSONField(ctx *ooroo.Context, path string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for k, nested := range v {
			setJSONField(ctx, path+"."+k, nested)
		}
	case string:
		ctx.Set(path, ooroo.StringValue(v))
	case bool:
		ctx.Set(path, ooroo.BoolValue(v))
	case float64:
		if v == float64(int64(v)) {
			ctx.Set(path, ooroo.IntValue(int64(v)))
		} else {
			ctx.Set(path, ooroo.FloatValue(v))
		}
	}
}

func printVerdict(cmd *cobra.Command, cfg *config.Config, verdict *ooroo.Verdict) error {
	if cfg.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(verdict)
	}
	fmt.Fprintln(cmd.OutOrStdout(), verdict)
	return nil
}

func printDetailed(cmd *cobra.Command, cfg *config.Config, report *ooroo.EvaluationReport) error {
	if cfg.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(report)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "verdict: %s\n", report.Verdict)
	fmt.Fprintf(out, "duration: %s\n", report.Duration)
	fmt.Fprintf(out, "fired: %v\n", report.Fired)
	fmt.Fprintf(out, "execution order: %v\n", report.ExecutionOrder)
	return nil
}
