package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devsquared/ooroo"
	"github.com/devsquared/ooroo/internal/core/config"
	"github.com/spf13/cobra"
)

var compileOutPath string

var compileCmd = &cobra.Command{
	Use:   "compile <source.ooroo>",
	Short: "compile a DSL source file into a binary cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVar(&compileOutPath, "out", "", "output path for the binary cache (default: <source>.oorc)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if outputFormat != "" {
		cfg.OutputFormat = outputFormat
	}

	sourcePath := args[0]
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}

	ruleset, err := ooroo.FromDSL(string(source))
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	outPath := compileOutPath
	if outPath == "" {
		outPath = strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".oorc"
	}
	if err := ruleset.ToBinaryFile(outPath, string(source)); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "compiled %s -> %s (%s)\n", sourcePath, outPath, ruleset)
	return nil
}
