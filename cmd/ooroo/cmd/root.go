package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configFile   string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ooroo",
	Short: "ooroo compiled rule engine",
	Long:  `ooroo parses, compiles, caches, and evaluates boolean rulesets.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format (text, json), overrides config")
}

func Execute() error {
	return rootCmd.Execute()
}
