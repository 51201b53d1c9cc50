package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - conversational LLM testing harness",
	Long: `Saturn is a testing harness for LLM prompts and conversations.

It runs multi-turn dialogues against multiple providers, compares prompt
variations side by side, and tracks token usage and cost per conversation:
  - Multi-turn conversations with durable history
  - Side-by-side comparison of up to 4 configurations
  - Per-model cost accounting with pricing overrides
  - Provider catalogs for OpenAI and Anthropic`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
