package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/iksnae/jarvis/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	backendURL  string
	contextID   string
	timeout     time.Duration
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"

	cfg = internal.DefaultConfig()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "Ask an analytics backend questions from the terminal",
	Long: `A conversational client for a natural-language analytics backend.

Prompts are sent to the backend and the answers are shown as prose,
tables, charts and generated SQL inside one continuous conversation.

Features:
  • Interactive chat with clickable follow-up suggestions
  • Tables with inferred charts (bar, line, pie)
  • Export conversations (JSONL, Markdown, YAML, JSON) and tables (CSV)
  • Local JSON API for web front ends

Quick Start:
  jarvis contexts                          # List business contexts
  jarvis chat                              # Start an interactive chat
  jarvis ask "Revenue by month in 2024"    # One-shot question
  jarvis serve                             # Serve a session over HTTP

Configuration is read from --config (YAML), .env and JARVIS_* variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("backend") {
			loaded.BackendURL = backendURL
		}
		if cmd.Flags().Changed("context") {
			loaded.Context = contextID
		}
		if cmd.Flags().Changed("timeout") {
			loaded.Timeout = timeout
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		internal.LogDebug("Using backend %s (timeout %s)", cfg.BackendURL, cfg.Timeout)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides JARVIS_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVarP(&contextID, "context", "c", "", "Business context ID (defaults to the first listed)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", internal.DefaultTimeout, "Maximum wait for one answer")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
