package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/jarvis/internal/genie"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the backend is reachable",
	Long: `Check the health of the analytics backend by verifying:
  • Configuration
  • Backend health endpoint
  • Business context listing

This command is useful for debugging connectivity, especially in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Jarvis Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Checking configuration..."))
		client, err := newBackendClient(ctx)
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Invalid configuration:"), err)
			return err
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", cfg.BackendURL)
			_, _ = fmt.Fprintf(out, "   Timeout: %s\n", cfg.Timeout)
			if cfg.Context != "" {
				_, _ = fmt.Fprintf(out, "   Context: %s\n", cfg.Context)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Health endpoint
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Contacting backend..."))
		message, err := client.Health(ctx)
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), err)
			var statusErr *genie.HTTPStatusError
			if errors.As(err, &statusErr) && healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   Status: %d\n", statusErr.StatusCode)
			}
			return fmt.Errorf("backend health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Backend is up"))
		if healthcheckVerbose && message != "" {
			_, _ = fmt.Fprintf(out, "   Message: %s\n", message)
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Contexts
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Loading business contexts..."))
		contexts, err := client.ListContexts(ctx)
		switch {
		case err != nil:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Failed to list contexts:"), err)
		case len(contexts) == 0:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  No contexts configured on the backend"))
		default:
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d context(s)", len(contexts))))
			if healthcheckVerbose {
				for i, c := range contexts {
					if i < 5 {
						_, _ = fmt.Fprintf(out, "   [%d] %s (ID: %s)\n", i+1, c.DisplayName(), c.ID)
					}
				}
				if len(contexts) > 5 {
					_, _ = fmt.Fprintf(out, "   ... and %d more\n", len(contexts)-5)
				}
			}
		}
		_, _ = fmt.Fprintln(out)

		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Jarvis can reach the backend"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed diagnostic information")
}
