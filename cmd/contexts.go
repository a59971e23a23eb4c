package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/jarvis/internal"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

// contextsCmd represents the contexts command
var contextsCmd = &cobra.Command{
	Use:     "contexts",
	Aliases: []string{"businesses"},
	Short:   "List available business contexts",
	Long:    `List the business contexts (datasets) the backend can answer questions about.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := newBackendClient(ctx)
		if err != nil {
			return err
		}

		var contexts []internal.BusinessContext
		err = internal.ShowProgress(ctx, "Loading contexts", func() error {
			var listErr error
			contexts, listErr = client.ListContexts(ctx)
			return listErr
		})
		if err != nil {
			return fmt.Errorf("failed to list contexts: %w", err)
		}

		displayContexts(cmd, contexts)
		return nil
	},
}

func displayContexts(cmd *cobra.Command, contexts []internal.BusinessContext) {
	out := cmd.OutOrStdout()
	if len(contexts) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No contexts found"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d context(s)", len(contexts))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, c := range contexts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t\n", idStyle.Render(c.ID), c.DisplayName())
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(contextsCmd)
}
