package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/jarvis/internal"
	"github.com/spf13/cobra"
)

var (
	askWidth int
	askPlain bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <prompt> [prompt...]",
	Short: "Ask one or more questions and print the answers",
	Long: `Send prompts to the backend in order, within one conversation, and print
the resulting transcript. The first prompt starts a conversation and the
rest are follow-ups.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		session, _, err := newSession(ctx)
		if err != nil {
			return err
		}

		if err := runPrompts(ctx, session, args); err != nil {
			return err
		}

		plain := askPlain || !internal.IsTerminal(cmd.OutOrStdout())
		renderer, err := internal.NewRenderer(askWidth, plain)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), renderer.RenderTranscript(session.Snapshot().Transcript))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askWidth, "width", 100, "Wrap width for prose")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "Disable markdown styling")
}
