package cmd

import (
	"context"
	"io"

	"github.com/iksnae/jarvis/internal"
	"github.com/iksnae/jarvis/internal/tui"
	"github.com/spf13/cobra"
)

var chatWidth int

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Open a full-screen chat with the backend.

Type a question and press Enter. Suggestions and tables are numbered:
  /s N          resubmit suggestion N
  /csv N FILE   save table N as CSV
  /context ID   switch context (starts a new conversation)
  Ctrl+N/Ctrl+P cycle contexts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		session, _, err := newSession(ctx)
		if err != nil {
			return err
		}

		renderer, err := internal.NewRenderer(chatWidth, false)
		if err != nil {
			return err
		}

		// log lines would tear the alternate screen
		if !verbose {
			internal.SetLogOutput(io.Discard)
		}
		return tui.Run(ctx, session, renderer)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().IntVar(&chatWidth, "width", 100, "Wrap width for prose")
}
