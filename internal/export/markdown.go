package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/jarvis/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format. Tables are written as
// pipe tables with formatted values, capped like the terminal view.
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Conversation %s\n\n", session.ID)

	if session.Context != "" {
		name := session.Metadata.ContextName
		if name == "" {
			name = session.Context
		}
		_, _ = fmt.Fprintf(w, "**Context:** %s  \n", name)
	}
	if session.Metadata.ExportedAt != "" {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", session.Metadata.ExportedAt)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		writeMarkdownMessage(w, msg)
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func writeMarkdownMessage(w io.Writer, msg internal.DisplayMessage) {
	switch msg.Kind {
	case internal.KindUserPrompt:
		_, _ = fmt.Fprintf(w, "**You:**\n\n%s\n\n", escapeMarkdown(msg.Text))
	case internal.KindNarrative:
		if msg.IsSuggestion {
			_, _ = fmt.Fprintf(w, "> 💡 %s\n\n", msg.Text)
			return
		}
		_, _ = fmt.Fprintf(w, "%s\n\n", msg.Text)
	case internal.KindTable, internal.KindChart:
		if msg.Description != "" {
			_, _ = fmt.Fprintf(w, "**%s**\n\n", msg.Description)
		}
		if msg.Chart != nil {
			_, _ = fmt.Fprintf(w, "_%s_\n\n", internal.DescribeChart(*msg.Chart))
		}
		writeMarkdownTable(w, msg)
		if msg.GeneratedCode != "" {
			_, _ = fmt.Fprintf(w, "```sql\n%s\n```\n\n", msg.GeneratedCode)
		}
	case internal.KindGeneratedQuery:
		_, _ = fmt.Fprintf(w, "```sql\n%s\n```\n\n", msg.Text)
	}
}

func writeMarkdownTable(w io.Writer, msg internal.DisplayMessage) {
	names := msg.ColumnNames()
	aligns := make([]string, len(msg.Columns))
	for i, c := range msg.Columns {
		if c.IsNumeric {
			aligns[i] = "---:"
		} else {
			aligns[i] = "---"
		}
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(escapeCells(names), " | "))
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(aligns, " | "))
	for _, row := range internal.FormattedRows(msg, internal.MaxDisplayRows) {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(escapeCells(row), " | "))
	}
	_, _ = fmt.Fprintln(w)
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	return out
}

// escapeMarkdown escapes emphasis markers outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
