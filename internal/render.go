package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Renderer draws transcript messages for a terminal
type Renderer struct {
	width    int
	markdown *glamour.TermRenderer
}

// NewRenderer creates a Renderer wrapping text at width. Plain output
// disables markdown styling, which keeps pipes and files readable.
func NewRenderer(width int, plain bool) (*Renderer, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{width: width, markdown: md}, nil
}

// RenderTranscript renders every message. Suggestions and tables are
// prefixed with their transcript index so they can be referenced later.
func (r *Renderer) RenderTranscript(messages []DisplayMessage) string {
	var b strings.Builder
	for i, msg := range messages {
		b.WriteString(r.RenderMessage(i, msg))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMessage renders one message
func (r *Renderer) RenderMessage(index int, msg DisplayMessage) string {
	switch msg.Kind {
	case KindUserPrompt:
		return promptStyle.Render("You › ") + msg.Text + "\n"
	case KindNarrative:
		if msg.IsSuggestion {
			return suggestionStyle.Render(fmt.Sprintf("[%d] 💡 %s", index, msg.Text)) + "\n"
		}
		return r.renderMarkdown(msg.Text)
	case KindTable:
		return r.renderTable(index, msg)
	case KindChart:
		return r.renderChart(index, msg)
	case KindGeneratedQuery:
		return codeStyle.Render(msg.Text) + "\n"
	default:
		return ""
	}
}

func (r *Renderer) renderMarkdown(text string) string {
	out, err := r.markdown.Render(text)
	if err != nil {
		LogDebug("Markdown render failed: %v", err)
		return text + "\n"
	}
	return out
}

func (r *Renderer) renderTable(index int, msg DisplayMessage) string {
	var b strings.Builder
	title := msg.Description
	if title == "" {
		title = "Result"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("[%d] %s", index, title)))
	b.WriteString("\n")
	b.WriteString(RenderTable(msg, MaxDisplayRows))
	b.WriteString("\n")
	if len(msg.Rows) > MaxDisplayRows {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("showing %d of %d rows", MaxDisplayRows, len(msg.Rows))))
		b.WriteString("\n")
	}
	if msg.Chart != nil {
		b.WriteString(mutedStyle.Render(DescribeChart(*msg.Chart)))
		b.WriteString("\n")
	}
	if msg.GeneratedCode != "" {
		b.WriteString(codeStyle.Render(msg.GeneratedCode))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderChart(index int, msg DisplayMessage) string {
	var b strings.Builder
	title := msg.Description
	if title == "" {
		title = "Chart"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("[%d] %s", index, title)))
	b.WriteString("\n")
	if msg.Chart != nil {
		b.WriteString(mutedStyle.Render(DescribeChart(*msg.Chart)))
		b.WriteString("\n")
	}
	b.WriteString(RenderTable(msg, MaxDisplayRows))
	b.WriteString("\n")
	return b.String()
}

// RenderTable draws up to limit rows of a tabular message with formatted
// values. Numeric columns are right-aligned.
func RenderTable(msg DisplayMessage, limit int) string {
	numeric := make([]bool, len(msg.Columns))
	for i, c := range msg.Columns {
		numeric[i] = c.IsNumeric
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(msg.ColumnNames()...).
		Rows(FormattedRows(msg, limit)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col < len(numeric) && numeric[col] {
				return tableCellStyle.Align(lipgloss.Right)
			}
			return tableCellStyle
		})
	return t.String()
}

// DescribeChart summarizes a chart binding in one line
func DescribeChart(spec ChartSpec) string {
	return fmt.Sprintf("%s chart · x: %s · y: %s",
		spec.Family, spec.CategoryField, strings.Join(spec.RenderedValueFields(), ", "))
}
