package internal

import (
	"fmt"
	"time"
)

// MessageKind discriminates DisplayMessage variants
type MessageKind string

const (
	KindUserPrompt     MessageKind = "user_prompt"
	KindNarrative      MessageKind = "narrative"
	KindTable          MessageKind = "table"
	KindChart          MessageKind = "chart"
	KindGeneratedQuery MessageKind = "generated_query"
)

// TableFallbackLabel describes tables recovered from pipe-delimited text
const TableFallbackLabel = "Extracted table"

// DisplayMessage is one normalized, render-ready entry of the transcript.
// Which fields are set depends on Kind:
//   - user_prompt, generated_query: Text
//   - narrative: Text, IsSuggestion
//   - table: Description, Columns, Rows, GeneratedCode, Chart (optional)
//   - chart: Description, Columns, Rows, Chart
type DisplayMessage struct {
	Kind          MessageKind `json:"kind" yaml:"kind"`
	Text          string      `json:"text,omitempty" yaml:"text,omitempty"`
	IsSuggestion  bool        `json:"is_suggestion,omitempty" yaml:"is_suggestion,omitempty"`
	Description   string      `json:"description,omitempty" yaml:"description,omitempty"`
	Columns       []Column    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows          []Row       `json:"rows,omitempty" yaml:"rows,omitempty"`
	GeneratedCode string      `json:"generated_code,omitempty" yaml:"generated_code,omitempty"`
	Chart         *ChartSpec  `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// Column describes one table column
type Column struct {
	Name      string `json:"name" yaml:"name"`
	IsNumeric bool   `json:"is_numeric" yaml:"is_numeric"`
}

// NewUserPrompt creates a user prompt message
func NewUserPrompt(text string) DisplayMessage {
	return DisplayMessage{Kind: KindUserPrompt, Text: text}
}

// NewNarrative creates a prose message
func NewNarrative(text string, suggestion bool) DisplayMessage {
	return DisplayMessage{Kind: KindNarrative, Text: text, IsSuggestion: suggestion}
}

// NewGeneratedQuery creates a generated query message
func NewGeneratedQuery(text string) DisplayMessage {
	return DisplayMessage{Kind: KindGeneratedQuery, Text: text}
}

// NewTable creates a table message. Callers must not pass empty rows.
func NewTable(description string, columns []Column, rows []Row, generatedCode string) DisplayMessage {
	return DisplayMessage{
		Kind:          KindTable,
		Description:   description,
		Columns:       columns,
		Rows:          rows,
		GeneratedCode: generatedCode,
	}
}

// NewChart creates a standalone chart message
func NewChart(description string, columns []Column, rows []Row, spec ChartSpec) DisplayMessage {
	return DisplayMessage{
		Kind:        KindChart,
		Description: description,
		Columns:     columns,
		Rows:        rows,
		Chart:       &spec,
	}
}

// IsTabular reports whether the message carries rows
func (m DisplayMessage) IsTabular() bool {
	return m.Kind == KindTable || m.Kind == KindChart
}

// ColumnNames returns the column names in schema order
func (m DisplayMessage) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the message has a column with the given name
func (m DisplayMessage) HasColumn(name string) bool {
	for _, c := range m.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ChartFamily is the visual chart type
type ChartFamily string

const (
	ChartBar  ChartFamily = "bar"
	ChartLine ChartFamily = "line"
	ChartPie  ChartFamily = "pie"
)

// ParseChartFamily maps a backend-declared family name to a ChartFamily
func ParseChartFamily(s string) (ChartFamily, bool) {
	switch ChartFamily(s) {
	case ChartBar, ChartLine, ChartPie:
		return ChartFamily(s), true
	default:
		return "", false
	}
}

// ChartSpec binds a chart family to table fields
type ChartSpec struct {
	Family        ChartFamily `json:"family" yaml:"family"`
	CategoryField string      `json:"category_field" yaml:"category_field"`
	ValueFields   []string    `json:"value_fields" yaml:"value_fields"`
}

// RenderedValueFields returns the value fields a renderer should draw.
// A pie uses only the first one.
func (c ChartSpec) RenderedValueFields() []string {
	if c.Family == ChartPie && len(c.ValueFields) > 1 {
		return c.ValueFields[:1]
	}
	return c.ValueFields
}

// Validate checks that every bound field is one of the columns
func (c ChartSpec) Validate(columns []Column) error {
	if _, ok := ParseChartFamily(string(c.Family)); !ok {
		return fmt.Errorf("unknown chart family %q", c.Family)
	}
	if len(c.ValueFields) == 0 {
		return fmt.Errorf("chart has no value fields")
	}
	names := make(map[string]bool, len(columns))
	for _, col := range columns {
		names[col.Name] = true
	}
	if !names[c.CategoryField] {
		return fmt.Errorf("category field %q is not a column", c.CategoryField)
	}
	for _, f := range c.ValueFields {
		if !names[f] {
			return fmt.Errorf("value field %q is not a column", f)
		}
	}
	return nil
}

// ConversationState is the state owned by a SessionController.
// An empty ConversationID means no conversation has been started yet.
type ConversationState struct {
	ConversationID string           `json:"conversation_id,omitempty"`
	Transcript     []DisplayMessage `json:"transcript"`
	Pending        bool             `json:"pending"`
}

// HasConversation reports whether a conversation id has been adopted
func (s ConversationState) HasConversation() bool {
	return s.ConversationID != ""
}

// Clone returns a copy whose transcript can be read without holding the
// controller lock
func (s ConversationState) Clone() ConversationState {
	out := s
	out.Transcript = append([]DisplayMessage(nil), s.Transcript...)
	return out
}

// Session is an exported snapshot of a conversation
type Session struct {
	ID       string           `json:"id" yaml:"id"`
	Context  string           `json:"context,omitempty" yaml:"context,omitempty"`
	Messages []DisplayMessage `json:"messages" yaml:"messages"`
	Metadata Metadata         `json:"metadata" yaml:"metadata"`
}

// Metadata contains additional session information
type Metadata struct {
	ContextName  string `json:"context_name,omitempty" yaml:"context_name,omitempty"`
	ExportedAt   string `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	MessageCount int    `json:"message_count" yaml:"message_count"`
	TableCount   int    `json:"table_count" yaml:"table_count"`
}

// NewSession builds an exportable snapshot from a conversation state.
// Sessions without a conversation id are labelled "local".
func NewSession(state ConversationState, ctx BusinessContext, now time.Time) *Session {
	id := state.ConversationID
	if id == "" {
		id = "local"
	}
	tables := 0
	for _, m := range state.Transcript {
		if m.IsTabular() {
			tables++
		}
	}
	return &Session{
		ID:       id,
		Context:  ctx.ID,
		Messages: append([]DisplayMessage(nil), state.Transcript...),
		Metadata: Metadata{
			ContextName:  ctx.Name,
			ExportedAt:   now.UTC().Format(time.RFC3339),
			MessageCount: len(state.Transcript),
			TableCount:   tables,
		},
	}
}
