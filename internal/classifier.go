package internal

import (
	"strings"
)

// suggestionPhrases mark a question as an invitation the user can click
var suggestionPhrases = []string{"would you", "prefer", "want to", "like to"}

// Classifier converts raw backend fragments into display messages
type Classifier struct{}

// NewClassifier creates a new Classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify converts fragments in order. Unknown kinds and empty tabular
// fragments are dropped.
func (c *Classifier) Classify(fragments []RawFragment) []DisplayMessage {
	messages := make([]DisplayMessage, 0, len(fragments))
	for i, f := range fragments {
		msg, ok := c.classifyFragment(f)
		if !ok {
			LogDebug("Dropping fragment %d (type %q)", i, f.Kind)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// ClassifyFragments is a convenience wrapper around Classifier.Classify
func ClassifyFragments(fragments []RawFragment) []DisplayMessage {
	return NewClassifier().Classify(fragments)
}

func (c *Classifier) classifyFragment(f RawFragment) (DisplayMessage, bool) {
	switch strings.ToLower(strings.TrimSpace(f.Kind)) {
	case FragmentText:
		return c.classifyText(f.Content)
	case FragmentQuery:
		return c.classifyQuery(f)
	case FragmentChart:
		return c.classifyChart(f)
	case FragmentSQL:
		return c.classifySQL(f)
	default:
		return DisplayMessage{}, false
	}
}

func (c *Classifier) classifyText(content string) (DisplayMessage, bool) {
	text := strings.TrimSpace(content)
	if table, ok := ParsePipeTable(text); ok {
		columns := columnsFromRow(table.Headers, table.Rows[0])
		return withInferredChart(NewTable(TableFallbackLabel, columns, table.Rows, "")), true
	}

	return NewNarrative(text, IsSuggestion(text)), true
}

func (c *Classifier) classifyQuery(f RawFragment) (DisplayMessage, bool) {
	if f.Data.Len() == 0 {
		return DisplayMessage{}, false
	}
	columns := columnsFromRow(f.Data.ColumnNames(), f.Data.Rows[0])
	if len(columns) == 0 {
		return DisplayMessage{}, false
	}
	table := NewTable(f.Description, columns, f.Data.Rows, f.GeneratedCode)
	return withInferredChart(table), true
}

func (c *Classifier) classifyChart(f RawFragment) (DisplayMessage, bool) {
	if f.Data.Len() == 0 {
		return DisplayMessage{}, false
	}
	columns := columnsFromRow(f.Data.ColumnNames(), f.Data.Rows[0])

	if family, ok := ParseChartFamily(strings.ToLower(strings.TrimSpace(f.ChartFamily))); ok && f.XField != "" && f.YField != "" {
		spec := ChartSpec{Family: family, CategoryField: f.XField, ValueFields: []string{f.YField}}
		err := spec.Validate(columns)
		if err == nil {
			return NewChart(f.Description, columns, f.Data.Rows, spec), true
		}
		LogDebug("Declared chart rejected, inferring instead: %v", err)
	}

	candidate := DisplayMessage{Columns: columns, Rows: f.Data.Rows}
	spec, ok := InferChart(candidate)
	if !ok {
		return DisplayMessage{}, false
	}
	return NewChart(f.Description, columns, f.Data.Rows, spec), true
}

func (c *Classifier) classifySQL(f RawFragment) (DisplayMessage, bool) {
	text := f.Content
	if strings.TrimSpace(text) == "" {
		text = f.GeneratedCode
	}
	return NewGeneratedQuery(text), true
}

// IsSuggestion reports whether text is an invitational question: it ends
// with "?" and contains one of the suggestion phrases.
func IsSuggestion(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, "?") {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range suggestionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// columnsFromRow classifies each column by its value in the sample row
func columnsFromRow(names []string, sample Row) []Column {
	columns := make([]Column, 0, len(names))
	for _, name := range names {
		columns = append(columns, Column{
			Name:      name,
			IsNumeric: ClassifyValue(sample[name]) == ValueNumeric,
		})
	}
	return columns
}

func withInferredChart(table DisplayMessage) DisplayMessage {
	if table.Chart != nil {
		return table
	}
	if spec, ok := InferChart(table); ok {
		table.Chart = &spec
	}
	return table
}
