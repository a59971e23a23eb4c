package internal

// SchemaSummary is the part of a table that chart inference looks at
type SchemaSummary struct {
	CategoryField  string
	ValueFields    []string
	RowCount       int
	CategoryIsDate bool
}

// SummarizeSchema picks the first non-numeric column as category and every
// numeric column as a value field, in schema order.
func SummarizeSchema(columns []Column, rows []Row) SchemaSummary {
	s := SchemaSummary{RowCount: len(rows)}
	for _, col := range columns {
		if col.IsNumeric {
			s.ValueFields = append(s.ValueFields, col.Name)
			continue
		}
		if s.CategoryField == "" {
			s.CategoryField = col.Name
		}
	}
	if s.CategoryField != "" && len(rows) > 0 {
		s.CategoryIsDate = ClassifyValue(rows[0][s.CategoryField]) == ValueDateLike
	}
	return s
}

// Chartable reports whether the schema has a category and a value axis
func (s SchemaSummary) Chartable() bool {
	return s.RowCount > 0 && s.CategoryField != "" && len(s.ValueFields) > 0
}

// Family chooses the chart family:
//
//	rows == 1         -> pie
//	category is date  -> line
//	otherwise         -> bar
func (s SchemaSummary) Family() ChartFamily {
	switch {
	case s.RowCount == 1:
		return ChartPie
	case s.CategoryIsDate:
		return ChartLine
	default:
		return ChartBar
	}
}

// InferChart proposes a chart for a tabular message, or declines
func InferChart(table DisplayMessage) (ChartSpec, bool) {
	s := SummarizeSchema(table.Columns, table.Rows)
	if !s.Chartable() {
		return ChartSpec{}, false
	}
	return ChartSpec{
		Family:        s.Family(),
		CategoryField: s.CategoryField,
		ValueFields:   append([]string(nil), s.ValueFields...),
	}, true
}
