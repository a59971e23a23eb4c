package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
)

// ValueKind is the display semantics of a scalar
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueNumeric
	ValueDateLike
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumeric:
		return "numeric"
	case ValueDateLike:
		return "date"
	default:
		return "text"
	}
}

// MaxDisplayRows caps how many rows are rendered or exported per table
const MaxDisplayRows = 100

const dateDisplayLayout = "Jan 2006"

// ClassifyValue decides how a value is displayed. Numbers win over dates:
// a value that parses as a number is never treated as a date.
func ClassifyValue(v any) ValueKind {
	if _, ok := numericValue(v); ok {
		return ValueNumeric
	}
	if _, ok := dateValue(v); ok {
		return ValueDateLike
	}
	return ValueText
}

// FormatValue renders a value for display: grouped numbers, "Jan 2024"
// dates, and everything else unchanged.
func FormatValue(v any) string {
	if n, ok := numericValue(v); ok {
		return formatNumber(v, n)
	}
	if t, ok := dateValue(v); ok {
		return t.Format(dateDisplayLayout)
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// RawValue returns the unformatted string form of a value
func RawValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// FormattedRows returns up to limit rows of a tabular message as display
// strings in column order. A limit <= 0 returns every row.
func FormattedRows(m DisplayMessage, limit int) [][]string {
	rows := m.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(m.Columns))
		for j, col := range m.Columns {
			cells[j] = FormatValue(row[col.Name])
		}
		out[i] = cells
	}
	return out
}

func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	case json.Number:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// formatNumber groups thousands. Integers go through humanize.Comma so large
// values keep every digit.
func formatNumber(v any, f float64) string {
	switch x := v.(type) {
	case int:
		return humanize.Comma(int64(x))
	case int32:
		return humanize.Comma(int64(x))
	case int64:
		return humanize.Comma(x)
	case json.Number:
		if i, err := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64); err == nil {
			return humanize.Comma(i)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return humanize.Comma(i)
		}
	}
	return humanize.Commaf(f)
}

// dateLayouts are tried before dateparse. Month-name forms such as
// "Jan 2024" are not understood by dateparse.
var dateLayouts = []string{
	"Jan 2006",
	"January 2006",
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

func dateValue(v any) (t time.Time, ok bool) {
	s, isString := v.(string)
	if !isString {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}

	// dateparse can panic on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	// clock times and partial dates come back without a year
	if parsed.Year() == 0 {
		return time.Time{}, false
	}
	return parsed, true
}
