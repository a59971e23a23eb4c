package export

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/iksnae/jarvis/internal"
)

// ErrNotTabular is returned when a CSV export is asked for a message
// without rows
var ErrNotTabular = errors.New("message is not a table")

// TableCSV serializes a table: a header line of column names followed by
// at most 100 rows of double-quoted raw values, joined by newlines.
func TableCSV(table internal.DisplayMessage) ([]byte, error) {
	if !table.IsTabular() {
		return nil, ErrNotTabular
	}

	lines := make([]string, 0, 1+min(len(table.Rows), internal.MaxDisplayRows))

	header := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = headerField(c.Name)
	}
	lines = append(lines, strings.Join(header, ","))

	rows := table.Rows
	if len(rows) > internal.MaxDisplayRows {
		rows = rows[:internal.MaxDisplayRows]
	}
	for _, row := range rows {
		fields := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			fields[i] = quoteField(internal.RawValue(row[c.Name]))
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return []byte(strings.Join(lines, "\n")), nil
}

// ExportTableCSV writes TableCSV output to w
func ExportTableCSV(table internal.DisplayMessage, w io.Writer) error {
	data, err := TableCSV(table)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// headerField leaves plain names bare and quotes the rest
func headerField(name string) string {
	if strings.ContainsAny(name, ",\"\r\n") {
		return quoteField(name)
	}
	return name
}
