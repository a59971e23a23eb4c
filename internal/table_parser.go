package internal

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	pipeLinePattern  = regexp.MustCompile(`^\|.*\|$`)
	alignCellPattern = regexp.MustCompile(`^:?-+:?$`)
)

// PipeTable is a table recovered from pipe-delimited text
type PipeTable struct {
	Headers []string
	Rows    []Row
}

// ParsePipeTable extracts a pipe-delimited table from free text.
//
// Grammar: keep lines of the form |...|, split each on "|", trim the cells
// and drop empty ones. Markdown alignment rows are skipped. At least two
// qualifying lines are required; the first is the header and every later
// line is zipped against it. Missing trailing cells become "" and extra
// cells are ignored.
func ParsePipeTable(text string) (PipeTable, bool) {
	var lines [][]string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if !pipeLinePattern.MatchString(line) {
			continue
		}
		cells := splitPipeCells(line)
		if len(cells) == 0 || isAlignmentRow(cells) {
			continue
		}
		lines = append(lines, cells)
	}
	if len(lines) < 2 {
		return PipeTable{}, false
	}

	headers := uniqueHeaders(lines[0])
	rows := make([]Row, 0, len(lines)-1)
	for _, cells := range lines[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return PipeTable{Headers: headers, Rows: rows}, true
}

func splitPipeCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func isAlignmentRow(cells []string) bool {
	for _, c := range cells {
		if !alignCellPattern.MatchString(c) {
			return false
		}
	}
	return true
}

// uniqueHeaders suffixes repeated header names so every cell keeps its own key
func uniqueHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		seen[h]++
		if n := seen[h]; n > 1 {
			h = h + " (" + strconv.Itoa(n) + ")"
		}
		out[i] = h
	}
	return out
}
