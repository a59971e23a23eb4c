package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iksnae/jarvis/internal"
)

// ErrUnsupportedFormat is returned by NewExporter for unknown format names
var ErrUnsupportedFormat = errors.New("unsupported format")

// Exporter writes a whole conversation transcript to a single stream
type Exporter interface {
	Export(session *internal.Session, w io.Writer) error
	Extension() string
}

// transcriptFormats maps format names (aliases included) to constructors.
// CSV is absent: tables are written one file each by ExportTableCSV.
var transcriptFormats = map[string]func() Exporter{
	"jsonl":    func() Exporter { return &JSONLExporter{} },
	"md":       func() Exporter { return &MarkdownExporter{} },
	"markdown": func() Exporter { return &MarkdownExporter{} },
	"yaml":     func() Exporter { return &YAMLExporter{} },
	"json":     func() Exporter { return &JSONExporter{Indent: "  "} },
}

// Formats lists the canonical transcript format names, sorted
func Formats() []string {
	seen := make(map[string]bool)
	var names []string
	for _, build := range transcriptFormats {
		ext := build().Extension()
		if !seen[ext] {
			seen[ext] = true
			names = append(names, ext)
		}
	}
	sort.Strings(names)
	return names
}

// NewExporter returns the transcript exporter registered under format
func NewExporter(format string) (Exporter, error) {
	build, ok := transcriptFormats[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, format, strings.Join(Formats(), ", "))
	}
	return build(), nil
}
