package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/jarvis/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.Session
		want    []string
		wantErr bool
	}{
		{
			name:    "empty session",
			session: internal.CreateTestSessionWithMessages("test1", []internal.DisplayMessage{}),
			want:    []string{}, // No messages means no output lines
			wantErr: false,
		},
		{
			name:    "session with messages",
			session: internal.CreateTestSession("test2"),
			want: []string{
				`"kind":"user_prompt"`,
				`"kind":"narrative"`,
				`"kind":"table"`,
				`"is_suggestion":true`,
				`"session":"test2"`,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := &JSONLExporter{}
			var buf bytes.Buffer

			err := exporter.Export(tt.session, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Export() output missing %q\nGot:\n%s", want, output)
				}
			}

			// Verify each line is valid JSON
			lines := strings.Split(strings.TrimSpace(output), "\n")
			for i, line := range lines {
				if line == "" {
					continue
				}
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(line), &obj); err != nil {
					t.Errorf("Line %d is not valid JSON: %v\nLine: %s", i+1, err, line)
				}
			}
		})
	}
}

func TestJSONLExporter_KeepsIndexAndColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(internal.CreateTestSession("s"), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Export() wrote %d lines, want 4", len(lines))
	}

	var rec struct {
		Index   int               `json:"index"`
		Columns []internal.Column `json:"columns"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if rec.Index != 2 {
		t.Errorf("index = %d, want 2", rec.Index)
	}
	if len(rec.Columns) != 2 || rec.Columns[0].Name != "Month" || !rec.Columns[1].IsNumeric {
		t.Errorf("columns = %+v, want Month then numeric Revenue", rec.Columns)
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("Extension() = %q, want 'jsonl'", got)
	}
}
