package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/jarvis/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	session := internal.CreateTestSession("test1")
	exporter := &JSONExporter{Indent: "  "}
	var buf bytes.Buffer

	if err := exporter.Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got internal.Session
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if got.ID != "test1" {
		t.Errorf("ID = %q, want %q", got.ID, "test1")
	}
	if len(got.Messages) != 4 {
		t.Errorf("len(Messages) = %d, want 4", len(got.Messages))
	}
	if got.Metadata.TableCount != 1 {
		t.Errorf("TableCount = %d, want 1", got.Metadata.TableCount)
	}
	if chart := got.Messages[2].Chart; chart == nil || chart.Family != internal.ChartLine {
		t.Errorf("Messages[2].Chart = %+v, want line chart", chart)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"id\"")) {
		t.Errorf("Export() output is not indented:\n%s", buf.String())
	}
}

func TestJSONExporter_Compact(t *testing.T) {
	session := internal.CreateTestSession("test1")
	exporter := &JSONExporter{}
	var buf bytes.Buffer

	if err := exporter.Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n := bytes.Count(buf.Bytes(), []byte("\n")); n != 1 {
		t.Errorf("compact output has %d newline(s), want 1:\n%s", n, buf.String())
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("output is not valid JSON:\n%s", buf.String())
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("Extension() = %q, want 'json'", got)
	}
}
