package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/jarvis/internal"
)

// JSONLExporter exports one transcript message per line
type JSONLExporter struct{}

type jsonlRecord struct {
	Session string `json:"session"`
	Index   int    `json:"index"`
	internal.DisplayMessage
}

// Export writes each message of the transcript as a JSON line
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, msg := range session.Messages {
		rec := jsonlRecord{Session: session.ID, Index: i, DisplayMessage: msg}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode message %d: %w", i, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
