package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/jarvis/internal"
)

// JSONExporter writes the session as a single JSON document.
// An empty Indent produces compact output.
type JSONExporter struct {
	Indent string
}

func (e *JSONExporter) Export(session *internal.Session, w io.Writer) error {
	var (
		data []byte
		err  error
	)
	if e.Indent == "" {
		data, err = json.Marshal(session)
	} else {
		data, err = json.MarshalIndent(session, "", e.Indent)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
