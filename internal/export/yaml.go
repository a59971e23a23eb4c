package export

import (
	"io"

	"github.com/iksnae/jarvis/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

// Export exports a session to YAML format. Row values are written in
// their raw string form.
func (e *YAMLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(rawSession(session))
}

// rawSession copies the session with row values stringified so numbers
// decoded from the wire do not surface as encoder-specific types.
func rawSession(session *internal.Session) *internal.Session {
	out := *session
	out.Messages = make([]internal.DisplayMessage, len(session.Messages))
	for i, msg := range session.Messages {
		if msg.IsTabular() {
			rows := make([]internal.Row, len(msg.Rows))
			for j, row := range msg.Rows {
				r := make(internal.Row, len(row))
				for k, v := range row {
					r[k] = internal.RawValue(v)
				}
				rows[j] = r
			}
			msg.Rows = rows
		}
		out.Messages[i] = msg
	}
	return &out
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
