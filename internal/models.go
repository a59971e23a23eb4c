package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Fragment kinds sent by the analytics backend
const (
	FragmentText  = "text"
	FragmentQuery = "query"
	FragmentChart = "chart"
	FragmentSQL   = "sql"
)

// RawFragment represents one unit of a backend response before classification
type RawFragment struct {
	Kind          string  `json:"type"`
	Content       string  `json:"content,omitempty"`
	Data          Records `json:"data,omitzero"`
	Description   string  `json:"description,omitempty"`
	GeneratedCode string  `json:"generated_code,omitempty"`
	ChartFamily   string  `json:"chart_family,omitempty"`
	XField        string  `json:"x_field,omitempty"`
	YField        string  `json:"y_field,omitempty"`
}

// Row maps a column name to a scalar value
type Row map[string]any

// Records is the tabular payload of a fragment. Columns holds the key
// order of the first row as it appeared on the wire.
type Records struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows
func (r Records) Len() int {
	return len(r.Rows)
}

// IsZero reports whether there are no rows
func (r Records) IsZero() bool {
	return len(r.Rows) == 0
}

// ColumnNames returns the schema of the first row. Hand-built records
// without Columns fall back to the sorted keys of the first row.
func (r Records) ColumnNames() []string {
	if len(r.Columns) > 0 {
		return r.Columns
	}
	if len(r.Rows) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Rows[0]))
	for k := range r.Rows[0] {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON decodes an array of row objects, keeping the key order of
// the first row and decoding numbers as json.Number.
func (r *Records) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}
	if tok == nil {
		*r = Records{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("records: expected array, got %v", tok)
	}

	var out Records
	for dec.More() {
		row, keys, err := decodeRow(dec)
		if err != nil {
			return err
		}
		if len(out.Rows) == 0 {
			out.Columns = keys
		}
		out.Rows = append(out.Rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}

	*r = out
	return nil
}

func decodeRow(dec *json.Decoder) (Row, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read row: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("records: expected object, got %v", tok)
	}

	row := Row{}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("records: expected key, got %v", keyTok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("failed to read value for %q: %w", key, err)
		}
		if _, seen := row[key]; !seen {
			keys = append(keys, key)
		}
		row[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("failed to read row: %w", err)
	}
	return row, keys, nil
}

// MarshalJSON encodes rows as objects with keys in column order
func (r Records) MarshalJSON() ([]byte, error) {
	if len(r.Rows) == 0 {
		return []byte("[]"), nil
	}
	columns := r.ColumnNames()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range r.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeOrderedRow(&buf, columns, row); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeOrderedRow(buf *bytes.Buffer, columns []string, row Row) error {
	buf.WriteByte('{')
	written := 0
	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode value for %q: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		written++
	}
	buf.WriteByte('}')
	return nil
}

// Fragments is the response list of a backend reply
type Fragments []RawFragment

// UnmarshalJSON decodes each fragment on its own. A fragment whose shape
// does not match RawFragment is logged and dropped so the rest of the
// reply survives.
func (f *Fragments) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to read fragments: %w", err)
	}

	out := make(Fragments, 0, len(raw))
	for i, msg := range raw {
		var frag RawFragment
		if err := json.Unmarshal(msg, &frag); err != nil {
			LogDebug("Dropping undecodable fragment %d: %v", i, err)
			continue
		}
		out = append(out, frag)
	}
	*f = out
	return nil
}

// StartResult is the backend reply to a new conversation
type StartResult struct {
	ConversationID string    `json:"conversation_id"`
	Fragments      Fragments `json:"response"`
}

// FollowupResult is the backend reply to a message in an existing conversation
type FollowupResult struct {
	ConversationID string    `json:"conversation_id,omitempty"`
	Fragments      Fragments `json:"response"`
}

// BusinessContext is a selectable dataset scope on the backend
type BusinessContext struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DisplayName returns the name, or the ID when no name is set
func (b BusinessContext) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}
