package internal

import (
	"context"
	"sync"
)

// CreateTestRecords builds records from column names and row values
func CreateTestRecords(columns []string, values ...[]any) Records {
	rows := make([]Row, 0, len(values))
	for _, vals := range values {
		row := make(Row, len(columns))
		for i, c := range columns {
			if i < len(vals) {
				row[c] = vals[i]
			}
		}
		rows = append(rows, row)
	}
	return Records{Columns: columns, Rows: rows}
}

// CreateTestTable builds a classified table message from records
func CreateTestTable(description string, data Records) DisplayMessage {
	columns := columnsFromRow(data.ColumnNames(), data.Rows[0])
	return NewTable(description, columns, data.Rows, "")
}

// CreateTestSession creates a test session with one exchange
func CreateTestSession(id string) *Session {
	revenue := CreateTestRecords([]string{"Month", "Revenue"},
		[]any{"2024-01", 1000},
		[]any{"2024-02", 2000},
	)
	table := CreateTestTable("Revenue by month", revenue)
	table.GeneratedCode = "SELECT month, revenue FROM sales"
	if spec, ok := InferChart(table); ok {
		table.Chart = &spec
	}
	return &Session{
		ID:      id,
		Context: "sales",
		Messages: []DisplayMessage{
			NewUserPrompt("Show revenue by month"),
			NewNarrative("Revenue doubled in February.", false),
			table,
			NewNarrative("Would you like to see revenue by region?", true),
		},
		Metadata: Metadata{
			ContextName:  "Sales",
			ExportedAt:   "2024-03-01T00:00:00Z",
			MessageCount: 4,
			TableCount:   1,
		},
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []DisplayMessage) *Session {
	return &Session{
		ID:       id,
		Context:  "sales",
		Messages: messages,
		Metadata: Metadata{
			MessageCount: len(messages),
		},
	}
}

// BackendCall records one call made to a FakeBackend
type BackendCall struct {
	Op             string // "start" or "followup"
	ConversationID string
	Prompt         string
	ContextID      string
}

// FakeBackend is an in-memory Backend for tests. Replies are served in
// order; when Block is set each call waits for a value on it first.
type FakeBackend struct {
	mu             sync.Mutex
	Calls          []BackendCall
	ConversationID string
	Replies        [][]RawFragment
	Err            error
	Block          chan struct{}
	Entered        chan struct{}
}

func (f *FakeBackend) Start(ctx context.Context, prompt, contextID string) (StartResult, error) {
	fragments, err := f.call(ctx, BackendCall{Op: "start", Prompt: prompt, ContextID: contextID})
	if err != nil {
		return StartResult{}, err
	}
	return StartResult{ConversationID: f.ConversationID, Fragments: fragments}, nil
}

func (f *FakeBackend) Followup(ctx context.Context, conversationID, prompt, contextID string) (FollowupResult, error) {
	fragments, err := f.call(ctx, BackendCall{Op: "followup", ConversationID: conversationID, Prompt: prompt, ContextID: contextID})
	if err != nil {
		return FollowupResult{}, err
	}
	return FollowupResult{ConversationID: conversationID, Fragments: fragments}, nil
}

func (f *FakeBackend) call(ctx context.Context, c BackendCall) ([]RawFragment, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()

	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Replies) == 0 {
		return nil, nil
	}
	reply := f.Replies[0]
	f.Replies = f.Replies[1:]
	return reply, nil
}

// CallsSnapshot returns a copy of the recorded calls
func (f *FakeBackend) CallsSnapshot() []BackendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]BackendCall(nil), f.Calls...)
}

// FakeContextLister returns fixed contexts or an error
type FakeContextLister struct {
	Contexts []BusinessContext
	Err      error
	Calls    int
}

func (f *FakeContextLister) ListContexts(ctx context.Context) ([]BusinessContext, error) {
	f.Calls++
	return f.Contexts, f.Err
}
