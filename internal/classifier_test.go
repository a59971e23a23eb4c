package internal

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestIsSuggestion(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Would you like to see revenue by region?", true},
		{"Do you prefer a weekly breakdown?", true},
		{"Do you want to compare with last year?", true},
		{"I'd like to know more?", true},
		{"WOULD YOU like a chart?", true},
		{"Would you like to see revenue by region.", false},
		{"What is the total?", false},
		{"Revenue grew 20%.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, IsSuggestion(tt.text))
		})
	}
}

func TestClassify_Text(t *testing.T) {
	got := ClassifyFragments([]RawFragment{
		{Kind: FragmentText, Content: "  Revenue doubled in February.  "},
		{Kind: FragmentText, Content: "Would you like to see revenue by region?"},
		{Kind: FragmentText, Content: "   "},
	})

	want := []DisplayMessage{
		NewNarrative("Revenue doubled in February.", false),
		NewNarrative("Would you like to see revenue by region?", true),
		NewNarrative("", false),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_TextPipeTable(t *testing.T) {
	got := ClassifyFragments([]RawFragment{
		{Kind: FragmentText, Content: "|Region|Sales|\n|East|10|\n|West|20|"},
	})

	require.Len(t, got, 1)
	msg := got[0]
	require.Equal(t, KindTable, msg.Kind)
	require.Equal(t, TableFallbackLabel, msg.Description)
	require.Equal(t, []Column{{Name: "Region"}, {Name: "Sales", IsNumeric: true}}, msg.Columns)
	require.Equal(t, []Row{
		{"Region": "East", "Sales": "10"},
		{"Region": "West", "Sales": "20"},
	}, msg.Rows)
	require.NotNil(t, msg.Chart)
	require.Equal(t, "Region", msg.Chart.CategoryField)
	require.Equal(t, []string{"Sales"}, msg.Chart.ValueFields)
}

func TestClassify_Query(t *testing.T) {
	var data Records
	require.NoError(t, json.Unmarshal([]byte(`[{"Month":"2024-01","Revenue":1000},{"Month":"2024-02","Revenue":2000}]`), &data))

	got := ClassifyFragments([]RawFragment{
		{Kind: FragmentQuery, Description: "Revenue by month", Data: data, GeneratedCode: "SELECT 1"},
	})

	require.Len(t, got, 1)
	msg := got[0]
	require.Equal(t, KindTable, msg.Kind)
	require.Equal(t, "Revenue by month", msg.Description)
	require.Equal(t, "SELECT 1", msg.GeneratedCode)
	require.Equal(t, []string{"Month", "Revenue"}, msg.ColumnNames())
	require.Len(t, msg.Rows, 2)
	require.NotNil(t, msg.Chart)
	require.Equal(t, ChartLine, msg.Chart.Family)
}

func TestClassify_QueryWithoutRowsDropped(t *testing.T) {
	got := ClassifyFragments([]RawFragment{
		{Kind: FragmentQuery, Description: "Nothing"},
		{Kind: FragmentQuery, Description: "Empty rows", Data: Records{Rows: []Row{{}}}},
	})
	require.Empty(t, got)
}

func TestClassify_Chart(t *testing.T) {
	data := CreateTestRecords([]string{"Product", "Units"},
		[]any{"Widgets", 5},
		[]any{"Gadgets", 7},
	)

	t.Run("declared family is kept", func(t *testing.T) {
		got := ClassifyFragments([]RawFragment{
			{Kind: FragmentChart, Data: data, ChartFamily: "Line", XField: "Product", YField: "Units"},
		})
		require.Len(t, got, 1)
		require.Equal(t, KindChart, got[0].Kind)
		require.Equal(t, &ChartSpec{Family: ChartLine, CategoryField: "Product", ValueFields: []string{"Units"}}, got[0].Chart)
	})

	t.Run("invalid declaration falls back to inference", func(t *testing.T) {
		got := ClassifyFragments([]RawFragment{
			{Kind: FragmentChart, Data: data, ChartFamily: "bar", XField: "Missing", YField: "Units"},
		})
		require.Len(t, got, 1)
		require.Equal(t, ChartBar, got[0].Chart.Family)
		require.Equal(t, "Product", got[0].Chart.CategoryField)
	})

	t.Run("uninferable chart dropped", func(t *testing.T) {
		numeric := CreateTestRecords([]string{"A", "B"}, []any{1, 2})
		got := ClassifyFragments([]RawFragment{
			{Kind: FragmentChart, Data: numeric},
		})
		require.Empty(t, got)
	})
}

func TestClassify_SQL(t *testing.T) {
	got := ClassifyFragments([]RawFragment{
		{Kind: FragmentSQL, Content: "SELECT * FROM sales"},
		{Kind: FragmentSQL, GeneratedCode: "SELECT region FROM sales"},
		{Kind: FragmentSQL},
	})

	want := []DisplayMessage{
		NewGeneratedQuery("SELECT * FROM sales"),
		NewGeneratedQuery("SELECT region FROM sales"),
		NewGeneratedQuery(""),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_UnknownKindsDroppedInOrder(t *testing.T) {
	got := ClassifyFragments([]RawFragment{
		{Kind: "attachment_v2", Content: "ignored"},
		{Kind: "TEXT", Content: "first"},
		{Kind: "", Content: "ignored"},
		{Kind: FragmentSQL, Content: "SELECT 1"},
	})

	want := []DisplayMessage{
		NewNarrative("first", false),
		NewGeneratedQuery("SELECT 1"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}
