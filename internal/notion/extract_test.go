package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/model"
)

func TestExtractTitle(t *testing.T) {
	t.Run("joins runs", func(t *testing.T) {
		props := propsFrom(t, map[string]any{"Name": titleProp("Fix ", "bug")})
		assert.Equal(t, "Fix bug", ExtractTitle(props))
	})

	t.Run("empty map", func(t *testing.T) {
		assert.Equal(t, "Untitled", ExtractTitle(Properties{}))
		assert.Equal(t, model.UntitledIssue, ExtractTitle(nil))
	})

	t.Run("any property name", func(t *testing.T) {
		props := propsFrom(t, map[string]any{
			"Bug":    titleProp("Crash on save"),
			"Status": statusProp("Open"),
		})
		assert.Equal(t, "Crash on save", ExtractTitle(props))
	})

	t.Run("empty runs", func(t *testing.T) {
		props := propsFrom(t, map[string]any{"Name": titleProp()})
		assert.Equal(t, "Untitled", ExtractTitle(props))
	})

	t.Run("malformed value", func(t *testing.T) {
		props := Properties{"Name": json.RawMessage(`{"type":"title","title":"oops"}`)}
		assert.Equal(t, "Untitled", ExtractTitle(props))
	})
}

func TestExtractRichText(t *testing.T) {
	props := propsFrom(t, map[string]any{
		"Description": richTextProp("Steps to reproduce"),
		"Notes":       selectProp("High"),
		"Empty":       map[string]any{"type": "rich_text", "rich_text": []any{}},
	})

	got, ok := ExtractRichText(props, "Description")
	require.True(t, ok)
	assert.Equal(t, "Steps to reproduce", got)

	_, ok = ExtractRichText(props, "Notes")
	assert.False(t, ok, "type mismatch")

	_, ok = ExtractRichText(props, "Empty")
	assert.False(t, ok, "no runs")

	_, ok = ExtractRichText(props, "Missing")
	assert.False(t, ok)
}

func TestExtractSelectAndStatus(t *testing.T) {
	props := propsFrom(t, map[string]any{
		"Priority": selectProp("High"),
		"Status":   statusProp("In progress"),
		"Cleared":  map[string]any{"type": "select", "select": nil},
	})

	got, ok := ExtractSelect(props, "Priority")
	require.True(t, ok)
	assert.Equal(t, "High", got)

	got, ok = ExtractStatus(props, "Status")
	require.True(t, ok)
	assert.Equal(t, "In progress", got)

	_, ok = ExtractSelect(props, "Status")
	assert.False(t, ok, "status is not a select")

	_, ok = ExtractStatus(props, "Priority")
	assert.False(t, ok, "select is not a status")

	_, ok = ExtractSelect(props, "Cleared")
	assert.False(t, ok, "null select")
}

func TestExtractMultiSelect(t *testing.T) {
	props := propsFrom(t, map[string]any{
		"Stage": map[string]any{
			"type": "multi_select",
			"multi_select": []any{
				map[string]any{"name": "Triage"},
				map[string]any{"name": "Blocked"},
			},
		},
	})

	got, ok := ExtractMultiSelect(props, "Stage")
	require.True(t, ok)
	assert.Equal(t, []string{"Triage", "Blocked"}, got)

	_, ok = ExtractMultiSelect(props, "Missing")
	assert.False(t, ok)
}

func TestRulesResolve(t *testing.T) {
	t.Run("capitalized name wins", func(t *testing.T) {
		props := propsFrom(t, map[string]any{
			"Status": statusProp("Done"),
			"status": statusProp("Open"),
		})
		got, ok := StatusRules.Resolve(props)
		require.True(t, ok)
		assert.Equal(t, "Done", got)
	})

	t.Run("status type before select type", func(t *testing.T) {
		props := propsFrom(t, map[string]any{
			"Status": selectProp("Selected"),
			"status": statusProp("Typed"),
		})
		got, ok := StatusRules.Resolve(props)
		require.True(t, ok)
		assert.Equal(t, "Typed", got)
	})

	t.Run("select fallback", func(t *testing.T) {
		props := propsFrom(t, map[string]any{"status": selectProp("Backlog")})
		got, ok := StatusRules.Resolve(props)
		require.True(t, ok)
		assert.Equal(t, "Backlog", got)
	})

	t.Run("empty text is no match", func(t *testing.T) {
		props := propsFrom(t, map[string]any{
			"Description": richTextProp(""),
			"description": richTextProp("lower"),
		})
		got, ok := DescriptionRules.Resolve(props)
		require.True(t, ok)
		assert.Equal(t, "lower", got)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := PriorityRules.Resolve(Properties{})
		assert.False(t, ok)
	})
}

func TestAssemble(t *testing.T) {
	var page Page
	data, err := json.Marshal(pageJSON("p1", "Login fails", map[string]any{
		"Description": richTextProp("500 on submit"),
		"Status":      statusProp("Open"),
		"priority":    selectProp("P1"),
	}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &page))

	issue := Assemble(page)
	assert.Equal(t, "p1", issue.ID)
	assert.Equal(t, "https://www.notion.so/p1", issue.URL)
	assert.Equal(t, "Login fails", issue.Title)
	assert.Equal(t, "500 on submit", issue.DescriptionOr(""))
	assert.Equal(t, "Open", issue.StatusOr(""))
	assert.Equal(t, "P1", issue.PriorityOr(""))
	assert.Len(t, issue.RawProperties, 4)

	// The snapshot does not share memory with the page it came from.
	page.Properties["Status"][0] = 'X'
	raw, ok := issue.Property("Status")
	require.True(t, ok)
	assert.Equal(t, byte('{'), raw[0])
}

func TestAssembleMissingFields(t *testing.T) {
	issue := Assemble(Page{ID: "p2"})

	assert.Equal(t, "Untitled", issue.Title)
	assert.Nil(t, issue.Description)
	assert.Nil(t, issue.Status)
	assert.Nil(t, issue.Priority)
	assert.Empty(t, issue.URL)
	assert.NotNil(t, issue.RawProperties)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		raw  string
		typ  string
		text string
	}{
		{`{"type":"title","title":[{"plain_text":"Crash "},{"plain_text":"on save"}]}`, TypeTitle, "Crash on save"},
		{`{"type":"rich_text","rich_text":[{"plain_text":"steps"}]}`, TypeRichText, "steps"},
		{`{"type":"select","select":{"name":"High"}}`, TypeSelect, "High"},
		{`{"type":"status","status":{"name":"Open"}}`, TypeStatus, "Open"},
		{`{"type":"multi_select","multi_select":[{"name":"ui"},{"name":"api"}]}`, TypeMultiSelect, "ui, api"},
		{`{"type":"select","select":null}`, TypeSelect, ""},
		{`{"type":"number","number":3}`, "number", ""},
		{`not json`, "", ""},
	}

	for _, tt := range tests {
		typ, text := Describe(json.RawMessage(tt.raw))
		assert.Equal(t, tt.typ, typ, tt.raw)
		assert.Equal(t, tt.text, text, tt.raw)
	}
}
