package issuelist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/keys"
	"github.com/nhle/bugtriage/tests/testutil"
)

func seeded(t *testing.T) Model {
	t.Helper()

	s := testutil.SeedStore(t, "db1",
		testutil.Issue("p1", "Crash on save", "Open"),
		testutil.Issue("p2", "Typo in footer", "Done"),
		testutil.Issue("p3", "Slow search", "open"),
		testutil.Issue("p4", "No status yet", ""),
	)

	return New(s, keys.DefaultKeyMap(), 80, 24)
}

func load(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	msg, ok := cmd().(IssuesLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	m, _ = m.Update(msg)
	return m
}

func TestLoadAndSelect(t *testing.T) {
	m := seeded(t)
	m = load(t, m, m.Init())

	assert.Len(t, m.list.Items(), 4)
	assert.Equal(t, []string{"Done", "Open", "open"}, m.Statuses())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel, ok := cmd().(SelectedIssueMsg)
	require.True(t, ok)
	first, _ := m.Selected()
	assert.Equal(t, first.ID, sel.Issue.ID)
}

func TestStatusFilter(t *testing.T) {
	m := seeded(t)

	m = load(t, m, m.SetStatusFilter("OPEN"))
	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, "status: OPEN", m.FilterSummary())

	m = load(t, m, m.ClearFilters())
	assert.Len(t, m.list.Items(), 4)
	assert.Empty(t, m.FilterSummary())
}

func TestCycleSort(t *testing.T) {
	m := seeded(t)
	assert.Equal(t, "fetched_at", m.SortBy())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	assert.Equal(t, "status", m.SortBy())
	assert.False(t, m.filter.SortDesc)
}

func TestSearchMode(t *testing.T) {
	m := seeded(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.Searching())
	for _, r := range "crash" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Searching())

	m = load(t, m, cmd)
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "p1", m.list.Items()[0].(IssueItem).Issue.ID)
}

func TestRenderLine(t *testing.T) {
	issue := testutil.Issue("p1", "Crash on save", "Open")
	assert.Contains(t, renderLine(issue, false), "Crash on save")
	assert.Equal(t, "--", priorityLabel(""))
	assert.Equal(t, "High", priorityLabel("High"))
	assert.Equal(t, "Crit", priorityLabel("Critical"))
}
