package issuelist

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugtriage/internal/keys"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/store"
	"github.com/nhle/bugtriage/internal/theme"
)

// IssuesLoadedMsg is sent when issues have been loaded from the store.
type IssuesLoadedMsg struct {
	Issues []model.Issue
	Err    error
}

// SelectedIssueMsg is sent when a user selects an issue to view details.
type SelectedIssueMsg struct {
	Issue model.Issue
}

// sortModes defines the available sort modes cycled by Tab.
var sortModes = []string{
	"fetched_at",
	"status",
	"priority",
	"title",
}

// Model is the main issue list view component.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	filter      store.IssueFilter
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	err         error
	width       int
	height      int
}

// New creates a new issue list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Bugs"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search bugs..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:  l,
		store: s,
		keys:  k,
		filter: store.IssueFilter{
			SortBy:   sortModes[0],
			SortDesc: true,
		},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of issues.
func (m Model) Init() tea.Cmd {
	return m.LoadIssues()
}

// Update handles messages for the issue list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case IssuesLoadedMsg:
		m.err = msg.Err
		items := make([]list.Item, len(msg.Issues))
		for i, issue := range msg.Issues {
			items[i] = IssueItem{Issue: issue}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadIssues()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadIssues()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(IssueItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedIssueMsg{Issue: item.Issue}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.filter.SortBy = sortModes[m.sortIndex]
		m.filter.SortDesc = m.filter.SortBy == "fetched_at"
		return m, m.LoadIssues()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SortBy returns the active sort column.
func (m Model) SortBy() string {
	return m.filter.SortBy
}

// SetStatusFilter restricts the list to one status, matched without regard
// to case. An empty status clears the filter.
func (m *Model) SetStatusFilter(status string) tea.Cmd {
	if status == "" {
		m.filter.Status = nil
	} else {
		m.filter.Status = &status
	}
	return m.LoadIssues()
}

// ClearFilters drops the status filter and search query.
func (m *Model) ClearFilters() tea.Cmd {
	m.filter.Status = nil
	m.filter.Query = nil
	m.searchInput.Reset()
	return m.LoadIssues()
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.Status != nil {
		parts = append(parts, "status: "+*m.filter.Status)
	}
	if m.filter.Query != nil {
		parts = append(parts, "search: "+*m.filter.Query)
	}
	return strings.Join(parts, " | ")
}

// Statuses returns the distinct status names of the loaded issues, sorted.
func (m Model) Statuses() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range m.list.Items() {
		item, ok := it.(IssueItem)
		if !ok || item.Issue.Status == nil || seen[*item.Issue.Status] {
			continue
		}
		seen[*item.Issue.Status] = true
		out = append(out, *item.Issue.Status)
	}
	sort.Strings(out)
	return out
}

// Selected returns the highlighted issue, if any.
func (m Model) Selected() (model.Issue, bool) {
	item, ok := m.list.SelectedItem().(IssueItem)
	if !ok {
		return model.Issue{}, false
	}
	return item.Issue, true
}

// View renders the issue list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no issues are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.err != nil:
		return style.Render("Could not load bugs.\n\n" + theme.ErrorStyle.Render(m.err.Error()))
	case m.filter.Query != nil || m.filter.Status != nil:
		return style.Render("No matching bugs.\nTry adjusting your filters.")
	default:
		return style.Render("No bugs synced yet.\n\nPress r to refresh.")
	}
}

// LoadIssues returns a tea.Cmd that queries the store with the current
// filter.
func (m Model) LoadIssues() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		issues, err := s.ListIssues(context.Background(), filter)
		return IssuesLoadedMsg{Issues: issues, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
