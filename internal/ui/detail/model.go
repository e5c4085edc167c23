package detail

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugtriage/internal/keys"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/notion"
	"github.com/nhle/bugtriage/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Action names carried by ActionMsg.
const (
	ActionComment   = "comment"
	ActionSetStatus = "set-status"
	ActionOpen      = "open"
)

// ActionMsg signals the parent to execute an action on the current issue.
type ActionMsg struct {
	Action string
	Issue  model.Issue
}

// Model is the issue detail view component.
type Model struct {
	issue    *model.Issue
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Comment):
			return m, m.action(ActionComment)

		case key.Matches(msg, m.keys.SetStatus):
			return m, m.action(ActionSetStatus)

		case key.Matches(msg, m.keys.Open):
			return m, m.action(ActionOpen)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.issue == nil {
		return nil
	}
	issue := *m.issue
	return func() tea.Msg {
		return ActionMsg{Action: name, Issue: issue}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.issue == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No issue selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.issue == nil {
		return ""
	}

	issue := m.issue
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(issue.Title))

	status := issue.StatusOr("no status")
	priority := issue.PriorityOr("no priority")
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.StatusStyle(issue.StatusOr("")).Render(status),
		"  ",
		theme.PriorityStyle(issue.PriorityOr("")).Render(priority),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf("%s   %s",
		metaStyle.Render("Page:"), valStyle.Render(issue.ID)))
	if issue.URL != "" {
		sections = append(sections, fmt.Sprintf("%s    %s",
			metaStyle.Render("URL:"), valStyle.Render(issue.URL)))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, headerStyle.Render("Description"))
	body := issue.DescriptionOr("")
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	if props := propertyRows(*issue); len(props) > 0 {
		sections = append(sections, "", separator, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Properties (%d)", len(props)),
		))
		for _, p := range props {
			line := fmt.Sprintf("%s  %s", valStyle.Render(p[0]), metaStyle.Render(p[1]))
			if p[2] != "" {
				line += "  " + p[2]
			}
			sections = append(sections, line)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// propertyRows lists every property of the issue as name, type and value,
// sorted by name.
func propertyRows(issue model.Issue) [][3]string {
	names := make([]string, 0, len(issue.RawProperties))
	for name := range issue.RawProperties {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][3]string, 0, len(names))
	for _, name := range names {
		raw, _ := issue.Property(name)
		typ, text := notion.Describe(raw)
		out = append(out, [3]string{name, typ, text})
	}
	return out
}

// SetIssue updates the issue being displayed and re-renders the content.
func (m *Model) SetIssue(issue model.Issue) {
	m.issue = &issue
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Issue returns the displayed issue, if any.
func (m Model) Issue() (model.Issue, bool) {
	if m.issue == nil {
		return model.Issue{}, false
	}
	return *m.issue, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.issue != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
