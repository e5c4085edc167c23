// Package help renders the overlay listing key bindings and palette
// commands.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugtriage/internal/keys"
	"github.com/nhle/bugtriage/internal/theme"
	"github.com/nhle/bugtriage/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int

	databases []string
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// SetDatabases records the databases being synced so the overlay can list
// them.
func (m *Model) SetDatabases(ids []string) {
	m.databases = ids
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	sections := []string{
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		titleStyle.Render("Commands (:)"),
		commandList(),
	}
	if len(m.databases) > 0 {
		sections = append(sections, "",
			titleStyle.Render("Databases"),
			theme.DimmedStyle.Render(strings.Join(m.databases, "\n")))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

func commandList() string {
	width := 0
	for _, c := range command.Commands {
		width = max(width, len(c.Usage))
	}
	var b strings.Builder
	for i, c := range command.Commands {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-*s  %s", width, c.Usage, theme.DimmedStyle.Render(c.Desc))
	}
	return b.String()
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
