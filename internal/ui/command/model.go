package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugtriage/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Arg  string
}

// Parse splits a palette line into a command name and its argument. The
// name is lowercased; the argument keeps its case.
func Parse(line string) CommandMsg {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	return CommandMsg{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int

	history []string
	cursor  int // index into history while browsing; len(history) when not
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh | filter <status> | clear | notifications | quit"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette. Up and down walk the
// history of executed lines; tab completes a command name.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			if n := len(m.history); n == 0 || m.history[n-1] != line {
				m.history = append(m.history, line)
			}
			m.cursor = len(m.history)
			return m, func() tea.Msg {
				return Parse(line)
			}
		case "up":
			if m.cursor > 0 {
				m.cursor--
				m.setValue(m.history[m.cursor])
			}
			return m, nil
		case "down":
			if m.cursor < len(m.history) {
				m.cursor++
			}
			if m.cursor == len(m.history) {
				m.input.Reset()
			} else {
				m.setValue(m.history[m.cursor])
			}
			return m, nil
		case "tab":
			if name, ok := Complete(m.input.Value()); ok {
				m.setValue(name)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setValue(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
}

// Complete expands prefix to the single command name it abbreviates. It
// reports false when prefix already has an argument or is ambiguous.
func Complete(prefix string) (string, bool) {
	prefix = strings.ToLower(strings.TrimLeft(prefix, " "))
	if prefix == "" || strings.Contains(prefix, " ") {
		return "", false
	}
	match := ""
	for _, c := range Commands {
		name, _, _ := strings.Cut(c.Usage, " ")
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = name
	}
	if match == "" {
		return "", false
	}
	if match == "filter" {
		match += " "
	}
	return match, true
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
