// Package notifications renders the unread status-change feed.
package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugtriage/internal/keys"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/theme"
)

// CloseMsg asks the parent to leave the view. IDs lists the notifications
// that were on screen so the parent can mark them read.
type CloseMsg struct {
	IDs []string
}

// Model is the notification feed view.
type Model struct {
	items  []model.Notification
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates an empty feed.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetItems replaces the notifications shown.
func (m *Model) SetItems(items []model.Notification) {
	m.items = items
}

// Update handles messages for the feed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		ids := make([]string, len(m.items))
		for i, n := range m.items {
			ids[i] = n.ID
		}
		return m, func() tea.Msg { return CloseMsg{IDs: ids} }
	}
	return m, nil
}

// View renders the feed.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render(fmt.Sprintf("Status changes (%d)", len(m.items)))}
	if len(m.items) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("Nothing new."))
	}

	now := time.Now()
	for _, n := range m.items {
		lines = append(lines, fmt.Sprintf("%s  %s",
			theme.DimmedStyle.Render(since(now, n.CreatedAt)),
			n.Message,
		))
	}

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(strings.Join(lines, "\n"))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func since(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
