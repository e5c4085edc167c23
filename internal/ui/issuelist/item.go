package issuelist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/theme"
)

// IssueItem wraps a model.Issue so it can be used in a bubbles/list.
type IssueItem struct {
	Issue model.Issue
}

// FilterValue returns the string used for fuzzy filtering.
func (i IssueItem) FilterValue() string { return i.Issue.Title }

// Title returns the issue title for the list.
func (i IssueItem) Title() string { return i.Issue.Title }

// Description returns a short summary line for the list.
func (i IssueItem) Description() string {
	parts := []string{
		i.Issue.StatusOr("no status"),
		i.Issue.PriorityOr("no priority"),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering list items.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(IssueItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(it.Issue, index == m.Index()))
}

func renderLine(issue model.Issue, selected bool) string {
	status := issue.StatusOr("")
	statusBadge := theme.StatusStyle(status).Render(orDash(status))

	priority := issue.PriorityOr("")
	priBadge := theme.PriorityStyle(priority).Render(priorityLabel(priority))

	line := fmt.Sprintf("● %s %s %s", statusBadge, priBadge, issue.Title)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// priorityLabel returns a short label for a priority option name.
func priorityLabel(p string) string {
	if p == "" {
		return "--"
	}
	r := []rune(p)
	if len(r) > 4 {
		r = r[:4]
	}
	return string(r)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
