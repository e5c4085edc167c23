// Package actionform hosts the huh forms used to act on a single issue.
package actionform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/theme"
)

// StatusSubmittedMsg is dispatched when the status form completes.
type StatusSubmittedMsg struct {
	Issue  model.Issue
	Status string
}

// CommentSubmittedMsg is dispatched when the comment form completes.
type CommentSubmittedMsg struct {
	Issue model.Issue
	Text  string
}

// CancelMsg is dispatched when the user aborts a form.
type CancelMsg struct{}

type kind int

const (
	kindStatus kind = iota
	kindComment
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	status  string
	comment string
}

// Model is the Bubble Tea model for the set-status and comment forms.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	kind   kind
	issue  model.Issue
	width  int
	height int
}

// New creates an idle form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartStatus opens the status form for issue. known seeds the input's
// suggestions with status names seen in the snapshot.
func (m *Model) StartStatus(issue model.Issue, known []string) tea.Cmd {
	m.kind = kindStatus
	m.issue = issue
	m.fb.status = issue.StatusOr("")
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Status").
				Description("Current: " + issue.StatusOr("none")).
				Suggestions(known).
				Value(&m.fb.status).
				Validate(validateRequired("Status")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// StartComment opens the comment form for issue.
func (m *Model) StartComment(issue model.Issue) tea.Cmd {
	m.kind = kindComment
	m.issue = issue
	m.fb.comment = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Comment").
				Placeholder("What did you find?").
				Value(&m.fb.comment).
				Validate(validateRequired("Comment")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the active form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m Model) handleSubmit() tea.Cmd {
	issue := m.issue
	if m.kind == kindComment {
		text := strings.TrimSpace(m.fb.comment)
		return func() tea.Msg { return CommentSubmittedMsg{Issue: issue, Text: text} }
	}
	status := strings.TrimSpace(m.fb.status)
	return func() tea.Msg { return StatusSubmittedMsg{Issue: issue, Status: status} }
}

// View renders the active form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Set status"
	if m.kind == kindComment {
		titleText = "Add comment"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" +
		theme.DimmedStyle.Render(m.issue.Title) + "\n\n" +
		m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-6, 8)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
