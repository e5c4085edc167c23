package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/pageref"
	"github.com/nhle/bugtriage/internal/ui/detail"
)

// actionTimeout bounds one tracker write started from the UI.
const actionTimeout = 2 * model.DefaultTimeout

// actionResultMsg reports the outcome of a tracker write.
type actionResultMsg struct {
	done    string
	err     error
	refresh bool
}

func (r actionResultMsg) text() string {
	if r.err != nil {
		return "error: " + r.err.Error()
	}
	return r.done
}

type issueLoadedMsg struct {
	issue model.Issue
}

type notificationsLoadedMsg struct {
	items []model.Notification
}

// startAction opens the form for a detail or list action.
func (m *Model) startAction(action string, issue model.Issue) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewForm
	m.flash = ""

	switch action {
	case detail.ActionComment:
		return m.formView.StartComment(issue)
	default:
		return m.formView.StartStatus(issue, m.issueList.Statuses())
	}
}

// updateStatus writes a new status through the tracker. The property name is
// left to the tracker's configured default.
func (m Model) updateStatus(issue model.Issue, status string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		err := t.UpdateStatus(ctx, issue.ID, status, "")
		return actionResultMsg{
			done:    fmt.Sprintf("%s → %s", issue.Title, status),
			err:     err,
			refresh: true,
		}
	}
}

// addComment posts a comment on the issue's page.
func (m Model) addComment(issue model.Issue, text string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		err := t.AddComment(ctx, issue.ID, text)
		return actionResultMsg{
			done: "commented on " + issue.Title,
			err:  err,
		}
	}
}

// openIssue opens the issue's page in the default browser.
func (m Model) openIssue(issue model.Issue) tea.Cmd {
	open := m.openURL
	return func() tea.Msg {
		link := issue.URL
		if link == "" {
			link = pageref.URL(issue.ID)
		}
		if link == "" {
			return actionResultMsg{err: fmt.Errorf("no link for %q", issue.Title)}
		}
		if err := open(link); err != nil {
			return actionResultMsg{err: fmt.Errorf("opening %s: %w", link, err)}
		}
		return actionResultMsg{done: "opened " + issue.Title}
	}
}

// loadIssue reads the latest snapshot of an issue from the store. Missing
// rows leave the detail view as it is.
func (m Model) loadIssue(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		issue, err := s.GetIssue(context.Background(), id)
		if err != nil || issue == nil {
			return nil
		}
		return issueLoadedMsg{issue: *issue}
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the store for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		notifications, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}

// openNotifications switches to the feed and loads unread notifications.
func (m *Model) openNotifications() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewNotifications
	m.notifyView.SetItems(nil)

	s := m.store
	return func() tea.Msg {
		items, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return actionResultMsg{err: err}
		}
		return notificationsLoadedMsg{items: items}
	}
}

// markRead marks the given notifications read and refreshes the counter.
func (m Model) markRead(ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		var result *multierror.Error
		for _, id := range ids {
			if err := s.MarkNotificationRead(ctx, id); err != nil {
				result = multierror.Append(result, err)
			}
		}
		if err := result.ErrorOrNil(); err != nil {
			return actionResultMsg{err: err}
		}

		unread, err := s.GetUnreadNotifications(ctx)
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(unread)}
	}
}
