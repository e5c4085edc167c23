package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
	"github.com/nhle/bugtriage/internal/store"
	appsync "github.com/nhle/bugtriage/internal/sync"
	"github.com/nhle/bugtriage/internal/ui/actionform"
	"github.com/nhle/bugtriage/internal/ui/command"
	"github.com/nhle/bugtriage/internal/ui/detail"
	"github.com/nhle/bugtriage/internal/ui/issuelist"
	"github.com/nhle/bugtriage/internal/ui/notifications"
	"github.com/nhle/bugtriage/tests/testutil"
)

type fixture struct {
	model   Model
	store   store.Store
	tracker *testutil.FakeTracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := testutil.NewTestStore(t)
	tracker := &testutil.FakeTracker{Issues: map[string][]model.Issue{
		"db1": {testutil.Issue("p1", "Crash on save", "Open")},
	}}
	p := appsync.New(tracker, s, []string{"db1"}, appsync.Options{Interval: time.Hour})
	require.NoError(t, p.SyncOnce(context.Background()))

	m := New(tracker, s, p)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return &fixture{model: m, store: s, tracker: tracker}
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestStatusUpdateFlow(t *testing.T) {
	f := newFixture(t)
	issue := testutil.Issue("p1", "Crash on save", "Open")

	m, cmd := stepCmd(t, f.model, actionform.StatusSubmittedMsg{Issue: issue, Status: "Done"})
	assert.Equal(t, "updating status...", m.flash)
	require.NotNil(t, cmd)

	m = step(t, m, cmd())
	assert.Equal(t, "Crash on save → Done", m.flash)
	assert.Equal(t, []testutil.StatusUpdate{{ID: "p1", Status: "Done"}}, f.tracker.Updates)
	assert.Contains(t, m.keyHints(), "Crash on save → Done")
}

func TestActionAuthErrorShowsLoginHint(t *testing.T) {
	f := newFixture(t)
	f.tracker.Err = &source.AuthError{SourceType: source.SourceTypeNotion, Message: "expired"}

	_, cmd := stepCmd(t, f.model, actionform.CommentSubmittedMsg{
		Issue: testutil.Issue("p1", "Crash on save", "Open"),
		Text:  "still happening",
	})
	m := step(t, f.model, cmd())

	assert.Contains(t, m.flash, "error:")
	assert.Contains(t, m.keyHints(), "bugtriage login")
}

func TestSyncResultAuthError(t *testing.T) {
	f := newFixture(t)

	m := step(t, f.model, appsync.SyncResultMsg{
		DatabaseID: "db1",
		Error:      errors.New("denied"),
		AuthError:  &appsync.AuthErrorMsg{DatabaseID: "db1", Message: "Run 'bugtriage login'"},
	})
	assert.Equal(t, "Run 'bugtriage login'", m.keyHints())

	m = step(t, m, appsync.SyncResultMsg{DatabaseID: "db1"})
	assert.Empty(t, m.authErrorMessage)
}

func TestSelectOpensDetail(t *testing.T) {
	f := newFixture(t)
	issue := testutil.Issue("p1", "Crash on save", "Open")

	m, cmd := stepCmd(t, f.model, issuelist.SelectedIssueMsg{Issue: issue})
	assert.Equal(t, ViewDetail, m.currentView)
	require.NotNil(t, cmd)

	loaded, ok := cmd().(issueLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "p1", loaded.issue.ID)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDetail, m.currentView)
}

func TestNotificationsFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.CreateNotification(ctx, model.Notification{
		IssueID: "p1", DatabaseID: "db1", Message: "Crash on save: Open → Done",
	}))

	m, cmd := stepCmd(t, f.model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, ViewNotifications, m.currentView)

	m = step(t, m, cmd())
	assert.Contains(t, m.renderContent(), "Crash on save: Open → Done")

	m, cmd = stepCmd(t, m, notifications.CloseMsg{IDs: func() []string {
		unread, err := f.store.GetUnreadNotifications(ctx)
		require.NoError(t, err)
		return []string{unread[0].ID}
	}()})
	assert.Equal(t, ViewList, m.currentView)
	require.NotNil(t, cmd)

	m = step(t, m, cmd())
	assert.Equal(t, 0, m.unreadCount)
}

func TestCommandPalette(t *testing.T) {
	f := newFixture(t)

	m, cmd := stepCmd(t, f.model, command.CommandMsg{Name: "filter", Arg: "done"})
	require.NotNil(t, cmd)
	m = step(t, m, cmd())
	assert.Equal(t, "status: done", m.issueList.FilterSummary())

	m, cmd = stepCmd(t, m, command.CommandMsg{Name: "bogus"})
	assert.Nil(t, cmd)
	assert.Equal(t, `unknown command "bogus"`, m.flash)
}

func TestSyncStatus(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "idle", f.model.syncStatus())

	f.tracker.Err = errors.New("boom")
	require.Error(t, f.model.poller.SyncOnce(context.Background()))
	assert.Equal(t, "unreachable: db1", f.model.syncStatus())
}

func TestOpenIssueInBrowser(t *testing.T) {
	f := newFixture(t)
	var opened []string
	f.model.openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}

	issue := testutil.Issue("p1", "Crash on save", "Open")
	m, cmd := stepCmd(t, f.model, detail.ActionMsg{Action: detail.ActionOpen, Issue: issue})
	require.NotNil(t, cmd)
	m = step(t, m, cmd())

	assert.Equal(t, []string{"https://www.notion.so/p1"}, opened)
	assert.Equal(t, "opened Crash on save", m.flash)

	f.model.openURL = func(string) error { return errors.New("no display") }
	_, cmd = stepCmd(t, f.model, detail.ActionMsg{Action: detail.ActionOpen, Issue: issue})
	m = step(t, f.model, cmd())
	assert.Contains(t, m.flash, "no display")
}
