package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/store"
	"github.com/nhle/bugtriage/tests/testutil"
)

func ptr(s string) *string { return &s }

func TestUpsertAndGetIssue(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	issue := testutil.Issue("p1", "Login fails", "Open")
	issue.Priority = ptr("High")

	changes, err := s.UpsertIssues(ctx, "db1", []model.Issue{issue}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, changes, "first sighting is not a change")

	got, err := s.GetIssue(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Login fails", got.Title)
	assert.Equal(t, "Open", got.StatusOr(""))
	assert.Equal(t, "High", got.PriorityOr(""))
	assert.Nil(t, got.Description)
	assert.JSONEq(t, string(issue.RawProperties["Status"]), string(got.RawProperties["Status"]))

	_, err = s.GetIssue(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertReportsStatusChanges(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertIssues(ctx, "db1", []model.Issue{
		testutil.Issue("p1", "One", "Open"),
		testutil.Issue("p2", "Two", "Open"),
		testutil.Issue("p3", "Three", ""),
	}, time.Now())
	require.NoError(t, err)

	changes, err := s.UpsertIssues(ctx, "db1", []model.Issue{
		testutil.Issue("p1", "One", "Done"),
		testutil.Issue("p2", "Two renamed", "Open"),
		testutil.Issue("p3", "Three", "Backlog"),
		testutil.Issue("p4", "Four", "Open"),
	}, time.Now())
	require.NoError(t, err)

	require.Len(t, changes, 2)
	assert.Equal(t, "p1", changes[0].Issue.ID)
	assert.Equal(t, "Open", *changes[0].From)
	assert.Equal(t, "Done", *changes[0].To)
	assert.Equal(t, "p3", changes[1].Issue.ID)
	assert.Nil(t, changes[1].From)

	got, err := s.GetIssue(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Two renamed", got.Title)
}

func TestListIssuesFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertIssues(ctx, "db1", []model.Issue{
		testutil.Issue("a", "Crash on save", "Open"),
		testutil.Issue("b", "Typo in footer", "Done"),
		testutil.Issue("c", "Crash on load", "open"),
	}, time.Now())
	require.NoError(t, err)
	_, err = s.UpsertIssues(ctx, "db2", []model.Issue{
		testutil.Issue("d", "Other database", "Open"),
	}, time.Now())
	require.NoError(t, err)

	all, err := s.ListIssues(ctx, store.IssueFilter{SortBy: "title"})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "Crash on load", all[0].Title)

	db1, err := s.ListIssues(ctx, store.IssueFilter{DatabaseID: ptr("db1")})
	require.NoError(t, err)
	assert.Len(t, db1, 3)

	open, err := s.ListIssues(ctx, store.IssueFilter{DatabaseID: ptr("db1"), Status: ptr("OPEN")})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	crashes, err := s.ListIssues(ctx, store.IssueFilter{Query: ptr("crash"), SortBy: "title", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, crashes, 2)
	assert.Equal(t, "Crash on save", crashes[0].Title)

	page, err := s.ListIssues(ctx, store.IssueFilter{SortBy: "title", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Crash on save", page[0].Title)
}

func TestCountByStatus(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertIssues(ctx, "db1", []model.Issue{
		testutil.Issue("a", "A", "Open"),
		testutil.Issue("b", "B", "Open"),
		testutil.Issue("c", "C", ""),
	}, time.Now())
	require.NoError(t, err)

	counts, err := s.CountByStatus(ctx, "db1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Open": 2, "": 1}, counts)
}

func TestSyncRuns(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	last, err := s.LastSyncRun(ctx, "db1")
	require.NoError(t, err)
	assert.Nil(t, last)

	start := time.Now().Add(-time.Minute)
	first, err := s.RecordSyncRun(ctx, model.SyncRun{
		DatabaseID: "db1", StartedAt: start, FinishedAt: start.Add(time.Second), Fetched: 3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = s.RecordSyncRun(ctx, model.SyncRun{
		DatabaseID: "db1", StartedAt: start.Add(30 * time.Second),
		FinishedAt: start.Add(31 * time.Second), Error: "boom",
	})
	require.NoError(t, err)

	last, err = s.LastSyncRun(ctx, "db1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "boom", last.Error)
	assert.False(t, last.OK())
	assert.WithinDuration(t, start.Add(31*time.Second), last.FinishedAt, time.Millisecond)
}

func TestNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		IssueID: "p1", DatabaseID: "db1", Message: "One: Open → Done",
	}))

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "p1", unread[0].IssueID)
	assert.False(t, unread[0].Read)

	require.NoError(t, s.MarkNotificationRead(ctx, unread[0].ID))

	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
