package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/bugtriage/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// IssueFilter controls filtering, sorting, and pagination for snapshot
// queries.
type IssueFilter struct {
	DatabaseID *string
	Status     *string
	Query      *string // search title + description
	SortBy     string  // "title", "status", "priority", "fetched_at"
	SortDesc   bool
	Limit      int
	Offset     int
}

// Store defines the persistence interface for the local issue snapshot.
type Store interface {
	// === Issues ===

	// UpsertIssues writes a batch of issues fetched from databaseID. It
	// returns the issues whose status differs from the stored snapshot.
	// Issues seen for the first time are not reported as changed.
	UpsertIssues(ctx context.Context, databaseID string, issues []model.Issue, fetchedAt time.Time) ([]StatusChange, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]model.Issue, error)
	GetIssue(ctx context.Context, id string) (*model.Issue, error)
	CountByStatus(ctx context.Context, databaseID string) (map[string]int, error)

	// === Sync runs ===

	RecordSyncRun(ctx context.Context, run model.SyncRun) (model.SyncRun, error)
	LastSyncRun(ctx context.Context, databaseID string) (*model.SyncRun, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	Close() error
}

// StatusChange describes an issue whose status moved between snapshots.
type StatusChange struct {
	Issue model.Issue
	From  *string
	To    *string
}
