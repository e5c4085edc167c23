package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/bugtriage/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// issueRow is the stored form of a model.Issue.
type issueRow struct {
	ID            string         `db:"id"`
	DatabaseID    string         `db:"database_id"`
	Title         string         `db:"title"`
	Description   sql.NullString `db:"description"`
	Status        sql.NullString `db:"status"`
	Priority      sql.NullString `db:"priority"`
	URL           string         `db:"url"`
	RawProperties string         `db:"raw_properties"`
	FetchedAt     time.Time      `db:"fetched_at"`
}

const issueColumns = `id, database_id, title, description, status, priority,
	url, raw_properties, fetched_at`

func (r issueRow) issue() (model.Issue, error) {
	issue := model.Issue{
		ID:          r.ID,
		Title:       r.Title,
		Description: fromNull(r.Description),
		Status:      fromNull(r.Status),
		Priority:    fromNull(r.Priority),
		URL:         r.URL,
	}
	if r.RawProperties != "" {
		if err := json.Unmarshal([]byte(r.RawProperties), &issue.RawProperties); err != nil {
			return model.Issue{}, fmt.Errorf("unmarshaling properties of issue %s: %w", r.ID, err)
		}
	}
	return issue, nil
}

// UpsertIssues inserts or replaces a batch of issues and reports status
// changes against the previous snapshot.
func (s *SQLiteStore) UpsertIssues(
	ctx context.Context,
	databaseID string,
	issues []model.Issue,
	fetchedAt time.Time,
) ([]StatusChange, error) {
	if len(issues) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO issues (` + issueColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (database_id, id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			priority = excluded.priority,
			url = excluded.url,
			raw_properties = excluded.raw_properties,
			fetched_at = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	var changes []StatusChange
	for _, issue := range issues {
		var prev sql.NullString
		err := tx.GetContext(ctx, &prev,
			"SELECT status FROM issues WHERE database_id = ? AND id = ?",
			databaseID, issue.ID,
		)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("reading previous status of %s: %w", issue.ID, err)
		default:
			if !equalStatus(fromNull(prev), issue.Status) {
				changes = append(changes, StatusChange{
					Issue: issue,
					From:  fromNull(prev),
					To:    issue.Status,
				})
			}
		}

		raw, err := json.Marshal(issue.RawProperties)
		if err != nil {
			return nil, fmt.Errorf("marshaling properties of issue %s: %w", issue.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			issue.ID, databaseID, issue.Title,
			toNull(issue.Description), toNull(issue.Status), toNull(issue.Priority),
			issue.URL, string(raw), fetchedAt.UTC(),
		)
		if err != nil {
			return nil, fmt.Errorf("upserting issue %s: %w", issue.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing issues: %w", err)
	}
	return changes, nil
}

// ListIssues retrieves snapshot issues matching the filter.
func (s *SQLiteStore) ListIssues(
	ctx context.Context,
	opts IssueFilter,
) ([]model.Issue, error) {
	var conditions []string
	var args []interface{}

	if opts.DatabaseID != nil {
		conditions = append(conditions, "database_id = ?")
		args = append(args, *opts.DatabaseID)
	}
	if opts.Status != nil {
		conditions = append(conditions, "status = ? COLLATE NOCASE")
		args = append(args, *opts.Status)
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT " + issueColumns + " FROM issues"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "fetched_at"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"title":      true,
			"status":     true,
			"priority":   true,
			"fetched_at": true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	var rows []issueRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}

	issues := make([]model.Issue, 0, len(rows))
	for _, r := range rows {
		issue, err := r.issue()
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// GetIssue retrieves the most recently fetched snapshot of an issue.
func (s *SQLiteStore) GetIssue(ctx context.Context, id string) (*model.Issue, error) {
	var r issueRow
	err := s.db.GetContext(ctx, &r,
		"SELECT "+issueColumns+" FROM issues WHERE id = ? ORDER BY fetched_at DESC LIMIT 1",
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting issue %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue %s: %w", id, err)
	}

	issue, err := r.issue()
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// CountByStatus returns the number of snapshot issues per status in a
// database. Issues without a status are counted under "".
func (s *SQLiteStore) CountByStatus(ctx context.Context, databaseID string) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT COALESCE(status, '') AS status, COUNT(*) AS n
		FROM issues WHERE database_id = ?
		GROUP BY COALESCE(status, '')`,
		databaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting issues by status: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

// RecordSyncRun stores a finished sync run. A run without an ID gets a new
// UUID, which is returned.
func (s *SQLiteStore) RecordSyncRun(ctx context.Context, run model.SyncRun) (model.SyncRun, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, database_id, started_at, finished_at, fetched, changed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DatabaseID, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Fetched, run.Changed, run.Error,
	)
	if err != nil {
		return model.SyncRun{}, fmt.Errorf("recording sync run: %w", err)
	}
	return run, nil
}

// LastSyncRun returns the latest run for a database, or nil if it has never
// been synced.
func (s *SQLiteStore) LastSyncRun(ctx context.Context, databaseID string) (*model.SyncRun, error) {
	var run model.SyncRun
	err := s.db.GetContext(ctx, &run, `
		SELECT id, database_id, started_at, finished_at, fetched, changed, error
		FROM sync_runs WHERE database_id = ?
		ORDER BY finished_at DESC LIMIT 1`,
		databaseID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last sync run: %w", err)
	}
	return &run, nil
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, issue_id, database_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.IssueID, n.DatabaseID, n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.SelectContext(ctx, &notifications, `
		SELECT id, issue_id, database_id, message, read, created_at
		FROM notifications WHERE read = 0 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

func fromNull(ns sql.NullString) *string {
	return model.StringPtr(ns.String, ns.Valid)
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func equalStatus(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
