package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/bugtriage/internal/model"
)

// AuthError indicates that authentication has failed or expired for a source.
// It is returned by source clients when a 401 response is received.
type AuthError struct {
	SourceType SourceType
	Message    string

	// Err is the underlying response error, if any.
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of external tracker.
type SourceType string

const (
	SourceTypeNotion SourceType = "notion"
)

// DefaultLimit is the number of issues requested when a caller gives none.
const DefaultLimit = 100

// ListOptions selects which issues a list call returns.
type ListOptions struct {
	// DatabaseID overrides the tracker's default database.
	DatabaseID string

	// Status restricts results to issues in this state. The filter is
	// best-effort: trackers may fall back to an unfiltered listing.
	Status string

	// Limit caps the number of returned issues. Zero returns none.
	Limit int
}

// Tracker defines the contract the API server, poller and TUI depend on.
type Tracker interface {
	// Type returns the source type identifier.
	Type() SourceType

	// ListIssues retrieves issues from a database.
	ListIssues(ctx context.Context, opts ListOptions) ([]model.Issue, error)

	// GetIssue retrieves one issue by its page id.
	GetIssue(ctx context.Context, id string) (model.Issue, error)

	// UpdateStatus writes a new status option to the named property.
	// An empty property uses the tracker's default status property.
	UpdateStatus(ctx context.Context, id, status, property string) error

	// AddComment attaches a plain-text comment to an issue.
	AddComment(ctx context.Context, id, text string) error

	// TestConnection verifies credentials and connectivity. It never
	// fails; a false result carries a human-readable reason.
	TestConnection(ctx context.Context) (bool, string)
}
