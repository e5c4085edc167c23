package model

import "time"

// Notification records a change noticed on a tracked issue between two
// snapshots.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// IssueID is the page the change was seen on.
	IssueID string `json:"issue_id" db:"issue_id"`

	DatabaseID string `json:"database_id" db:"database_id"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
