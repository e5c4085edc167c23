package model

import "time"

// SyncRun is one attempt to refresh the local snapshot of a database.
type SyncRun struct {
	ID         string    `json:"id" db:"id"`
	DatabaseID string    `json:"database_id" db:"database_id"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`

	// Fetched is the number of issues returned by the source.
	Fetched int `json:"fetched" db:"fetched"`

	// Changed is the number of issues whose status differed from the
	// previous snapshot.
	Changed int `json:"changed" db:"changed"`

	// Error is empty for successful runs.
	Error string `json:"error,omitempty" db:"error"`
}

// OK reports whether the run finished without error.
func (r SyncRun) OK() bool {
	return r.Error == ""
}

// Duration is how long the run took.
func (r SyncRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
