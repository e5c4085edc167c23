package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/store"
)

// NewTestStore returns an in-memory SQLiteStore with migrations applied,
// closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryPath)
	require.NoError(t, err, "opening test store")

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedStore returns a test store holding issues as a snapshot of
// databaseID fetched now.
func SeedStore(t *testing.T, databaseID string, issues ...model.Issue) *store.SQLiteStore {
	t.Helper()

	s := NewTestStore(t)
	_, err := s.UpsertIssues(context.Background(), databaseID, issues, time.Now())
	require.NoError(t, err, "seeding test store")
	return s
}
