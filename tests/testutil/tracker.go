package testutil

import (
	"context"
	"sync"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
)

// StatusUpdate records one FakeTracker.UpdateStatus call.
type StatusUpdate struct {
	ID       string
	Status   string
	Property string
}

// Comment records one FakeTracker.AddComment call.
type Comment struct {
	ID   string
	Text string
}

// FakeTracker is an in-memory source.Tracker. Issues are keyed by database
// id; the empty key is the default database.
type FakeTracker struct {
	mu sync.Mutex

	Issues map[string][]model.Issue

	// Err, when set, is returned by every call that can fail.
	Err error

	ConnectionError string

	ListCalls []source.ListOptions
	Updates   []StatusUpdate
	Comments  []Comment
}

var _ source.Tracker = (*FakeTracker)(nil)

// NewFakeTracker returns a tracker serving issues from the default
// database.
func NewFakeTracker(issues ...model.Issue) *FakeTracker {
	return &FakeTracker{Issues: map[string][]model.Issue{"": issues}}
}

func (f *FakeTracker) Type() source.SourceType { return source.SourceTypeNotion }

func (f *FakeTracker) ListIssues(_ context.Context, opts source.ListOptions) ([]model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListCalls = append(f.ListCalls, opts)
	if f.Err != nil {
		return nil, f.Err
	}

	out := []model.Issue{}
	for _, issue := range f.Issues[opts.DatabaseID] {
		if len(out) >= opts.Limit {
			break
		}
		if opts.Status != "" && issue.StatusOr("") != opts.Status {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (f *FakeTracker) GetIssue(_ context.Context, id string) (model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return model.Issue{}, f.Err
	}
	for _, issues := range f.Issues {
		for _, issue := range issues {
			if issue.ID == id {
				return issue, nil
			}
		}
	}
	return model.Issue{}, &NotFoundError{ID: id}
}

func (f *FakeTracker) UpdateStatus(_ context.Context, id, status, property string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	f.Updates = append(f.Updates, StatusUpdate{ID: id, Status: status, Property: property})
	for db, issues := range f.Issues {
		for i := range issues {
			if issues[i].ID == id {
				s := status
				f.Issues[db][i].Status = &s
			}
		}
	}
	return nil
}

func (f *FakeTracker) AddComment(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	f.Comments = append(f.Comments, Comment{ID: id, Text: text})
	return nil
}

func (f *FakeTracker) TestConnection(context.Context) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ConnectionError != "" {
		return false, f.ConnectionError
	}
	return true, ""
}

// SetErr changes Err under the tracker's lock.
func (f *FakeTracker) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// NotFoundError is returned by GetIssue for unknown ids.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "issue " + e.ID + " not found"
}
