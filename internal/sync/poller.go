package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
	"github.com/nhle/bugtriage/internal/store"
)

// SyncState represents the current state of a database sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the sync state for a single database.
type SyncStatus struct {
	DatabaseID string
	State      SyncState
	LastSync   time.Time
	Fetched    int
	Error      error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes.
type SyncResultMsg struct {
	DatabaseID string
	Issues     []model.Issue
	Changes    []store.StatusChange
	Error      error
	AuthError  *AuthErrorMsg
}

// AuthErrorMsg is a tea.Msg sent when the tracker rejects the token.
type AuthErrorMsg struct {
	DatabaseID string
	Message    string
}

// fetchTimeout bounds a single sync. A filtered list may cost two query
// round-trips plus the schema read, so it is twice the request timeout.
const fetchTimeout = 2 * model.DefaultTimeout

// Options configures a Poller.
type Options struct {
	// Interval between polls of each database. Zero means
	// model.DefaultPollInterval seconds.
	Interval time.Duration

	// Limit caps the issues fetched per database. Zero means
	// source.DefaultLimit.
	Limit int

	Logger hclog.Logger
}

// Poller keeps the local snapshot of one or more databases up to date.
type Poller struct {
	tracker   source.Tracker
	store     store.Store
	databases []string
	interval  time.Duration
	limit     int
	logger    hclog.Logger

	statuses map[string]*SyncStatus
	triggers map[string]chan struct{}
	resultCh chan SyncResultMsg
	stopCh   chan struct{}
	wg       gosync.WaitGroup
	mu       gosync.Mutex
	running  bool
}

// New creates a Poller for the given databases.
func New(tracker source.Tracker, s store.Store, databases []string, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = model.DefaultPollInterval * time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = source.DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	p := &Poller{
		tracker:   tracker,
		store:     s,
		databases: databases,
		interval:  opts.Interval,
		limit:     opts.Limit,
		logger:    opts.Logger.Named("sync"),
		statuses:  make(map[string]*SyncStatus, len(databases)),
		triggers:  make(map[string]chan struct{}, len(databases)),
		resultCh:  make(chan SyncResultMsg, 16),
		stopCh:    closedChan(),
	}
	for _, id := range databases {
		p.statuses[id] = &SyncStatus{DatabaseID: id, State: SyncIdle}
		p.triggers[id] = make(chan struct{}, 1)
	}
	return p
}

// Start launches one polling goroutine per database. Each polls once
// immediately and then on every interval. A stopped Poller may be started
// again.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})

	for _, id := range p.databases {
		p.wg.Add(1)
		go p.pollDatabase(id, p.stopCh)
	}
	p.logger.Info("poller started", "databases", len(p.databases), "interval", p.interval)
}

// Stop halts all polling goroutines and waits for in-flight syncs.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// RefreshAll triggers an immediate poll of every database.
func (p *Poller) RefreshAll() {
	for _, id := range p.databases {
		p.RefreshDatabase(id)
	}
}

// RefreshDatabase triggers an immediate poll of one database. A refresh
// already pending for it absorbs the request.
func (p *Poller) RefreshDatabase(id string) {
	ch, ok := p.triggers[id]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// GetStatuses returns the current sync status of every database, ordered by
// database id.
func (p *Poller) GetStatuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].DatabaseID < statuses[j].DatabaseID
	})
	return statuses
}

// SyncOnce syncs every database in turn and returns their failures
// combined.
func (p *Poller) SyncOnce(ctx context.Context) error {
	var result *multierror.Error
	for _, id := range p.databases {
		msg := p.syncDatabase(ctx, id)
		if msg.Error != nil {
			result = multierror.Append(result, fmt.Errorf("database %s: %w", id, msg.Error))
		}
	}
	return result.ErrorOrNil()
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it again after each SyncResultMsg to keep listening. The command
// yields nil once the Poller is stopped, or at once if it is not running.
func (p *Poller) WaitForNextResult() tea.Cmd {
	p.mu.Lock()
	stop := p.stopCh
	p.mu.Unlock()

	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-stop:
			return nil
		}
	}
}

func (p *Poller) pollDatabase(id string, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetchAndUpsert(id)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fetchAndUpsert(id)
		case <-p.triggers[id]:
			p.fetchAndUpsert(id)
		}
	}
}

func (p *Poller) fetchAndUpsert(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	p.sendResult(p.syncDatabase(ctx, id))
}

// syncDatabase fetches one database, writes the snapshot, records status
// changes as notifications and logs the run.
func (p *Poller) syncDatabase(ctx context.Context, id string) SyncResultMsg {
	p.setStatus(id, SyncRunning, 0, nil)
	run := model.SyncRun{DatabaseID: id, StartedAt: time.Now()}

	result := SyncResultMsg{DatabaseID: id}
	result.Issues, result.Error = p.tracker.ListIssues(ctx, source.ListOptions{
		DatabaseID: id,
		Limit:      p.limit,
	})

	if result.Error == nil {
		result.Changes, result.Error = p.store.UpsertIssues(ctx, id, result.Issues, time.Now())
	}

	if result.Error == nil {
		for _, c := range result.Changes {
			n := model.Notification{
				IssueID:    c.Issue.ID,
				DatabaseID: id,
				Message:    ChangeMessage(c),
			}
			if err := p.store.CreateNotification(ctx, n); err != nil {
				p.logger.Warn("failed to store notification", "issue_id", c.Issue.ID, "error", err)
			}
		}
	}

	run.FinishedAt = time.Now()
	run.Fetched = len(result.Issues)
	run.Changed = len(result.Changes)
	if result.Error != nil {
		run.Error = result.Error.Error()
	}
	if _, err := p.store.RecordSyncRun(ctx, run); err != nil {
		p.logger.Warn("failed to record sync run", "database_id", id, "error", err)
	}

	if result.Error != nil {
		p.setStatus(id, SyncError, 0, result.Error)
		p.logger.Error("sync failed", "database_id", id, "error", result.Error)

		if source.IsAuthError(result.Error) {
			result.AuthError = &AuthErrorMsg{
				DatabaseID: id,
				Message:    "notion: authentication failed. Run 'bugtriage login' to store a new token.",
			}
		}
		return result
	}

	p.setStatus(id, SyncIdle, run.Fetched, nil)
	p.logger.Info("sync complete",
		"database_id", id, "fetched", run.Fetched,
		"changed", run.Changed, "took", run.Duration())
	return result
}

// ChangeMessage renders a status change for display.
func ChangeMessage(c store.StatusChange) string {
	return fmt.Sprintf("%s: %s → %s", c.Issue.Title, statusText(c.From), statusText(c.To))
}

func statusText(s *string) string {
	if s == nil {
		return "(none)"
	}
	return *s
}

func (p *Poller) setStatus(id string, state SyncState, fetched int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[id]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = time.Now()
		status.Fetched = fetched
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}
