package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/nhle/bugtriage/internal/keys"
	"github.com/nhle/bugtriage/internal/source"
	"github.com/nhle/bugtriage/internal/store"
	appsync "github.com/nhle/bugtriage/internal/sync"
	"github.com/nhle/bugtriage/internal/ui"
	"github.com/nhle/bugtriage/internal/ui/actionform"
	"github.com/nhle/bugtriage/internal/ui/command"
	"github.com/nhle/bugtriage/internal/ui/detail"
	helpview "github.com/nhle/bugtriage/internal/ui/help"
	"github.com/nhle/bugtriage/internal/ui/issuelist"
	"github.com/nhle/bugtriage/internal/ui/notifications"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewForm
	ViewNotifications
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the tracker and the snapshot store.
type Model struct {
	currentView      ViewState
	previousView     ViewState
	layout           ui.Layout
	store            store.Store
	tracker          source.Tracker
	keys             *keys.KeyMap
	issueList        issuelist.Model
	detail           detail.Model
	helpView         helpview.Model
	commandView      command.Model
	formView         actionform.Model
	notifyView       notifications.Model
	poller           *appsync.Poller
	ready            bool
	unreadCount      int
	authErrorMessage string
	flash            string

	// openURL opens a link in the user's browser.
	openURL func(string) error
}

// New creates a new root application model. The poller must sync into s
// using tracker.
func New(tracker source.Tracker, s store.Store, poller *appsync.Poller) Model {
	k := keys.DefaultKeyMap()

	hv := helpview.New(k, 80, 24)
	var dbs []string
	for _, st := range poller.GetStatuses() {
		dbs = append(dbs, st.DatabaseID)
	}
	hv.SetDatabases(dbs)

	return Model{
		currentView: ViewList,
		store:       s,
		tracker:     tracker,
		keys:        k,
		issueList:   issuelist.New(s, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		helpView:    hv,
		commandView: command.New(80, 24),
		formView:    actionform.New(80, 24),
		notifyView:  notifications.New(k, 80, 24),
		poller:      poller,
		openURL:     browser.OpenURL,
	}
}

// Init loads the snapshot, starts polling and begins listening for sync
// results.
func (m Model) Init() tea.Cmd {
	m.poller.Start()
	return tea.Batch(
		m.issueList.Init(),
		m.fetchUnreadCount(),
		m.poller.WaitForNextResult(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.issueList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.formView.SetSize(contentWidth, contentHeight)
		m.notifyView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}

		// After a sync completes, reload the list and update the unread
		// notification count.
		return m, tea.Batch(
			m.issueList.LoadIssues(),
			m.poller.WaitForNextResult(),
			m.fetchUnreadCount(),
		)

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case notificationsLoadedMsg:
		m.notifyView.SetItems(msg.items)
		return m, nil

	case notifications.CloseMsg:
		m.currentView = ViewList
		return m, m.markRead(msg.IDs)

	case issuelist.SelectedIssueMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetIssue(msg.Issue)
		return m, m.loadIssue(msg.Issue.ID)

	case issueLoadedMsg:
		if current, ok := m.detail.Issue(); ok && current.ID == msg.issue.ID {
			m.detail.SetIssue(msg.issue)
		}
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		if msg.Action == detail.ActionOpen {
			return m, m.openIssue(msg.Issue)
		}
		return m, m.startAction(msg.Action, msg.Issue)

	case actionform.StatusSubmittedMsg:
		m.currentView = m.previousView
		m.flash = "updating status..."
		return m, m.updateStatus(msg.Issue, msg.Status)

	case actionform.CommentSubmittedMsg:
		m.currentView = m.previousView
		m.flash = "posting comment..."
		return m, m.addComment(msg.Issue, msg.Text)

	case actionform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case actionResultMsg:
		m.flash = msg.text()
		if source.IsAuthError(msg.err) {
			m.authErrorMessage = "Authentication failed. Run 'bugtriage login' to update your Notion token."
		}
		if msg.err == nil && msg.refresh {
			m.poller.RefreshAll()
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case tea.KeyMsg:
		if m.currentView == ViewForm || m.issueList.Searching() {
			break
		}

		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			m.poller.Stop()
			return m, tea.Quit

		case "q":
			if m.currentView == ViewList {
				m.poller.Stop()
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewCommand {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}

		case "r":
			if m.currentView == ViewList {
				m.poller.RefreshAll()
				return m, m.issueList.LoadIssues()
			}

		case "n":
			if m.currentView == ViewList {
				return m, m.openNotifications()
			}

		case "o":
			if m.currentView == ViewList {
				if issue, ok := m.issueList.Selected(); ok {
					return m, m.openIssue(issue)
				}
				return m, nil
			}

		case "s", "c":
			if m.currentView == ViewList {
				issue, ok := m.issueList.Selected()
				if !ok {
					return m, nil
				}
				action := detail.ActionSetStatus
				if msg.String() == "c" {
					action = detail.ActionComment
				}
				return m, m.startAction(action, issue)
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.issueList, cmd = m.issueList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewNotifications:
		m.notifyView, cmd = m.notifyView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	badge := ""
	if m.unreadCount > 0 {
		badge = fmt.Sprintf("%d new", m.unreadCount)
	}
	header := m.layout.RenderHeader("Bug Triage", badge, m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.issueList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewForm:
		return m.formView.View()
	case ViewNotifications:
		return m.notifyView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the combined sync state.
func (m Model) syncStatus() string {
	statuses := m.poller.GetStatuses()
	if len(statuses) == 0 {
		return "no databases"
	}

	running := 0
	var failed []string
	for _, s := range statuses {
		switch s.State {
		case appsync.SyncRunning:
			running++
		case appsync.SyncError:
			failed = append(failed, s.DatabaseID)
		}
	}

	if running > 0 {
		return fmt.Sprintf("syncing (%d)", running)
	}
	if len(failed) > 0 {
		return "unreachable: " + strings.Join(failed, ", ")
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// Show auth error prominently when present.
	if m.authErrorMessage != "" && m.currentView == ViewList {
		return m.authErrorMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | ↑/↓ history | esc back"
	case ViewDetail:
		return "esc back | s set status | c comment | o open | j/k scroll"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewNotifications:
		return "esc mark read and close"
	default:
		hints := "q quit | ? help | / search | s status | c comment | o open | n notifications | tab sort"
		if summary := m.issueList.FilterSummary(); summary != "" {
			hints = summary + " | :clear"
		}
		if m.flash != "" {
			hints = m.flash + " | " + hints
		}
		return hints
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Name {
	case "refresh", "sync", "r":
		m.poller.RefreshAll()
		return m.issueList.LoadIssues()
	case "quit", "q":
		m.poller.Stop()
		return tea.Quit
	case "filter", "status":
		m.currentView = ViewList
		return m.issueList.SetStatusFilter(cmd.Arg)
	case "clear":
		m.currentView = ViewList
		return m.issueList.ClearFilters()
	case "notifications", "inbox":
		return m.openNotifications()
	default:
		m.flash = fmt.Sprintf("unknown command %q", cmd.Name)
		return nil
	}
}
