// Package journal records every dispatched state event in SQLite so that state
// changes of the main window and of popouts can be inspected after the fact.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kastheco/glrhs/state"
)

// Window tells which process recorded an entry.
type Window string

const (
	WindowMain   Window = "main"
	WindowPopout Window = "popout"
)

// Entry is a single journal row.
type Entry struct {
	ID        int64
	Kind      state.EventKind
	Timestamp time.Time
	Window    Window
	ChannelID string
	Message   string
	Detail    string // JSON-encoded event fields
	Level     string // info, warn
}

// QueryFilter specifies criteria for querying journal entries.
type QueryFilter struct {
	Window    Window
	ChannelID string
	Kinds     []state.EventKind
	Limit     int
	Before    time.Time
	After     time.Time
}

// Journal is the interface for recording and querying entries.
type Journal interface {
	Record(e Entry)
	Query(f QueryFilter) ([]Entry, error)
	Close() error
}

// nopJournal is used when no journal path is configured.
type nopJournal struct{}

// Nop returns a Journal that discards all entries.
func Nop() Journal { return nopJournal{} }

func (nopJournal) Record(Entry) {}

func (nopJournal) Query(QueryFilter) ([]Entry, error) { return nil, nil }

func (nopJournal) Close() error { return nil }

// Observer is registered with state.Store.Observe. It turns every event into an
// entry tagged with window.
type Observer interface {
	Observe(fn func(state.Event, state.PluginState))
}

// Attach records every event dispatched to store.
func Attach(store Observer, j Journal, window Window) {
	store.Observe(func(e state.Event, s state.PluginState) {
		j.Record(EntryFor(e, s, window))
	})
}

// EntryFor describes e. Bulk payloads are summarized by counts.
func EntryFor(e state.Event, s state.PluginState, window Window) Entry {
	entry := Entry{
		Kind:      e.Kind(),
		Timestamp: time.Now(),
		Window:    window,
		Level:     "info",
	}

	var detail any
	switch ev := e.(type) {
	case state.ReceivedConnected:
		entry.Message = fmt.Sprintf("connected=%t user=%q", ev.Data.Connected, ev.Data.GitlabUsername)
		if !ev.Data.Connected {
			entry.Level = "warn"
		}
	case state.ReceivedLHSData:
		if ev.Data == nil {
			entry.Message = "lhs data cleared"
			break
		}
		entry.Message = "lhs data received"
		detail = map[string]int{
			"reviews":              len(ev.Data.Reviews),
			"your_assigned_prs":    len(ev.Data.YourAssignedPrs),
			"your_assigned_issues": len(ev.Data.YourAssignedIssues),
			"todos":                len(ev.Data.Todos),
		}
	case state.ReceivedReviewDetails:
		entry.Message = fmt.Sprintf("%d review details", len(ev.Data))
	case state.ReceivedYourPrDetails:
		entry.Message = fmt.Sprintf("%d pr details", len(ev.Data))
	case state.ReceivedGitlabUser:
		if ev.Data.Username == "" {
			entry.Message = fmt.Sprintf("user %s not found", ev.UserID)
		} else {
			entry.Message = fmt.Sprintf("user %s is %s", ev.UserID, ev.Data.Username)
		}
		detail = ev
	case state.ReceivedChannelSubscriptions:
		entry.ChannelID = ev.ChannelID
		entry.Message = fmt.Sprintf("%d subscriptions", len(ev.Subscriptions))
	case state.SetRHSViewType:
		entry.Message = "view " + string(ev.ViewType)
	case state.UpdateRHSState:
		entry.Message = "tab " + string(ev.State)
	case state.SetPopoutChannelID:
		entry.ChannelID = ev.ChannelID
		entry.Message = "popout channel " + ev.ChannelID
	case state.OpenCreateIssueModal:
		entry.ChannelID = ev.ChannelID
		entry.Message = "create issue modal opened"
		detail = ev
	case state.CloseCreateIssueModal:
		entry.Message = "create issue modal closed"
	case state.OpenAttachCommentModal:
		entry.Message = "attach comment modal opened"
		detail = ev
	case state.CloseAttachCommentModal:
		entry.Message = "attach comment modal closed"
	}

	if entry.ChannelID == "" {
		entry.ChannelID = s.RHS.PopoutChannelID
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			entry.Detail = string(b)
		}
	}
	return entry
}
