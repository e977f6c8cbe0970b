// Package state owns the plugin's single state tree: the typed PluginState, the
// sealed set of events that change it, the pure reducers that apply them and the
// Store that serializes dispatch.
package state

import "github.com/kastheco/glrhs/model"

// RHSViewType selects which component the single RHS slot renders.
type RHSViewType string

const (
	RHSViewSubscriptions RHSViewType = "subscriptions"
	RHSViewSidebarRight  RHSViewType = "sidebar_right"
)

// RHSState selects the tab inside the sidebar_right view.
type RHSState string

const (
	RHSStateYourPrs     RHSState = "pull_requests_authored"
	RHSStateReviews     RHSState = "reviews"
	RHSStateUnreads     RHSState = "unreads"
	RHSStateAssignments RHSState = "assignments"
)

// RHSStates lists the sidebar_right tabs in display order.
var RHSStates = []RHSState{RHSStateYourPrs, RHSStateReviews, RHSStateUnreads, RHSStateAssignments}

// Connection is the slice replaced wholesale by ReceivedConnected.
type Connection struct {
	Connected    bool
	Username     string
	GitlabURL    string
	Organization string
	Settings     model.Settings
	ClientID     string
}

// RHS holds the two independent view axes plus the channel a popout synced to.
type RHS struct {
	ViewType        RHSViewType
	State           RHSState
	PopoutChannelID string
}

// CreateIssueModal is open when Visible is set. PostID and ChannelID link the
// issue back to the message it was created from.
type CreateIssueModal struct {
	Visible   bool
	PostID    string
	Title     string
	ChannelID string
}

// AttachCommentModal is open when Visible is set.
type AttachCommentModal struct {
	Visible bool
	PostID  string
}

// Modals groups the modal slices.
type Modals struct {
	CreateIssue   CreateIssueModal
	AttachComment AttachCommentModal
}

// PluginState is the whole state tree. Maps are copy-on-write: a reducer that
// changes an entry allocates a new map, so a PluginState value handed out by
// Store.State is never mutated afterwards.
type PluginState struct {
	Connection    Connection
	RHS           RHS
	LHSData       *model.LHSData
	ReviewDetails []model.PRDetails
	YourPrDetails []model.PRDetails
	Subscriptions map[string][]model.Subscription
	GitlabUsers   map[string]model.GitlabUser
	Modals        Modals
}

// Initial returns the state a freshly loaded plugin starts with.
func Initial() PluginState {
	return PluginState{
		RHS: RHS{
			ViewType: RHSViewSidebarRight,
			State:    RHSStateYourPrs,
		},
		Subscriptions: map[string][]model.Subscription{},
		GitlabUsers:   map[string]model.GitlabUser{},
	}
}

// Getter reads the current state.
type Getter interface {
	State() PluginState
}

// Dispatcher applies an event to the state tree.
type Dispatcher interface {
	Dispatch(Event)
}

// ReadDispatcher is what action creators and protocol handlers are given.
type ReadDispatcher interface {
	Getter
	Dispatcher
}
