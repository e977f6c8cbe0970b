// Package selectors derives read-only views from state.PluginState. Nothing here
// is stored back into the tree.
package selectors

import (
	"reflect"
	"sync"
	"time"

	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
)

// SidebarData is the merged list view rendered by the RHS tabs.
type SidebarData struct {
	Username           string
	Reviews            []model.MergeRequest
	YourPrs            []model.MergeRequest
	YourAssignedIssues []model.Issue
	Todos              []model.Todo
	Organization       string
	GitlabURL          string
}

// mergeDetails joins each item to the detail record with the same (project_id, sha).
// Items without a match are returned unchanged.
func mergeDetails(items []model.MergeRequest, details []model.PRDetails) []model.MergeRequest {
	if len(items) == 0 || len(details) == 0 {
		return items
	}
	byKey := make(map[model.DetailKey]model.PRDetails, len(details))
	for _, d := range details {
		byKey[d.Key()] = d
	}
	out := make([]model.MergeRequest, len(items))
	for i, item := range items {
		d, ok := byKey[item.Key()]
		if !ok {
			out[i] = item
			continue
		}
		item.Status = d.Status
		item.NumApprovers = d.NumApprovers
		item.TotalReviewers = len(item.Reviewers)
		item.Detailed = true
		out[i] = item
	}
	return out
}

// sidebarInputs is the identity of everything SidebarData depends on. Slices are
// compared by header, the LHS payload by pointer.
type sidebarInputs struct {
	lhs          *model.LHSData
	reviewDet    sliceID
	yourPrDet    sliceID
	username     string
	organization string
	gitlabURL    string
}

type sliceID struct {
	ptr uintptr
	len int
}

func idOf[T any](s []T) sliceID {
	return sliceID{ptr: reflect.ValueOf(s).Pointer(), len: len(s)}
}

// SidebarSelector memoizes SidebarData on the identity of its inputs. It is safe
// for concurrent use; each view holding one gets stable results between
// unrelated dispatches.
type SidebarSelector struct {
	mu     sync.Mutex
	primed bool
	last   sidebarInputs
	result SidebarData
}

// NewSidebarSelector returns an empty memoized selector.
func NewSidebarSelector() *SidebarSelector {
	return &SidebarSelector{}
}

// Select returns the merged sidebar view for s, recomputing only when one of
// the inputs changed identity.
func (sel *SidebarSelector) Select(s state.PluginState) SidebarData {
	in := sidebarInputs{
		lhs:          s.LHSData,
		reviewDet:    idOf(s.ReviewDetails),
		yourPrDet:    idOf(s.YourPrDetails),
		username:     s.Connection.Username,
		organization: s.Connection.Organization,
		gitlabURL:    s.Connection.GitlabURL,
	}

	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.primed && in == sel.last {
		return sel.result
	}
	sel.result = Sidebar(s)
	sel.last = in
	sel.primed = true
	return sel.result
}

// Sidebar computes the merged sidebar view without memoization.
func Sidebar(s state.PluginState) SidebarData {
	data := SidebarData{
		Username:     s.Connection.Username,
		Organization: s.Connection.Organization,
		GitlabURL:    s.Connection.GitlabURL,
	}
	if s.LHSData == nil {
		return data
	}
	data.Reviews = mergeDetails(s.LHSData.Reviews, s.ReviewDetails)
	data.YourPrs = mergeDetails(s.LHSData.YourAssignedPrs, s.YourPrDetails)
	data.YourAssignedIssues = s.LHSData.YourAssignedIssues
	data.Todos = s.LHSData.Todos
	return data
}

// UserCacheFresh reports whether a cached GitLab user entry can be used without
// asking the server again. A resolved username is always fresh; a failed lookup
// stays fresh until cooldown has passed since LastTry.
func UserCacheFresh(entry model.GitlabUser, now time.Time, cooldown time.Duration) bool {
	if entry.Username != "" {
		return true
	}
	if entry.LastTry.IsZero() {
		return false
	}
	return now.Sub(entry.LastTry) < cooldown
}

// CachedGitlabUser looks up userID and reports whether the entry is fresh.
func CachedGitlabUser(s state.PluginState, userID string, now time.Time, cooldown time.Duration) (model.GitlabUser, bool) {
	entry, ok := s.GitlabUsers[userID]
	if !ok {
		return model.GitlabUser{}, false
	}
	return entry, UserCacheFresh(entry, now, cooldown)
}

// Snapshot is what the main window sends to a popout.
type Snapshot struct {
	RHSViewType state.RHSViewType
	RHSState    state.RHSState
	ChannelID   string
}

// PopoutSnapshot captures both RHS axes plus the channel the requesting popout
// belongs to. The channel comes from the host, not from the state tree.
func PopoutSnapshot(s state.PluginState, channelID string) Snapshot {
	return Snapshot{
		RHSViewType: s.RHS.ViewType,
		RHSState:    s.RHS.State,
		ChannelID:   channelID,
	}
}

// ChannelSubscriptions returns the subscriptions known for channelID and whether
// any fetch for that channel has completed.
func ChannelSubscriptions(s state.PluginState, channelID string) ([]model.Subscription, bool) {
	subs, ok := s.Subscriptions[channelID]
	return subs, ok
}

// CurrentSubscriptions picks the channel a view should show: the popout channel
// when one was synced, otherwise the host's current channel.
func CurrentSubscriptions(s state.PluginState, hostChannelID string) (string, []model.Subscription) {
	channelID := hostChannelID
	if s.RHS.PopoutChannelID != "" {
		channelID = s.RHS.PopoutChannelID
	}
	subs, _ := ChannelSubscriptions(s, channelID)
	return channelID, subs
}

// ConnectedInfo is the connection summary shown in the status bar.
type ConnectedInfo struct {
	Connected    bool
	Username     string
	GitlabURL    string
	Organization string
}

// Connected extracts the connection summary.
func Connected(s state.PluginState) ConnectedInfo {
	return ConnectedInfo{
		Connected:    s.Connection.Connected,
		Username:     s.Connection.Username,
		GitlabURL:    s.Connection.GitlabURL,
		Organization: s.Connection.Organization,
	}
}

// TabCounts returns the number of items shown on each sidebar_right tab.
func TabCounts(d SidebarData) map[state.RHSState]int {
	return map[state.RHSState]int{
		state.RHSStateYourPrs:     len(d.YourPrs),
		state.RHSStateReviews:     len(d.Reviews),
		state.RHSStateUnreads:     len(d.Todos),
		state.RHSStateAssignments: len(d.YourAssignedIssues),
	}
}
