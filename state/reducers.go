package state

import "github.com/kastheco/glrhs/model"

// Reduce composes the slice reducers into the whole-tree reducer. Unknown events
// leave every slice unchanged.
func Reduce(s PluginState, e Event) PluginState {
	return PluginState{
		Connection:    reduceConnection(s.Connection, e),
		RHS:           reduceRHS(s.RHS, e),
		LHSData:       reduceLHSData(s.LHSData, e),
		ReviewDetails: reduceReviewDetails(s.ReviewDetails, e),
		YourPrDetails: reduceYourPrDetails(s.YourPrDetails, e),
		Subscriptions: reduceSubscriptions(s.Subscriptions, e),
		GitlabUsers:   reduceGitlabUsers(s.GitlabUsers, e),
		Modals:        reduceModals(s.Modals, e),
	}
}

// reduceConnection stores whatever the payload says verbatim. The not_connected
// sentinel is turned into a ReceivedConnected before it gets here.
func reduceConnection(c Connection, e Event) Connection {
	ev, ok := e.(ReceivedConnected)
	if !ok {
		return c
	}
	return Connection{
		Connected:    ev.Data.Connected,
		Username:     ev.Data.GitlabUsername,
		GitlabURL:    ev.Data.GitlabURL,
		Organization: ev.Data.Organization,
		Settings:     ev.Data.Settings,
		ClientID:     ev.Data.GitlabClientID,
	}
}

func reduceRHS(r RHS, e Event) RHS {
	switch ev := e.(type) {
	case SetRHSViewType:
		r.ViewType = ev.ViewType
	case UpdateRHSState:
		r.State = ev.State
	case SetPopoutChannelID:
		r.PopoutChannelID = ev.ChannelID
	}
	return r
}

func reduceLHSData(d *model.LHSData, e Event) *model.LHSData {
	if ev, ok := e.(ReceivedLHSData); ok {
		return ev.Data
	}
	return d
}

func reduceReviewDetails(d []model.PRDetails, e Event) []model.PRDetails {
	if ev, ok := e.(ReceivedReviewDetails); ok {
		return ev.Data
	}
	return d
}

func reduceYourPrDetails(d []model.PRDetails, e Event) []model.PRDetails {
	if ev, ok := e.(ReceivedYourPrDetails); ok {
		return ev.Data
	}
	return d
}

// reduceSubscriptions replaces the whole list for one channel. Other channels
// keep their entries.
func reduceSubscriptions(m map[string][]model.Subscription, e Event) map[string][]model.Subscription {
	ev, ok := e.(ReceivedChannelSubscriptions)
	if !ok {
		return m
	}
	next := make(map[string][]model.Subscription, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[ev.ChannelID] = ev.Subscriptions
	return next
}

// reduceGitlabUsers overwrites the entry for one user, negative-cache entries included.
func reduceGitlabUsers(m map[string]model.GitlabUser, e Event) map[string]model.GitlabUser {
	ev, ok := e.(ReceivedGitlabUser)
	if !ok {
		return m
	}
	next := make(map[string]model.GitlabUser, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[ev.UserID] = ev.Data
	return next
}

func reduceModals(m Modals, e Event) Modals {
	switch ev := e.(type) {
	case OpenCreateIssueModal:
		m.CreateIssue = CreateIssueModal{Visible: true, PostID: ev.PostID, Title: ev.Title, ChannelID: ev.ChannelID}
	case CloseCreateIssueModal:
		m.CreateIssue = CreateIssueModal{}
	case OpenAttachCommentModal:
		m.AttachComment = AttachCommentModal{Visible: true, PostID: ev.PostID}
	case CloseAttachCommentModal:
		m.AttachComment = AttachCommentModal{}
	}
	return m
}
