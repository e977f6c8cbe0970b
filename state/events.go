package state

import "github.com/kastheco/glrhs/model"

// EventKind names an event for logs and the journal.
type EventKind string

const (
	KindReceivedConnected            EventKind = "RECEIVED_CONNECTED"
	KindReceivedLHSData              EventKind = "RECEIVED_LHS_DATA"
	KindReceivedReviewDetails        EventKind = "RECEIVED_REVIEW_DETAILS"
	KindReceivedYourPrDetails        EventKind = "RECEIVED_YOUR_PR_DETAILS"
	KindReceivedGitlabUser           EventKind = "RECEIVED_GITLAB_USER"
	KindReceivedChannelSubscriptions EventKind = "RECEIVED_CHANNEL_SUBSCRIPTIONS"
	KindSetRHSViewType               EventKind = "SET_RHS_VIEW_TYPE"
	KindUpdateRHSState               EventKind = "UPDATE_RHS_STATE"
	KindSetPopoutChannelID           EventKind = "SET_POPOUT_CHANNEL_ID"
	KindOpenCreateIssueModal         EventKind = "OPEN_CREATE_ISSUE_MODAL"
	KindCloseCreateIssueModal        EventKind = "CLOSE_CREATE_ISSUE_MODAL"
	KindOpenAttachCommentModal       EventKind = "OPEN_ATTACH_COMMENT_TO_ISSUE_MODAL"
	KindCloseAttachCommentModal      EventKind = "CLOSE_ATTACH_COMMENT_TO_ISSUE_MODAL"
)

// Event is a typed state change. The set is closed: only this package defines
// events, so reducers can switch exhaustively.
type Event interface {
	Kind() EventKind
	isEvent()
}

type ReceivedConnected struct{ Data model.ConnectedData }

type ReceivedLHSData struct{ Data *model.LHSData }

type ReceivedReviewDetails struct{ Data []model.PRDetails }

type ReceivedYourPrDetails struct{ Data []model.PRDetails }

type ReceivedGitlabUser struct {
	UserID string
	Data   model.GitlabUser
}

type ReceivedChannelSubscriptions struct {
	ChannelID     string
	Subscriptions []model.Subscription
}

type SetRHSViewType struct{ ViewType RHSViewType }

type UpdateRHSState struct{ State RHSState }

type SetPopoutChannelID struct{ ChannelID string }

type OpenCreateIssueModal struct {
	PostID    string
	Title     string
	ChannelID string
}

type CloseCreateIssueModal struct{}

type OpenAttachCommentModal struct{ PostID string }

type CloseAttachCommentModal struct{}

func (ReceivedConnected) Kind() EventKind            { return KindReceivedConnected }
func (ReceivedLHSData) Kind() EventKind              { return KindReceivedLHSData }
func (ReceivedReviewDetails) Kind() EventKind        { return KindReceivedReviewDetails }
func (ReceivedYourPrDetails) Kind() EventKind        { return KindReceivedYourPrDetails }
func (ReceivedGitlabUser) Kind() EventKind           { return KindReceivedGitlabUser }
func (ReceivedChannelSubscriptions) Kind() EventKind { return KindReceivedChannelSubscriptions }
func (SetRHSViewType) Kind() EventKind               { return KindSetRHSViewType }
func (UpdateRHSState) Kind() EventKind               { return KindUpdateRHSState }
func (SetPopoutChannelID) Kind() EventKind           { return KindSetPopoutChannelID }
func (OpenCreateIssueModal) Kind() EventKind         { return KindOpenCreateIssueModal }
func (CloseCreateIssueModal) Kind() EventKind        { return KindCloseCreateIssueModal }
func (OpenAttachCommentModal) Kind() EventKind       { return KindOpenAttachCommentModal }
func (CloseAttachCommentModal) Kind() EventKind      { return KindCloseAttachCommentModal }

func (ReceivedConnected) isEvent()            {}
func (ReceivedLHSData) isEvent()              {}
func (ReceivedReviewDetails) isEvent()        {}
func (ReceivedYourPrDetails) isEvent()        {}
func (ReceivedGitlabUser) isEvent()           {}
func (ReceivedChannelSubscriptions) isEvent() {}
func (SetRHSViewType) isEvent()               {}
func (UpdateRHSState) isEvent()               {}
func (SetPopoutChannelID) isEvent()           {}
func (OpenCreateIssueModal) isEvent()         {}
func (CloseCreateIssueModal) isEvent()        {}
func (OpenAttachCommentModal) isEvent()       {}
func (CloseAttachCommentModal) isEvent()      {}

// Disconnected is the event synthesized when the server reports the user has no
// linked GitLab account.
func Disconnected() ReceivedConnected {
	return ReceivedConnected{Data: model.ConnectedData{
		Connected:      false,
		GitlabUsername: "",
		GitlabClientID: "",
		Settings:       model.Settings{},
	}}
}
