// Package model holds the GitLab plugin payloads shared by the API client, the
// state store and the views. Field names follow the plugin's JSON.
package model

import "time"

// NotConnectedID is the error id the plugin answers with when the Mattermost user
// has not linked a GitLab account.
const NotConnectedID = "not_connected"

// Settings are the per-user plugin settings returned with the connection status.
type Settings struct {
	SidebarButtons string `json:"sidebar_buttons,omitempty"`
	DailyReminder  bool   `json:"daily_reminder"`
	Notifications  bool   `json:"notifications"`
}

// ConnectedData is the body of GET /connected and of the gitlab_connect push event.
type ConnectedData struct {
	Connected      bool     `json:"connected"`
	GitlabUsername string   `json:"gitlab_username"`
	GitlabURL      string   `json:"gitlab_url"`
	Organization   string   `json:"organization"`
	Settings       Settings `json:"settings"`
	GitlabClientID string   `json:"gitlab_client_id"`
}

// User is a GitLab user as embedded in merge requests, issues and todos.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	WebURL    string `json:"web_url,omitempty"`
}

// References carries GitLab's short and full references, e.g. "group/project!12".
type References struct {
	Short string `json:"short,omitempty"`
	Full  string `json:"full,omitempty"`
}

// MergeRequest is a lightweight merge request list item from GET /lhs-data.
// Status, NumApprovers and TotalReviewers are only set on items returned by the
// sidebar selector after a matching detail record was found.
type MergeRequest struct {
	ID          int        `json:"id"`
	IID         int        `json:"iid"`
	ProjectID   int        `json:"project_id"`
	SHA         string     `json:"sha"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	State       string     `json:"state"`
	Draft       bool       `json:"draft,omitempty"`
	WebURL      string     `json:"web_url"`
	Author      *User      `json:"author,omitempty"`
	Reviewers   []User     `json:"reviewers,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	References  References `json:"references"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Status         string `json:"status,omitempty"`
	NumApprovers   int    `json:"num_approvers,omitempty"`
	TotalReviewers int    `json:"total_reviewers,omitempty"`
	Detailed       bool   `json:"-"`
}

// Issue is a lightweight issue list item.
type Issue struct {
	ID          int        `json:"id"`
	IID         int        `json:"iid"`
	ProjectID   int        `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	State       string     `json:"state"`
	WebURL      string     `json:"web_url"`
	Author      *User      `json:"author,omitempty"`
	Assignees   []User     `json:"assignees,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	References  References `json:"references"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TodoProject is the project a todo belongs to.
type TodoProject struct {
	ID                int    `json:"id"`
	PathWithNamespace string `json:"path_with_namespace"`
}

// TodoTarget is the merge request or issue a todo points at.
type TodoTarget struct {
	IID   int    `json:"iid"`
	Title string `json:"title"`
}

// Todo is an unread GitLab to-do item.
type Todo struct {
	ID         int         `json:"id"`
	ActionName string      `json:"action_name"`
	TargetType string      `json:"target_type"`
	TargetURL  string      `json:"target_url"`
	Body       string      `json:"body"`
	State      string      `json:"state"`
	Author     *User       `json:"author,omitempty"`
	Project    TodoProject `json:"project"`
	Target     *TodoTarget `json:"target,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// LHSData is the bulk list payload of GET /lhs-data.
type LHSData struct {
	Reviews            []MergeRequest `json:"reviews"`
	YourAssignedPrs    []MergeRequest `json:"yourAssignedPrs"`
	YourAssignedIssues []Issue        `json:"yourAssignedIssues"`
	Todos              []Todo         `json:"todos"`
}

// PRDetailsRequest identifies one merge request in a POST /prdetails body.
type PRDetailsRequest struct {
	IID       int    `json:"iid"`
	ProjectID int    `json:"project_id"`
	SHA       string `json:"sha"`
}

// PRDetails is the heavier per-merge-request record. It is joined to list items
// by (ProjectID, SHA), never by id.
type PRDetails struct {
	IID          int    `json:"iid"`
	ProjectID    int    `json:"project_id"`
	SHA          string `json:"sha"`
	Status       string `json:"status"`
	NumApprovers int    `json:"num_approvers"`
}

// DetailKey is the composite join key between list items and detail records.
type DetailKey struct {
	ProjectID int
	SHA       string
}

// Key returns the join key of the merge request.
func (mr MergeRequest) Key() DetailKey { return DetailKey{ProjectID: mr.ProjectID, SHA: mr.SHA} }

// Key returns the join key of the detail record.
func (d PRDetails) Key() DetailKey { return DetailKey{ProjectID: d.ProjectID, SHA: d.SHA} }

// DetailsRequest builds the POST /prdetails body for a list of merge requests.
func DetailsRequest(mrs []MergeRequest) []PRDetailsRequest {
	out := make([]PRDetailsRequest, 0, len(mrs))
	for _, mr := range mrs {
		out = append(out, PRDetailsRequest{IID: mr.IID, ProjectID: mr.ProjectID, SHA: mr.SHA})
	}
	return out
}

// Subscription is one channel subscription to a GitLab project or group.
type Subscription struct {
	ChannelID      string `json:"channel_id"`
	CreatorID      string `json:"creator_id"`
	Features       string `json:"features"`
	RepositoryName string `json:"repository_name"`
	RepositoryURL  string `json:"repository_url"`
}

// Key is the card identity of a subscription.
func (s Subscription) Key() string { return s.RepositoryURL + s.ChannelID }

// GitlabUser is a cached resolution of a Mattermost user to a GitLab username.
// An entry with a LastTry and no Username records a failed lookup.
type GitlabUser struct {
	Username string    `json:"username,omitempty"`
	LastTry  time.Time `json:"last_try,omitempty"`
}

// IssueRequest is the body of POST /issue.
type IssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ProjectID   int      `json:"project_id"`
	Labels      []string `json:"labels,omitempty"`
	Assignees   []int    `json:"assignees,omitempty"`
	Milestone   int      `json:"milestone,omitempty"`
	PostID      string   `json:"post_id,omitempty"`
	ChannelID   string   `json:"channel_id,omitempty"`
}

// CommentRequest is the body of POST /attach_comment_to_issue.
type CommentRequest struct {
	ProjectID int    `json:"project_id"`
	IssueIID  int    `json:"iid"`
	PostID    string `json:"post_id"`
	Comment   string `json:"comment"`
	WebURL    string `json:"web_url,omitempty"`
}

// Note is a GitLab comment created by POST /attach_comment_to_issue.
type Note struct {
	ID     int    `json:"id"`
	Body   string `json:"body"`
	WebURL string `json:"web_url,omitempty"`
}
