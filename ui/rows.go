package ui

import (
	"fmt"
	"strings"

	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/state/selectors"
)

// Row is one renderable line item of the RHS: a merge request, an issue, a
// todo or a subscription card.
type Row struct {
	Key         string
	Title       string
	Ref         string // "group/project!12", "#4", repository name
	Meta        string // secondary text: author, labels, features
	Status      string // pipeline status, empty when unknown
	Approvals   string // "1/2", empty when no detail record matched
	Draft       bool
	URL         string
	Description string
}

func userName(u *model.User) string {
	if u == nil || u.Username == "" {
		return ""
	}
	return "@" + u.Username
}

func mergeRequestRef(mr model.MergeRequest) string {
	if mr.References.Full != "" {
		return mr.References.Full
	}
	return fmt.Sprintf("!%d", mr.IID)
}

func issueRef(is model.Issue) string {
	if is.References.Full != "" {
		return is.References.Full
	}
	return fmt.Sprintf("#%d", is.IID)
}

// MergeRequestRow converts a (possibly detail-merged) merge request.
func MergeRequestRow(mr model.MergeRequest) Row {
	r := Row{
		Key:         fmt.Sprintf("mr:%d:%d", mr.ProjectID, mr.IID),
		Title:       mr.Title,
		Ref:         mergeRequestRef(mr),
		Meta:        strings.TrimSpace(userName(mr.Author) + " " + strings.Join(mr.Labels, ", ")),
		Draft:       mr.Draft,
		URL:         mr.WebURL,
		Description: mr.Description,
	}
	if mr.Detailed {
		r.Status = mr.Status
		if mr.TotalReviewers > 0 {
			r.Approvals = fmt.Sprintf("%d/%d", mr.NumApprovers, mr.TotalReviewers)
		}
	}
	return r
}

// IssueRow converts an issue.
func IssueRow(is model.Issue) Row {
	return Row{
		Key:         fmt.Sprintf("issue:%d:%d", is.ProjectID, is.IID),
		Title:       is.Title,
		Ref:         issueRef(is),
		Meta:        strings.TrimSpace(userName(is.Author) + " " + strings.Join(is.Labels, ", ")),
		URL:         is.WebURL,
		Description: is.Description,
	}
}

// TodoRow converts a todo. The title reads like GitLab's own to-do list.
func TodoRow(td model.Todo) Row {
	target := strings.ToLower(strings.ReplaceAll(td.TargetType, "MergeRequest", "merge request"))
	title := strings.TrimSpace(fmt.Sprintf("%s %s %s", userName(td.Author), strings.ReplaceAll(td.ActionName, "_", " "), target))
	ref := td.Project.PathWithNamespace
	if td.Target != nil {
		title += ": " + td.Target.Title
		if td.Target.IID > 0 {
			sep := "#"
			if td.TargetType == "MergeRequest" {
				sep = "!"
			}
			ref = fmt.Sprintf("%s%s%d", ref, sep, td.Target.IID)
		}
	}
	return Row{
		Key:         fmt.Sprintf("todo:%d", td.ID),
		Title:       title,
		Ref:         ref,
		URL:         td.TargetURL,
		Description: td.Body,
	}
}

// SubscriptionRow converts a subscription card.
func SubscriptionRow(s model.Subscription) Row {
	return Row{
		Key:   s.Key(),
		Title: s.RepositoryName,
		Ref:   s.RepositoryURL,
		Meta:  strings.ReplaceAll(s.Features, ",", ", "),
		URL:   s.RepositoryURL,
	}
}

// TabRows returns the rows of one sidebar_right tab.
func TabRows(d selectors.SidebarData, tab state.RHSState) []Row {
	var rows []Row
	switch tab {
	case state.RHSStateYourPrs:
		for _, mr := range d.YourPrs {
			rows = append(rows, MergeRequestRow(mr))
		}
	case state.RHSStateReviews:
		for _, mr := range d.Reviews {
			rows = append(rows, MergeRequestRow(mr))
		}
	case state.RHSStateUnreads:
		for _, td := range d.Todos {
			rows = append(rows, TodoRow(td))
		}
	case state.RHSStateAssignments:
		for _, is := range d.YourAssignedIssues {
			rows = append(rows, IssueRow(is))
		}
	}
	return rows
}

// SubscriptionRows returns one row per subscription card.
func SubscriptionRows(subs []model.Subscription) []Row {
	rows := make([]Row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, SubscriptionRow(s))
	}
	return rows
}

// IssueRows returns one row per issue, used for search results.
func IssueRows(issues []model.Issue) []Row {
	rows := make([]Row, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, IssueRow(is))
	}
	return rows
}
