package ui

import (
	"testing"

	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/state/selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRequestRow_DetailFields(t *testing.T) {
	mr := model.MergeRequest{
		IID:        7,
		ProjectID:  3,
		Title:      "Fix login",
		WebURL:     "https://gitlab.example.com/g/p/-/merge_requests/7",
		Author:     &model.User{Username: "bob"},
		Labels:     []string{"bug"},
		References: model.References{Full: "g/p!7"},
	}

	plainRow := MergeRequestRow(mr)
	assert.Equal(t, "g/p!7", plainRow.Ref)
	assert.Equal(t, "@bob bug", plainRow.Meta)
	assert.Empty(t, plainRow.Status, "undetailed rows carry no status")
	assert.Empty(t, plainRow.Approvals)

	mr.Detailed = true
	mr.Status = "success"
	mr.NumApprovers = 1
	mr.TotalReviewers = 2
	detailed := MergeRequestRow(mr)
	assert.Equal(t, "success", detailed.Status)
	assert.Equal(t, "1/2", detailed.Approvals)
}

func TestMergeRequestRow_RefFallback(t *testing.T) {
	assert.Equal(t, "!12", MergeRequestRow(model.MergeRequest{IID: 12}).Ref)
	assert.Equal(t, "#4", IssueRow(model.Issue{IID: 4}).Ref)
}

func TestTodoRow(t *testing.T) {
	row := TodoRow(model.Todo{
		ID:         9,
		ActionName: "review_requested",
		TargetType: "MergeRequest",
		TargetURL:  "https://gitlab.example.com/g/p/-/merge_requests/2",
		Author:     &model.User{Username: "carol"},
		Project:    model.TodoProject{PathWithNamespace: "g/p"},
		Target:     &model.TodoTarget{IID: 2, Title: "Add cache"},
	})
	assert.Equal(t, "todo:9", row.Key)
	assert.Equal(t, "@carol review requested merge request: Add cache", row.Title)
	assert.Equal(t, "g/p!2", row.Ref)
}

func TestTabRows(t *testing.T) {
	d := selectors.SidebarData{
		YourPrs:            []model.MergeRequest{{IID: 1}},
		Reviews:            []model.MergeRequest{{IID: 2}, {IID: 3}},
		Todos:              []model.Todo{{ID: 1}},
		YourAssignedIssues: []model.Issue{{IID: 4}},
	}
	assert.Len(t, TabRows(d, state.RHSStateYourPrs), 1)
	assert.Len(t, TabRows(d, state.RHSStateReviews), 2)
	assert.Len(t, TabRows(d, state.RHSStateUnreads), 1)
	require.Len(t, TabRows(d, state.RHSStateAssignments), 1)
	assert.Equal(t, "#4", TabRows(d, state.RHSStateAssignments)[0].Ref)
	assert.Empty(t, TabRows(d, state.RHSState("bogus")))
}

func TestSubscriptionRows(t *testing.T) {
	rows := SubscriptionRows([]model.Subscription{{
		ChannelID:      "c1",
		RepositoryName: "g/p",
		RepositoryURL:  "https://gitlab.example.com/g/p",
		Features:       "merges,issues",
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, "https://gitlab.example.com/g/pc1", rows[0].Key)
	assert.Equal(t, "merges, issues", rows[0].Meta)
}
