package selectors

import (
	"testing"
	"time"

	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mr(id, project int, sha string, reviewers ...string) model.MergeRequest {
	m := model.MergeRequest{ID: id, IID: id, ProjectID: project, SHA: sha, Title: "mr"}
	for _, r := range reviewers {
		m.Reviewers = append(m.Reviewers, model.User{Username: r})
	}
	return m
}

func TestSidebar_MergesByProjectAndSHA(t *testing.T) {
	s := state.Initial()
	s.LHSData = &model.LHSData{
		Reviews: []model.MergeRequest{
			mr(1, 10, "aaa", "x", "y"),
			mr(2, 10, "bbb"),
		},
		YourAssignedPrs: []model.MergeRequest{mr(3, 20, "ccc", "z")},
	}
	s.ReviewDetails = []model.PRDetails{
		{IID: 1, ProjectID: 10, SHA: "aaa", Status: "success", NumApprovers: 1},
		// Same sha, other project: must not match item 2 or item 1.
		{IID: 2, ProjectID: 11, SHA: "bbb", Status: "failed", NumApprovers: 3},
	}
	s.YourPrDetails = []model.PRDetails{{IID: 3, ProjectID: 20, SHA: "ccc", Status: "pending"}}

	d := Sidebar(s)

	require.Len(t, d.Reviews, 2)
	assert.Equal(t, "success", d.Reviews[0].Status)
	assert.Equal(t, 1, d.Reviews[0].NumApprovers)
	assert.Equal(t, 2, d.Reviews[0].TotalReviewers)
	assert.True(t, d.Reviews[0].Detailed)

	assert.Equal(t, s.LHSData.Reviews[1], d.Reviews[1])
	assert.False(t, d.Reviews[1].Detailed)

	require.Len(t, d.YourPrs, 1)
	assert.Equal(t, "pending", d.YourPrs[0].Status)
	assert.Equal(t, 1, d.YourPrs[0].TotalReviewers)

	// The stored list items are untouched.
	assert.Empty(t, s.LHSData.Reviews[0].Status)
}

func TestSidebar_NoLHSData(t *testing.T) {
	s := state.Initial()
	s.Connection.Username = "alice"
	d := Sidebar(s)
	assert.Equal(t, "alice", d.Username)
	assert.Nil(t, d.Reviews)
	assert.Nil(t, d.Todos)
}

func TestSidebar_NoDetailsPassesThrough(t *testing.T) {
	s := state.Initial()
	s.LHSData = &model.LHSData{Reviews: []model.MergeRequest{mr(1, 1, "a")}}
	d := Sidebar(s)
	assert.Equal(t, s.LHSData.Reviews, d.Reviews)
}

func TestSidebarSelector_Memoizes(t *testing.T) {
	store := state.NewStore()
	store.Dispatch(state.ReceivedLHSData{Data: &model.LHSData{Reviews: []model.MergeRequest{mr(1, 1, "a")}}})
	store.Dispatch(state.ReceivedReviewDetails{Data: []model.PRDetails{{ProjectID: 1, SHA: "a", Status: "success"}}})

	sel := NewSidebarSelector()
	first := sel.Select(store.State())

	// An unrelated dispatch keeps the same result.
	store.Dispatch(state.UpdateRHSState{State: state.RHSStateReviews})
	second := sel.Select(store.State())
	assert.Same(t, &first.Reviews[0], &second.Reviews[0])

	// New details produce a new result.
	store.Dispatch(state.ReceivedReviewDetails{Data: []model.PRDetails{{ProjectID: 1, SHA: "a", Status: "failed"}}})
	third := sel.Select(store.State())
	assert.Equal(t, "failed", third.Reviews[0].Status)
	assert.Equal(t, "success", second.Reviews[0].Status)
}

func TestUserCacheFresh(t *testing.T) {
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry model.GitlabUser
		now   time.Time
		want  bool
	}{
		{"resolved username", model.GitlabUser{Username: "alice", LastTry: t0}, t0.Add(48 * time.Hour), true},
		{"never tried", model.GitlabUser{}, t0, false},
		{"negative within cooldown", model.GitlabUser{LastTry: t0}, t0.Add(59 * time.Minute), true},
		{"negative after cooldown", model.GitlabUser{LastTry: t0}, t0.Add(61 * time.Minute), false},
		{"negative exactly at cooldown", model.GitlabUser{LastTry: t0}, t0.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserCacheFresh(tt.entry, tt.now, time.Hour))
		})
	}
}

func TestCachedGitlabUser(t *testing.T) {
	now := time.Now()
	s := state.Initial()
	_, fresh := CachedGitlabUser(s, "u1", now, time.Hour)
	assert.False(t, fresh)

	s = state.Reduce(s, state.ReceivedGitlabUser{UserID: "u1", Data: model.GitlabUser{Username: "alice"}})
	u, fresh := CachedGitlabUser(s, "u1", now, time.Hour)
	assert.True(t, fresh)
	assert.Equal(t, "alice", u.Username)
}

func TestPopoutSnapshot_CarriesBothAxes(t *testing.T) {
	s := state.Initial()
	s = state.Reduce(s, state.SetRHSViewType{ViewType: state.RHSViewSubscriptions})
	s = state.Reduce(s, state.UpdateRHSState{State: state.RHSStateUnreads})

	assert.Equal(t, Snapshot{
		RHSViewType: state.RHSViewSubscriptions,
		RHSState:    state.RHSStateUnreads,
		ChannelID:   "c1",
	}, PopoutSnapshot(s, "c1"))
}

func TestCurrentSubscriptions_PrefersPopoutChannel(t *testing.T) {
	s := state.Initial()
	s = state.Reduce(s, state.ReceivedChannelSubscriptions{ChannelID: "host", Subscriptions: []model.Subscription{{RepositoryURL: "h"}}})
	s = state.Reduce(s, state.ReceivedChannelSubscriptions{ChannelID: "pop", Subscriptions: []model.Subscription{{RepositoryURL: "p"}}})

	id, subs := CurrentSubscriptions(s, "host")
	assert.Equal(t, "host", id)
	assert.Equal(t, "h", subs[0].RepositoryURL)

	s = state.Reduce(s, state.SetPopoutChannelID{ChannelID: "pop"})
	id, subs = CurrentSubscriptions(s, "host")
	assert.Equal(t, "pop", id)
	assert.Equal(t, "p", subs[0].RepositoryURL)

	_, ok := ChannelSubscriptions(s, "missing")
	assert.False(t, ok)
}

func TestTabCounts(t *testing.T) {
	d := SidebarData{Reviews: make([]model.MergeRequest, 2), Todos: make([]model.Todo, 3)}
	c := TabCounts(d)
	assert.Equal(t, 2, c[state.RHSStateReviews])
	assert.Equal(t, 3, c[state.RHSStateUnreads])
	assert.Equal(t, 0, c[state.RHSStateYourPrs])
}
