package actions

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kastheco/glrhs/internal/pluginapi"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notConnected = &pluginapi.APIError{StatusCode: http.StatusOK, ID: model.NotConnectedID}

// fakeAPI answers from its func fields and counts calls.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	connected     func(bool) (*model.ConnectedData, error)
	lhs           func() (*model.LHSData, error)
	details       func([]model.PRDetailsRequest) ([]model.PRDetails, error)
	subscriptions func(context.Context, string) ([]model.Subscription, error)
	user          func(string) (string, error)
}

func (f *fakeAPI) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) GetConnected(_ context.Context, reminder bool) (*model.ConnectedData, error) {
	f.count("connected")
	return f.connected(reminder)
}

func (f *fakeAPI) GetLHSData(context.Context) (*model.LHSData, error) {
	f.count("lhs")
	return f.lhs()
}

func (f *fakeAPI) GetPrsDetails(_ context.Context, prs []model.PRDetailsRequest) ([]model.PRDetails, error) {
	f.count("details")
	return f.details(prs)
}

func (f *fakeAPI) GetChannelSubscriptions(ctx context.Context, channelID string) ([]model.Subscription, error) {
	f.count("subscriptions")
	return f.subscriptions(ctx, channelID)
}

func (f *fakeAPI) GetGitlabUser(_ context.Context, userID string) (string, error) {
	f.count("user")
	return f.user(userID)
}

func (f *fakeAPI) CreateIssue(_ context.Context, req model.IssueRequest) (*model.Issue, error) {
	f.count("create_issue")
	return &model.Issue{IID: 1, Title: req.Title}, nil
}

func (f *fakeAPI) AttachCommentToIssue(context.Context, model.CommentRequest) (*model.Note, error) {
	f.count("attach_comment")
	return &model.Note{ID: 1}, nil
}

func (f *fakeAPI) SearchIssues(context.Context, string) ([]model.Issue, error) {
	f.count("search")
	return nil, notConnected
}

func connectedStore() *state.Store {
	s := state.NewStore()
	s.Dispatch(state.ReceivedConnected{Data: model.ConnectedData{
		Connected:      true,
		GitlabUsername: "alice",
		GitlabClientID: "cid",
		Settings:       model.Settings{Notifications: true},
	}})
	return s
}

func TestGetConnected_Dispatches(t *testing.T) {
	store := state.NewStore()
	api := &fakeAPI{connected: func(reminder bool) (*model.ConnectedData, error) {
		assert.True(t, reminder)
		return &model.ConnectedData{Connected: true, GitlabUsername: "alice"}, nil
	}}

	data, err := New(api, store).GetConnected(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, data.Connected)
	assert.Equal(t, "alice", store.State().Connection.Username)
}

func TestNotConnectedSentinel_DispatchesDisconnectAndFails(t *testing.T) {
	store := connectedStore()
	var events []state.Event
	store.Observe(func(e state.Event, _ state.PluginState) { events = append(events, e) })

	api := &fakeAPI{lhs: func() (*model.LHSData, error) { return nil, notConnected }}

	data, err := New(api, store).GetLHSData(context.Background())
	require.Error(t, err)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.True(t, pluginapi.IsNotConnected(err))

	require.Len(t, events, 1)
	assert.Equal(t, state.Disconnected(), events[0])
	assert.Equal(t, state.Connection{}, store.State().Connection)
	assert.Nil(t, store.State().LHSData)
}

func TestNotConnectedSentinel_EveryAction(t *testing.T) {
	api := &fakeAPI{
		connected:     func(bool) (*model.ConnectedData, error) { return nil, notConnected },
		lhs:           func() (*model.LHSData, error) { return nil, notConnected },
		details:       func([]model.PRDetailsRequest) ([]model.PRDetails, error) { return nil, notConnected },
		subscriptions: func(context.Context, string) ([]model.Subscription, error) { return nil, notConnected },
		user:          func(string) (string, error) { return "", notConnected },
	}
	ctx := context.Background()
	prs := []model.MergeRequest{{IID: 1, ProjectID: 1, SHA: "a"}}

	calls := map[string]func(a *Actions) error{
		"connected":     func(a *Actions) error { _, err := a.GetConnected(ctx, false); return err },
		"lhs":           func(a *Actions) error { _, err := a.GetLHSData(ctx); return err },
		"review":        func(a *Actions) error { _, err := a.GetReviewDetails(ctx, prs); return err },
		"your":          func(a *Actions) error { _, err := a.GetYourPrDetails(ctx, prs); return err },
		"subscriptions": func(a *Actions) error { _, err := a.GetChannelSubscriptions(ctx, "c1"); return err },
		"user":          func(a *Actions) error { _, err := a.GetGitlabUser(ctx, "u1"); return err },
		"search":        func(a *Actions) error { _, err := a.SearchIssues(ctx, "x"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			store := connectedStore()
			err := call(New(api, store))
			assert.ErrorIs(t, err, ErrNotConnected)
			assert.False(t, store.State().Connection.Connected)
			assert.Empty(t, store.State().Connection.Username)
		})
	}
}

func TestHTTPFailure_DoesNotDisconnect(t *testing.T) {
	store := connectedStore()
	boom := &pluginapi.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	api := &fakeAPI{lhs: func() (*model.LHSData, error) { return nil, boom }}

	_, err := New(api, store).GetLHSData(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConnected)
	assert.True(t, store.State().Connection.Connected)
}

func TestGetGitlabUser_NegativeCacheCooldown(t *testing.T) {
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	now := t0
	store := state.NewStore()
	api := &fakeAPI{user: func(string) (string, error) {
		return "", &pluginapi.APIError{StatusCode: http.StatusNotFound}
	}}
	a := New(api, store, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := a.GetGitlabUser(ctx, "u1")
	require.Error(t, err)
	assert.True(t, pluginapi.IsNotFound(err))
	assert.Equal(t, model.GitlabUser{LastTry: t0}, store.State().GitlabUsers["u1"])
	assert.Equal(t, 1, api.Calls("user"))

	now = t0.Add(59 * time.Minute)
	entry, err := a.GetGitlabUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entry.Username)
	assert.Equal(t, 1, api.Calls("user"), "lookup within the cooldown must not hit the network")

	now = t0.Add(61 * time.Minute)
	_, _ = a.GetGitlabUser(ctx, "u1")
	assert.Equal(t, 2, api.Calls("user"), "lookup after the cooldown must hit the network")
	assert.Equal(t, now, store.State().GitlabUsers["u1"].LastTry)
}

func TestGetGitlabUser_ConfigurableCooldown(t *testing.T) {
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	now := t0
	api := &fakeAPI{user: func(string) (string, error) {
		return "", &pluginapi.APIError{StatusCode: http.StatusNotFound}
	}}
	a := New(api, state.NewStore(),
		WithClock(func() time.Time { return now }),
		WithUserCacheCooldown(5*time.Minute))

	_, _ = a.GetGitlabUser(context.Background(), "u1")
	now = t0.Add(6 * time.Minute)
	_, _ = a.GetGitlabUser(context.Background(), "u1")
	assert.Equal(t, 2, api.Calls("user"))
}

func TestGetGitlabUser_ResolvedIsCachedForever(t *testing.T) {
	now := time.Now()
	store := state.NewStore()
	api := &fakeAPI{user: func(id string) (string, error) { return "alice", nil }}
	a := New(api, store, WithClock(func() time.Time { return now }))

	u, err := a.GetGitlabUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	now = now.Add(72 * time.Hour)
	u, err = a.GetGitlabUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, 1, api.Calls("user"))
}

func TestGetChannelSubscriptions_LastIssuedWins(t *testing.T) {
	store := state.NewStore()
	release := make(chan struct{})
	first := []model.Subscription{{ChannelID: "c1", RepositoryURL: "old"}}
	second := []model.Subscription{{ChannelID: "c1", RepositoryURL: "new"}}

	var n int
	var mu sync.Mutex
	api := &fakeAPI{subscriptions: func(context.Context, string) ([]model.Subscription, error) {
		mu.Lock()
		n++
		call := n
		mu.Unlock()
		if call == 1 {
			<-release
			return first, nil
		}
		return second, nil
	}}
	a := New(api, store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		subs, err := a.GetChannelSubscriptions(context.Background(), "c1")
		assert.NoError(t, err)
		assert.Equal(t, first, subs)
	}()

	require.Eventually(t, func() bool { return api.Calls("subscriptions") == 1 }, time.Second, time.Millisecond)
	_, err := a.GetChannelSubscriptions(context.Background(), "c1")
	require.NoError(t, err)
	close(release)
	<-done

	assert.Equal(t, second, store.State().Subscriptions["c1"])
}

func TestGetChannelSubscriptions_CancelledDoesNotDispatch(t *testing.T) {
	store := state.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{subscriptions: func(context.Context, string) ([]model.Subscription, error) {
		cancel()
		return []model.Subscription{{ChannelID: "c1"}}, nil
	}}

	_, err := New(api, store).GetChannelSubscriptions(ctx, "c1")
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := store.State().Subscriptions["c1"]
	assert.False(t, ok)
}

func TestGetChannelSubscriptions_RequiresChannel(t *testing.T) {
	_, err := New(&fakeAPI{}, state.NewStore()).GetChannelSubscriptions(context.Background(), "")
	require.Error(t, err)
}

func TestRefreshSidebar_FetchesDetailsForBothLists(t *testing.T) {
	store := state.NewStore()
	lhs := &model.LHSData{
		Reviews:         []model.MergeRequest{{IID: 1, ProjectID: 5, SHA: "r"}},
		YourAssignedPrs: []model.MergeRequest{{IID: 2, ProjectID: 5, SHA: "y"}},
	}
	api := &fakeAPI{
		lhs: func() (*model.LHSData, error) { return lhs, nil },
		details: func(prs []model.PRDetailsRequest) ([]model.PRDetails, error) {
			if !assert.Len(t, prs, 1) {
				return nil, errors.New("unexpected request")
			}
			return []model.PRDetails{{IID: prs[0].IID, ProjectID: prs[0].ProjectID, SHA: prs[0].SHA, Status: "success"}}, nil
		},
	}

	require.NoError(t, New(api, store).RefreshSidebar(context.Background()))

	s := store.State()
	assert.Same(t, lhs, s.LHSData)
	require.Len(t, s.ReviewDetails, 1)
	assert.Equal(t, "r", s.ReviewDetails[0].SHA)
	require.Len(t, s.YourPrDetails, 1)
	assert.Equal(t, "y", s.YourPrDetails[0].SHA)
	assert.Equal(t, 2, api.Calls("details"))
}

func TestRefreshSidebar_SkipsDetailsWhenEmpty(t *testing.T) {
	api := &fakeAPI{lhs: func() (*model.LHSData, error) { return &model.LHSData{}, nil }}
	require.NoError(t, New(api, state.NewStore()).RefreshSidebar(context.Background()))
	assert.Equal(t, 0, api.Calls("details"))
}

func TestRefreshSidebar_StopsOnLHSError(t *testing.T) {
	api := &fakeAPI{lhs: func() (*model.LHSData, error) { return nil, errors.New("offline") }}
	err := New(api, state.NewStore()).RefreshSidebar(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, api.Calls("details"))
}

func TestCreateIssue_ClosesModal(t *testing.T) {
	store := state.NewStore()
	store.Dispatch(state.OpenCreateIssueModal{PostID: "p1", Title: "crash"})
	api := &fakeAPI{}

	issue, err := New(api, store).CreateIssue(context.Background(), model.IssueRequest{Title: "crash", ProjectID: 5})
	require.NoError(t, err)
	assert.Equal(t, "crash", issue.Title)
	assert.False(t, store.State().Modals.CreateIssue.Visible)
}

func TestCreateIssue_RequiresTitle(t *testing.T) {
	api := &fakeAPI{}
	_, err := New(api, state.NewStore()).CreateIssue(context.Background(), model.IssueRequest{})
	require.Error(t, err)
	assert.Equal(t, 0, api.Calls("create_issue"))
}

func TestAttachComment_ClosesModal(t *testing.T) {
	store := state.NewStore()
	store.Dispatch(state.OpenAttachCommentModal{PostID: "p1"})

	_, err := New(&fakeAPI{}, store).AttachCommentToIssue(context.Background(), model.CommentRequest{PostID: "p1"})
	require.NoError(t, err)
	assert.False(t, store.State().Modals.AttachComment.Visible)
}
