package plugin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kastheco/glrhs/actions"
	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/host/hosttest"
	"github.com/kastheco/glrhs/internal/pluginapi"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/popout"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPluginID = "com.github.manland.mattermost-plugin-gitlab"

// backend is a fake plugin server that counts hits per path.
type backend struct {
	mu        sync.Mutex
	hits      map[string]int
	connected bool
}

func (b *backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	if b.hits == nil {
		b.hits = map[string]int{}
	}
	b.hits[r.URL.Path]++
	connected := b.connected
	b.mu.Unlock()

	switch {
	case r.URL.Path == "/connected":
		json.NewEncoder(w).Encode(model.ConnectedData{Connected: connected, GitlabUsername: "alice"})
	case r.URL.Path == "/lhs-data":
		json.NewEncoder(w).Encode(model.LHSData{
			Reviews: []model.MergeRequest{{IID: 1, ProjectID: 5, SHA: "abc"}},
		})
	case r.URL.Path == "/prdetails":
		w.Write([]byte(`[{"iid":1,"project_id":5,"sha":"abc","status":"success","num_approvers":1}]`))
	case strings.HasPrefix(r.URL.Path, "/channel/"):
		w.Write([]byte(`[{"channel_id":"c1","repository_url":"https://gitlab.example.com/acme/app"}]`))
	default:
		http.NotFound(w, r)
	}
}

func newPlugin(t *testing.T, connected bool) (*Plugin, *backend) {
	t.Helper()
	b := &backend{connected: connected}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	client, err := pluginapi.NewClient(srv.URL, "")
	require.NoError(t, err)
	store := state.NewStore()
	return New(testPluginID, store, actions.New(client, store)), b
}

func TestInitialize_RegistersHandlers(t *testing.T) {
	p, _ := newPlugin(t, false)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()

	assert.ElementsMatch(t, []string{
		"custom_" + testPluginID + "_gitlab_connect",
		"custom_" + testPluginID + "_gitlab_disconnect",
		"custom_" + testPluginID + "_gitlab_refresh",
		"custom_" + testPluginID + "_create_issue",
		"custom_" + testPluginID + "_gitlab_channel_subscriptions_updated",
	}, r.Events())

	_, title, visible := r.Component()
	assert.Equal(t, RHSTitle, title)
	assert.False(t, visible)
	p.ShowRHS()
	_, _, visible = r.Component()
	assert.True(t, visible)
}

func TestInitialize_ConnectedUserGetsSidebar(t *testing.T) {
	p, b := newPlugin(t, true)
	require.NoError(t, p.Initialize(context.Background(), hosttest.NewRegistry(), nil))
	p.Wait()

	s := p.Store().State()
	assert.True(t, s.Connection.Connected)
	require.NotNil(t, s.LHSData)
	require.Len(t, s.ReviewDetails, 1)
	assert.Equal(t, 1, b.Hits("/prdetails"))
}

func TestInitialize_WithoutPopoutCapability(t *testing.T) {
	p, b := newPlugin(t, false)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()

	assert.Equal(t, popout.PhaseNotAPopout, p.PopoutPhase())
	assert.Zero(t, b.Hits("/lhs-data"))
}

func TestInitialize_ParentAnswersPopouts(t *testing.T) {
	p, _ := newPlugin(t, false)
	r := hosttest.NewParentRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()
	p.Store().Dispatch(state.UpdateRHSState{State: state.RHSStateReviews})

	l, ok := r.OpenPopout(testPluginID, "t1", "c1")
	require.True(t, ok)
	l.Deliver(string(popout.ChannelGetPopoutState), nil)

	sent := l.Sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, `{"rhsViewType":"sidebar_right","rhsState":"reviews","channelId":"c1"}`, string(sent[0].Data))
}

func TestInitialize_PopoutRequestsState(t *testing.T) {
	p, b := newPlugin(t, false)
	r := hosttest.NewPopoutRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()

	assert.Equal(t, popout.PhaseAwaitingState, p.PopoutPhase())
	assert.Equal(t, 1, b.Hits("/lhs-data"))
	sent := r.Window.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, string(popout.ChannelGetPopoutState), sent[0].Channel)

	r.Window.Deliver(string(popout.ChannelSendPopoutState), json.RawMessage(`{"rhsViewType":"subscriptions","channelId":"c1"}`))
	p.Wait()
	assert.Equal(t, popout.PhaseSynced, p.PopoutPhase())
	assert.Len(t, p.Store().State().Subscriptions["c1"], 1)
}

func TestWebSocket_ConnectAndDisconnect(t *testing.T) {
	p, _ := newPlugin(t, true)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()

	r.Emit(host.WebSocketEvent{Event: EventName(testPluginID, EventDisconnect)})
	assert.Equal(t, state.Connection{}, p.Store().State().Connection)

	r.Emit(host.WebSocketEvent{
		Event: EventName(testPluginID, EventConnect),
		Data: map[string]any{
			"connected":        true,
			"gitlab_username":  "bob",
			"gitlab_client_id": "cid",
			"settings":         map[string]any{"notifications": true},
		},
	})
	p.Wait()
	c := p.Store().State().Connection
	assert.True(t, c.Connected)
	assert.Equal(t, "bob", c.Username)
	assert.True(t, c.Settings.Notifications)
}

func TestWebSocket_RefreshOnlyWhenConnected(t *testing.T) {
	p, b := newPlugin(t, false)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()

	r.Emit(host.WebSocketEvent{Event: EventName(testPluginID, EventRefresh)})
	p.Wait()
	assert.Zero(t, b.Hits("/lhs-data"))

	p.Store().Dispatch(state.ReceivedConnected{Data: model.ConnectedData{Connected: true}})
	r.Emit(host.WebSocketEvent{Event: EventName(testPluginID, EventRefresh)})
	p.Wait()
	assert.Equal(t, 1, b.Hits("/lhs-data"))
}

func TestWebSocket_CreateIssueOpensModal(t *testing.T) {
	p, _ := newPlugin(t, false)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()

	r.Emit(host.WebSocketEvent{
		Event: EventName(testPluginID, EventCreateIssue),
		Data:  map[string]any{"title": "flaky test", "channel_id": "c1"},
	})
	assert.Equal(t, state.CreateIssueModal{Visible: true, Title: "flaky test", ChannelID: "c1"}, p.Store().State().Modals.CreateIssue)
}

func TestWebSocket_SubscriptionsUpdatedReplacesChannel(t *testing.T) {
	p, _ := newPlugin(t, false)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()
	p.Store().Dispatch(state.ReceivedChannelSubscriptions{ChannelID: "c1", Subscriptions: []model.Subscription{{RepositoryURL: "old"}, {RepositoryURL: "older"}}})

	r.Emit(host.WebSocketEvent{
		Event: EventName(testPluginID, EventSubscriptionsUpdated),
		Data:  map[string]any{"payload": `{"channel_id":"c1","subscriptions":[{"channel_id":"c1","repository_url":"new"}]}`},
	})

	assert.Equal(t, []model.Subscription{{ChannelID: "c1", RepositoryURL: "new"}}, p.Store().State().Subscriptions["c1"])
}

func TestWebSocket_SubscriptionsUpdatedBadPayloadIgnored(t *testing.T) {
	p, _ := newPlugin(t, false)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()
	before := p.Store().State()

	r.Emit(host.WebSocketEvent{Event: EventName(testPluginID, EventSubscriptionsUpdated), Data: map[string]any{"payload": "{"}})
	r.Emit(host.WebSocketEvent{Event: EventName(testPluginID, EventSubscriptionsUpdated)})

	assert.Equal(t, before, p.Store().State())
}

func TestReconnect_RechecksAndRefreshes(t *testing.T) {
	p, b := newPlugin(t, true)
	r := hosttest.NewRegistry()
	require.NoError(t, p.Initialize(context.Background(), r, nil))
	p.Wait()
	p.Store().Dispatch(state.SetPopoutChannelID{ChannelID: "c1"})

	r.Reconnect()
	p.Wait()

	assert.Equal(t, 2, b.Hits("/connected"))
	assert.Equal(t, 2, b.Hits("/lhs-data"))
	assert.Equal(t, 1, b.Hits("/channel/c1/subscriptions"))
}
