package popout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kastheco/glrhs/host/hosttest"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pluginID = "com.github.manland.mattermost-plugin-gitlab"

func parentWithState(t *testing.T) (*hosttest.ParentRegistry, *state.Store) {
	t.Helper()
	store := state.NewStore()
	store.Dispatch(state.SetRHSViewType{ViewType: state.RHSViewSubscriptions})
	store.Dispatch(state.UpdateRHSState{State: state.RHSStateReviews})
	r := hosttest.NewParentRegistry()
	RegisterParentListener(r, pluginID, store)
	return r, store
}

func TestParentListener_RepliesWithSnapshot(t *testing.T) {
	r, _ := parentWithState(t)
	l, ok := r.OpenPopout(pluginID, "team1", "chan9")
	require.True(t, ok)

	l.Deliver("GET_POPOUT_STATE", nil)

	sent := l.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "SEND_POPOUT_STATE", sent[0].Channel)
	assert.JSONEq(t, `{"rhsViewType":"subscriptions","rhsState":"reviews","channelId":"chan9"}`, string(sent[0].Data))
}

func TestParentListener_ChannelComesFromHost(t *testing.T) {
	r, store := parentWithState(t)
	store.Dispatch(state.SetPopoutChannelID{ChannelID: "stale"})

	a, _ := r.OpenPopout(pluginID, "team1", "a")
	b, _ := r.OpenPopout(pluginID, "team1", "b")
	a.Deliver("GET_POPOUT_STATE", nil)
	b.Deliver("GET_POPOUT_STATE", nil)

	assert.Contains(t, string(a.Sent()[0].Data), `"channelId":"a"`)
	assert.Contains(t, string(b.Sent()[0].Data), `"channelId":"b"`)
}

func TestParentListener_IgnoresOtherChannels(t *testing.T) {
	r, store := parentWithState(t)
	before := store.State()
	l, _ := r.OpenPopout(pluginID, "team1", "c1")

	l.Deliver("SOME_OTHER_CHANNEL", nil)
	l.Deliver("SEND_POPOUT_STATE", json.RawMessage(`{"rhsViewType":"sidebar_right","rhsState":"unreads","channelId":"x"}`))

	assert.Empty(t, l.Sent())
	assert.Equal(t, before, store.State())
}

func TestParentListener_OtherPluginNotRegistered(t *testing.T) {
	r, _ := parentWithState(t)
	_, ok := r.OpenPopout("some.other.plugin", "team1", "c1")
	assert.False(t, ok)
}

func TestRoundTrip_PopoutSyncsFromParent(t *testing.T) {
	parent, _ := parentWithState(t)
	l, _ := parent.OpenPopout(pluginID, "team1", "c42")

	w := &hosttest.Window{Popout: true}
	hosttest.Connect(w, l)

	popoutStore := state.NewStore()
	f := &fakeFetcher{}
	s := NewSyncer(w, popoutStore, f)
	require.NoError(t, s.Start(context.Background()))
	s.Wait()

	assert.Equal(t, PhaseSynced, s.Phase())
	assert.Equal(t, state.RHS{
		ViewType:        state.RHSViewSubscriptions,
		State:           state.RHSStateReviews,
		PopoutChannelID: "c42",
	}, popoutStore.State().RHS)
	lhs, channels := f.snapshot()
	assert.Equal(t, 1, lhs)
	assert.Equal(t, []string{"c42"}, channels)
}
