package ui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls []string
	store *state.Store
}

func (f *fakeLoader) GetChannelSubscriptions(_ context.Context, channelID string) ([]model.Subscription, error) {
	f.mu.Lock()
	f.calls = append(f.calls, channelID)
	f.mu.Unlock()
	subs := []model.Subscription{{ChannelID: channelID, RepositoryName: "g/p", RepositoryURL: "https://gitlab.example.com/g/p"}}
	f.store.Dispatch(state.ReceivedChannelSubscriptions{ChannelID: channelID, Subscriptions: subs})
	return subs, nil
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func connectedStore() *state.Store {
	store := state.NewStore()
	store.Dispatch(state.ReceivedConnected{Data: model.ConnectedData{Connected: true, GitlabUsername: "alice"}})
	store.Dispatch(state.ReceivedLHSData{Data: &model.LHSData{
		YourAssignedPrs: []model.MergeRequest{{IID: 1, ProjectID: 1, Title: "My change"}},
		Reviews:         []model.MergeRequest{{IID: 2, ProjectID: 1, Title: "Their change"}},
	}})
	return store
}

func newTestPanel(t *testing.T, store *state.Store, loader SubscriptionLoader, channelID string) *Panel {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	p := NewPanel(ctx, store, loader, channelID)
	t.Cleanup(p.Close)
	p.SetSize(80, 30)
	return p
}

func TestPanel_TabKeysDispatch(t *testing.T) {
	store := connectedStore()
	p := newTestPanel(t, store, nil, "town-square")

	row, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "My change", row.Title)

	p.Update(runeKey("2"))
	assert.Equal(t, state.RHSStateReviews, store.State().RHS.State)
	row, ok = p.Selected()
	require.True(t, ok)
	assert.Equal(t, "Their change", row.Title)

	p.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, state.RHSStateYourPrs, store.State().RHS.State)
}

func TestPanel_TabKeyReturnsToSidebar(t *testing.T) {
	store := connectedStore()
	store.Dispatch(state.SetRHSViewType{ViewType: state.RHSViewSubscriptions})
	p := newTestPanel(t, store, nil, "town-square")

	p.Update(runeKey("3"))
	s := store.State()
	assert.Equal(t, state.RHSViewSidebarRight, s.RHS.ViewType)
	assert.Equal(t, state.RHSStateUnreads, s.RHS.State)
}

func TestPanel_SubscriptionsViewLoadsOnce(t *testing.T) {
	store := connectedStore()
	loader := &fakeLoader{store: store}
	p := newTestPanel(t, store, loader, "town-square")

	_, cmd := p.Update(runeKey("S"))
	require.NotNil(t, cmd)
	assert.Equal(t, state.RHSViewSubscriptions, store.State().RHS.ViewType)

	msg := cmd()
	loaded, ok := msg.(subscriptionsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "town-square", loaded.channelID)
	p.Update(msg)
	p.apply(store.State())

	assert.Nil(t, p.ensureSubscriptions(), "a loaded channel is not fetched again")
	assert.Equal(t, []string{"town-square"}, loader.calls)

	row, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "g/p", row.Title)
	assert.Contains(t, plain(p.View()), "Subscriptions in #town-square")
}

func TestPanel_PrefersPopoutChannel(t *testing.T) {
	store := connectedStore()
	store.Dispatch(state.SetPopoutChannelID{ChannelID: "off-topic"})
	p := newTestPanel(t, store, nil, "town-square")
	assert.Equal(t, "off-topic", p.ChannelID())
}

func TestPanel_StateMsgFromStore(t *testing.T) {
	store := state.NewStore()
	p := newTestPanel(t, store, nil, "")
	_, ok := p.Selected()
	assert.False(t, ok)

	store.Dispatch(state.ReceivedLHSData{Data: &model.LHSData{
		YourAssignedPrs: []model.MergeRequest{{IID: 5, Title: "Pushed"}},
	}})
	msg := p.waitForState()()
	sm, ok := msg.(StateMsg)
	require.True(t, ok)
	p.Update(sm)

	row, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "Pushed", row.Title)
}

func TestPanel_PushKeepsNewest(t *testing.T) {
	store := state.NewStore()
	p := newTestPanel(t, store, nil, "")

	store.Dispatch(state.UpdateRHSState{State: state.RHSStateReviews})
	store.Dispatch(state.UpdateRHSState{State: state.RHSStateUnreads})

	msg := p.waitForState()().(StateMsg)
	assert.Equal(t, state.RHSStateUnreads, msg.State.RHS.State)
}

func TestPanel_NotConnectedView(t *testing.T) {
	p := newTestPanel(t, state.NewStore(), nil, "")
	out := plain(p.View())
	assert.Contains(t, out, "not connected")
}

func TestPanel_DetailToggle(t *testing.T) {
	store := connectedStore()
	p := newTestPanel(t, store, nil, "")

	_, cmd := p.Update(runeKey("d"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(detailRenderedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	p.Update(msg)
	assert.Contains(t, plain(p.View()), "My change")
	assert.Contains(t, plain(p.View()), "no description")

	p.Update(runeKey("d"))
	assert.False(t, p.detail.Visible())
}
