// Package plugin registers the GitLab sidebar with a host: websocket handlers,
// the reconnect handler, the RHS component and, when the host can open popouts,
// both ends of the popout sync.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/glrhs/actions"
	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/popout"
	"github.com/kastheco/glrhs/state"
)

// Websocket event suffixes sent by the plugin server.
const (
	EventConnect              = "gitlab_connect"
	EventDisconnect           = "gitlab_disconnect"
	EventRefresh              = "gitlab_refresh"
	EventCreateIssue          = "create_issue"
	EventSubscriptionsUpdated = "gitlab_channel_subscriptions_updated"
)

// RHSTitle is the title of the registered RHS component.
const RHSTitle = "GitLab"

// EventName returns the full websocket event name for a plugin event.
func EventName(pluginID, event string) string {
	return fmt.Sprintf("custom_%s_%s", pluginID, event)
}

// Plugin owns the store and actions for one window.
type Plugin struct {
	id      string
	store   *state.Store
	actions *actions.Actions

	syncer *popout.Syncer
	rhs    host.RHSHandle

	ctx context.Context
	wg  sync.WaitGroup
}

// New creates a Plugin. Initialize must be called before it does anything.
func New(pluginID string, store *state.Store, a *actions.Actions) *Plugin {
	return &Plugin{id: pluginID, store: store, actions: a, ctx: context.Background()}
}

// Store returns the plugin's state store.
func (p *Plugin) Store() *state.Store { return p.store }

// Actions returns the plugin's action creators.
func (p *Plugin) Actions() *actions.Actions { return p.actions }

// Initialize registers with r and starts background work bounded by ctx. panel
// is the component shown in the RHS slot.
func (p *Plugin) Initialize(ctx context.Context, r host.Registry, panel tea.Model) error {
	p.ctx = ctx

	p.goRun("initial connection check", func(ctx context.Context) error {
		data, err := p.actions.GetConnected(ctx, true)
		if err != nil {
			return err
		}
		if data.Connected {
			return p.actions.RefreshSidebar(ctx)
		}
		return nil
	})

	r.RegisterWebSocketEventHandler(EventName(p.id, EventConnect), p.handleConnect)
	r.RegisterWebSocketEventHandler(EventName(p.id, EventDisconnect), p.handleDisconnect)
	r.RegisterWebSocketEventHandler(EventName(p.id, EventRefresh), p.handleRefresh)
	r.RegisterWebSocketEventHandler(EventName(p.id, EventCreateIssue), p.handleOpenCreateIssueModal)
	r.RegisterWebSocketEventHandler(EventName(p.id, EventSubscriptionsUpdated), p.handleChannelSubscriptionsUpdated)
	r.RegisterReconnectHandler(p.handleReconnect)

	p.rhs = r.RegisterRightHandSidebarComponent(panel, RHSTitle)

	if registrar, ok := r.(host.PopoutListenerRegistrar); ok {
		popout.RegisterParentListener(registrar, p.id, p.store)
	}

	p.syncer = popout.NewSyncer(host.PopoutWindowOf(r), p.store, p.actions)
	if err := p.syncer.Start(ctx); err != nil {
		return fmt.Errorf("start popout sync: %w", err)
	}
	return nil
}

// ShowRHS opens the RHS slot.
func (p *Plugin) ShowRHS() {
	if p.rhs.Show != nil {
		p.rhs.Show()
	}
}

// ToggleRHS opens or closes the RHS slot.
func (p *Plugin) ToggleRHS() {
	if p.rhs.Toggle != nil {
		p.rhs.Toggle()
	}
}

// PopoutPhase reports where this window is in the popout sync.
func (p *Plugin) PopoutPhase() popout.Phase {
	if p.syncer == nil {
		return popout.PhaseNotAPopout
	}
	return p.syncer.Phase()
}

// Wait blocks until background work started by the plugin has finished.
func (p *Plugin) Wait() {
	p.wg.Wait()
	if p.syncer != nil {
		p.syncer.Wait()
	}
}

func (p *Plugin) goRun(what string, fn func(ctx context.Context) error) {
	ctx := p.ctx
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := fn(ctx); err != nil {
			log.WarningLog.Printf("%s: %v", what, err)
		}
	}()
}

func (p *Plugin) handleConnect(ev host.WebSocketEvent) {
	var data model.ConnectedData
	if err := decodeData(ev.Data, &data); err != nil {
		log.WarningLog.Printf("bad %s payload: %v", ev.Event, err)
		return
	}
	p.store.Dispatch(state.ReceivedConnected{Data: data})
	if data.Connected {
		p.goRun("refresh after connect", p.actions.RefreshSidebar)
	}
}

func (p *Plugin) handleDisconnect(host.WebSocketEvent) {
	p.store.Dispatch(state.Disconnected())
}

func (p *Plugin) handleRefresh(host.WebSocketEvent) {
	if !p.store.State().Connection.Connected {
		return
	}
	p.goRun("refresh", p.actions.RefreshSidebar)
}

func (p *Plugin) handleOpenCreateIssueModal(ev host.WebSocketEvent) {
	if ev.Data == nil {
		return
	}
	p.store.Dispatch(state.OpenCreateIssueModal{
		PostID:    ev.String("post_id"),
		Title:     ev.String("title"),
		ChannelID: ev.String("channel_id"),
	})
}

type subscriptionsPayload struct {
	ChannelID     string               `json:"channel_id"`
	Subscriptions []model.Subscription `json:"subscriptions"`
}

// handleChannelSubscriptionsUpdated applies the pushed list. The server sends it
// as a JSON string under "payload".
func (p *Plugin) handleChannelSubscriptionsUpdated(ev host.WebSocketEvent) {
	raw := ev.String("payload")
	if raw == "" {
		return
	}
	var payload subscriptionsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.WarningLog.Printf("bad %s payload: %v", ev.Event, err)
		return
	}
	if payload.ChannelID == "" {
		return
	}
	p.store.Dispatch(state.ReceivedChannelSubscriptions{
		ChannelID:     payload.ChannelID,
		Subscriptions: payload.Subscriptions,
	})
}

func (p *Plugin) handleReconnect() {
	p.goRun("reconnect", func(ctx context.Context) error {
		data, err := p.actions.GetConnected(ctx, true)
		if err != nil {
			return err
		}
		if !data.Connected {
			return nil
		}
		if err := p.actions.RefreshSidebar(ctx); err != nil {
			return err
		}
		if id := p.store.State().RHS.PopoutChannelID; id != "" {
			_, err = p.actions.GetChannelSubscriptions(ctx, id)
		}
		return err
	})
}

// decodeData maps a websocket data object onto v through JSON.
func decodeData(data map[string]any, v any) error {
	if data == nil {
		return fmt.Errorf("missing data")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
