// Package hosttest provides in-memory hosts for tests.
package hosttest

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kastheco/glrhs/host"
)

// Sent is one message captured by a fake bridge end.
type Sent struct {
	Channel string
	Data    json.RawMessage
}

func encode(data any) (json.RawMessage, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", data, err)
	}
	return b, nil
}

// Registry records registrations. It has no popout capability.
type Registry struct {
	host.Slot

	mu         sync.Mutex
	reconnect  []func()
	websockets map[string][]host.WebSocketHandler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{websockets: map[string][]host.WebSocketHandler{}}
}

func (r *Registry) RegisterReconnectHandler(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconnect = append(r.reconnect, fn)
}

func (r *Registry) RegisterWebSocketEventHandler(event string, fn host.WebSocketHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.websockets[event] = append(r.websockets[event], fn)
}

// Events lists the websocket events with at least one handler.
func (r *Registry) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.websockets))
	for k := range r.websockets {
		out = append(out, k)
	}
	return out
}

// Emit delivers ev to its handlers synchronously.
func (r *Registry) Emit(ev host.WebSocketEvent) {
	r.mu.Lock()
	handlers := append([]host.WebSocketHandler(nil), r.websockets[ev.Event]...)
	r.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// Reconnect runs the reconnect handlers synchronously.
func (r *Registry) Reconnect() {
	r.mu.Lock()
	handlers := append([]func(){}, r.reconnect...)
	r.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// ParentRegistry is a Registry with the popout listener capability.
type ParentRegistry struct {
	*Registry

	mu        sync.Mutex
	listeners map[string]func(teamID, channelID string, l host.PopoutListeners)
}

// NewParentRegistry returns a Registry that supports popout listeners.
func NewParentRegistry() *ParentRegistry {
	return &ParentRegistry{
		Registry:  NewRegistry(),
		listeners: map[string]func(string, string, host.PopoutListeners){},
	}
}

func (p *ParentRegistry) RegisterRHSPluginPopoutListener(pluginID string, fn func(teamID, channelID string, l host.PopoutListeners)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[pluginID] = fn
}

// OpenPopout simulates a popout opening for (teamID, channelID) and returns the
// main-window end of its channel.
func (p *ParentRegistry) OpenPopout(pluginID, teamID, channelID string) (*Listeners, bool) {
	p.mu.Lock()
	fn, ok := p.listeners[pluginID]
	p.mu.Unlock()
	if !ok {
		return nil, false
	}
	l := &Listeners{}
	fn(teamID, channelID, l)
	return l, true
}

// Listeners is a fake main-window end. Messages from the popout are injected
// with Deliver; replies are captured.
type Listeners struct {
	mu      sync.Mutex
	handler host.MessageHandler
	sent    []Sent
	onSend  func(Sent)
}

func (l *Listeners) OnMessageFromPopout(fn host.MessageHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = fn
}

func (l *Listeners) SendToPopout(channel string, data any) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	sent := Sent{Channel: channel, Data: raw}
	l.mu.Lock()
	l.sent = append(l.sent, sent)
	cb := l.onSend
	l.mu.Unlock()
	if cb != nil {
		cb(sent)
	}
	return nil
}

// Deliver hands a message from the popout to the registered handler.
func (l *Listeners) Deliver(channel string, data json.RawMessage) {
	l.mu.Lock()
	h := l.handler
	l.mu.Unlock()
	if h != nil {
		h(channel, data)
	}
}

// Sent returns the replies sent to the popout so far.
func (l *Listeners) Sent() []Sent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Sent(nil), l.sent...)
}

// Window is a fake popout end.
type Window struct {
	Popout bool

	mu      sync.Mutex
	handler host.MessageHandler
	sent    []Sent
	onSend  func(Sent)
}

func (w *Window) IsPopoutWindow() bool { return w.Popout }

func (w *Window) OnMessageFromParent(fn host.MessageHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = fn
}

func (w *Window) SendToParent(channel string, data any) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	s := Sent{Channel: channel, Data: raw}
	w.mu.Lock()
	w.sent = append(w.sent, s)
	cb := w.onSend
	w.mu.Unlock()
	if cb != nil {
		cb(s)
	}
	return nil
}

// OnSend runs fn for every message sent to the parent.
func (w *Window) OnSend(fn func(Sent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSend = fn
}

// Deliver hands a message from the parent to the registered handler.
func (w *Window) Deliver(channel string, data json.RawMessage) {
	w.mu.Lock()
	h := w.handler
	w.mu.Unlock()
	if h != nil {
		h(channel, data)
	}
}

// HasHandler reports whether a parent listener was registered.
func (w *Window) HasHandler() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handler != nil
}

// Sent returns the messages sent to the parent so far.
func (w *Window) Sent() []Sent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Sent(nil), w.sent...)
}

// PopoutRegistry is a Registry running inside a popout window.
type PopoutRegistry struct {
	*Registry
	Window *Window
}

// NewPopoutRegistry returns a registry whose popout utilities report a popout.
func NewPopoutRegistry() *PopoutRegistry {
	return &PopoutRegistry{Registry: NewRegistry(), Window: &Window{Popout: true}}
}

func (p *PopoutRegistry) PopoutWindow() host.PopoutWindow { return p.Window }

// Connect wires a popout window to a main-window end so that messages flow
// both ways synchronously.
func Connect(w *Window, l *Listeners) {
	w.OnSend(func(s Sent) { l.Deliver(s.Channel, s.Data) })
	l.mu.Lock()
	l.onSend = func(s Sent) { w.Deliver(s.Channel, s.Data) }
	l.mu.Unlock()
}
