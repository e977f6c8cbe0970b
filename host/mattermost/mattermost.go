// Package mattermost is the host used by the glrhs binary: it follows the
// Mattermost websocket for plugin push events and keeps the RHS slot for the
// terminal UI.
package mattermost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/host/socket"
	"github.com/kastheco/glrhs/log"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Host implements host.Registry over a Mattermost websocket.
type Host struct {
	host.Slot

	url    string
	token  string
	dialer *websocket.Dialer

	mu        sync.Mutex
	handlers  map[string][]host.WebSocketHandler
	reconnect []func()
	connected bool
}

// New creates a Host for the websocket at wsURL
// (for example wss://chat.example.com/api/v4/websocket).
func New(wsURL, token string) *Host {
	return &Host{
		url:      wsURL,
		token:    token,
		dialer:   websocket.DefaultDialer,
		handlers: make(map[string][]host.WebSocketHandler),
	}
}

func (h *Host) RegisterReconnectHandler(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reconnect = append(h.reconnect, fn)
}

func (h *Host) RegisterWebSocketEventHandler(event string, fn host.WebSocketHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = append(h.handlers[event], fn)
}

// Connected reports whether the websocket is currently up.
func (h *Host) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// Run follows the websocket until ctx is done, reconnecting with exponential
// backoff. Reconnect handlers run after every successful reconnect, not after
// the first connect.
func (h *Host) Run(ctx context.Context) error {
	backoff := minBackoff
	first := true
	for {
		conn, err := h.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WarningLog.Printf("websocket dial failed, retrying in %s: %v", backoff, err)
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		h.setConnected(true)
		if !first {
			h.runReconnectHandlers()
		}
		first = false

		err = h.readLoop(ctx, conn)
		h.setConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		log.WarningLog.Printf("websocket closed: %v", err)
	}
}

func (h *Host) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if h.token != "" {
		header.Set("Authorization", "Bearer "+h.token)
	}
	conn, resp, err := h.dialer.DialContext(ctx, h.url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", h.url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", h.url, err)
	}
	return conn, nil
}

func (h *Host) readLoop(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		var ev host.WebSocketEvent
		if err := conn.ReadJSON(&ev); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return err
		}
		// Replies to client actions carry no event name.
		if ev.Event == "" {
			continue
		}
		h.deliver(ev)
	}
}

func (h *Host) deliver(ev host.WebSocketEvent) {
	h.mu.Lock()
	handlers := append([]host.WebSocketHandler(nil), h.handlers[ev.Event]...)
	h.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (h *Host) runReconnectHandlers() {
	h.mu.Lock()
	handlers := append([]func(){}, h.reconnect...)
	h.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (h *Host) setConnected(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = v
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// ParentHost is a main-window Host that also serves popouts.
type ParentHost struct {
	*Host
	*socket.Server
}

// WithPopoutServer adds the popout listener capability to h.
func WithPopoutServer(h *Host, srv *socket.Server) *ParentHost {
	return &ParentHost{Host: h, Server: srv}
}

// PopoutHost is a Host running inside a popout window.
type PopoutHost struct {
	*Host
	window host.PopoutWindow
}

// WithPopoutWindow marks h as a popout whose bridge to the main window is w.
func WithPopoutWindow(h *Host, w host.PopoutWindow) *PopoutHost {
	return &PopoutHost{Host: h, window: w}
}

func (p *PopoutHost) PopoutWindow() host.PopoutWindow { return p.window }

var (
	_ host.Registry                = (*Host)(nil)
	_ host.PopoutListenerRegistrar = (*ParentHost)(nil)
	_ host.PopoutWindowProvider    = (*PopoutHost)(nil)
)
