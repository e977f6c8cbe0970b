// Package host describes the capabilities a host window offers to the plugin.
// Optional capabilities are separate interfaces; callers check for them with a
// type assertion before use.
package host

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
)

// Broadcast scopes a websocket event.
type Broadcast struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	TeamID    string `json:"team_id"`
}

// WebSocketEvent is a server push as delivered by the host.
type WebSocketEvent struct {
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Broadcast Broadcast      `json:"broadcast"`
	Seq       int64          `json:"seq"`
}

// String returns the string value of a data field, or "" when it is missing or
// not a string.
func (e WebSocketEvent) String(key string) string {
	v, _ := e.Data[key].(string)
	return v
}

// WebSocketHandler handles one named event.
type WebSocketHandler func(WebSocketEvent)

// RHSHandle controls the slot returned by RegisterRightHandSidebarComponent.
type RHSHandle struct {
	Show   func()
	Toggle func()
}

// Registry is the set of registrations every host supports.
type Registry interface {
	RegisterReconnectHandler(fn func())
	RegisterWebSocketEventHandler(event string, fn WebSocketHandler)
	RegisterRightHandSidebarComponent(component tea.Model, title string) RHSHandle
}

// MessageHandler receives a popout bridge message.
type MessageHandler func(channel string, data json.RawMessage)

// PopoutListeners is the main-window end of one popout's message channel.
type PopoutListeners interface {
	OnMessageFromPopout(fn MessageHandler)
	SendToPopout(channel string, data any) error
}

// PopoutListenerRegistrar is implemented by hosts that can open the RHS in a
// separate window. fn is called once per popout with the team and channel the
// popout was opened for.
type PopoutListenerRegistrar interface {
	RegisterRHSPluginPopoutListener(pluginID string, fn func(teamID, channelID string, l PopoutListeners))
}

// PopoutWindow is the popout end of the message channel.
type PopoutWindow interface {
	IsPopoutWindow() bool
	OnMessageFromParent(fn MessageHandler)
	SendToParent(channel string, data any) error
}

// PopoutWindowProvider is implemented by hosts that expose popout utilities.
type PopoutWindowProvider interface {
	PopoutWindow() PopoutWindow
}

// PopoutWindowOf returns the popout utilities of r, or nil when the host has none.
func PopoutWindowOf(r Registry) PopoutWindow {
	p, ok := r.(PopoutWindowProvider)
	if !ok {
		return nil
	}
	return p.PopoutWindow()
}
