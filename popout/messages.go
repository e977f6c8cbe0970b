// Package popout keeps a detached RHS window in step with the main window. The
// two sides share no memory; they exchange named messages over the host bridge.
package popout

import (
	"encoding/json"

	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/state/selectors"
)

// Channel names a bridge message.
type Channel string

const (
	ChannelGetPopoutState  Channel = "GET_POPOUT_STATE"
	ChannelSendPopoutState Channel = "SEND_POPOUT_STATE"
)

// Message is a parsed bridge message. The set is closed; Parse is the only
// constructor for received messages.
type Message interface {
	Channel() Channel
	isMessage()
}

// GetPopoutState asks the main window for its RHS state. It carries no data.
type GetPopoutState struct{}

// SendPopoutState is the main window's reply. RHSState and ChannelID are
// optional: nil means the field is absent and must not be applied.
type SendPopoutState struct {
	RHSViewType state.RHSViewType
	RHSState    *state.RHSState
	ChannelID   *string
}

func (GetPopoutState) Channel() Channel  { return ChannelGetPopoutState }
func (SendPopoutState) Channel() Channel { return ChannelSendPopoutState }

func (GetPopoutState) isMessage()  {}
func (SendPopoutState) isMessage() {}

type sendPopoutStateWire struct {
	RHSViewType string `json:"rhsViewType"`
	RHSState    string `json:"rhsState,omitempty"`
	ChannelID   string `json:"channelId,omitempty"`
}

// MarshalJSON encodes absent fields by omission.
func (m SendPopoutState) MarshalJSON() ([]byte, error) {
	w := sendPopoutStateWire{RHSViewType: string(m.RHSViewType)}
	if m.RHSState != nil {
		w.RHSState = string(*m.RHSState)
	}
	if m.ChannelID != nil {
		w.ChannelID = *m.ChannelID
	}
	return json.Marshal(w)
}

// UnmarshalJSON treats an empty string the same as a missing field.
func (m *SendPopoutState) UnmarshalJSON(b []byte) error {
	var w sendPopoutStateWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = SendPopoutState{RHSViewType: state.RHSViewType(w.RHSViewType)}
	if w.RHSState != "" {
		rs := state.RHSState(w.RHSState)
		m.RHSState = &rs
	}
	if w.ChannelID != "" {
		id := w.ChannelID
		m.ChannelID = &id
	}
	return nil
}

// NewSendPopoutState builds the reply for a snapshot. Empty snapshot fields are
// left absent.
func NewSendPopoutState(s selectors.Snapshot) SendPopoutState {
	m := SendPopoutState{RHSViewType: s.RHSViewType}
	if s.RHSState != "" {
		rs := s.RHSState
		m.RHSState = &rs
	}
	if s.ChannelID != "" {
		id := s.ChannelID
		m.ChannelID = &id
	}
	return m
}

// Parse decodes a bridge message. Unknown channels and undecodable payloads
// report false and must be ignored.
func Parse(channel string, data json.RawMessage) (Message, bool) {
	switch Channel(channel) {
	case ChannelGetPopoutState:
		return GetPopoutState{}, true
	case ChannelSendPopoutState:
		var m SendPopoutState
		if len(data) == 0 {
			return nil, false
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

func validViewType(v state.RHSViewType) bool {
	return v == state.RHSViewSubscriptions || v == state.RHSViewSidebarRight
}
