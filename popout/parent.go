package popout

import (
	"encoding/json"

	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/state/selectors"
)

// RegisterParentListener installs the main-window side: every popout opened for
// pluginID gets one listener answering GET_POPOUT_STATE with a snapshot of the
// current state and the channel the popout was opened for.
func RegisterParentListener(r host.PopoutListenerRegistrar, pluginID string, store state.Getter) {
	r.RegisterRHSPluginPopoutListener(pluginID, func(teamID, channelID string, l host.PopoutListeners) {
		l.OnMessageFromPopout(func(channel string, data json.RawMessage) {
			msg, ok := Parse(channel, data)
			if !ok {
				return
			}
			switch msg.(type) {
			case GetPopoutState:
				reply := NewSendPopoutState(selectors.PopoutSnapshot(store.State(), channelID))
				if err := l.SendToPopout(string(ChannelSendPopoutState), reply); err != nil {
					log.ErrorLog.Printf("send popout state to %s/%s: %v", teamID, channelID, err)
				}
			case SendPopoutState:
				// Replies flow from the main window only.
			}
		})
	})
}
