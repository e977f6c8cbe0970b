package socket_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/host/socket"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/popout"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketPath keeps the path short; unix socket paths are limited to ~100 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "glrhs")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "p.sock")
}

func serve(t *testing.T, srv *socket.Server) context.Context {
	t.Helper()
	require.NoError(t, srv.Listen())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, srv.Serve(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctx
}

func TestBridge_FramesFlowBothWays(t *testing.T) {
	srv := socket.NewServer(socketPath(t))
	srv.RegisterRHSPluginPopoutListener("p", func(teamID, channelID string, l host.PopoutListeners) {
		l.OnMessageFromPopout(func(channel string, data json.RawMessage) {
			_ = l.SendToPopout("ECHO", map[string]string{"team": teamID, "channel": channelID, "got": channel})
		})
	})
	ctx := serve(t, srv)

	cl, err := socket.Dial(ctx, srv.Path(), socket.Hello{PluginID: "p", TeamID: "t1", ChannelID: "c1"})
	require.NoError(t, err)
	defer cl.Close()
	assert.NotEmpty(t, cl.Hello().WindowID)
	assert.True(t, cl.IsPopoutWindow())

	replies := make(chan socket.Frame, 1)
	cl.OnMessageFromParent(func(channel string, data json.RawMessage) {
		replies <- socket.Frame{Channel: channel, Data: data}
	})
	require.NoError(t, cl.SendToParent("PING", nil))

	select {
	case f := <-replies:
		assert.Equal(t, "ECHO", f.Channel)
		assert.JSONEq(t, `{"team":"t1","channel":"c1","got":"PING"}`, string(f.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("no reply from main window")
	}
}

func TestBridge_UnknownPluginIsHungUp(t *testing.T) {
	srv := socket.NewServer(socketPath(t))
	ctx := serve(t, srv)

	cl, err := socket.Dial(ctx, srv.Path(), socket.Hello{PluginID: "nobody"})
	require.NoError(t, err)
	defer cl.Close()

	select {
	case <-cl.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("connection stayed open")
	}
}

func TestServer_CloseRemovesSocket(t *testing.T) {
	path := socketPath(t)
	srv := socket.NewServer(path)
	require.NoError(t, srv.Listen())
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, srv.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestServer_ListenReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	srv := socket.NewServer(path)
	require.NoError(t, srv.Listen())
	require.NoError(t, srv.Close())
}

type fetcher struct{ channels chan string }

func (f fetcher) GetLHSData(context.Context) (*model.LHSData, error) { return &model.LHSData{}, nil }

func (f fetcher) GetChannelSubscriptions(_ context.Context, channelID string) ([]model.Subscription, error) {
	f.channels <- channelID
	return nil, nil
}

func TestBridge_PopoutSyncOverSocket(t *testing.T) {
	const pluginID = "com.github.manland.mattermost-plugin-gitlab"

	parentStore := state.NewStore()
	parentStore.Dispatch(state.UpdateRHSState{State: state.RHSStateUnreads})
	srv := socket.NewServer(socketPath(t))
	popout.RegisterParentListener(srv, pluginID, parentStore)
	ctx := serve(t, srv)

	cl, err := socket.Dial(ctx, srv.Path(), socket.Hello{PluginID: pluginID, TeamID: "t1", ChannelID: "town-square"})
	require.NoError(t, err)
	defer cl.Close()

	popoutStore := state.NewStore()
	f := fetcher{channels: make(chan string, 1)}
	s := popout.NewSyncer(cl, popoutStore, f)
	require.NoError(t, s.Start(ctx))

	select {
	case ch := <-f.channels:
		assert.Equal(t, "town-square", ch)
	case <-time.After(2 * time.Second):
		t.Fatal("popout never synced")
	}
	s.Wait()

	assert.Equal(t, popout.PhaseSynced, s.Phase())
	assert.Equal(t, state.RHS{
		ViewType:        state.RHSViewSidebarRight,
		State:           state.RHSStateUnreads,
		PopoutChannelID: "town-square",
	}, popoutStore.State().RHS)
}
