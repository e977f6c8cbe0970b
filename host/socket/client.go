package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/log"
)

// Client is the popout end of the bridge. It implements host.PopoutWindow.
type Client struct {
	c     *conn
	hello Hello
	done  chan struct{}
}

// Dial connects to the main window at path and introduces the popout. An empty
// WindowID is filled with a random id.
func Dial(ctx context.Context, path string, hello Hello) (*Client, error) {
	if hello.WindowID == "" {
		hello.WindowID = uuid.NewString()
	}
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	cl := &Client{c: newConn(nc), hello: hello, done: make(chan struct{})}
	if err := cl.c.send(helloChannel, hello); err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	go func() {
		defer close(cl.done)
		if err := cl.c.readLoop(); err != nil {
			log.WarningLog.Printf("popout bridge: %v", err)
		}
	}()
	return cl, nil
}

// IsPopoutWindow is always true for a dialed client.
func (cl *Client) IsPopoutWindow() bool { return true }

// OnMessageFromParent installs the single parent listener.
func (cl *Client) OnMessageFromParent(fn host.MessageHandler) { cl.c.setHandler(fn) }

// SendToParent writes one frame to the main window.
func (cl *Client) SendToParent(channel string, data any) error { return cl.c.send(channel, data) }

// Hello returns the identity sent to the main window.
func (cl *Client) Hello() Hello { return cl.hello }

// Done is closed when the main window goes away.
func (cl *Client) Done() <-chan struct{} { return cl.done }

// Close hangs up.
func (cl *Client) Close() error { return cl.c.close() }

func jsonUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty payload")
	}
	return json.Unmarshal(raw, v)
}

var _ host.PopoutWindow = (*Client)(nil)
