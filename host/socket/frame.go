// Package socket carries the popout bridge over a unix socket. The main window
// runs a Server; each popout process dials it with a Client. Frames are JSON
// objects, one per line.
package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/kastheco/glrhs/host"
)

// helloChannel is reserved for the first frame a popout sends.
const helloChannel = "glrhs.hello"

// Frame is one bridge message on the wire.
type Frame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hello identifies a popout to the main window.
type Hello struct {
	PluginID  string `json:"plugin_id"`
	TeamID    string `json:"team_id"`
	ChannelID string `json:"channel_id"`
	WindowID  string `json:"window_id"`
}

// conn is one end of a bridge connection. Writes are serialized; reads happen on
// a single goroutine that hands frames to the registered handler.
type conn struct {
	nc net.Conn

	encMu sync.Mutex
	enc   *json.Encoder
	dec   *json.Decoder

	mu      sync.Mutex
	handler host.MessageHandler
}

func newConn(nc net.Conn) *conn {
	return &conn{nc: nc, enc: json.NewEncoder(nc), dec: json.NewDecoder(nc)}
}

func (c *conn) setHandler(fn host.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

func (c *conn) send(channel string, data any) error {
	f := Frame{Channel: channel}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", channel, err)
		}
		f.Data = raw
	}
	c.encMu.Lock()
	defer c.encMu.Unlock()
	if err := c.enc.Encode(f); err != nil {
		return fmt.Errorf("write %s: %w", channel, err)
	}
	return nil
}

func (c *conn) read() (Frame, error) {
	var f Frame
	err := c.dec.Decode(&f)
	return f, err
}

// readLoop delivers frames until the connection closes. A clean close returns nil.
func (c *conn) readLoop() error {
	for {
		f, err := c.read()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()
		if h != nil {
			h(f.Channel, f.Data)
		}
	}
}

func (c *conn) close() error {
	return c.nc.Close()
}
