package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/log"
)

// PopoutListener is the callback registered per plugin.
type PopoutListener func(teamID, channelID string, l host.PopoutListeners)

// Server accepts popout connections for the main window.
type Server struct {
	path string

	mu        sync.Mutex
	ln        net.Listener
	listeners map[string]PopoutListener
	conns     map[*conn]struct{}
	wg        sync.WaitGroup
}

// NewServer creates a Server for the socket at path. Nothing is opened until Listen.
func NewServer(path string) *Server {
	return &Server{
		path:      path,
		listeners: make(map[string]PopoutListener),
		conns:     make(map[*conn]struct{}),
	}
}

// RegisterRHSPluginPopoutListener implements host.PopoutListenerRegistrar.
func (s *Server) RegisterRHSPluginPopoutListener(pluginID string, fn func(teamID, channelID string, l host.PopoutListeners)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[pluginID] = fn
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Listen opens the socket, replacing a stale socket file left by a previous run.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts popouts until ctx is done or the server is closed.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("serve: not listening")
	}

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		c := newConn(nc)
		s.mu.Lock()
		if s.ln == nil {
			s.mu.Unlock()
			_ = c.close()
			return nil
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			s.handle(c)
		}()
	}
}

// Close stops accepting, drops every popout connection and removes the socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	err := ln.Close()
	for _, c := range conns {
		_ = c.close()
	}
	s.wg.Wait()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handle(c *conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = c.close()
	}()

	first, err := c.read()
	if err != nil || first.Channel != helloChannel {
		log.WarningLog.Printf("popout connection without hello: %v", err)
		return
	}
	var hello Hello
	if err := jsonUnmarshal(first.Data, &hello); err != nil {
		log.WarningLog.Printf("bad popout hello: %v", err)
		return
	}

	s.mu.Lock()
	fn, ok := s.listeners[hello.PluginID]
	s.mu.Unlock()
	if !ok {
		log.WarningLog.Printf("no popout listener for plugin %q", hello.PluginID)
		return
	}

	log.InfoLog.Printf("popout %s connected for %s/%s", hello.WindowID, hello.TeamID, hello.ChannelID)
	fn(hello.TeamID, hello.ChannelID, parentEnd{c})

	if err := c.readLoop(); err != nil {
		log.WarningLog.Printf("popout %s: %v", hello.WindowID, err)
	}
	log.InfoLog.Printf("popout %s disconnected", hello.WindowID)
}

// parentEnd adapts a connection to host.PopoutListeners.
type parentEnd struct{ c *conn }

func (p parentEnd) OnMessageFromPopout(fn host.MessageHandler) { p.c.setHandler(fn) }

func (p parentEnd) SendToPopout(channel string, data any) error { return p.c.send(channel, data) }

var _ host.PopoutListenerRegistrar = (*Server)(nil)
