package popout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
)

// Fetcher is what the popout needs to load its own data over REST.
type Fetcher interface {
	GetLHSData(ctx context.Context) (*model.LHSData, error)
	GetChannelSubscriptions(ctx context.Context, channelID string) ([]model.Subscription, error)
}

// Syncer runs the popout side of the protocol for one window.
type Syncer struct {
	window  host.PopoutWindow
	store   state.Dispatcher
	fetcher Fetcher

	mu    sync.Mutex
	phase Phase
	ctx   context.Context
	wg    sync.WaitGroup
}

// NewSyncer creates a Syncer. window may be nil when the host has no popout
// utilities.
func NewSyncer(window host.PopoutWindow, store state.Dispatcher, fetcher Fetcher) *Syncer {
	return &Syncer{
		window:  window,
		store:   store,
		fetcher: fetcher,
		phase:   PhaseNotAPopout,
		ctx:     context.Background(),
	}
}

// Start does nothing unless the window is a popout. In a popout it refreshes the
// list data, installs the parent listener and asks the parent for its state.
// The listener goes in before the request so a fast reply cannot be missed.
// ctx bounds the fetches started by the syncer.
func (s *Syncer) Start(ctx context.Context) error {
	if s.window == nil || !s.window.IsPopoutWindow() {
		return nil
	}

	s.mu.Lock()
	next, err := ApplyTransition(s.phase, PopoutDetected)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("start popout sync: %w", err)
	}
	s.phase = next
	s.ctx = ctx
	s.mu.Unlock()

	s.goFetch(func(ctx context.Context) {
		if _, err := s.fetcher.GetLHSData(ctx); err != nil {
			log.WarningLog.Printf("popout lhs refresh failed: %v", err)
		}
	})

	s.window.OnMessageFromParent(s.handle)
	if err := s.window.SendToParent(string(ChannelGetPopoutState), nil); err != nil {
		return fmt.Errorf("request popout state: %w", err)
	}
	return nil
}

// Phase returns the current sync phase.
func (s *Syncer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Wait blocks until the fetches started so far have finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

func (s *Syncer) handle(channel string, data json.RawMessage) {
	msg, ok := Parse(channel, data)
	if !ok {
		return
	}
	switch m := msg.(type) {
	case SendPopoutState:
		s.apply(m)
	case GetPopoutState:
		// Only the main window answers state requests.
	}
}

// apply reconciles one state message. Absent optional fields are skipped, so
// applying the same message again changes nothing.
func (s *Syncer) apply(m SendPopoutState) {
	s.mu.Lock()
	next, err := ApplyTransition(s.phase, StateReceived)
	if err != nil {
		s.mu.Unlock()
		log.WarningLog.Printf("ignoring popout state: %v", err)
		return
	}
	s.phase = next
	s.mu.Unlock()

	if validViewType(m.RHSViewType) {
		s.store.Dispatch(state.SetRHSViewType{ViewType: m.RHSViewType})
	} else {
		log.WarningLog.Printf("ignoring popout rhs view type %q", m.RHSViewType)
	}
	if m.RHSState != nil {
		s.store.Dispatch(state.UpdateRHSState{State: *m.RHSState})
	}
	if m.ChannelID != nil {
		channelID := *m.ChannelID
		s.store.Dispatch(state.SetPopoutChannelID{ChannelID: channelID})
		s.goFetch(func(ctx context.Context) {
			if _, err := s.fetcher.GetChannelSubscriptions(ctx, channelID); err != nil {
				log.WarningLog.Printf("popout subscriptions fetch for %s failed: %v", channelID, err)
			}
		})
	}
}

func (s *Syncer) goFetch(fn func(ctx context.Context)) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}
