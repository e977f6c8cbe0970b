package host

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Slot holds the single RHS registration of a host. Hosts embed it to implement
// RegisterRightHandSidebarComponent.
type Slot struct {
	mu        sync.Mutex
	component tea.Model
	title     string
	visible   bool
	onChange  func()
}

// RegisterRightHandSidebarComponent stores component as the slot content. A later
// registration replaces an earlier one.
func (s *Slot) RegisterRightHandSidebarComponent(component tea.Model, title string) RHSHandle {
	s.mu.Lock()
	s.component = component
	s.title = title
	s.mu.Unlock()
	return RHSHandle{
		Show:   func() { s.setVisible(func(bool) bool { return true }) },
		Toggle: func() { s.setVisible(func(v bool) bool { return !v }) },
	}
}

func (s *Slot) setVisible(fn func(bool) bool) {
	s.mu.Lock()
	s.visible = fn(s.visible)
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// OnChange registers fn to run after Show or Toggle.
func (s *Slot) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Component returns the registered component, its title and whether it is shown.
func (s *Slot) Component() (tea.Model, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.component, s.title, s.visible
}

// SetComponent replaces the stored component after it handled a message.
func (s *Slot) SetComponent(m tea.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.component = m
}
