package overlay

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ToastType identifies the kind of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastError
	ToastLoading
)

// Display constants.
const (
	InfoDismissAfter    = 3 * time.Second
	SuccessDismissAfter = 3 * time.Second
	ErrorDismissAfter   = 6 * time.Second

	MinToastWidth = 24
	MaxToastWidth = 56
	MaxToasts     = 4
)

var idCounter atomic.Uint64

type toast struct {
	ID      string
	Type    ToastType
	Message string
	Shown   time.Time
	TTL     time.Duration // 0 keeps the toast until resolved
	Width   int
}

// calcToastWidth sizes a toast for its message: icon (up to 2 cells), a space,
// the message, padding (2) and border (2).
func calcToastWidth(msg string) int {
	w := 2 + 1 + runewidth.StringWidth(msg) + 4
	if w < MinToastWidth {
		return MinToastWidth
	}
	if w > MaxToastWidth {
		return MaxToastWidth
	}
	return w
}

func ttlFor(typ ToastType) time.Duration {
	switch typ {
	case ToastError:
		return ErrorDismissAfter
	case ToastSuccess:
		return SuccessDismissAfter
	case ToastLoading:
		return 0
	default:
		return InfoDismissAfter
	}
}

// ToastManager keeps the active toast notifications, newest last.
type ToastManager struct {
	toasts  []*toast
	spinner *spinner.Model
	now     func() time.Time
	width   int
}

// NewToastManager creates a ToastManager drawing loading toasts with s.
func NewToastManager(s *spinner.Model) *ToastManager {
	return &ToastManager{spinner: s, now: time.Now}
}

// SetSize updates the available viewport width for toast positioning.
func (tm *ToastManager) SetSize(width, height int) {
	tm.width = width
}

// Info creates an informational toast and returns its ID.
func (tm *ToastManager) Info(msg string) string { return tm.add(ToastInfo, msg) }

// Success creates a success toast and returns its ID.
func (tm *ToastManager) Success(msg string) string { return tm.add(ToastSuccess, msg) }

// Error creates an error toast and returns its ID.
func (tm *ToastManager) Error(msg string) string { return tm.add(ToastError, msg) }

// Loading creates a toast that stays until Resolve and returns its ID.
func (tm *ToastManager) Loading(msg string) string { return tm.add(ToastLoading, msg) }

// Resolve turns the toast with id into typ with msg. Unknown ids are ignored.
func (tm *ToastManager) Resolve(id string, typ ToastType, msg string) {
	for _, t := range tm.toasts {
		if t.ID == id {
			t.Type = typ
			t.Message = msg
			t.Width = calcToastWidth(msg)
			t.Shown = tm.now()
			t.TTL = ttlFor(typ)
			return
		}
	}
}

// HasActiveToasts reports whether anything is shown.
func (tm *ToastManager) HasActiveToasts() bool {
	return len(tm.toasts) > 0
}

// add shows a toast. A toast with the same type and message restarts its timer
// instead of stacking a duplicate.
func (tm *ToastManager) add(typ ToastType, msg string) string {
	now := tm.now()
	for _, t := range tm.toasts {
		if t.Type == typ && t.Message == msg {
			t.Shown = now
			return t.ID
		}
	}

	t := &toast{
		ID:      fmt.Sprintf("toast-%d", idCounter.Add(1)),
		Type:    typ,
		Message: msg,
		Shown:   now,
		TTL:     ttlFor(typ),
		Width:   calcToastWidth(msg),
	}
	tm.evict()
	tm.toasts = append(tm.toasts, t)
	return t.ID
}

// evict drops the oldest toast, preferring non-loading ones, while the cap
// would be exceeded by one more.
func (tm *ToastManager) evict() {
	for len(tm.toasts) >= MaxToasts {
		victim := 0
		for i, t := range tm.toasts {
			if t.Type != ToastLoading {
				victim = i
				break
			}
		}
		tm.toasts = append(tm.toasts[:victim], tm.toasts[victim+1:]...)
	}
}

// ToastTickMsg is sent by the app while toasts are active to expire them.
type ToastTickMsg struct{}

// Tick removes expired toasts.
func (tm *ToastManager) Tick() {
	now := tm.now()
	alive := tm.toasts[:0]
	for _, t := range tm.toasts {
		if t.TTL > 0 && now.Sub(t.Shown) >= t.TTL {
			continue
		}
		alive = append(alive, t)
	}
	tm.toasts = alive
}

func toastColor(typ ToastType) lipgloss.Color {
	switch typ {
	case ToastError:
		return colorLove
	case ToastLoading:
		return colorGold
	default:
		return colorFoam
	}
}

func (tm *ToastManager) toastIcon(typ ToastType) string {
	style := lipgloss.NewStyle().Foreground(toastColor(typ))
	switch typ {
	case ToastSuccess:
		return style.Render("✓")
	case ToastError:
		return style.Render("✗")
	case ToastLoading:
		return style.Render(tm.spinner.View())
	default:
		return style.Render("▸")
	}
}

func (tm *ToastManager) renderToast(t *toast) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(toastColor(t.Type)).
		Padding(0, 1).
		Width(t.Width).
		Render(tm.toastIcon(t.Type) + " " + t.Message)
}

// View renders all active toasts stacked vertically.
func (tm *ToastManager) View() string {
	if len(tm.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(tm.toasts))
	for _, t := range tm.toasts {
		rendered = append(rendered, tm.renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// GetPosition returns the top-left corner for the toast stack, right-aligned
// under the status bar.
func (tm *ToastManager) GetPosition() (int, int) {
	widest := MinToastWidth
	for _, t := range tm.toasts {
		if t.Width > widest {
			widest = t.Width
		}
	}
	x := tm.width - widest - 4
	if x < 0 {
		x = 0
	}
	return x, 1
}
