package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusBarData holds the contextual information displayed in the status bar.
type StatusBarData struct {
	ServerHost   string
	Username     string // gitlab username, empty when not connected
	Connected    bool
	Organization string
	Popout       bool
	PopoutPhase  string // "awaiting_state", "synced"; empty for the main window
	Live         bool   // websocket link is up
	ChannelID    string
}

// StatusBar is the top status bar component.
type StatusBar struct {
	width int
	data  StatusBarData
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetSize sets the terminal width for the status bar.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetData updates the status bar content.
func (s *StatusBar) SetData(data StatusBarData) {
	s.data = data
}

var statusBarStyle = lipgloss.NewStyle().
	Background(ColorSurface).
	Foreground(ColorText).
	Padding(0, 1)

var statusBarAppNameStyle = lipgloss.NewStyle().
	Foreground(ColorIris).
	Background(ColorSurface).
	Bold(true)

var statusBarSepStyle = lipgloss.NewStyle().
	Foreground(ColorOverlay).
	Background(ColorSurface)

var statusBarUserStyle = lipgloss.NewStyle().
	Foreground(ColorFoam).
	Background(ColorSurface)

var statusBarTextStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSurface)

var statusBarMutedStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle).
	Background(ColorSurface)

func connectionSegment(d StatusBarData) string {
	if !d.Connected {
		return lipgloss.NewStyle().Foreground(ColorLove).Background(ColorSurface).Render("not connected")
	}
	user := "@" + d.Username
	if d.Organization != "" {
		user += " (" + d.Organization + ")"
	}
	return statusBarUserStyle.Render(user)
}

func liveGlyph(live bool) string {
	if live {
		return lipgloss.NewStyle().Foreground(ColorFoam).Background(ColorSurface).Render("●")
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Background(ColorSurface).Render("○")
}

func popoutSegment(phase string) string {
	var fg lipgloss.TerminalColor
	switch phase {
	case "synced":
		fg = ColorFoam
	case "awaiting_state":
		fg = ColorGold
	default:
		fg = ColorMuted
	}
	label := "popout"
	if phase != "" {
		label += " " + strings.ReplaceAll(phase, "_", " ")
	}
	return lipgloss.NewStyle().Foreground(fg).Background(ColorSurface).Render(label)
}

const statusBarSep = " │ "

func (s *StatusBar) String() string {
	if s.width < 10 {
		return ""
	}

	parts := make([]string, 0, 5)
	parts = append(parts, statusBarAppNameStyle.Render("glrhs"))

	if s.data.ServerHost != "" {
		parts = append(parts, liveGlyph(s.data.Live)+statusBarTextStyle.Render(" "+s.data.ServerHost))
	}

	parts = append(parts, connectionSegment(s.data))

	if s.data.ChannelID != "" {
		parts = append(parts, statusBarMutedStyle.Render("#"+s.data.ChannelID))
	}

	if s.data.Popout {
		parts = append(parts, popoutSegment(s.data.PopoutPhase))
	}

	sep := statusBarSepStyle.Render(statusBarSep)
	content := strings.Join(parts, sep)

	return statusBarStyle.Width(s.width).Render(content)
}
