package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/glrhs/state"
)

// JournalLine is a pre-formatted journal entry for the journal pane.
type JournalLine struct {
	Time    string // formatted as "15:04:05"
	Kind    string // state.EventKind
	Origin  string // "main" or "popout"
	Message string
}

// JournalPane renders a scrollable list of recently dispatched events.
type JournalPane struct {
	lines    []JournalLine
	viewport viewport.Model
	width    int
	height   int
	visible  bool
}

// NewJournalPane creates a hidden JournalPane.
func NewJournalPane() *JournalPane {
	return &JournalPane{viewport: viewport.New(0, 0)}
}

// SetSize updates the pane dimensions and rebuilds the viewport content.
func (p *JournalPane) SetSize(w, h int) {
	p.width = w
	// Reserve 1 line for the header.
	bodyH := h - 1
	if bodyH < 0 {
		bodyH = 0
	}
	p.height = h
	p.viewport.Width = w
	p.viewport.Height = bodyH
	p.viewport.SetContent(p.renderBody())
}

// SetLines replaces the entries and refreshes the viewport.
func (p *JournalPane) SetLines(lines []JournalLine) {
	p.lines = lines
	p.viewport.SetContent(p.renderBody())
	p.viewport.GotoTop()
}

// ScrollDown scrolls the viewport down by n lines.
func (p *JournalPane) ScrollDown(n int) {
	p.viewport.LineDown(n)
}

// ScrollUp scrolls the viewport up by n lines.
func (p *JournalPane) ScrollUp(n int) {
	p.viewport.LineUp(n)
}

// Visible returns whether the pane is currently shown.
func (p *JournalPane) Visible() bool {
	return p.visible
}

// ToggleVisible flips the visibility state.
func (p *JournalPane) ToggleVisible() {
	p.visible = !p.visible
}

var (
	journalHeaderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	journalTimeStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	journalMsgStyle    = lipgloss.NewStyle().Foreground(ColorText)
	journalEmptyStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

func (p *JournalPane) String() string {
	header := journalHeaderStyle.Render(p.renderHeader())
	return lipgloss.JoinVertical(lipgloss.Left, header, p.viewport.View())
}

func (p *JournalPane) renderHeader() string {
	left := "── journal ──"
	right := "newest first"
	gap := p.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (p *JournalPane) renderBody() string {
	if len(p.lines) == 0 {
		return journalEmptyStyle.Render("no events")
	}

	out := make([]string, 0, len(p.lines))
	for _, e := range p.lines {
		icon, color := EventKindIcon(e.Kind)
		line := journalTimeStyle.Render(e.Time) + " " +
			lipgloss.NewStyle().Foreground(color).Render(icon) + " " +
			journalMsgStyle.Render(truncate(e.Message, p.width-len(e.Time)-3))
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// EventKindIcon returns the icon and color for a journal event kind.
func EventKindIcon(kind string) (icon string, color lipgloss.Color) {
	switch state.EventKind(kind) {
	case state.KindReceivedConnected:
		return "◆", ColorFoam
	case state.KindReceivedLHSData, state.KindReceivedReviewDetails, state.KindReceivedYourPrDetails:
		return "↓", ColorFoam
	case state.KindReceivedChannelSubscriptions:
		return "⇄", ColorIris
	case state.KindReceivedGitlabUser:
		return "@", ColorSubtle
	case state.KindSetRHSViewType, state.KindUpdateRHSState, state.KindSetPopoutChannelID:
		return "⟳", ColorIris
	case state.KindOpenCreateIssueModal, state.KindOpenAttachCommentModal:
		return "✦", ColorGold
	case state.KindCloseCreateIssueModal, state.KindCloseAttachCommentModal:
		return "✓", ColorGold
	default:
		return "·", ColorMuted
	}
}
