package overlay

import (
	"github.com/charmbracelet/lipgloss"
)

// TextOverlay shows static text, such as the help screen, until any key.
type TextOverlay struct {
	content string
	width   int
}

// NewTextOverlay creates an overlay around pre-rendered content.
func NewTextOverlay(content string) *TextOverlay {
	return &TextOverlay{content: content}
}

// SetWidth sets the overlay width. Zero lets the content decide.
func (t *TextOverlay) SetWidth(width int) {
	t.width = width
}

// Render returns the styled overlay string.
func (t *TextOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorIris).
		Padding(1, 2)
	if t.width > 0 {
		style = style.Width(t.width)
	}
	return style.Render(t.content + "\n" + modalHintStyle.Render("press any key to close"))
}
