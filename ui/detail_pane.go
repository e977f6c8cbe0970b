package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// RenderMarkdown renders a GitLab description for a pane of the given width.
func RenderMarkdown(md string, width int) (string, error) {
	wordWrap := width - 4
	if wordWrap < 20 {
		wordWrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("could not render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// DetailPane shows the rendered description of the selected row.
type DetailPane struct {
	viewport viewport.Model
	width    int
	height   int
	visible  bool
	key      string // row key the content belongs to
	title    string
}

// NewDetailPane creates a hidden DetailPane.
func NewDetailPane() *DetailPane {
	return &DetailPane{viewport: viewport.New(0, 0)}
}

// SetSize updates the pane dimensions. One line is reserved for the header.
func (p *DetailPane) SetSize(w, h int) {
	p.width = w
	p.height = h
	bodyH := h - 1
	if bodyH < 0 {
		bodyH = 0
	}
	p.viewport.Width = w
	p.viewport.Height = bodyH
}

// Width returns the pane width.
func (p *DetailPane) Width() int { return p.width }

// SetContent replaces the shown document. rendered is already glamour output.
func (p *DetailPane) SetContent(key, title, rendered string) {
	p.key = key
	p.title = title
	if strings.TrimSpace(rendered) == "" {
		rendered = detailEmptyStyle.Render("no description")
	}
	p.viewport.SetContent(rendered)
	p.viewport.GotoTop()
}

// Key returns the row key of the shown content.
func (p *DetailPane) Key() string { return p.key }

// Visible returns whether the pane is currently shown.
func (p *DetailPane) Visible() bool { return p.visible }

// ToggleVisible flips the visibility state.
func (p *DetailPane) ToggleVisible() { p.visible = !p.visible }

// Update forwards scroll keys and mouse wheel events to the viewport.
func (p *DetailPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

var (
	detailHeaderStyle = lipgloss.NewStyle().Foreground(ColorIris).Bold(true)
	detailEmptyStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

func (p *DetailPane) String() string {
	header := detailHeaderStyle.Render(truncate(p.title, p.width))
	return lipgloss.JoinVertical(lipgloss.Left, header, p.viewport.View())
}
