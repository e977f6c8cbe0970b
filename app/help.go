package app

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/glrhs/popout"
	"github.com/kastheco/glrhs/ui"
	"github.com/kastheco/glrhs/ui/overlay"
)

var errNotConnected = errors.New("connect your gitlab account first (C)")

type helpText interface {
	// toContent returns the help UI content.
	toContent() string
}

type helpTypeGeneral struct{}

// helpTypePopout is shown once, when a popout window first syncs.
type helpTypePopout struct {
	channelID string
}

func (h helpTypeGeneral) toContent() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.GradientText("glrhs", ui.GradientStart, ui.GradientEnd),
		"",
		descStyle.Render("gitlab merge requests, reviews, todos and issues for your mattermost channel."),
		"",
		headerStyle.Render("lists:"),
		keyStyle.Render("1-4")+descStyle.Render("           - your prs / reviews / todos / issues"),
		keyStyle.Render("tab/shift+tab")+descStyle.Render(" - cycle tabs"),
		keyStyle.Render("↑↓ / j k")+descStyle.Render("      - move the selection"),
		keyStyle.Render("d")+descStyle.Render("             - show the description"),
		keyStyle.Render("S / L")+descStyle.Render("         - channel subscriptions / back to the lists"),
		"",
		headerStyle.Render("actions:"),
		keyStyle.Render("↵/o")+descStyle.Render("           - open in the browser"),
		keyStyle.Render("y")+descStyle.Render("             - copy the url"),
		keyStyle.Render("n")+descStyle.Render("             - create an issue"),
		keyStyle.Render("/")+descStyle.Render("             - search issues, a attaches a post"),
		keyStyle.Render("p")+descStyle.Render("             - copy the popout command for this channel"),
		keyStyle.Render("r")+descStyle.Render("             - refresh"),
		keyStyle.Render("C")+descStyle.Render("             - connect your gitlab account"),
		"",
		headerStyle.Render("window:"),
		keyStyle.Render("ctrl+g")+descStyle.Render("        - show or hide the panel"),
		keyStyle.Render("J")+descStyle.Render("             - event journal (pgup/pgdown scroll)"),
		keyStyle.Render("q")+descStyle.Render("             - quit"),
	)
}

func (h helpTypePopout) toContent() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("popout synced"),
		"",
		descStyle.Render("this window took the panel state of the main window for #"+h.channelID+"."),
		descStyle.Render("from now on it keeps its own tabs and fetches its own lists."),
	)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(ui.ColorIris)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorFoam)
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorGold)
	descStyle   = lipgloss.NewStyle().Foreground(ui.ColorText)
)

// showHelpScreen displays a help screen overlay.
func (m *home) showHelpScreen(helpType helpText) (tea.Model, tea.Cmd) {
	m.textOverlay = overlay.NewTextOverlay(helpType.toContent())
	m.textOverlay.SetWidth(int(float32(m.termWidth) * 0.6))
	m.state = stateHelp
	return m, nil
}

// maybeShowPopoutHelp shows the popout help screen the first time the popout
// sync completes, unless something else has focus.
func (m *home) maybeShowPopoutHelp() tea.Cmd {
	if m.popoutHelpShown || m.plugin.PopoutPhase() != popout.PhaseSynced {
		return nil
	}
	m.popoutHelpShown = true
	if m.state != stateDefault {
		return nil
	}
	channelID := ""
	if m.panel != nil {
		channelID = m.panel.ChannelID()
	}
	_, cmd := m.showHelpScreen(helpTypePopout{channelID: channelID})
	return cmd
}

// handleHelpState closes the help overlay on any key.
func (m *home) handleHelpState(tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.textOverlay = nil
	m.state = stateDefault
	m.syncChrome()
	return m, nil
}
