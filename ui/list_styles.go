package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const statusIcon = "● "
const draftIcon = "◌ "

var titleStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Foreground(ColorText)

var listDescStyle = lipgloss.NewStyle().
	Padding(0, 1, 1, 1).
	Foreground(ColorSubtle)

var selectedTitleStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Background(ColorIris).
	Foreground(ColorBase)

var selectedDescStyle = lipgloss.NewStyle().
	Padding(0, 1, 1, 1).
	Background(ColorIris).
	Foreground(ColorBase)

// Active (unfocused) styles: a muted version of selected.
var activeTitleStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Background(ColorOverlay).
	Foreground(ColorText)

var activeDescStyle = lipgloss.NewStyle().
	Padding(0, 1, 1, 1).
	Background(ColorOverlay).
	Foreground(ColorSubtle)

var refStyle = lipgloss.NewStyle().
	Foreground(ColorPine)

var approvalsStyle = lipgloss.NewStyle().
	Foreground(ColorFoam)

var draftStyle = lipgloss.NewStyle().
	Foreground(ColorGold)

var emptyListStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Padding(1, 1)
