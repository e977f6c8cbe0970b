package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/glrhs/keys"
)

var keyStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

var descStyle = lipgloss.NewStyle().Foreground(ColorMuted)

var sepStyle = lipgloss.NewStyle().Foreground(ColorOverlay)

var actionGroupStyle = lipgloss.NewStyle().Foreground(ColorRose)

var separator = " • "
var verticalSeparator = " │ "

// MenuState selects which key hints the bottom rail shows.
type MenuState int

const (
	// MenuDefault is the connected panel.
	MenuDefault MenuState = iota
	// MenuDisconnected is the panel of a user without a GitLab account link.
	MenuDisconnected
	// MenuHidden is shown while the panel is toggled off.
	MenuHidden
	// MenuForm is shown while a modal form has focus.
	MenuForm
	// MenuSearch is shown while the issue search overlay is open.
	MenuSearch
)

// menuGroups holds the hint groups of each state: navigation, actions, system.
// Action hints render in the accent colour.
var menuGroups = map[MenuState][3][]keys.KeyName{
	MenuDefault: {
		{keys.KeyTab, keys.KeySubscriptions, keys.KeyDetail},
		{keys.KeyEnter, keys.KeyCopyURL, keys.KeyNewIssue, keys.KeySearch, keys.KeyPopout},
		{keys.KeyRefresh, keys.KeyHelp, keys.KeyQuit},
	},
	MenuDisconnected: {
		nil,
		{keys.KeyConnect},
		{keys.KeyRefresh, keys.KeyHelp, keys.KeyQuit},
	},
	MenuHidden: {
		nil,
		{keys.KeyToggleRHS, keys.KeyJournal},
		{keys.KeyHelp, keys.KeyQuit},
	},
	MenuForm: {
		nil,
		{keys.KeySubmit, keys.KeyCancel},
		nil,
	},
	MenuSearch: {
		{keys.KeyUp, keys.KeyDown},
		{keys.KeyEnter, keys.KeyCopyURL, keys.KeyAttach},
		{keys.KeyCancel},
	},
}

// Menu is the key hint rail at the bottom of the window.
type Menu struct {
	state         MenuState
	width, height int

	// keyDown is underlined briefly after it is pressed. -1 when none.
	keyDown keys.KeyName
}

func NewMenu() *Menu {
	return &Menu{keyDown: -1}
}

func (m *Menu) Keydown(name keys.KeyName) {
	m.keyDown = name
}

func (m *Menu) ClearKeydown() {
	m.keyDown = -1
}

// SetState switches the hint set.
func (m *Menu) SetState(state MenuState) {
	m.state = state
}

func (m *Menu) State() MenuState { return m.state }

// SetSize sets the area the menu is centered in.
func (m *Menu) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Menu) renderHint(k keys.KeyName, action bool) string {
	help := keys.GlobalkeyBindings[k].Help()
	ks, ds, as := keyStyle, descStyle, actionGroupStyle
	if m.keyDown == k {
		ks, ds, as = ks.Underline(true), ds.Underline(true), as.Underline(true)
	}
	if action {
		return as.Render(help.Key + " " + help.Desc)
	}
	return ks.Render(help.Key) + descStyle.Render(" ") + ds.Render(help.Desc)
}

func (m *Menu) String() string {
	var groups []string
	for i, group := range menuGroups[m.state] {
		if len(group) == 0 {
			continue
		}
		hints := make([]string, len(group))
		for j, k := range group {
			hints[j] = m.renderHint(k, i == 1)
		}
		groups = append(groups, strings.Join(hints, sepStyle.Render(separator)))
	}
	line := strings.Join(groups, sepStyle.Render(verticalSeparator))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, line)
}
