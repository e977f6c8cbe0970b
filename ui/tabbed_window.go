package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/glrhs/state"
)

func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}

var (
	inactiveTabBorder = tabBorderWithBottom("┴", "─", "┴")
	activeTabBorder   = tabBorderWithBottom("┘", " ", "└")
	inactiveTabStyle  = lipgloss.NewStyle().
				Border(inactiveTabBorder, true).
				BorderForeground(ColorIris).
				AlignHorizontal(lipgloss.Center)
	activeTabStyle = inactiveTabStyle.
			Border(activeTabBorder, true).
			AlignHorizontal(lipgloss.Center)
	windowBorder = lipgloss.RoundedBorder()
	windowStyle  = lipgloss.NewStyle().
			BorderForeground(ColorIris).
			Border(windowBorder, false, true, true, true)
)

var tabLabels = map[state.RHSState]string{
	state.RHSStateYourPrs:     "Your PRs",
	state.RHSStateReviews:     "Reviews",
	state.RHSStateUnreads:     "Todos",
	state.RHSStateAssignments: "Issues",
}

// TabLabel returns the display label of a sidebar_right tab.
func TabLabel(tab state.RHSState) string {
	if l, ok := tabLabels[tab]; ok {
		return l
	}
	return string(tab)
}

// TabbedWindow renders the sidebar_right tabs with their counts above the
// active tab's list. The tab row takes three lines of height.
type TabbedWindow struct {
	tabs   []state.RHSState
	counts map[state.RHSState]int

	activeTab state.RHSState
	height    int
	width     int
	focused   bool

	list *ItemList
}

// NewTabbedWindow creates a window over list with the four sidebar_right tabs.
func NewTabbedWindow(list *ItemList) *TabbedWindow {
	return &TabbedWindow{
		tabs:      state.RHSStates,
		counts:    map[state.RHSState]int{},
		activeTab: state.RHSStateYourPrs,
		list:      list,
		focused:   true,
	}
}

// SetFocused sets whether this panel has keyboard focus.
func (w *TabbedWindow) SetFocused(focused bool) {
	w.focused = focused
	w.list.SetFocused(focused)
}

// SetSize sets the outer dimensions and sizes the list to the content area.
func (w *TabbedWindow) SetSize(width, height int) {
	w.width = width
	w.height = height

	tabHeight := activeTabStyle.GetVerticalFrameSize() + 1
	contentHeight := height - tabHeight - windowStyle.GetVerticalFrameSize()
	contentWidth := width - windowStyle.GetHorizontalFrameSize()
	w.list.SetSize(contentWidth, contentHeight)
}

// SetCounts updates the per-tab item counts shown in the labels.
func (w *TabbedWindow) SetCounts(counts map[state.RHSState]int) {
	w.counts = counts
}

// SetActiveTab selects tab. Unknown tabs are ignored.
func (w *TabbedWindow) SetActiveTab(tab state.RHSState) {
	for _, t := range w.tabs {
		if t == tab {
			w.activeTab = tab
			return
		}
	}
}

// ActiveTab returns the selected tab.
func (w *TabbedWindow) ActiveTab() state.RHSState {
	return w.activeTab
}

func (w *TabbedWindow) indexOf(tab state.RHSState) int {
	for i, t := range w.tabs {
		if t == tab {
			return i
		}
	}
	return 0
}

// NextTab returns the tab after the active one, wrapping around.
func (w *TabbedWindow) NextTab() state.RHSState {
	return w.tabs[(w.indexOf(w.activeTab)+1)%len(w.tabs)]
}

// PrevTab returns the tab before the active one, wrapping around.
func (w *TabbedWindow) PrevTab() state.RHSState {
	return w.tabs[(w.indexOf(w.activeTab)-1+len(w.tabs))%len(w.tabs)]
}

// TabAt reports which tab a click at the given local coordinates (relative to
// the window's top-left) hits.
func (w *TabbedWindow) TabAt(localX, localY int) (state.RHSState, bool) {
	// Accept rows 0-2 to cover the tab area with borders.
	if localY < 0 || localY > 2 || w.width == 0 || localX < 0 {
		return "", false
	}
	tabWidth := w.width / len(w.tabs)
	if tabWidth <= 0 {
		return "", false
	}
	clicked := localX / tabWidth
	if clicked >= len(w.tabs) {
		clicked = len(w.tabs) - 1
	}
	return w.tabs[clicked], true
}

func (w *TabbedWindow) label(tab state.RHSState) string {
	return fmt.Sprintf("%s %d", TabLabel(tab), w.counts[tab])
}

func (w *TabbedWindow) String() string {
	if w.width == 0 || w.height == 0 {
		return ""
	}

	var renderedTabs []string

	tabWidth := w.width / len(w.tabs)
	lastTabWidth := w.width - tabWidth*(len(w.tabs)-1)

	borderColor := lipgloss.TerminalColor(ColorOverlay)
	if w.focused {
		borderColor = ColorIris
	}
	for i, t := range w.tabs {
		width := tabWidth
		if i == len(w.tabs)-1 {
			width = lastTabWidth
		}

		var style lipgloss.Style
		isFirst, isLast, isActive := i == 0, i == len(w.tabs)-1, t == w.activeTab
		if isActive {
			style = activeTabStyle
		} else {
			style = inactiveTabStyle
		}
		style = style.BorderForeground(borderColor)
		border, _, _, _, _ := style.GetBorder()
		if isFirst && isActive {
			border.BottomLeft = "│"
		} else if isFirst {
			border.BottomLeft = "├"
		} else if isLast && isActive {
			border.BottomRight = "│"
		} else if isLast {
			border.BottomRight = "┤"
		}
		style = style.Border(border)
		style = style.Width(width - style.GetHorizontalFrameSize())
		label := truncate(w.label(t), width-style.GetHorizontalFrameSize())
		if isActive {
			renderedTabs = append(renderedTabs, style.Render(GradientText(label, GradientStart, GradientEnd)))
		} else {
			renderedTabs = append(renderedTabs, style.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
	ws := windowStyle.BorderForeground(borderColor)
	tabHeight := activeTabStyle.GetVerticalFrameSize() + 1
	innerWidth := w.width - ws.GetHorizontalFrameSize()
	innerHeight := w.height - ws.GetVerticalFrameSize() - tabHeight
	if innerHeight < 0 {
		innerHeight = 0
	}
	window := ws.Render(
		lipgloss.Place(innerWidth, innerHeight, lipgloss.Left, lipgloss.Top, w.list.String()))

	return lipgloss.JoinVertical(lipgloss.Left, row, window)
}
