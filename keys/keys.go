package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyEnter
	KeyQuit
	KeyHelp

	KeyTab      // Tab cycles the sidebar_right tabs.
	KeyShiftTab // Shift+tab cycles them backwards.

	KeyToggleRHS     // Key for showing or hiding the RHS panel
	KeySubscriptions // Key for switching the RHS to the subscriptions view
	KeySidebar       // Key for switching the RHS to the sidebar_right view

	KeyRefresh  // Key for refreshing sidebar data
	KeyCopyURL  // Key for copying the selected item's URL
	KeyConnect  // Key for opening the GitLab connect page
	KeyPopout   // Key for copying the popout command for the current channel
	KeyNewIssue // Key for opening the create-issue form
	KeySearch   // Key for searching issues
	KeyDetail   // Key for toggling the description pane
	KeyAttach   // Key for attaching a post to the selected search result
	KeyJournal  // Key for toggling the event journal pane

	// Tab switching keybindings
	KeyTabYourPrs
	KeyTabReviews
	KeyTabUnreads
	KeyTabAssignments

	// -- Special keybindings --

	KeySubmit // Submit inside a form
	KeyCancel // Leave a form or overlay
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":        KeyUp,
	"k":         KeyUp,
	"down":      KeyDown,
	"j":         KeyDown,
	"enter":     KeyEnter,
	"o":         KeyEnter,
	"q":         KeyQuit,
	"?":         KeyHelp,
	"tab":       KeyTab,
	"shift+tab": KeyShiftTab,
	"ctrl+g":    KeyToggleRHS,
	"S":         KeySubscriptions,
	"L":         KeySidebar,
	"r":         KeyRefresh,
	"y":         KeyCopyURL,
	"C":         KeyConnect,
	"p":         KeyPopout,
	"n":         KeyNewIssue,
	"/":         KeySearch,
	"d":         KeyDetail,
	"a":         KeyAttach,
	"J":         KeyJournal,
	"1":         KeyTabYourPrs,
	"2":         KeyTabReviews,
	"3":         KeyTabUnreads,
	"4":         KeyTabAssignments,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter", "o"),
		key.WithHelp("↵/o", "open in browser"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	KeyHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	KeyTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	KeyShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous tab"),
	),
	KeyToggleRHS: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "toggle gitlab panel"),
	),
	KeySubscriptions: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "subscriptions"),
	),
	KeySidebar: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "lists"),
	),
	KeyRefresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	KeyCopyURL: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy url"),
	),
	KeyConnect: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "connect account"),
	),
	KeyPopout: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "popout"),
	),
	KeyNewIssue: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new issue"),
	),
	KeySearch: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search issues"),
	),
	KeyDetail: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "description"),
	),
	KeyAttach: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "attach post"),
	),
	KeyJournal: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "journal"),
	),
	KeyTabYourPrs: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1-4", "switch tab"),
	),
	KeyTabReviews: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "reviews"),
	),
	KeyTabUnreads: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "todos"),
	),
	KeyTabAssignments: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "assignments"),
	),

	// -- Special keybindings --

	KeySubmit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	KeyCancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}
