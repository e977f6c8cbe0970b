package ui

import (
	"strings"
)

// FillBackground pads s to at least height lines so bubbletea's alt-screen
// renderer does not leave stale content below the rendered view. The colour
// itself comes from SetTerminalBackground.
func FillBackground(s string, height int) string {
	if height <= 0 {
		return s
	}
	n := strings.Count(s, "\n") + 1
	if n >= height {
		return s
	}
	return s + strings.Repeat("\n", height-n)
}
