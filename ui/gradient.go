package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// GradientText colors each visible rune of s along a horizontal blend from
// start to end. Multi-line input is blended per line so columns line up.
func GradientText(s, start, end string) string {
	from, err := colorful.Hex(start)
	if err != nil {
		return s
	}
	to, err := colorful.Hex(end)
	if err != nil {
		return s
	}

	lines := strings.Split(s, "\n")
	widest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > widest {
			widest = n
		}
	}
	if widest == 0 {
		return s
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, r := range []rune(line) {
			if r == ' ' {
				b.WriteRune(r)
				continue
			}
			t := 0.0
			if widest > 1 {
				t = float64(j) / float64(widest-1)
			}
			c := from.BlendLuv(to, t).Clamped().Hex()
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(string(r)))
		}
	}
	return b.String()
}
