package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// rowHeight is the number of lines one rendered row occupies, including the
// blank spacer under the description line.
const rowHeight = 3

// RowRenderer renders rows of an ItemList.
type RowRenderer struct {
	width int
}

func (r *RowRenderer) setWidth(width int) {
	r.width = width
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// Render renders a row as a title line and a meta line. selected rows use the
// highlight style when focused and the muted highlight otherwise.
func (r *RowRenderer) Render(row Row, selected, focused bool) string {
	ts, ds := titleStyle, listDescStyle
	if selected {
		if focused {
			ts, ds = selectedTitleStyle, selectedDescStyle
		} else {
			ts, ds = activeTitleStyle, activeDescStyle
		}
	}
	inner := r.width - ts.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	prefix := "  "
	prefixRendered := prefix
	switch {
	case row.Draft:
		prefix = draftIcon
		prefixRendered = draftStyle.Render(draftIcon)
	case row.Status != "":
		prefix = statusIcon
		prefixRendered = lipgloss.NewStyle().Foreground(PipelineColor(row.Status)).Render(statusIcon)
	}
	if selected {
		prefixRendered = prefix
	}

	right := ""
	if row.Approvals != "" {
		right = " ✓" + row.Approvals
	}
	avail := inner - runewidth.StringWidth(prefix) - runewidth.StringWidth(right)
	title := truncate(row.Title, avail)
	gap := avail - runewidth.StringWidth(title)
	if gap < 0 {
		gap = 0
	}
	rightRendered := right
	if !selected && right != "" {
		rightRendered = approvalsStyle.Render(right)
	}
	titleLine := prefixRendered + title + strings.Repeat(" ", gap) + rightRendered

	meta := row.Ref
	if row.Meta != "" {
		if meta != "" {
			meta += "  "
		}
		meta += row.Meta
	}
	meta = truncate(meta, inner)
	if !selected && row.Ref != "" && strings.HasPrefix(meta, row.Ref) {
		meta = refStyle.Render(row.Ref) + meta[len(row.Ref):]
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		ts.Width(r.width).Render(titleLine),
		ds.Width(r.width).Render(meta),
	)
}
