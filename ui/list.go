package ui

import (
	"strings"
)

// ItemList is a scrollable, selectable list of rows. The selection follows the
// selected row's Key across SetRows calls so that a background refresh does not
// move the cursor.
type ItemList struct {
	rows          []Row
	selectedIdx   int
	height, width int
	renderer      *RowRenderer
	focused       bool
	emptyText     string

	scrollOffset int // index of the first visible row
}

// NewItemList creates an empty list showing emptyText when there are no rows.
func NewItemList(emptyText string) *ItemList {
	return &ItemList{
		renderer:  &RowRenderer{},
		focused:   true,
		emptyText: emptyText,
	}
}

func (l *ItemList) SetFocused(focused bool) {
	l.focused = focused
}

// SetEmptyText replaces the placeholder shown for an empty list.
func (l *ItemList) SetEmptyText(text string) {
	l.emptyText = text
}

// SetSize sets the list's outer dimensions.
func (l *ItemList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.renderer.setWidth(width)
	l.ensureSelectedVisible()
}

// SetRows replaces the rows, keeping the selected key when it still exists.
func (l *ItemList) SetRows(rows []Row) {
	var selectedKey string
	if sel, ok := l.Selected(); ok {
		selectedKey = sel.Key
	}
	l.rows = rows
	l.selectedIdx = 0
	for i, r := range rows {
		if selectedKey != "" && r.Key == selectedKey {
			l.selectedIdx = i
			break
		}
	}
	l.ensureSelectedVisible()
}

// Rows returns the current rows.
func (l *ItemList) Rows() []Row {
	return l.rows
}

// Len returns the number of rows.
func (l *ItemList) Len() int {
	return len(l.rows)
}

// Selected returns the selected row.
func (l *ItemList) Selected() (Row, bool) {
	if l.selectedIdx < 0 || l.selectedIdx >= len(l.rows) {
		return Row{}, false
	}
	return l.rows[l.selectedIdx], true
}

// SelectedIndex returns the current selection index.
func (l *ItemList) SelectedIndex() int {
	return l.selectedIdx
}

// Up moves the selection up by one row, stopping at the top.
func (l *ItemList) Up() {
	if l.selectedIdx > 0 {
		l.selectedIdx--
	}
	l.ensureSelectedVisible()
}

// Down moves the selection down by one row, stopping at the bottom.
func (l *ItemList) Down() {
	if l.selectedIdx < len(l.rows)-1 {
		l.selectedIdx++
	}
	l.ensureSelectedVisible()
}

// visibleRows is how many rows fit in the list height.
func (l *ItemList) visibleRows() int {
	n := l.height / rowHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (l *ItemList) ensureSelectedVisible() {
	if l.selectedIdx >= len(l.rows) {
		l.selectedIdx = len(l.rows) - 1
	}
	if l.selectedIdx < 0 {
		l.selectedIdx = 0
	}
	visible := l.visibleRows()
	if l.selectedIdx < l.scrollOffset {
		l.scrollOffset = l.selectedIdx
	}
	if l.selectedIdx >= l.scrollOffset+visible {
		l.scrollOffset = l.selectedIdx - visible + 1
	}
	if maxOffset := len(l.rows) - visible; l.scrollOffset > maxOffset {
		l.scrollOffset = maxOffset
	}
	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

func (l *ItemList) String() string {
	if len(l.rows) == 0 {
		return emptyListStyle.Width(l.width).Render(l.emptyText)
	}

	end := l.scrollOffset + l.visibleRows()
	if end > len(l.rows) {
		end = len(l.rows)
	}
	var b strings.Builder
	for i := l.scrollOffset; i < end; i++ {
		if i > l.scrollOffset {
			b.WriteString("\n")
		}
		b.WriteString(l.renderer.Render(l.rows[i], i == l.selectedIdx, l.focused))
	}
	return b.String()
}
