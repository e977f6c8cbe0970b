package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// SearchAction is what the user asked for in the search overlay.
type SearchAction int

const (
	SearchNone    SearchAction = iota
	SearchDismiss              // esc
	SearchSubmit               // enter in the query field
	SearchOpen                 // enter or o on a result
	SearchCopy                 // y on a result
	SearchAttach               // a on a result
)

// SearchResult is one issue found by the plugin's issue search.
type SearchResult struct {
	ProjectID int
	IID       int
	Ref       string
	Title     string
	State     string
	WebURL    string
}

var searchBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorIris).
	Padding(1, 2)

var searchInputStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorFoam).
	Padding(0, 1).
	MarginBottom(1)

var searchItemStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Foreground(colorText)

var searchSelectedStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Background(colorFoam).
	Foreground(colorBase)

var searchRefStyle = lipgloss.NewStyle().
	Foreground(colorPine)

var searchMutedStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// SearchOverlay is a query field over a result list. Typing goes to the query;
// after a search the result list takes the keys until / returns to the query.
type SearchOverlay struct {
	input       textinput.Model
	results     []SearchResult
	selectedIdx int
	inResults   bool
	searching   bool
	searched    string // query of the shown results
	errMsg      string
	width       int
	maxRows     int
}

// NewSearchOverlay creates an empty search overlay.
func NewSearchOverlay() *SearchOverlay {
	ti := textinput.New()
	ti.Placeholder = "search issues..."
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Focus()
	return &SearchOverlay{input: ti, width: 64, maxRows: 10}
}

// SetSize updates the overlay width and how many results are listed.
func (s *SearchOverlay) SetSize(width, height int) {
	s.width = width
	if rows := height - 10; rows > 3 {
		s.maxRows = rows
	}
}

// Query returns the trimmed query text.
func (s *SearchOverlay) Query() string {
	return strings.TrimSpace(s.input.Value())
}

// SetSearching marks a search for the current query as in flight.
func (s *SearchOverlay) SetSearching() {
	s.searching = true
	s.errMsg = ""
}

// SetResults shows the results of a search for query. Results for a query
// that is no longer the one in flight are dropped.
func (s *SearchOverlay) SetResults(query string, results []SearchResult, err error) {
	if query != s.Query() {
		return
	}
	s.searching = false
	s.searched = query
	s.selectedIdx = 0
	if err != nil {
		s.errMsg = err.Error()
		s.results = nil
		return
	}
	s.errMsg = ""
	s.results = results
	if len(results) > 0 {
		s.inResults = true
		s.input.Blur()
	}
}

// Selected returns the highlighted result.
func (s *SearchOverlay) Selected() (SearchResult, bool) {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.results) {
		return SearchResult{}, false
	}
	return s.results[s.selectedIdx], true
}

// HandleKeyPress processes input and returns the action to take.
func (s *SearchOverlay) HandleKeyPress(msg tea.KeyMsg) SearchAction {
	if msg.Type == tea.KeyEsc {
		return SearchDismiss
	}
	if s.inResults {
		return s.handleResultKey(msg)
	}
	if msg.Type == tea.KeyEnter {
		if s.Query() == "" {
			return SearchNone
		}
		return SearchSubmit
	}
	if msg.Type == tea.KeyDown && len(s.results) > 0 {
		s.inResults = true
		s.input.Blur()
		return SearchNone
	}
	s.input, _ = s.input.Update(msg)
	return SearchNone
}

func (s *SearchOverlay) handleResultKey(msg tea.KeyMsg) SearchAction {
	switch msg.String() {
	case "up", "k":
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
	case "down", "j":
		if s.selectedIdx < len(s.results)-1 {
			s.selectedIdx++
		}
	case "enter", "o":
		return SearchOpen
	case "y":
		return SearchCopy
	case "a":
		return SearchAttach
	case "/":
		s.inResults = false
		s.input.Focus()
	}
	return SearchNone
}

func truncateCells(str string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(str) <= width {
		return str
	}
	return runewidth.Truncate(str, width, "…")
}

// Render draws the overlay.
func (s *SearchOverlay) Render() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("search issues"))
	b.WriteString("\n")

	innerWidth := s.width - 8
	if innerWidth < 20 {
		innerWidth = 20
	}
	inputStyle := searchInputStyle
	if s.inResults {
		inputStyle = inputStyle.BorderForeground(colorOverlay)
	}
	s.input.Width = innerWidth - 4
	b.WriteString(inputStyle.Width(innerWidth).Render(s.input.View()))
	b.WriteString("\n")

	switch {
	case s.searching:
		b.WriteString(searchMutedStyle.Render("  searching..."))
		b.WriteString("\n")
	case s.errMsg != "":
		b.WriteString(modalErrorStyle.Render("  " + s.errMsg))
		b.WriteString("\n")
	case s.searched != "" && len(s.results) == 0:
		b.WriteString(searchMutedStyle.Render(fmt.Sprintf("  no issues match %q", s.searched)))
		b.WriteString("\n")
	}

	start := 0
	if s.selectedIdx >= s.maxRows {
		start = s.selectedIdx - s.maxRows + 1
	}
	for i := start; i < len(s.results) && i < start+s.maxRows; i++ {
		r := s.results[i]
		title := truncateCells(r.Title, innerWidth-runewidth.StringWidth(r.Ref)-6)
		if i == s.selectedIdx && s.inResults {
			b.WriteString(searchSelectedStyle.Width(innerWidth).Render("▸ " + r.Ref + " " + title))
		} else {
			b.WriteString(searchItemStyle.Width(innerWidth).Render("  " + searchRefStyle.Render(r.Ref) + " " + title))
		}
		b.WriteString("\n")
	}

	hint := "enter search · ↓ results · esc close"
	if s.inResults {
		hint = "↑↓ navigate · o open · y copy url · a attach post · / edit query · esc close"
	}
	b.WriteString(modalHintStyle.Render(hint))

	return searchBorderStyle.Width(s.width).Render(b.String())
}
