package overlay

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// IssueForm collects the fields of a new GitLab issue. It is opened by the
// create_issue push event or by hand, and may arrive with a prefilled title and
// the post it was created from.
type IssueForm struct {
	form       *huh.Form
	projectVal string
	titleVal   string
	descVal    string
	postID     string
	channelID  string
	errMsg     string
	submitted  bool
	canceled   bool
	width      int
}

// NewIssueForm creates the form. postID and channelID are carried through to
// the request unchanged.
func NewIssueForm(title, postID, channelID string, width int) *IssueForm {
	f := &IssueForm{
		titleVal:  title,
		postID:    postID,
		channelID: channelID,
		width:     width,
	}

	formWidth := modalWidth(width) - 6
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("project").
				Title("project id").
				Placeholder("1234").
				Value(&f.projectVal),
			huh.NewInput().
				Key("title").
				Title("title").
				Value(&f.titleVal),
			huh.NewInput().
				Key("description").
				Title("description (optional)").
				Value(&f.descVal),
		),
	).
		WithTheme(ThemeRosePine()).
		WithWidth(formWidth).
		WithShowHelp(false).
		WithShowErrors(false)

	_ = f.form.Init()

	return f
}

func (f *IssueForm) updateForm(msg tea.Msg) {
	updated, _ := f.form.Update(msg)
	if form, ok := updated.(*huh.Form); ok {
		f.form = form
	}
}

func (f *IssueForm) validate() string {
	if _, err := strconv.Atoi(strings.TrimSpace(f.projectVal)); err != nil {
		return "project id must be a number"
	}
	if strings.TrimSpace(f.titleVal) == "" {
		return "title is required"
	}
	return ""
}

// HandleKeyPress processes a key and returns true when the overlay should close.
func (f *IssueForm) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEsc:
		f.canceled = true
		return true

	case tea.KeyEnter:
		if f.errMsg = f.validate(); f.errMsg != "" {
			return false
		}
		f.submitted = true
		return true

	case tea.KeyTab, tea.KeyDown:
		f.updateForm(huh.NextField())
		return false

	case tea.KeyShiftTab, tea.KeyUp:
		f.updateForm(huh.PrevField())
		return false

	default:
		f.updateForm(msg)
		return false
	}
}

// Render returns the styled overlay string.
func (f *IssueForm) Render() string {
	content := modalTitleStyle.Render("create gitlab issue") + "\n"
	content += f.form.View() + "\n"
	if f.errMsg != "" {
		content += modalErrorStyle.Render(f.errMsg) + "\n"
	}
	content += modalHintStyle.Render("tab/↑↓ navigate · enter create · esc cancel")
	return modalStyle.Width(modalWidth(f.width)).Render(content)
}

// ProjectID returns the parsed project id, zero when invalid.
func (f *IssueForm) ProjectID() int {
	id, _ := strconv.Atoi(strings.TrimSpace(f.projectVal))
	return id
}

// Title returns the trimmed title.
func (f *IssueForm) Title() string { return strings.TrimSpace(f.titleVal) }

// Description returns the trimmed description.
func (f *IssueForm) Description() string { return strings.TrimSpace(f.descVal) }

// PostID returns the post the issue is created from, if any.
func (f *IssueForm) PostID() string { return f.postID }

// ChannelID returns the channel of that post, if any.
func (f *IssueForm) ChannelID() string { return f.channelID }

// IsSubmitted returns true when the form was submitted.
func (f *IssueForm) IsSubmitted() bool { return f.submitted }

// IsCanceled returns true when the form was dismissed.
func (f *IssueForm) IsCanceled() bool { return f.canceled }
