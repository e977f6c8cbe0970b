package overlay

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// CommentTarget is the issue a post gets attached to.
type CommentTarget struct {
	ProjectID int
	IID       int
	Ref       string
	Title     string
	WebURL    string
}

// CommentForm attaches a Mattermost post to a GitLab issue as a comment.
type CommentForm struct {
	form       *huh.Form
	target     CommentTarget
	postVal    string
	commentVal string
	errMsg     string
	submitted  bool
	canceled   bool
	width      int
}

// NewCommentForm creates the form for target. postID prefills the post field.
func NewCommentForm(target CommentTarget, postID string, width int) *CommentForm {
	f := &CommentForm{target: target, postVal: postID, width: width}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("post").
				Title("post id").
				Value(&f.postVal),
			huh.NewInput().
				Key("comment").
				Title("comment (optional)").
				Value(&f.commentVal),
		),
	).
		WithTheme(ThemeRosePine()).
		WithWidth(modalWidth(width) - 6).
		WithShowHelp(false).
		WithShowErrors(false)

	_ = f.form.Init()

	return f
}

func (f *CommentForm) updateForm(msg tea.Msg) {
	updated, _ := f.form.Update(msg)
	if form, ok := updated.(*huh.Form); ok {
		f.form = form
	}
}

// HandleKeyPress processes a key and returns true when the overlay should close.
func (f *CommentForm) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEsc:
		f.canceled = true
		return true

	case tea.KeyEnter:
		if strings.TrimSpace(f.postVal) == "" {
			f.errMsg = "post id is required"
			return false
		}
		f.errMsg = ""
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
func (f *CommentForm) Render() string {
	content := modalTitleStyle.Render("attach post to issue") + "\n"
	content += fmt.Sprintf("%s %s\n\n", f.target.Ref, f.target.Title)
	content += f.form.View() + "\n"
	if f.errMsg != "" {
		content += modalErrorStyle.Render(f.errMsg) + "\n"
	}
	content += modalHintStyle.Render("tab/↑↓ navigate · enter attach · esc cancel")
	return modalStyle.Width(modalWidth(f.width)).Render(content)
}

// Target returns the issue the post is attached to.
func (f *CommentForm) Target() CommentTarget { return f.target }

// PostID returns the trimmed post id.
func (f *CommentForm) PostID() string { return strings.TrimSpace(f.postVal) }

// Comment returns the trimmed comment.
func (f *CommentForm) Comment() string { return strings.TrimSpace(f.commentVal) }

// IsSubmitted returns true when the form was submitted.
func (f *CommentForm) IsSubmitted() bool { return f.submitted }

// IsCanceled returns true when the form was dismissed.
func (f *CommentForm) IsCanceled() bool { return f.canceled }
