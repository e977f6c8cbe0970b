package app

import (
	"fmt"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/glrhs/config/journal"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/ui"
	"github.com/kastheco/glrhs/ui/overlay"
)

// journalPaneLimit is how many journal rows the pane loads.
const journalPaneLimit = 200

type refreshDoneMsg struct {
	toastID string
	err     error
}

type issueCreatedMsg struct {
	toastID string
	ref     string
	err     error
}

type commentAttachedMsg struct {
	toastID string
	ref     string
	err     error
}

type searchResultsMsg struct {
	query   string
	results []overlay.SearchResult
	err     error
}

type journalLoadedMsg struct {
	lines []ui.JournalLine
	err   error
}

type openedMsg struct{ err error }

// refreshCmd re-checks the account link and reloads the sidebar lists when
// the account is connected.
func (m *home) refreshCmd() tea.Cmd {
	toastID := m.toastManager.Loading("refreshing")
	ctx, a := m.ctx, m.actions
	return tea.Batch(m.toastTickCmd(), func() tea.Msg {
		data, err := a.GetConnected(ctx, false)
		if err == nil && data != nil && data.Connected {
			err = a.RefreshSidebar(ctx)
		}
		return refreshDoneMsg{toastID: toastID, err: err}
	})
}

func (m *home) createIssueCmd(req model.IssueRequest) tea.Cmd {
	toastID := m.toastManager.Loading("creating issue")
	ctx, a := m.ctx, m.actions
	return tea.Batch(m.toastTickCmd(), func() tea.Msg {
		issue, err := a.CreateIssue(ctx, req)
		msg := issueCreatedMsg{toastID: toastID, err: err}
		if issue != nil {
			msg.ref = issueRef(*issue)
		}
		return msg
	})
}

func (m *home) attachCommentCmd(req model.CommentRequest, ref string) tea.Cmd {
	toastID := m.toastManager.Loading("attaching post")
	ctx, a := m.ctx, m.actions
	return tea.Batch(m.toastTickCmd(), func() tea.Msg {
		_, err := a.AttachCommentToIssue(ctx, req)
		return commentAttachedMsg{toastID: toastID, ref: ref, err: err}
	})
}

func (m *home) searchCmd(query string) tea.Cmd {
	ctx, a := m.ctx, m.actions
	return func() tea.Msg {
		issues, err := a.SearchIssues(ctx, query)
		results := make([]overlay.SearchResult, 0, len(issues))
		for _, is := range issues {
			results = append(results, overlay.SearchResult{
				ProjectID: is.ProjectID,
				IID:       is.IID,
				Ref:       issueRef(is),
				Title:     is.Title,
				State:     is.State,
				WebURL:    is.WebURL,
			})
		}
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

func issueRef(is model.Issue) string {
	if is.References.Full != "" {
		return is.References.Full
	}
	return fmt.Sprintf("#%d", is.IID)
}

// loadJournalCmd reads this window's newest journal rows.
func (m *home) loadJournalCmd() tea.Cmd {
	j, window := m.opts.Journal, m.opts.Window
	return func() tea.Msg {
		entries, err := j.Query(journal.QueryFilter{Window: window, Limit: journalPaneLimit})
		if err != nil {
			return journalLoadedMsg{err: fmt.Errorf("load journal: %w", err)}
		}
		lines := make([]ui.JournalLine, len(entries))
		for i, e := range entries {
			lines[i] = ui.JournalLine{
				Time:    e.Timestamp.Format("15:04:05"),
				Kind:    string(e.Kind),
				Origin:  string(e.Window),
				Message: e.Message,
			}
		}
		return journalLoadedMsg{lines: lines}
	}
}

// openURLCmd opens url in the browser off the bubbletea loop.
func (m *home) openURLCmd(url string) tea.Cmd {
	open := m.openURL
	return func() tea.Msg {
		return openedMsg{err: open(url)}
	}
}

// copyURL copies url to the clipboard and toasts the outcome.
func (m *home) copyURL(url, what string) tea.Cmd {
	if url == "" {
		m.toastManager.Info("nothing to copy")
		return m.toastTickCmd()
	}
	if err := m.copy(url); err != nil {
		return m.handleError(fmt.Errorf("copy %s: %w", what, err))
	}
	m.toastManager.Success("copied " + what)
	return m.toastTickCmd()
}

// popoutCmd copies the command line that opens a popout for the shown channel.
func (m *home) popoutCmd() tea.Cmd {
	if m.opts.PopoutCommand == nil {
		m.toastManager.Info("this window is already a popout")
		return m.toastTickCmd()
	}
	channelID := ""
	if m.panel != nil {
		channelID = m.panel.ChannelID()
	}
	if channelID == "" {
		m.toastManager.Error("no channel to pop out")
		return m.toastTickCmd()
	}
	return m.copyURL(m.opts.PopoutCommand(m.opts.TeamID, channelID), "popout command")
}

// openCreateIssue opens the create-issue form for the shown channel through
// the store, the same path the create_issue push event takes.
func (m *home) openCreateIssue() {
	channelID := ""
	if m.panel != nil {
		channelID = m.panel.ChannelID()
	}
	m.store.Dispatch(state.OpenCreateIssueModal{ChannelID: channelID})
	m.syncModals()
}

func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.toastManager.Error(err.Error())
	return m.toastTickCmd()
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
