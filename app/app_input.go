package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/glrhs/keys"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/ui/overlay"
)

// handleMouse forwards mouse events over the panel, shifted past the status
// bar, while no overlay has focus.
func (m *home) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.state != stateDefault || !m.panelVisible() {
		return nil
	}
	if msg.Y < 1 || msg.Y > m.bodyHeight {
		return nil
	}
	msg.Y--
	return m.forward(msg)
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (mod tea.Model, cmd tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.handleQuit()
	}

	switch m.state {
	case stateHelp:
		return m.handleHelpState(msg)
	case stateCreateIssue:
		return m.handleIssueFormState(msg)
	case stateAttachComment:
		return m.handleCommentFormState(msg)
	case stateSearch:
		return m.handleSearchState(msg)
	}

	switch msg.String() {
	case "pgdown":
		if m.journalPane.Visible() {
			m.journalPane.ScrollDown(5)
			return m, nil
		}
	case "pgup":
		if m.journalPane.Visible() {
			m.journalPane.ScrollUp(5)
			return m, nil
		}
	}

	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return m, m.forwardToPanel(msg)
	}
	keydown := m.keydownCallback(name)

	switch name {
	case keys.KeyQuit:
		return m.handleQuit()
	case keys.KeyHelp:
		return m.showHelpScreen(helpTypeGeneral{})
	case keys.KeyToggleRHS:
		m.plugin.ToggleRHS()
		m.syncChrome()
		return m, keydown
	case keys.KeyJournal:
		m.journalPane.ToggleVisible()
		m.layout()
		if m.journalPane.Visible() {
			return m, tea.Batch(keydown, m.loadJournalCmd())
		}
		return m, keydown
	}

	if !m.panelVisible() {
		return m, nil
	}

	switch name {
	case keys.KeyRefresh:
		return m, tea.Batch(keydown, m.refreshCmd())
	case keys.KeyConnect:
		return m, tea.Batch(keydown, m.openURLCmd(m.opts.ConnectURL))
	case keys.KeyCopyURL:
		row, ok := m.panel.Selected()
		if !ok {
			return m, nil
		}
		return m, tea.Batch(keydown, m.copyURL(row.URL, "url"))
	case keys.KeyEnter:
		row, ok := m.panel.Selected()
		if !ok || row.URL == "" {
			return m, nil
		}
		return m, tea.Batch(keydown, m.openURLCmd(row.URL))
	case keys.KeyPopout:
		return m, tea.Batch(keydown, m.popoutCmd())
	case keys.KeyNewIssue:
		if !m.store.State().Connection.Connected {
			return m, m.handleError(errNotConnected)
		}
		m.openCreateIssue()
		m.syncChrome()
		return m, keydown
	case keys.KeySearch:
		if !m.store.State().Connection.Connected {
			return m, m.handleError(errNotConnected)
		}
		m.searchOverlay = overlay.NewSearchOverlay()
		m.searchOverlay.SetSize(searchWidth(m.termWidth), m.termHeight)
		m.state = stateSearch
		m.syncChrome()
		return m, keydown
	}

	return m, tea.Batch(keydown, m.forwardToPanel(msg))
}

// forwardToPanel hands a key to the panel and picks up any state change it
// dispatched.
func (m *home) forwardToPanel(msg tea.KeyMsg) tea.Cmd {
	if !m.panelVisible() {
		return nil
	}
	cmd := m.forward(msg)
	m.syncChrome()
	return cmd
}

func (m *home) handleIssueFormState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.issueForm
	if form == nil {
		m.state = stateDefault
		return m, nil
	}
	if !form.HandleKeyPress(msg) {
		return m, nil
	}
	m.store.Dispatch(state.CloseCreateIssueModal{})
	m.syncModals()
	m.syncChrome()
	if !form.IsSubmitted() {
		return m, nil
	}
	return m, m.createIssueCmd(model.IssueRequest{
		Title:       form.Title(),
		Description: form.Description(),
		ProjectID:   form.ProjectID(),
		PostID:      form.PostID(),
		ChannelID:   form.ChannelID(),
	})
}

func (m *home) handleCommentFormState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.commentForm
	if form == nil {
		m.state = stateDefault
		return m, nil
	}
	if !form.HandleKeyPress(msg) {
		return m, nil
	}
	m.store.Dispatch(state.CloseAttachCommentModal{})
	m.syncModals()
	m.syncChrome()
	if !form.IsSubmitted() {
		return m, nil
	}
	target := form.Target()
	return m, m.attachCommentCmd(model.CommentRequest{
		ProjectID: target.ProjectID,
		IssueIID:  target.IID,
		PostID:    form.PostID(),
		Comment:   form.Comment(),
		WebURL:    target.WebURL,
	}, target.Ref)
}

func (m *home) handleSearchState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	so := m.searchOverlay
	if so == nil {
		m.state = stateDefault
		return m, nil
	}
	switch so.HandleKeyPress(msg) {
	case overlay.SearchDismiss:
		m.searchOverlay = nil
		m.state = stateDefault
		m.syncChrome()
	case overlay.SearchSubmit:
		so.SetSearching()
		return m, m.searchCmd(so.Query())
	case overlay.SearchOpen:
		if r, ok := so.Selected(); ok && r.WebURL != "" {
			return m, m.openURLCmd(r.WebURL)
		}
	case overlay.SearchCopy:
		if r, ok := so.Selected(); ok {
			return m, m.copyURL(r.WebURL, "url")
		}
	case overlay.SearchAttach:
		r, ok := so.Selected()
		if !ok {
			return m, nil
		}
		m.store.Dispatch(state.OpenAttachCommentModal{})
		m.commentForm = overlay.NewCommentForm(overlay.CommentTarget{
			ProjectID: r.ProjectID,
			IID:       r.IID,
			Ref:       r.Ref,
			Title:     r.Title,
			WebURL:    r.WebURL,
		}, m.store.State().Modals.AttachComment.PostID, m.termWidth)
		m.searchOverlay = nil
		m.state = stateAttachComment
		m.syncChrome()
	}
	return m, nil
}

// keydownCallback clears the menu highlighting after 500ms.
func (m *home) keydownCallback(name keys.KeyName) tea.Cmd {
	m.menu.Keydown(name)
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(500 * time.Millisecond):
		}
		return keyupMsg{}
	}
}
