package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/glrhs/actions"
	"github.com/kastheco/glrhs/config/journal"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/plugin"
	"github.com/kastheco/glrhs/popout"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/ui"
	"github.com/kastheco/glrhs/ui/overlay"
)

// Slot is the host's RHS slot: the registered component and whether it is
// shown.
type Slot interface {
	Component() (tea.Model, string, bool)
	SetComponent(tea.Model)
	OnChange(fn func())
}

// Options wires one window.
type Options struct {
	Plugin *plugin.Plugin
	Slot   Slot
	Panel  *ui.Panel

	Journal journal.Journal
	Window  journal.Window

	ServerHost string
	ConnectURL string
	TeamID     string

	// PopoutCommand builds the command line that opens a popout for a channel.
	// Nil in a popout window.
	PopoutCommand func(teamID, channelID string) string

	// Live reports whether the websocket link is up. Nil means always.
	Live func() bool
}

// Run is the main entrypoint into the application.
func Run(ctx context.Context, opts Options) error {
	restore := ui.SetTerminalBackground(string(ui.ColorBase))
	defer restore()

	p := tea.NewProgram(
		newHome(ctx, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

type appState int

const (
	stateDefault appState = iota
	// stateHelp is the state when a help screen is displayed.
	stateHelp
	// stateCreateIssue is the state when the create-issue form has focus.
	stateCreateIssue
	// stateAttachComment is the state when the attach-comment form has focus.
	stateAttachComment
	// stateSearch is the state when the issue search overlay is open.
	stateSearch
)

type home struct {
	ctx  context.Context
	opts Options

	plugin  *plugin.Plugin
	store   *state.Store
	actions *actions.Actions
	slot    Slot
	panel   *ui.Panel

	state appState

	// -- UI Components --

	statusBar    *ui.StatusBar
	menu         *ui.Menu
	journalPane  *ui.JournalPane
	toastManager *overlay.ToastManager
	spinner      spinner.Model

	textOverlay   *overlay.TextOverlay
	issueForm     *overlay.IssueForm
	commentForm   *overlay.CommentForm
	searchOverlay *overlay.SearchOverlay

	// slotChanged is signalled by the host slot when the panel is shown or
	// hidden from outside the bubbletea loop.
	slotChanged chan struct{}

	// popoutHelpShown is set once the popout help screen was shown.
	popoutHelpShown bool

	bannerFrame int

	termWidth  int
	termHeight int
	bodyHeight int

	// copy and openURL are swapped out in tests.
	copy    func(string) error
	openURL func(string) error
}

func newHome(ctx context.Context, opts Options) *home {
	if opts.Journal == nil {
		opts.Journal = journal.Nop()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	m := &home{
		ctx:         ctx,
		opts:        opts,
		plugin:      opts.Plugin,
		store:       opts.Plugin.Store(),
		actions:     opts.Plugin.Actions(),
		slot:        opts.Slot,
		panel:       opts.Panel,
		statusBar:   ui.NewStatusBar(),
		menu:        ui.NewMenu(),
		journalPane: ui.NewJournalPane(),
		spinner:     sp,
		slotChanged: make(chan struct{}, 1),
		copy:        clipboard.WriteAll,
		openURL:     openBrowser,
	}
	m.toastManager = overlay.NewToastManager(&m.spinner)
	m.slot.OnChange(func() {
		select {
		case m.slotChanged <- struct{}{}:
		default:
		}
	})
	m.syncChrome()
	return m
}

// panelVisible reports whether the RHS slot is open.
func (m *home) panelVisible() bool {
	_, _, visible := m.slot.Component()
	return visible
}

func (m *home) live() bool {
	if m.opts.Live == nil {
		return true
	}
	return m.opts.Live()
}

// updateHandleWindowSizeEvent sets the sizes of the components.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.termWidth = msg.Width
	m.termHeight = msg.Height
	m.layout()
}

func (m *home) layout() {
	statusHeight, menuHeight := 1, 1
	body := m.termHeight - statusHeight - menuHeight
	if body < 1 {
		body = 1
	}
	m.statusBar.SetSize(m.termWidth)
	m.menu.SetSize(m.termWidth, menuHeight)
	m.toastManager.SetSize(m.termWidth, m.termHeight)

	panelHeight := body
	if m.journalPane.Visible() {
		journalHeight := body / 3
		if journalHeight < 5 {
			journalHeight = 5
		}
		if journalHeight > body-3 {
			journalHeight = body - 3
		}
		panelHeight = body - journalHeight
		m.journalPane.SetSize(m.termWidth, journalHeight)
	}
	m.bodyHeight = panelHeight
	if m.panel != nil {
		m.panel.SetSize(m.termWidth, panelHeight)
	}
	if m.searchOverlay != nil {
		m.searchOverlay.SetSize(searchWidth(m.termWidth), m.termHeight)
	}
	if m.textOverlay != nil {
		m.textOverlay.SetWidth(int(float32(m.termWidth) * 0.6))
	}
}

func searchWidth(termWidth int) int {
	w := int(float32(termWidth) * 0.7)
	if w < 40 {
		w = 40
	}
	return w
}

// syncChrome updates the status bar and the menu from the store.
func (m *home) syncChrome() {
	s := m.store.State()
	phase := m.plugin.PopoutPhase()
	data := ui.StatusBarData{
		ServerHost:   m.opts.ServerHost,
		Connected:    s.Connection.Connected,
		Username:     s.Connection.Username,
		Organization: s.Connection.Organization,
		Popout:       phase != popout.PhaseNotAPopout,
		Live:         m.live(),
	}
	if data.Popout {
		data.PopoutPhase = string(phase)
	}
	if m.panel != nil {
		data.ChannelID = m.panel.ChannelID()
	}
	m.statusBar.SetData(data)

	switch {
	case m.state == stateCreateIssue || m.state == stateAttachComment:
		m.menu.SetState(ui.MenuForm)
	case m.state == stateSearch:
		m.menu.SetState(ui.MenuSearch)
	case !m.panelVisible():
		m.menu.SetState(ui.MenuHidden)
	case !s.Connection.Connected:
		m.menu.SetState(ui.MenuDisconnected)
	default:
		m.menu.SetState(ui.MenuDefault)
	}
}

// syncModals opens or closes the forms to match the modal slice of the store.
// The create_issue push event opens the form this way.
func (m *home) syncModals() {
	s := m.store.State()

	ci := s.Modals.CreateIssue
	switch {
	case ci.Visible && m.issueForm == nil:
		m.issueForm = overlay.NewIssueForm(ci.Title, ci.PostID, ci.ChannelID, m.termWidth)
		m.searchOverlay = nil
		m.state = stateCreateIssue
	case !ci.Visible && m.issueForm != nil:
		m.issueForm = nil
		if m.state == stateCreateIssue {
			m.state = stateDefault
		}
	}

	if !s.Modals.AttachComment.Visible && m.commentForm != nil {
		m.commentForm = nil
		if m.state == stateAttachComment {
			m.state = stateDefault
		}
	}
}

func (m *home) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.waitForSlot(),
		bannerTickCmd(),
	}
	if comp, _, _ := m.slot.Component(); comp != nil {
		cmds = append(cmds, comp.Init())
	}
	return tea.Batch(cmds...)
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case overlay.ToastTickMsg:
		m.toastManager.Tick()
		if m.toastManager.HasActiveToasts() {
			return m, m.toastTickCmd()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case slotChangedMsg:
		m.syncChrome()
		return m, m.waitForSlot()
	case bannerTickMsg:
		m.bannerFrame++
		m.syncChrome()
		return m, bannerTickCmd()
	case keyupMsg:
		m.menu.ClearKeydown()
		return m, nil
	case refreshDoneMsg:
		return m, m.resolve(msg.toastID, msg.err, "refreshed")
	case issueCreatedMsg:
		return m, m.resolve(msg.toastID, msg.err, "created "+msg.ref)
	case commentAttachedMsg:
		return m, m.resolve(msg.toastID, msg.err, "attached to "+msg.ref)
	case searchResultsMsg:
		if m.searchOverlay != nil {
			m.searchOverlay.SetResults(msg.query, msg.results, msg.err)
		}
		return m, nil
	case journalLoadedMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		m.journalPane.SetLines(msg.lines)
		return m, nil
	case openedMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}

	// Everything else, StateMsg included, belongs to the panel.
	cmd := m.forward(msg)
	m.syncModals()
	m.syncChrome()
	cmds := []tea.Cmd{cmd}
	if _, ok := msg.(ui.StateMsg); ok {
		cmds = append(cmds, m.maybeShowPopoutHelp())
		if m.journalPane.Visible() {
			cmds = append(cmds, m.loadJournalCmd())
		}
	}
	return m, tea.Batch(cmds...)
}

// forward hands msg to the slot component and stores the updated model.
func (m *home) forward(msg tea.Msg) tea.Cmd {
	comp, _, _ := m.slot.Component()
	if comp == nil {
		return nil
	}
	next, cmd := comp.Update(msg)
	m.slot.SetComponent(next)
	return cmd
}

// resolve turns a loading toast into the outcome of the action behind it.
func (m *home) resolve(toastID string, err error, success string) tea.Cmd {
	if err != nil {
		log.ErrorLog.Printf("%v", err)
		m.toastManager.Resolve(toastID, overlay.ToastError, err.Error())
	} else {
		m.toastManager.Resolve(toastID, overlay.ToastSuccess, success)
	}
	return m.toastTickCmd()
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	if m.panel != nil {
		m.panel.Close()
	}
	return m, tea.Quit
}

var (
	hiddenHintStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	hiddenKeyStyle  = lipgloss.NewStyle().Foreground(ui.ColorFoam)
)

// hiddenView fills the body while the panel is toggled off.
func (m *home) hiddenView() string {
	frame := 0
	if !m.live() {
		frame = m.bannerFrame
	}
	banner := lipgloss.JoinVertical(lipgloss.Center, ui.BannerLines(frame)...)
	hint := hiddenHintStyle.Render("press ") + hiddenKeyStyle.Render("ctrl+g") +
		hiddenHintStyle.Render(" to open the gitlab panel")
	content := lipgloss.JoinVertical(lipgloss.Center, banner, "", hint)
	return lipgloss.Place(m.termWidth, m.bodyHeight, lipgloss.Center, lipgloss.Center, content)
}

func (m *home) View() string {
	var body string
	if comp, _, visible := m.slot.Component(); visible && comp != nil {
		body = comp.View()
	} else {
		body = m.hiddenView()
	}
	if m.journalPane.Visible() {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.journalPane.String())
	}

	mainView := lipgloss.JoinVertical(
		lipgloss.Left,
		m.statusBar.String(),
		body,
		m.menu.String(),
	)

	var result string
	switch {
	case m.state == stateHelp && m.textOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.textOverlay.Render(), mainView, true)
	case m.state == stateCreateIssue && m.issueForm != nil:
		result = overlay.PlaceOverlay(0, 0, m.issueForm.Render(), mainView, true)
	case m.state == stateAttachComment && m.commentForm != nil:
		result = overlay.PlaceOverlay(0, 0, m.commentForm.Render(), mainView, true)
	case m.state == stateSearch && m.searchOverlay != nil:
		result = overlay.PlaceOverlay(0, 0, m.searchOverlay.Render(), mainView, true)
	default:
		result = mainView
	}

	if toastView := m.toastManager.View(); toastView != "" {
		x, y := m.toastManager.GetPosition()
		result = overlay.PlaceOverlay(x, y, toastView, result, false)
	}

	return ui.FillBackground(result, m.termHeight)
}

// slotChangedMsg reports that the RHS slot was shown or hidden.
type slotChangedMsg struct{}

type bannerTickMsg struct{}

type keyupMsg struct{}

func (m *home) waitForSlot() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.slotChanged:
			return slotChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// bannerTickCmd advances the banner animation shown while the websocket is down.
func bannerTickCmd() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(time.Time) tea.Msg {
		return bannerTickMsg{}
	})
}

func (m *home) toastTickCmd() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(50 * time.Millisecond)
		return overlay.ToastTickMsg{}
	}
}
