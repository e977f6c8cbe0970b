package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/glrhs/keys"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/state/selectors"
)

// Store is what the panel reads, dispatches into and watches.
type Store interface {
	state.ReadDispatcher
	Subscribe(fn func(state.PluginState)) func()
}

// SubscriptionLoader fetches the subscriptions of a channel the panel is about
// to show and has not seen yet.
type SubscriptionLoader interface {
	GetChannelSubscriptions(ctx context.Context, channelID string) ([]model.Subscription, error)
}

// StateMsg carries a new state tree into the bubbletea loop.
type StateMsg struct{ State state.PluginState }

// detailRenderedMsg delivers the async glamour render result back to Update.
type detailRenderedMsg struct {
	key      string
	title    string
	rendered string
	err      error
}

// subscriptionsLoadedMsg reports the end of a subscriptions fetch.
type subscriptionsLoadedMsg struct {
	channelID string
	err       error
}

// Panel is the RHS component: the sidebar_right tabs or the subscriptions view
// of the current channel, depending on the RHS view type in the store.
type Panel struct {
	ctx           context.Context
	store         Store
	loader        SubscriptionLoader
	hostChannelID string

	sel    *selectors.SidebarSelector
	tabs   *TabbedWindow
	list   *ItemList
	subs   *ItemList
	detail *DetailPane

	snapshot state.PluginState
	loading  map[string]bool // channel ids with a subscriptions fetch in flight

	updates     chan state.PluginState
	unsubscribe func()

	width, height int
	focused       bool
}

// NewPanel creates a panel reading store. hostChannelID is the channel the
// window was opened for; a synced popout channel takes precedence. loader may
// be nil.
func NewPanel(ctx context.Context, store Store, loader SubscriptionLoader, hostChannelID string) *Panel {
	list := NewItemList("Nothing here.")
	p := &Panel{
		ctx:           ctx,
		store:         store,
		loader:        loader,
		hostChannelID: hostChannelID,
		sel:           selectors.NewSidebarSelector(),
		tabs:          NewTabbedWindow(list),
		list:          list,
		subs:          NewItemList("This channel has no GitLab subscriptions."),
		detail:        NewDetailPane(),
		loading:       map[string]bool{},
		updates:       make(chan state.PluginState, 1),
		focused:       true,
	}
	p.unsubscribe = store.Subscribe(p.push)
	p.apply(store.State())
	return p
}

// push keeps only the newest tree in the updates channel. It is called from
// whatever goroutine dispatched.
func (p *Panel) push(s state.PluginState) {
	for {
		select {
		case p.updates <- s:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

func (p *Panel) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-p.updates:
			return StateMsg{State: s}
		case <-p.ctx.Done():
			return nil
		}
	}
}

// Close stops watching the store.
func (p *Panel) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// State returns the tree the panel last rendered.
func (p *Panel) State() state.PluginState { return p.snapshot }

// ViewType returns the RHS view type currently shown.
func (p *Panel) ViewType() state.RHSViewType { return p.snapshot.RHS.ViewType }

// ChannelID returns the channel whose subscriptions the panel shows.
func (p *Panel) ChannelID() string {
	id, _ := selectors.CurrentSubscriptions(p.snapshot, p.hostChannelID)
	return id
}

// Selected returns the selected row of the visible list.
func (p *Panel) Selected() (Row, bool) {
	if p.snapshot.RHS.ViewType == state.RHSViewSubscriptions {
		return p.subs.Selected()
	}
	return p.list.Selected()
}

// SetSize sets the panel's outer dimensions.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.layout()
}

// SetFocused sets whether the panel has keyboard focus.
func (p *Panel) SetFocused(focused bool) {
	p.focused = focused
	p.tabs.SetFocused(focused)
	p.subs.SetFocused(focused)
}

func (p *Panel) layout() {
	listHeight := p.height
	if p.detail.Visible() {
		listHeight = p.height / 2
		p.detail.SetSize(p.width, p.height-listHeight)
	}
	p.tabs.SetSize(p.width, listHeight)
	p.subs.SetSize(p.width, listHeight-2)
}

// apply renders a new tree into the panel's widgets.
func (p *Panel) apply(s state.PluginState) {
	p.snapshot = s
	data := p.sel.Select(s)
	p.tabs.SetActiveTab(s.RHS.State)
	p.tabs.SetCounts(selectors.TabCounts(data))
	p.list.SetRows(TabRows(data, p.tabs.ActiveTab()))

	_, subs := selectors.CurrentSubscriptions(s, p.hostChannelID)
	p.subs.SetRows(SubscriptionRows(subs))
}

func (p *Panel) Init() tea.Cmd {
	return tea.Batch(p.waitForState(), p.ensureSubscriptions())
}

func (p *Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		p.apply(msg.State)
		return p, tea.Batch(p.waitForState(), p.ensureSubscriptions(), p.refreshDetail())
	case subscriptionsLoadedMsg:
		delete(p.loading, msg.channelID)
		if msg.err != nil {
			log.WarningLog.Printf("load subscriptions for %s: %v", msg.channelID, msg.err)
		}
		return p, nil
	case detailRenderedMsg:
		if msg.err != nil {
			log.ErrorLog.Printf("render description: %v", msg.err)
			return p, nil
		}
		p.detail.SetContent(msg.key, msg.title, msg.rendered)
		return p, nil
	case tea.MouseMsg:
		return p, p.handleMouse(msg)
	case tea.KeyMsg:
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *Panel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.moveSelection(-1)
		return p.refreshDetail()
	case tea.MouseButtonWheelDown:
		p.moveSelection(1)
		return p.refreshDetail()
	case tea.MouseButtonLeft:
		if p.snapshot.RHS.ViewType != state.RHSViewSidebarRight {
			return nil
		}
		if tab, ok := p.tabs.TabAt(msg.X, msg.Y); ok {
			p.setTab(tab)
		}
	}
	return nil
}

func (p *Panel) handleKey(msg tea.KeyMsg) tea.Cmd {
	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		if p.detail.Visible() {
			return p.detail.Update(msg)
		}
		return nil
	}
	switch name {
	case keys.KeyUp:
		p.moveSelection(-1)
		return p.refreshDetail()
	case keys.KeyDown:
		p.moveSelection(1)
		return p.refreshDetail()
	case keys.KeyTab:
		p.setTab(p.tabs.NextTab())
	case keys.KeyShiftTab:
		p.setTab(p.tabs.PrevTab())
	case keys.KeyTabYourPrs:
		p.setTab(state.RHSStateYourPrs)
	case keys.KeyTabReviews:
		p.setTab(state.RHSStateReviews)
	case keys.KeyTabUnreads:
		p.setTab(state.RHSStateUnreads)
	case keys.KeyTabAssignments:
		p.setTab(state.RHSStateAssignments)
	case keys.KeySubscriptions:
		p.dispatch(state.SetRHSViewType{ViewType: state.RHSViewSubscriptions})
		return p.ensureSubscriptions()
	case keys.KeySidebar:
		p.dispatch(state.SetRHSViewType{ViewType: state.RHSViewSidebarRight})
	case keys.KeyDetail:
		p.detail.ToggleVisible()
		p.layout()
		return p.refreshDetail()
	}
	return nil
}

// dispatch applies e to the store and renders the result right away instead of
// waiting for the StateMsg round trip.
func (p *Panel) dispatch(e state.Event) {
	p.store.Dispatch(e)
	p.apply(p.store.State())
}

func (p *Panel) moveSelection(delta int) {
	l := p.list
	if p.snapshot.RHS.ViewType == state.RHSViewSubscriptions {
		l = p.subs
	}
	if delta < 0 {
		l.Up()
	} else {
		l.Down()
	}
}

// setTab switches the sidebar_right tab. Switching tabs also brings the
// sidebar_right view forward.
func (p *Panel) setTab(tab state.RHSState) {
	if p.snapshot.RHS.ViewType != state.RHSViewSidebarRight {
		p.dispatch(state.SetRHSViewType{ViewType: state.RHSViewSidebarRight})
	}
	if tab != p.snapshot.RHS.State {
		p.dispatch(state.UpdateRHSState{State: tab})
	}
}

// ensureSubscriptions fetches the shown channel's subscriptions when the
// subscriptions view is up and nothing has been loaded for that channel.
func (p *Panel) ensureSubscriptions() tea.Cmd {
	if p.loader == nil || p.snapshot.RHS.ViewType != state.RHSViewSubscriptions {
		return nil
	}
	channelID := p.ChannelID()
	if channelID == "" || p.loading[channelID] {
		return nil
	}
	if _, ok := selectors.ChannelSubscriptions(p.snapshot, channelID); ok {
		return nil
	}
	p.loading[channelID] = true
	ctx, loader := p.ctx, p.loader
	return func() tea.Msg {
		_, err := loader.GetChannelSubscriptions(ctx, channelID)
		return subscriptionsLoadedMsg{channelID: channelID, err: err}
	}
}

// refreshDetail renders the selected row's description when the detail pane
// is open and shows a different row.
func (p *Panel) refreshDetail() tea.Cmd {
	if !p.detail.Visible() {
		return nil
	}
	row, ok := p.Selected()
	if !ok || row.Key == p.detail.Key() {
		return nil
	}
	width := p.detail.Width()
	title := row.Title
	if row.Ref != "" {
		title = row.Ref + " " + row.Title
	}
	return func() tea.Msg {
		rendered, err := RenderMarkdown(row.Description, width)
		return detailRenderedMsg{key: row.Key, title: title, rendered: rendered, err: err}
	}
}

var (
	panelHeaderStyle = lipgloss.NewStyle().Foreground(ColorIris).Bold(true).Padding(0, 1)
	panelHintStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Padding(1, 1)
	panelKeyStyle    = lipgloss.NewStyle().Foreground(ColorFoam)
)

func (p *Panel) notConnectedView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		panelHeaderStyle.Render(GradientText("GitLab", GradientStart, GradientEnd)),
		panelHintStyle.Render("Your GitLab account is not connected."),
		panelHintStyle.Render("Press "+panelKeyStyle.Render("C")+" to connect it in the browser, then "+
			panelKeyStyle.Render("r")+" to refresh."),
	)
}

func (p *Panel) subscriptionsView() string {
	header := "Subscriptions"
	if id := p.ChannelID(); id != "" {
		header = fmt.Sprintf("Subscriptions in #%s", id)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		panelHeaderStyle.Render(truncate(header, p.width-2)),
		"",
		p.subs.String(),
	)
}

func (p *Panel) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}
	var body string
	switch {
	case p.snapshot.RHS.ViewType == state.RHSViewSubscriptions:
		body = p.subscriptionsView()
	case !p.snapshot.Connection.Connected:
		body = p.notConnectedView()
	default:
		body = p.tabs.String()
	}
	if p.detail.Visible() {
		body = lipgloss.JoinVertical(lipgloss.Left, body, p.detail.String())
	}
	return lipgloss.NewStyle().Width(p.width).Height(p.height).MaxHeight(p.height).Render(body)
}
