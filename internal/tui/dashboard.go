package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/action"
	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/hass"
	"github.com/activhome/lightstack/internal/layout"
	"github.com/activhome/lightstack/internal/stack"
)

const detailsHeight = 8

// calibrateMsg runs a scheduled calibration after the frame it was
// scheduled for has been painted.
type calibrateMsg struct {
	gen    uint64
	insets layout.Insets
}

// reloadMsg carries a card file that changed on disk.
type reloadMsg struct {
	dashboard *card.Dashboard
	err       error
}

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Activate key.Binding
	MoreInfo key.Binding
	On       key.Binding
	Off      key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.On, k.Off, k.MoreInfo, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Activate, k.MoreInfo, k.On, k.Off},
		{k.Back, k.Help, k.Quit},
	}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "prev button")),
		Right:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next button")),
		Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press")),
		MoreInfo: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
		On:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "on")),
		Off:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "off")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// DashboardOptions configures a DashboardModel.
type DashboardOptions struct {
	Dashboard *card.Dashboard
	ViewPath  string // initial view, "" for the first one
	URL       string
	Token     string
	Connect   Connector
	Open      OpenerFunc
	Grid      layout.Grid
	Logger    *zap.Logger
}

// DashboardModel shows one card and drives it.
type DashboardModel struct {
	// Card
	Dashboard *card.Dashboard
	ViewPath  string
	Location  string
	Title     string
	Widget    *stack.Widget
	Grid      layout.Grid
	history   []string

	// Connection
	URL        string
	Token      string
	Connect    Connector
	Backend    Backend
	changes    <-chan hass.StateChange
	Connecting bool
	Connected  bool
	ConnErr    error
	Spinner    spinner.Model
	States     map[string]hass.State

	// Actions
	exec       *action.Executor
	signals    *signalBus
	dispatcher *action.Dispatcher
	press      string // interaction id of the mouse press in progress
	Open       OpenerFunc
	reloads    <-chan reloadMsg

	// Last rendered card
	frame CardFrame

	// UI state
	Width          int
	Height         int
	Cursor         int
	Focus          Focus
	ShowingHelp    bool
	ShowingDetails bool
	DetailsEntity  string
	Details        viewport.Model
	Status         string

	Help   help.Model
	Keys   dashboardKeyMap
	Logger *zap.Logger
}

// NewDashboardModel creates the dashboard for opts.ViewPath (or the first view).
func NewDashboardModel(opts DashboardOptions) (DashboardModel, error) {
	if opts.Dashboard == nil || len(opts.Dashboard.Views) == 0 {
		return DashboardModel{}, card.NewConfigError("views", "at least one view is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	view := &opts.Dashboard.Views[0]
	if opts.ViewPath != "" {
		v, ok := opts.Dashboard.Lookup(opts.ViewPath)
		if !ok {
			return DashboardModel{}, fmt.Errorf("no view at %q", opts.ViewPath)
		}
		view = v
	}

	w, err := stack.New(view.Card)
	if err != nil {
		return DashboardModel{}, err
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	connect := opts.Connect
	if connect == nil {
		connect = HassConnector(logger)
	}
	open := opts.Open
	if open == nil {
		open = OpenBrowser
	}

	signals := newSignalBus(32, logger)
	m := DashboardModel{
		Dashboard:  opts.Dashboard,
		ViewPath:   view.Path,
		Location:   view.Path,
		Title:      view.Title,
		Widget:     w,
		Grid:       opts.Grid,
		URL:        opts.URL,
		Token:      opts.Token,
		Connect:    connect,
		Spinner:    s,
		States:     make(map[string]hass.State),
		exec:       action.NewExecutor(nil, signals, logger),
		signals:    signals,
		dispatcher: action.NewDispatcher(0),
		Open:       open,
		Width:      80,
		Height:     24,
		Details:    viewport.New(MinTerminalWidth, detailsHeight),
		Help:       help.New(),
		Keys:       newDashboardKeyMap(),
		Logger:     logger,
	}
	m.refresh()
	return m, nil
}

// Init starts connecting and listening for signals.
func (m DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.signals.wait(), m.calibrate()}
	if m.reloads != nil {
		cmds = append(cmds, waitForReload(m.reloads))
	}
	if m.URL != "" {
		cmds = append(cmds, func() tea.Msg { return reconnectMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Details.Width = CardWidth(msg.Width) - 4
		m.refresh()
		cmd := m.calibrate()
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case calibrateMsg:
		if m.Widget.RunCalibration(msg.gen, msg.insets) {
			m.refresh()
		}
		return m, nil

	case reconnectMsg:
		if m.Connecting || m.Connected || m.URL == "" {
			return m, nil
		}
		m.Connecting = true
		m.Status = "Connecting to " + m.URL
		return m, tea.Batch(m.Spinner.Tick, connectCmd(m.Connect, m.URL, m.Token))

	case connectedMsg:
		return m.handleConnected(msg)

	case connectErrMsg:
		m.Connecting = false
		m.ConnErr = msg.err
		m.Logger.Warn("Connection failed", zap.String("url", m.URL), zap.Error(msg.err))
		if hass.IsAuthError(msg.err) {
			m.Status = hass.GetUserFriendlyMessage(msg.err)
			return m, nil
		}
		m.Status = fmt.Sprintf("%s (retrying in %s)", hass.GetUserFriendlyMessage(msg.err), ReconnectDelay)
		return m, reconnectAfter(ReconnectDelay)

	case stateChangedMsg:
		if msg.changes != m.changes {
			// left over from a previous connection
			return m, nil
		}
		m.applyChange(msg.change)
		return m, waitForChange(m.Backend, m.changes)

	case streamClosedMsg:
		if msg.backend != m.Backend {
			return m, nil
		}
		m.Connected = false
		m.Backend = nil
		m.changes = nil
		m.exec = action.NewExecutor(nil, m.signals, m.Logger)
		m.Status = "Disconnected, reconnecting..."
		m.Logger.Warn("State stream closed", zap.String("url", m.URL))
		return m, reconnectAfter(ReconnectDelay)

	case signalMsg:
		cmd := m.handleSignal(msg)
		return m, tea.Batch(cmd, m.signals.wait())

	case actionDoneMsg:
		if m.Connected {
			m.Status = fmt.Sprintf("%s: %s", msg.entity, msg.tag)
		}
		return m, nil

	case urlOpenedMsg:
		if msg.err != nil {
			m.Logger.Warn("Failed to open URL", zap.String("url", msg.url), zap.Error(msg.err))
			m.Status = "Could not open " + msg.url
		}
		return m, nil

	case reloadMsg:
		m.applyReload(msg)
		return m, tea.Batch(m.calibrate(), waitForReload(m.reloads))

	case spinner.TickMsg:
		if !m.Connecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ShowingHelp {
		// any key closes help
		m.ShowingHelp = false
		return m, nil
	}

	if m.ShowingDetails {
		switch {
		case key.Matches(msg, m.Keys.Back), key.Matches(msg, m.Keys.MoreInfo):
			m.ShowingDetails = false
			m.DetailsEntity = ""
			return m, nil
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.Details, cmd = m.Details.Update(msg)
		return m, cmd
	}

	rows := len(m.Widget.Entities())

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.ShowingHelp = true

	case key.Matches(msg, m.Keys.Up):
		m.Cursor--
		if m.Cursor < 0 {
			m.Cursor = rows - 1
		}
		m.refresh()

	case key.Matches(msg, m.Keys.Down):
		m.Cursor++
		if m.Cursor >= rows {
			m.Cursor = 0
		}
		m.refresh()

	case key.Matches(msg, m.Keys.Left):
		m.Focus = (m.Focus + 2) % 3
		m.refresh()

	case key.Matches(msg, m.Keys.Right):
		m.Focus = (m.Focus + 1) % 3
		m.refresh()

	case key.Matches(msg, m.Keys.Activate):
		tag := action.TagName
		switch m.Focus {
		case FocusOn:
			tag = action.TagOn
		case FocusOff:
			tag = action.TagOff
		}
		cmd := m.keyAction(tag)
		return m, cmd

	case key.Matches(msg, m.Keys.MoreInfo):
		cmd := m.keyAction(action.TagMoreInfo)
		return m, cmd

	case key.Matches(msg, m.Keys.On):
		cmd := m.keyAction(action.TagOn)
		return m, cmd

	case key.Matches(msg, m.Keys.Off):
		cmd := m.keyAction(action.TagOff)
		return m, cmd

	case key.Matches(msg, m.Keys.Back):
		m.back()
		cmd := m.calibrate()
		return m, cmd
	}

	return m, nil
}

// keyAction triggers tag on the cursor row. Keyboard events have no composed
// path, so resolution goes through the nearest tagged ancestor.
func (m *DashboardModel) keyAction(tag action.Tag) tea.Cmd {
	target := m.frame.Root.Find(tag, m.Cursor)
	if target == nil {
		return nil
	}
	return m.dispatch(action.Event{ID: action.NewInteractionID(), Target: target})
}

// handleMouse resolves left-button clicks against the last rendered frame.
// Press and release of one click share an interaction id, so terminals that
// report both still run the action once.
func (m *DashboardModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.ShowingHelp || m.ShowingDetails {
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		ev, ok := action.PointerEvent(m.frame.Root, msg.X, msg.Y)
		if !ok {
			m.press = ""
			return nil
		}
		m.press = ev.ID
		return m.dispatch(ev)

	case tea.MouseActionRelease:
		if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonNone {
			return nil
		}
		ev, ok := action.PointerEvent(m.frame.Root, msg.X, msg.Y)
		if !ok {
			m.press = ""
			return nil
		}
		if m.press != "" {
			ev.ID = m.press
			m.press = ""
		}
		return m.dispatch(ev)
	}
	return nil
}

// dispatch resolves ev and runs the action once per interaction.
func (m *DashboardModel) dispatch(ev action.Event) tea.Cmd {
	tag, node, ok := action.Resolve(ev)
	if !ok {
		return nil
	}
	if !m.dispatcher.Claim(ev.ID) {
		return nil
	}

	row, ok := m.Widget.Row(node.Index)
	if !ok {
		return nil
	}

	m.Cursor = row.Index
	switch tag {
	case action.TagOn:
		m.Focus = FocusOn
	case action.TagOff:
		m.Focus = FocusOff
	case action.TagName, action.TagMoreInfo:
		m.Focus = FocusName
	case action.TagRow:
		// a click between the parts of a row only selects it
		m.refresh()
		return nil
	}
	m.refresh()

	return executeCmd(m.exec, tag, ev.ID, row.Config)
}

func (m DashboardModel) handleConnected(msg connectedMsg) (tea.Model, tea.Cmd) {
	if m.Backend != nil && m.Backend != msg.backend {
		_ = m.Backend.Close()
	}
	m.Backend = msg.backend
	m.changes = msg.changes
	m.Connecting = false
	m.Connected = true
	m.ConnErr = nil
	m.exec = action.NewExecutor(msg.backend, m.signals, m.Logger)

	m.States = make(map[string]hass.State, len(msg.states))
	for _, st := range msg.states {
		m.States[st.EntityID] = st
	}
	m.Widget.SetStates(entityStates(m.States))
	m.Status = fmt.Sprintf("Connected to %s", m.URL)
	m.Logger.Info("Connected", zap.String("url", m.URL), zap.Int("states", len(msg.states)))

	m.refresh()
	m.updateDetails()
	return m, waitForChange(msg.backend, msg.changes)
}

func (m *DashboardModel) applyChange(change hass.StateChange) {
	var st stack.EntityState
	removed := change.New == nil
	if removed {
		delete(m.States, change.EntityID)
	} else {
		m.States[change.EntityID] = *change.New
		st = stack.EntityState{State: change.New.State, FriendlyName: change.New.FriendlyName()}
	}
	if m.Widget.UpdateState(change.EntityID, st, removed) {
		m.refresh()
	}
	if m.ShowingDetails && m.DetailsEntity == change.EntityID {
		m.updateDetails()
	}
}

func entityStates(states map[string]hass.State) map[string]stack.EntityState {
	out := make(map[string]stack.EntityState, len(states))
	for id, st := range states {
		out[id] = stack.EntityState{State: st.State, FriendlyName: st.FriendlyName()}
	}
	return out
}

func (m *DashboardModel) handleSignal(msg signalMsg) tea.Cmd {
	m.Logger.Debug("Signal", zap.Stringer("kind", msg.Kind),
		zap.String("entity_id", msg.Entity), zap.String("path", msg.Path))

	switch msg.Kind {
	case SignalMoreInfo:
		m.ShowingDetails = true
		m.DetailsEntity = msg.Entity
		m.updateDetails()

	case SignalNavigate:
		if !m.navigate(msg.Path) {
			m.Status = "No view at " + msg.Path
		}
		return m.calibrate()

	case SignalLocationChanged:
		m.Location = msg.Path

	case SignalOpenURL:
		m.Status = "Opening " + msg.URL
		return openURLCmd(m.Open, msg.URL)

	case SignalAction:
		m.Status = fmt.Sprintf("Unsupported action %q", msg.Spec.Action)
	}
	return nil
}

// navigate switches to the view at path. It reports false, and changes
// nothing, when no view lives there.
func (m *DashboardModel) navigate(path string) bool {
	view, ok := m.Dashboard.Lookup(path)
	if !ok {
		return false
	}
	if view.Path == m.ViewPath {
		return true
	}
	if err := m.Widget.SetConfig(view.Card); err != nil {
		m.Logger.Warn("Cannot show view", zap.String("path", path), zap.Error(err))
		return false
	}
	m.history = append(m.history, m.ViewPath)
	m.ViewPath = view.Path
	m.Title = view.Title
	m.Cursor = 0
	m.Focus = FocusName
	m.refresh()
	return true
}

// back returns to the previous view.
func (m *DashboardModel) back() {
	if len(m.history) == 0 {
		return
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]

	view, ok := m.Dashboard.Lookup(prev)
	if !ok || m.Widget.SetConfig(view.Card) != nil {
		return
	}
	m.ViewPath = view.Path
	m.Location = view.Path
	m.Title = view.Title
	m.Cursor = 0
	m.refresh()
}

// applyReload installs a changed card file. An invalid file keeps the
// current card on screen.
func (m *DashboardModel) applyReload(msg reloadMsg) {
	if msg.err != nil {
		m.Status = "Card file not reloaded: " + msg.err.Error()
		m.Logger.Warn("Card reload failed", zap.Error(msg.err))
		return
	}

	view, ok := msg.dashboard.Lookup(m.ViewPath)
	if !ok {
		view = &msg.dashboard.Views[0]
	}
	if err := m.Widget.SetConfig(view.Card); err != nil {
		m.Status = "Card file not reloaded: " + err.Error()
		return
	}

	m.Dashboard = msg.dashboard
	m.ViewPath = view.Path
	m.Title = view.Title
	if m.Cursor >= len(view.Card.Items) {
		m.Cursor = 0
	}
	m.history = nil
	m.Status = "Card reloaded"
	m.Logger.Info("Card reloaded", zap.String("view", view.Path), zap.Int("rows", len(view.Card.Items)))
	m.refresh()
}

// calibrate schedules a calibration pass for after the next paint.
func (m *DashboardModel) calibrate() tea.Cmd {
	gen, needed := m.Widget.ScheduleCalibration()
	if !needed {
		return nil
	}
	insets := m.frame.Insets
	return func() tea.Msg { return calibrateMsg{gen: gen, insets: insets} }
}

// refresh re-renders the card and rebuilds its element tree.
func (m *DashboardModel) refresh() {
	width := CardWidth(m.Width)
	m.Widget.SetWidth(m.Grid.WidthPx(width))
	res, metrics := m.Widget.Layout()

	m.frame = RenderCard(CardInput{
		Config:  m.Widget.Config(),
		Rows:    m.Widget.Rows(),
		Result:  res,
		Metrics: metrics,
		Grid:    m.Grid,
		Width:   width,
		X:       contentOriginX,
		Y:       contentOriginY + 1, // below the status line
		Cursor:  m.Cursor,
		Focus:   m.Focus,
	})
}

func (m *DashboardModel) updateDetails() {
	if m.DetailsEntity == "" {
		return
	}
	m.Details.SetContent(renderDetails(m.DetailsEntity, m.States[m.DetailsEntity], m.Connected))
	m.Details.GotoTop()
}

func renderDetails(entityID string, st hass.State, connected bool) string {
	lines := []string{TitleStyle.Render(entityID)}

	if st.EntityID == "" {
		if connected {
			lines = append(lines, WarningStyle.Render("Entity not found"))
		} else {
			lines = append(lines, SubtitleStyle.Render("Not connected"))
		}
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("State:        %s", st.State))
	if !st.LastChanged.IsZero() {
		lines = append(lines, fmt.Sprintf("Last changed: %s", st.LastChanged.Local().Format("2006-01-02 15:04:05")))
	}

	names := make([]string, 0, len(st.Attributes))
	for name := range st.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, _ := st.Attribute(name)
		lines = append(lines, fmt.Sprintf("  %s: %s", name, v))
	}
	return strings.Join(lines, "\n")
}

// Close detaches the widget and drops the connection.
func (m DashboardModel) Close() {
	m.Widget.Close()
	if m.Backend != nil {
		_ = m.Backend.Close()
	}
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.ShowingHelp {
		return RenderModal(m.renderHelpModalContent(), m.Width, m.Height)
	}

	parts := []string{m.statusLine(), m.frame.View}
	if m.ShowingDetails {
		parts = append(parts, DetailsBoxStyle.Width(CardWidth(m.Width)-2).Render(m.Details.View()))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return RenderApplicationContainer(content, m.Location, m.Help.View(m.Keys), m.Width, m.Height)
}

// statusLine is exactly one line; the card below it is hit-tested at a fixed
// offset.
func (m DashboardModel) statusLine() string {
	var left string
	switch {
	case m.Connecting:
		left = m.Spinner.View() + " " + m.Status
	case m.ConnErr != nil && !m.Connected:
		left = lipgloss.NewStyle().Foreground(ErrorColor).Render("✗ " + m.Status)
	default:
		left = m.Status
	}
	if m.Title != "" {
		left = TitleStyle.Render(m.Title) + "  " + left
	}

	width := CardWidth(m.Width)
	if lipgloss.Width(left) > width {
		left = runewidth.Truncate(stripStatus(m.Title, m.Status), width, "…")
	}
	return StatusBarStyle.MaxHeight(1).Render(left)
}

// stripStatus is the unstyled status line, for truncation.
func stripStatus(title, status string) string {
	if title == "" {
		return strings.ReplaceAll(status, "\n", " ")
	}
	return title + "  " + strings.ReplaceAll(status, "\n", " ")
}

func (m DashboardModel) renderHelpModalContent() string {
	subtitleStyle := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	content := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("LIGHTSTACK HELP"),
		"",
		subtitleStyle.Render("Rows:"),
		"  ● / ○     Entity state; click for details",
		"  Name      Opens the row's view, else details",
		"  ON / OFF  Turn the entity on or off",
		"",
		subtitleStyle.Render("Keys:"),
		"  ↑ ↓       Select row      ← →   Select button",
		"  enter     Press selection  i     Details",
		"  o / f     On / off         esc   Previous view",
		"",
		"Press any key to close this help screen",
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Width(SafeModalWidth(60, m.Width)).
		Render(content)
}

// SafeModalWidth caps a modal width to the terminal.
func SafeModalWidth(requestedWidth, terminalWidth int) int {
	maxWidth := terminalWidth - 4
	if maxWidth < 40 {
		maxWidth = 40
	}
	if requestedWidth < maxWidth {
		return requestedWidth
	}
	return maxWidth
}

func waitForReload(ch <-chan reloadMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
