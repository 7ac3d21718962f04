package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/config"
	"github.com/activhome/lightstack/internal/discovery"
	"github.com/activhome/lightstack/internal/layout"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// Options configures the application.
type Options struct {
	Dashboard *card.Dashboard
	CardPath  string // reloaded on change when set
	ViewPath  string

	// URL is the Home Assistant base URL. When empty the app starts with
	// discovery.
	URL   string
	Token string

	Grid   layout.Grid
	Logger *zap.Logger

	Connect Connector
	Scan    ScanFunc
	Open    OpenerFunc

	// OnSelect is called when discovery picks an instance.
	OnSelect func(inst *discovery.Instance)
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	onSelect func(inst *discovery.Instance)
	reloads  chan reloadMsg
	logger   *zap.Logger

	Width  int
	Height int
}

// NewAppModel creates the application. The card is checked here so an
// invalid configuration fails before the terminal is taken over.
func NewAppModel(opts Options) (AppModel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dash, err := NewDashboardModel(DashboardOptions{
		Dashboard: opts.Dashboard,
		ViewPath:  opts.ViewPath,
		URL:       opts.URL,
		Token:     opts.Token,
		Connect:   opts.Connect,
		Open:      opts.Open,
		Grid:      opts.Grid,
		Logger:    logger.Named("dashboard"),
	})
	if err != nil {
		return AppModel{}, err
	}

	m := AppModel{
		CurrentScreen:  ScreenDashboard,
		DashboardModel: dash,
		onSelect:       opts.OnSelect,
		reloads:        make(chan reloadMsg, 4),
		logger:         logger,
	}
	m.DashboardModel.reloads = m.reloads

	if opts.URL == "" {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(opts.Scan)
	}
	return m, nil
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.DashboardModel.Init()}
	if m.CurrentScreen == ScreenDiscovery {
		cmds = append(cmds, m.DiscoveryModel.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.CurrentScreen == ScreenDiscovery {
			d, _ := m.DiscoveryModel.Update(msg)
			m.DiscoveryModel = d.(DiscoveryModel)
		}
		return m.updateDashboard(msg)

	case tea.KeyMsg, tea.MouseMsg:
		if m.CurrentScreen == ScreenDiscovery {
			return m.updateDiscovery(msg)
		}
		return m.updateDashboard(msg)

	case scanStartMsg, scanCompleteMsg:
		return m.updateDiscovery(msg)

	case spinner.TickMsg:
		// each spinner ignores ticks that are not its own
		if m.CurrentScreen == ScreenDiscovery {
			return m.updateDiscovery(msg)
		}
		return m.updateDashboard(msg)
	}

	return m.updateDashboard(msg)
}

func (m AppModel) updateDiscovery(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.CurrentScreen != ScreenDiscovery {
		return m, nil
	}
	updated, cmd := m.DiscoveryModel.Update(msg)
	m.DiscoveryModel = updated.(DiscoveryModel)

	if inst := m.DiscoveryModel.Selected; inst != nil {
		return m.connectTo(inst)
	}
	return m, cmd
}

func (m AppModel) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.DashboardModel.Update(msg)
	m.DashboardModel = updated.(DashboardModel)
	return m, cmd
}

// connectTo leaves discovery for the dashboard of inst.
func (m AppModel) connectTo(inst *discovery.Instance) (tea.Model, tea.Cmd) {
	m.logger.Info("Instance selected", zap.String("name", inst.Name), zap.String("url", inst.URL()))
	if m.onSelect != nil {
		m.onSelect(inst)
	}

	m.CurrentScreen = ScreenDashboard
	m.DashboardModel.URL = inst.URL()
	return m, func() tea.Msg { return reconnectMsg{} }
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return "Unknown screen"
	}
}

// pushReload hands a reload to the UI loop without blocking the watcher.
func (m AppModel) pushReload(d *card.Dashboard, err error) {
	select {
	case m.reloads <- reloadMsg{dashboard: d, err: err}:
	default:
		m.logger.Warn("Reload queue full, dropping card reload")
	}
}

// Run starts the full-screen dashboard and blocks until the user quits.
func Run(opts Options) error {
	model, err := NewAppModel(opts)
	if err != nil {
		return err
	}

	if opts.CardPath != "" {
		w, err := config.Watch(opts.CardPath, model.pushReload)
		if err != nil {
			model.logger.Warn("Live reload disabled", zap.String("path", opts.CardPath), zap.Error(err))
		} else {
			defer func() { _ = w.Close() }()
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if app, ok := final.(AppModel); ok {
		app.DashboardModel.Close()
	} else {
		model.DashboardModel.Close()
	}
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
