package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/activhome/lightstack/internal/discovery"
	"github.com/activhome/lightstack/internal/hass"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	instances []*discovery.Instance
	err       error
}

// ScanFunc finds Home Assistant instances.
type ScanFunc func(ctx context.Context) ([]*discovery.Instance, error)

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual URL entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

// instanceItem wraps an Instance for use with bubbles/list
type instanceItem struct {
	instance *discovery.Instance
}

func (i instanceItem) FilterValue() string {
	return i.instance.Name + " " + i.instance.URL() + " " + i.instance.Hostname
}

func (i instanceItem) Title() string {
	if i.instance.Name == "" {
		return "Home Assistant"
	}
	return i.instance.Name
}

func (i instanceItem) Description() string {
	v := i.instance.Version
	if v == "" {
		v = "unknown version"
	}
	return fmt.Sprintf("%s • %s", i.instance.URL(), v)
}

// instanceDelegate renders instances as small cards.
type instanceDelegate struct{}

func (d instanceDelegate) Height() int                             { return 4 }
func (d instanceDelegate) Spacing() int                            { return 1 }
func (d instanceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d instanceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(instanceItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	var content strings.Builder
	content.WriteString(RenderMenuItem(it.Title(), selected))
	content.WriteString("\n  " + it.Description())

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		MarginLeft(1).
		Width(max(MinTerminalWidth-6, m.Width()-6))
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	_, _ = fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the instance discovery screen state
type DiscoveryModel struct {
	Scanning bool
	List     list.Model
	Selected *discovery.Instance
	Err      error
	Scan     ScanFunc

	ManualMode bool
	URLInput   textinput.Model

	Width         int
	Height        int
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
}

// NewDiscoveryModel creates a new discovery screen model. A nil scan uses
// mDNS with the default timeout.
func NewDiscoveryModel(scan ScanFunc) DiscoveryModel {
	if scan == nil {
		scan = discovery.NewScanner().Scan
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = "http://homeassistant.local:8123"
	urlInput.CharLimit = 256
	urlInput.Width = 40

	l := list.New([]list.Item{}, instanceDelegate{}, 0, 0)
	l.Title = "Home Assistant instances"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return DiscoveryModel{
		List:     l,
		Scan:     scan,
		URLInput: urlInput,
		Spinner:  s,
		Help:     help.New(),
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "connect")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter URL")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		ManualKeys: manualModeKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanCmd(m.Scan),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.List.SetWidth(msg.Width - 4)
		m.List.SetHeight(msg.Height - 8)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.instances))
		for i, inst := range msg.instances {
			items[i] = instanceItem{instance: inst}
		}
		m.List.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.List.FilterState() == list.Filtering {
		// keys go to the filter input
		var cmd tea.Cmd
		m.List, cmd = m.List.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Enter) && !m.Scanning:
		if it, ok := m.List.SelectedItem().(instanceItem); ok {
			m.Selected = it.instance
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan) && !m.Scanning:
		m.List.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanCmd(m.Scan),
			m.Spinner.Tick,
		)

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.Err = nil
		m.URLInput.SetValue("")
		cmd := m.URLInput.Focus()
		return m, cmd
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.URLInput.Value())
		if value == "" {
			return m, nil
		}
		if _, err := hass.WebSocketURL(value); err != nil {
			m.Err = err
			return m, nil
		}
		m.Selected = &discovery.Instance{
			Name:         "Manual",
			Metadata:     map[string]string{"base_url": value},
			DiscoveredAt: time.Now(),
		}
		m.ManualMode = false
		m.URLInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning()
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}
	return RenderApplicationContainer(content, "discovery", helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning() string {
	elapsed := time.Since(m.ScanStartTime).Round(time.Second)
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR HOME ASSISTANT"),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Browsing %s on the local network... (%s)", discovery.ServiceType, elapsed)),
	)
}

func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
	}

	if len(m.List.Items()) == 0 {
		b.WriteString("  ")
		b.WriteString(WarningStyle.Render("⚠ No Home Assistant instance found"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Check that Home Assistant is running and on this network\n")
		b.WriteString("    • The zeroconf integration must be enabled\n")
		b.WriteString("    • Press 'm' to enter the URL yourself\n")
		return b.String()
	}

	b.WriteString(m.List.View())
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("Enter the Home Assistant URL"))
	b.WriteString("\n\n  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(RenderError(m.Err.Error()))
	}
	return b.String()
}

func scanCmd(scan ScanFunc) tea.Cmd {
	return func() tea.Msg {
		instances, err := scan(context.Background())
		return scanCompleteMsg{instances: instances, err: err}
	}
}
