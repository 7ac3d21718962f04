package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/action"
	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/hass"
)

// Timeouts for work started from the UI.
const (
	ConnectTimeout = 30 * time.Second
	ActionTimeout  = 10 * time.Second
	ReconnectDelay = 5 * time.Second
)

// Backend is the Home Assistant connection the dashboard drives.
type Backend interface {
	action.ServiceCaller
	GetStates(ctx context.Context) ([]hass.State, error)
	SubscribeStates(ctx context.Context) (<-chan hass.StateChange, error)
	Close() error
}

// Connector opens a Backend.
type Connector func(ctx context.Context, url, token string) (Backend, error)

// HassConnector returns a Connector backed by the websocket client.
func HassConnector(logger *zap.Logger) Connector {
	return func(ctx context.Context, url, token string) (Backend, error) {
		client, err := hass.NewClient(url, token)
		if err != nil {
			return nil, err
		}
		client.Logger = logger
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}
}

type connectedMsg struct {
	backend Backend
	states  []hass.State
	changes <-chan hass.StateChange
}

type connectErrMsg struct {
	err error
}

type stateChangedMsg struct {
	change  hass.StateChange
	changes <-chan hass.StateChange
}

// streamClosedMsg is sent when the state subscription ends; the connection
// is gone.
type streamClosedMsg struct {
	backend Backend
}

type reconnectMsg struct{}

// actionDoneMsg follows every executed action. Failures were already logged
// and swallowed by the executor.
type actionDoneMsg struct {
	tag    action.Tag
	entity string
}

// connectCmd connects, loads every state and subscribes to changes.
func connectCmd(connect Connector, url, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
		defer cancel()

		backend, err := connect(ctx, url, token)
		if err != nil {
			return connectErrMsg{err: err}
		}
		states, err := backend.GetStates(ctx)
		if err != nil {
			_ = backend.Close()
			return connectErrMsg{err: fmt.Errorf("failed to load states: %w", err)}
		}
		changes, err := backend.SubscribeStates(ctx)
		if err != nil {
			_ = backend.Close()
			return connectErrMsg{err: fmt.Errorf("failed to subscribe to state changes: %w", err)}
		}
		return connectedMsg{backend: backend, states: states, changes: changes}
	}
}

// waitForChange delivers the next state change.
func waitForChange(backend Backend, changes <-chan hass.StateChange) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return streamClosedMsg{backend: backend}
		}
		return stateChangedMsg{change: change, changes: changes}
	}
}

func reconnectAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return reconnectMsg{} })
}

// executeCmd runs a row action off the UI loop.
func executeCmd(exec *action.Executor, tag action.Tag, interaction string, row card.RowConfig) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()
		exec.Logger.Debug("Executing row action",
			zap.String("interaction", interaction),
			zap.String("tag", string(tag)),
			zap.String("entity_id", row.Entity))
		exec.Execute(ctx, tag, row)
		return actionDoneMsg{tag: tag, entity: row.Entity}
	}
}
