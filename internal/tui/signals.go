package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/card"
)

// SignalKind identifies a signal raised by the action executor.
type SignalKind int

const (
	SignalMoreInfo SignalKind = iota
	SignalNavigate
	SignalLocationChanged
	SignalOpenURL
	SignalAction
)

func (k SignalKind) String() string {
	switch k {
	case SignalMoreInfo:
		return "more-info"
	case SignalNavigate:
		return "navigate"
	case SignalLocationChanged:
		return "location-changed"
	case SignalOpenURL:
		return "open-url"
	case SignalAction:
		return "action"
	default:
		return "unknown"
	}
}

// signalMsg carries one signal into the UI loop.
type signalMsg struct {
	Kind   SignalKind
	Entity string
	Path   string
	URL    string
	Spec   card.ActionSpec
}

// signalBus implements action.Signals by queueing messages for the UI loop.
// The executor runs on command goroutines; only the UI loop reads the queue.
type signalBus struct {
	ch     chan signalMsg
	logger *zap.Logger
}

func newSignalBus(size int, logger *zap.Logger) *signalBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &signalBus{ch: make(chan signalMsg, size), logger: logger}
}

func (b *signalBus) send(msg signalMsg) {
	select {
	case b.ch <- msg:
	default:
		b.logger.Warn("Signal queue full, dropping signal", zap.Stringer("kind", msg.Kind))
	}
}

func (b *signalBus) MoreInfo(entityID string) {
	b.send(signalMsg{Kind: SignalMoreInfo, Entity: entityID})
}

func (b *signalBus) Navigate(path string) {
	b.send(signalMsg{Kind: SignalNavigate, Path: path})
}

func (b *signalBus) LocationChanged(path string) {
	b.send(signalMsg{Kind: SignalLocationChanged, Path: path})
}

func (b *signalBus) OpenURL(url string) {
	b.send(signalMsg{Kind: SignalOpenURL, URL: url})
}

func (b *signalBus) Action(spec card.ActionSpec, entityID string) {
	b.send(signalMsg{Kind: SignalAction, Spec: spec, Entity: entityID})
}

// wait returns a command that delivers the next signal.
func (b *signalBus) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}
