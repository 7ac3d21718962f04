package action

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/card"
)

// ServiceCaller invokes a Home Assistant service. target is nil when the
// action has none.
type ServiceCaller interface {
	CallService(ctx context.Context, domain, service string, data, target map[string]any) error
}

// Signals receives the user-facing side effects of an action. The TUI
// implements it; tests record the calls.
type Signals interface {
	MoreInfo(entityID string)
	Navigate(path string)
	// LocationChanged follows every Navigate so listeners that only watch
	// the location can re-read it.
	LocationChanged(path string)
	OpenURL(url string)
	// Action carries an action kind this executor does not handle.
	Action(spec card.ActionSpec, entityID string)
}

// Executor turns a resolved tag into service calls and signals.
// Every failure is logged and swallowed.
type Executor struct {
	Services ServiceCaller
	Signals  Signals
	Logger   *zap.Logger
}

// NewExecutor creates an executor. A nil logger discards output.
func NewExecutor(services ServiceCaller, signals Signals, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{Services: services, Signals: signals, Logger: logger}
}

func (e *Executor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Execute performs the action tag for row. Tags other than more-info, name,
// on and off do nothing.
func (e *Executor) Execute(ctx context.Context, tag Tag, row card.RowConfig) {
	defer e.guard("execute", string(tag), row.Entity)

	entityID := strings.TrimSpace(row.Entity)

	switch tag {
	case TagMoreInfo:
		e.moreInfo(entityID)

	case TagName:
		if ta := row.TapAction; ta.Kind() == card.ActionNavigate {
			if p := ta.Path(); p != "" {
				e.navigate(p)
				return
			}
		}
		if p := strings.TrimSpace(row.NavigationPath); p != "" {
			e.navigate(p)
			return
		}
		e.moreInfo(entityID)

	case TagOn:
		if row.OnAction != nil {
			e.Run(ctx, row.OnAction, entityID)
			return
		}
		e.call(ctx, "homeassistant", "turn_on", map[string]any{"entity_id": entityID}, nil)

	case TagOff:
		if row.OffAction != nil {
			e.Run(ctx, row.OffAction, entityID)
			return
		}
		e.call(ctx, "homeassistant", "turn_off", map[string]any{"entity_id": entityID}, nil)

	default:
		e.logger().Debug("Ignoring non-action tag",
			zap.String("tag", string(tag)),
			zap.String("entity_id", entityID))
	}
}

// Run dispatches a ui_action spec. fallbackEntity is used when the spec names
// no entity of its own.
func (e *Executor) Run(ctx context.Context, spec *card.ActionSpec, fallbackEntity string) {
	defer e.guard("run", string(spec.Kind()), fallbackEntity)

	switch spec.Kind() {
	case card.ActionNone:
		return

	case card.ActionMoreInfo:
		if eid := spec.EntityOr(fallbackEntity); eid != "" {
			e.moreInfo(eid)
		}

	case card.ActionNavigate:
		if p := spec.Path(); p != "" {
			e.navigate(p)
		}

	case card.ActionURL:
		if u := strings.TrimSpace(spec.URLPath); u != "" && e.Signals != nil {
			e.Signals.OpenURL(u)
		}

	case card.ActionToggle:
		if eid := spec.EntityOr(fallbackEntity); eid != "" {
			e.call(ctx, "homeassistant", "toggle", map[string]any{"entity_id": eid}, nil)
		}

	case card.ActionCallService:
		e.CallServiceString(ctx, spec.Service, spec.Payload(), spec.Target)

	default:
		if e.Signals != nil {
			e.Signals.Action(*spec, fallbackEntity)
		}
	}
}

// CallServiceString calls a service written as "domain.service". Malformed
// names are dropped. The target goes as its own argument first; if that
// call fails it is folded into data["target"] and the call is made once more.
func (e *Executor) CallServiceString(ctx context.Context, service string, data, target map[string]any) {
	domain, srv, ok := card.ParseService(service)
	if !ok {
		e.logger().Warn("Dropping malformed service name", zap.String("service", service))
		return
	}

	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}

	err := e.invoke(ctx, domain, srv, payload, target)
	if err == nil {
		return
	}

	e.logger().Debug("Service call failed, retrying with target folded into data",
		zap.String("domain", domain),
		zap.String("service", srv),
		zap.Error(err))

	if target != nil {
		payload["target"] = target
	}
	if err := e.invoke(ctx, domain, srv, payload, nil); err != nil {
		e.logger().Warn("Service call failed",
			zap.String("domain", domain),
			zap.String("service", srv),
			zap.Error(err))
	}
}

func (e *Executor) call(ctx context.Context, domain, service string, data, target map[string]any) {
	if err := e.invoke(ctx, domain, service, data, target); err != nil {
		e.logger().Warn("Service call failed",
			zap.String("domain", domain),
			zap.String("service", service),
			zap.Error(err))
	}
}

// invoke converts a panicking caller into an error so the retry path still runs.
func (e *Executor) invoke(ctx context.Context, domain, service string, data, target map[string]any) (err error) {
	if e.Services == nil {
		return fmt.Errorf("no service caller for %s.%s", domain, service)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("service caller panicked: %v", r)
		}
	}()
	return e.Services.CallService(ctx, domain, service, data, target)
}

func (e *Executor) moreInfo(entityID string) {
	if entityID == "" || e.Signals == nil {
		return
	}
	e.Signals.MoreInfo(entityID)
}

func (e *Executor) navigate(path string) {
	if path == "" || e.Signals == nil {
		return
	}
	e.Signals.Navigate(path)
	e.Signals.LocationChanged(path)
}

func (e *Executor) guard(op, kind, entityID string) {
	if r := recover(); r != nil {
		e.logger().Error("Action handler panicked",
			zap.String("op", op),
			zap.String("kind", kind),
			zap.String("entity_id", entityID),
			zap.Any("panic", r))
	}
}
