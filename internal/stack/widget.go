package stack

import (
	"strings"
	"sync"

	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/layout"
)

// EntityState is the part of a Home Assistant state the card reads.
type EntityState struct {
	State        string
	FriendlyName string
}

// RowView is a row ready for rendering.
type RowView struct {
	Index    int
	Entity   string
	Name     string // name, else friendly_name, else the entity id
	On       bool   // state is exactly "on"
	State    string // raw state, "" when unknown
	Known    bool   // a state has been received for the entity
	FontSize string
	Config   card.RowConfig
}

// Widget owns one card: its configuration, the latest entity states and the
// calibrated layout. The UI loop is its only writer; the mutex makes the
// calibration guard safe to check from timer callbacks too.
type Widget struct {
	mu     sync.Mutex
	cfg    card.CardConfig
	states map[string]EntityState

	width  float64 // container width in px, 0 until measured
	insets *layout.Insets
	result layout.Result

	gen     uint64
	pending bool
	alive   bool
}

// New creates a widget from cfg. cfg is normalized first; on error no
// widget is created.
func New(cfg card.CardConfig) (*Widget, error) {
	cfg = cfg.Clone()
	if err := card.Normalize(&cfg); err != nil {
		return nil, err
	}
	w := &Widget{
		cfg:    cfg,
		states: make(map[string]EntityState),
		alive:  true,
	}
	w.recalculate()
	return w, nil
}

// SetConfig replaces the configuration. On error the widget keeps its
// previous configuration. Measured insets are kept; a new calibration pass
// is needed when the card uses total mode.
func (w *Widget) SetConfig(cfg card.CardConfig) error {
	cfg = cfg.Clone()
	if err := card.Normalize(&cfg); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg = cfg
	w.gen++
	w.recalculate()
	return nil
}

// Config returns a copy of the current configuration.
func (w *Widget) Config() card.CardConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.Clone()
}

// SetStates replaces all known entity states.
func (w *Widget) SetStates(states map[string]EntityState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.states = make(map[string]EntityState, len(states))
	for id, st := range states {
		w.states[id] = st
	}
}

// UpdateState records one entity state. It reports whether the entity is
// shown by this card.
func (w *Widget) UpdateState(entityID string, st EntityState, removed bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if removed {
		delete(w.states, entityID)
	} else {
		w.states[entityID] = st
	}
	return w.cfg.IndexOf(entityID) >= 0
}

// Entities returns the entity ids of every row, in order.
func (w *Widget) Entities() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, len(w.cfg.Items))
	for i, row := range w.cfg.Items {
		ids[i] = row.Entity
	}
	return ids
}

// Rows returns the rows to render.
func (w *Widget) Rows() []RowView {
	w.mu.Lock()
	defer w.mu.Unlock()
	rows := make([]RowView, len(w.cfg.Items))
	for i := range w.cfg.Items {
		rows[i] = w.rowView(i)
	}
	return rows
}

// Row returns row i. ok is false when i is out of range.
func (w *Widget) Row(i int) (RowView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.cfg.Items) {
		return RowView{}, false
	}
	return w.rowView(i), true
}

func (w *Widget) rowView(i int) RowView {
	row := w.cfg.Items[i]
	st, known := w.states[row.Entity]

	name := strings.TrimSpace(row.Name)
	if name == "" {
		name = st.FriendlyName
	}
	if name == "" {
		name = row.Entity
	}

	return RowView{
		Index:    i,
		Entity:   row.Entity,
		Name:     name,
		On:       st.State == "on",
		State:    st.State,
		Known:    known,
		FontSize: row.EffectiveFontSize(w.cfg.DefaultFontSize),
		Config:   row.Clone(),
	}
}

// CardSize is the number of grid units the card asks for.
func (w *Widget) CardSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.CardSize()
}

// SetWidth records the container width in pixels.
func (w *Widget) SetWidth(px float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width = px
}

// Layout returns the current row height, container height and button
// metrics.
func (w *Widget) Layout() (layout.Result, layout.ActionMetrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result, layout.ResponsiveActions(w.width, w.cfg.ActionsButtonWidth)
}

// recalculate applies calibration with whatever insets are known. Callers
// hold mu, or own w exclusively.
func (w *Widget) recalculate() {
	w.result = layout.Calibrate(w.cfg.LayoutConfig, len(w.cfg.Items), w.insets)
}

// ScheduleCalibration asks for a measurement pass after the next render.
// needed is false when the card does not depend on measured insets. The
// returned generation must be passed back to RunCalibration.
func (w *Widget) ScheduleCalibration() (gen uint64, needed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.alive || !layout.NeedsMeasurement(w.cfg.LayoutConfig) {
		return w.gen, false
	}
	w.pending = true
	return w.gen, true
}

// RunCalibration applies measured insets. It does nothing, and returns
// false, once the widget is closed or when the configuration changed after
// the pass was scheduled.
func (w *Widget) RunCalibration(gen uint64, insets layout.Insets) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.alive || gen != w.gen {
		return false
	}
	w.pending = false
	in := insets
	w.insets = &in
	w.recalculate()
	return true
}

// Pending reports whether a scheduled calibration has not run yet.
func (w *Widget) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Close marks the widget as detached. Pending calibrations become no-ops.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alive = false
	w.pending = false
}

// Alive reports whether the widget is still attached.
func (w *Widget) Alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alive
}
