package action

import (
	"sync"

	"github.com/google/uuid"
)

// Event is a pointer or key interaction delivered to a row.
//
// Path is the composed propagation path, innermost first. Sources that
// cannot provide one (keyboard fast paths, synthetic events) leave it nil and
// the resolver falls back to Target.Closest.
type Event struct {
	ID     string // one per physical interaction, shared by every handler it reaches
	Target *Node
	Path   []*Node
	X, Y   int
}

// ComposedPath returns the propagation path, or nil when unavailable.
func (e Event) ComposedPath() []*Node {
	return e.Path
}

// NewInteractionID returns a fresh interaction identifier.
func NewInteractionID() string {
	return uuid.NewString()
}

// PointerEvent hit-tests (x, y) against the card tree and builds an event
// with a composed path. ok is false when the point is outside the tree.
func PointerEvent(root *Node, x, y int) (Event, bool) {
	target := root.HitTest(x, y)
	if target == nil {
		return Event{}, false
	}
	return Event{
		ID:     NewInteractionID(),
		Target: target,
		Path:   target.Path(),
		X:      x,
		Y:      y,
	}, true
}

// Resolve determines which action an event was meant for.
//
// It walks the whole composed path, innermost first, and returns the first
// node carrying a tag, so a click on a label inside a button resolves to the
// button and not to the row around it. When the path is unavailable it falls
// back to the nearest tagged ancestor of the target. ok is false when nothing
// is tagged; the caller must then do nothing.
func Resolve(ev Event) (Tag, *Node, bool) {
	if path := ev.ComposedPath(); path != nil {
		for _, n := range path {
			if n != nil && n.Tag != "" {
				return n.Tag, n, true
			}
		}
		return "", nil, false
	}

	if ev.Target == nil {
		return "", nil, false
	}
	if n := ev.Target.Closest(); n != nil {
		return n.Tag, n, true
	}
	return "", nil, false
}

// Dispatcher lets several handlers see the same interaction while only the
// first one acts on it.
type Dispatcher struct {
	mu      sync.Mutex
	limit   int
	handled map[string]struct{}
	order   []string
}

// NewDispatcher remembers the last limit interaction ids.
func NewDispatcher(limit int) *Dispatcher {
	if limit <= 0 {
		limit = 64
	}
	return &Dispatcher{limit: limit, handled: make(map[string]struct{}, limit)}
}

// Claim returns true the first time it sees id and false afterwards.
// An empty id is never de-duplicated.
func (d *Dispatcher) Claim(id string) bool {
	if id == "" {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, seen := d.handled[id]; seen {
		return false
	}
	d.handled[id] = struct{}{}
	d.order = append(d.order, id)
	if len(d.order) > d.limit {
		delete(d.handled, d.order[0])
		d.order = d.order[1:]
	}
	return true
}
