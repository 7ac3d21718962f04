package action

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/activhome/lightstack/internal/card"
)

type serviceCall struct {
	Domain  string
	Service string
	Data    map[string]any
	Target  map[string]any
}

// fakeCaller records calls and fails the first failFirst of them.
type fakeCaller struct {
	calls     []serviceCall
	failFirst int
	panics    bool
}

func (f *fakeCaller) CallService(_ context.Context, domain, service string, data, target map[string]any) error {
	f.calls = append(f.calls, serviceCall{domain, service, data, target})
	if f.panics {
		panic("frontend exploded")
	}
	if len(f.calls) <= f.failFirst {
		return errors.New("target argument not supported")
	}
	return nil
}

type recordedSignals struct {
	moreInfo []string
	navigate []string
	location []string
	urls     []string
	actions  []card.ActionSpec
}

func (r *recordedSignals) MoreInfo(id string)        { r.moreInfo = append(r.moreInfo, id) }
func (r *recordedSignals) Navigate(p string)         { r.navigate = append(r.navigate, p) }
func (r *recordedSignals) LocationChanged(p string)  { r.location = append(r.location, p) }
func (r *recordedSignals) OpenURL(u string)          { r.urls = append(r.urls, u) }
func (r *recordedSignals) Action(a card.ActionSpec, _ string) {
	r.actions = append(r.actions, a)
}

func newTestExecutor() (*Executor, *fakeCaller, *recordedSignals) {
	caller := &fakeCaller{}
	signals := &recordedSignals{}
	return NewExecutor(caller, signals, nil), caller, signals
}

func TestExecuteDefaultOnOff(t *testing.T) {
	ex, caller, _ := newTestExecutor()
	row := card.RowConfig{Entity: "light.kitchen"}

	ex.Execute(context.Background(), TagOn, row)
	ex.Execute(context.Background(), TagOff, row)

	want := []serviceCall{
		{"homeassistant", "turn_on", map[string]any{"entity_id": "light.kitchen"}, nil},
		{"homeassistant", "turn_off", map[string]any{"entity_id": "light.kitchen"}, nil},
	}
	if !reflect.DeepEqual(caller.calls, want) {
		t.Errorf("calls = %+v, want %+v", caller.calls, want)
	}
}

func TestExecuteOnActionCallService(t *testing.T) {
	ex, caller, _ := newTestExecutor()
	row := card.RowConfig{
		Entity: "light.kitchen",
		OnAction: &card.ActionSpec{
			Action:      "call-service",
			Service:     "light.turn_on",
			ServiceData: map[string]any{"brightness": 128},
			Target:      map[string]any{"entity_id": "light.kitchen"},
		},
	}

	ex.Execute(context.Background(), TagOn, row)

	want := []serviceCall{{
		"light", "turn_on",
		map[string]any{"brightness": 128},
		map[string]any{"entity_id": "light.kitchen"},
	}}
	if !reflect.DeepEqual(caller.calls, want) {
		t.Errorf("calls = %+v, want %+v", caller.calls, want)
	}
}

func TestExecuteRetriesWithTargetFolded(t *testing.T) {
	ex, caller, _ := newTestExecutor()
	caller.failFirst = 1
	target := map[string]any{"entity_id": "light.kitchen"}

	ex.CallServiceString(context.Background(), "light.turn_on", map[string]any{"brightness": 128}, target)

	if len(caller.calls) != 2 {
		t.Fatalf("made %d calls, want 2", len(caller.calls))
	}
	first, second := caller.calls[0], caller.calls[1]
	if !reflect.DeepEqual(first.Target, target) {
		t.Errorf("first call target = %v, want %v", first.Target, target)
	}
	if _, ok := first.Data["target"]; ok {
		t.Error("first call should not fold the target into data")
	}
	if second.Target != nil {
		t.Errorf("retry target = %v, want nil", second.Target)
	}
	if !reflect.DeepEqual(second.Data["target"], target) {
		t.Errorf("retry data[target] = %v, want %v", second.Data["target"], target)
	}
	if second.Data["brightness"] != 128 {
		t.Errorf("retry lost service data: %v", second.Data)
	}
}

func TestExecuteRetryFailureIsSwallowed(t *testing.T) {
	ex, caller, _ := newTestExecutor()
	caller.failFirst = 5

	ex.CallServiceString(context.Background(), "script.run", nil, map[string]any{"area_id": "kitchen"})

	if len(caller.calls) != 2 {
		t.Errorf("made %d calls, want exactly 2", len(caller.calls))
	}
}

func TestExecutePanickingCallerIsSwallowed(t *testing.T) {
	ex, caller, _ := newTestExecutor()
	caller.panics = true

	ex.Execute(context.Background(), TagOn, card.RowConfig{Entity: "light.kitchen"})
	ex.CallServiceString(context.Background(), "light.turn_on", nil, nil)

	if len(caller.calls) != 3 {
		t.Errorf("made %d calls, want 3 (one default, two for the retried service)", len(caller.calls))
	}
}

func TestExecuteMalformedServiceIsDropped(t *testing.T) {
	for _, svc := range []string{"invalid", ".turn_on", "", "   "} {
		ex, caller, _ := newTestExecutor()
		row := card.RowConfig{
			Entity:   "light.kitchen",
			OnAction: &card.ActionSpec{Action: "call-service", Service: svc},
		}
		ex.Execute(context.Background(), TagOn, row)
		if len(caller.calls) != 0 {
			t.Errorf("service %q: made %d calls, want 0", svc, len(caller.calls))
		}
	}
}

func TestExecuteName(t *testing.T) {
	tests := []struct {
		name         string
		row          card.RowConfig
		wantNavigate []string
		wantMoreInfo []string
	}{
		{
			name:         "tap action navigate wins",
			row:          card.RowConfig{Entity: "light.a", NavigationPath: "/other", TapAction: &card.ActionSpec{Action: "navigate", NavigationPath: " /lights "}},
			wantNavigate: []string{"/lights"},
		},
		{
			name:         "navigation path",
			row:          card.RowConfig{Entity: "light.a", NavigationPath: "/lights"},
			wantNavigate: []string{"/lights"},
		},
		{
			name:         "tap action with empty path falls through",
			row:          card.RowConfig{Entity: "light.a", NavigationPath: "/room", TapAction: &card.ActionSpec{Action: "navigate"}},
			wantNavigate: []string{"/room"},
		},
		{
			name:         "non-navigate tap action ignored",
			row:          card.RowConfig{Entity: "light.a", TapAction: &card.ActionSpec{Action: "toggle"}},
			wantMoreInfo: []string{"light.a"},
		},
		{
			name:         "more-info fallback",
			row:          card.RowConfig{Entity: "light.a"},
			wantMoreInfo: []string{"light.a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, caller, signals := newTestExecutor()
			ex.Execute(context.Background(), TagName, tt.row)

			if !reflect.DeepEqual(signals.navigate, tt.wantNavigate) {
				t.Errorf("navigate = %v, want %v", signals.navigate, tt.wantNavigate)
			}
			if !reflect.DeepEqual(signals.location, tt.wantNavigate) {
				t.Errorf("location-changed = %v, want %v", signals.location, tt.wantNavigate)
			}
			if !reflect.DeepEqual(signals.moreInfo, tt.wantMoreInfo) {
				t.Errorf("more-info = %v, want %v", signals.moreInfo, tt.wantMoreInfo)
			}
			if len(caller.calls) != 0 {
				t.Errorf("name tag made service calls: %+v", caller.calls)
			}
		})
	}
}

func TestExecuteMoreInfoAndRow(t *testing.T) {
	ex, caller, signals := newTestExecutor()
	row := card.RowConfig{Entity: "light.kitchen"}

	ex.Execute(context.Background(), TagMoreInfo, row)
	ex.Execute(context.Background(), TagRow, row)
	ex.Execute(context.Background(), Tag("bogus"), row)

	if !reflect.DeepEqual(signals.moreInfo, []string{"light.kitchen"}) {
		t.Errorf("more-info = %v", signals.moreInfo)
	}
	if len(caller.calls) != 0 || len(signals.navigate) != 0 || len(signals.actions) != 0 {
		t.Error("row and unknown tags should do nothing")
	}
}

func TestRunUIActions(t *testing.T) {
	tests := []struct {
		name      string
		spec      *card.ActionSpec
		wantCalls []serviceCall
		check     func(t *testing.T, s *recordedSignals)
	}{
		{
			name: "nil",
			spec: nil,
		},
		{
			name: "none",
			spec: &card.ActionSpec{Action: "none"},
		},
		{
			name: "more-info override",
			spec: &card.ActionSpec{Action: "more-info", Entity: "sensor.temp"},
			check: func(t *testing.T, s *recordedSignals) {
				if !reflect.DeepEqual(s.moreInfo, []string{"sensor.temp"}) {
					t.Errorf("more-info = %v", s.moreInfo)
				}
			},
		},
		{
			name: "more-info fallback",
			spec: &card.ActionSpec{Action: "More-Info"},
			check: func(t *testing.T, s *recordedSignals) {
				if !reflect.DeepEqual(s.moreInfo, []string{"light.kitchen"}) {
					t.Errorf("more-info = %v", s.moreInfo)
				}
			},
		},
		{
			name: "navigate without path",
			spec: &card.ActionSpec{Action: "navigate"},
			check: func(t *testing.T, s *recordedSignals) {
				if len(s.navigate) != 0 {
					t.Errorf("navigate = %v, want none", s.navigate)
				}
			},
		},
		{
			name: "url",
			spec: &card.ActionSpec{Action: "url", URLPath: " https://example.org "},
			check: func(t *testing.T, s *recordedSignals) {
				if !reflect.DeepEqual(s.urls, []string{"https://example.org"}) {
					t.Errorf("urls = %v", s.urls)
				}
			},
		},
		{
			name:      "toggle",
			spec:      &card.ActionSpec{Action: "toggle"},
			wantCalls: []serviceCall{{"homeassistant", "toggle", map[string]any{"entity_id": "light.kitchen"}, nil}},
		},
		{
			name:      "call-service with data",
			spec:      &card.ActionSpec{Action: "call-service", Service: "scene.turn_on", Data: map[string]any{"entity_id": "scene.movie"}},
			wantCalls: []serviceCall{{"scene", "turn_on", map[string]any{"entity_id": "scene.movie"}, nil}},
		},
		{
			name: "unknown action is forwarded",
			spec: &card.ActionSpec{Action: "fire-dom-event"},
			check: func(t *testing.T, s *recordedSignals) {
				if len(s.actions) != 1 || s.actions[0].Action != "fire-dom-event" {
					t.Errorf("actions = %+v", s.actions)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, caller, signals := newTestExecutor()
			ex.Run(context.Background(), tt.spec, "light.kitchen")

			if !reflect.DeepEqual(caller.calls, tt.wantCalls) {
				t.Errorf("calls = %+v, want %+v", caller.calls, tt.wantCalls)
			}
			if tt.check != nil {
				tt.check(t, signals)
			}
		})
	}
}

func TestExecuteWithoutCollaborators(t *testing.T) {
	ex := &Executor{}
	row := card.RowConfig{Entity: "light.kitchen", NavigationPath: "/x"}
	for _, tag := range []Tag{TagMoreInfo, TagName, TagOn, TagOff} {
		ex.Execute(context.Background(), tag, row)
	}
}

func TestRowAndButtonListenersExecuteOnce(t *testing.T) {
	root, _ := buildRow()
	ex, caller, _ := newTestExecutor()
	d := NewDispatcher(0)
	row := card.RowConfig{Entity: "light.kitchen"}

	ev, ok := PointerEvent(root, 47, 0)
	if !ok {
		t.Fatal("PointerEvent() missed")
	}

	// The same interaction reaches the row capture handler and the button handler.
	for i := 0; i < 2; i++ {
		tag, _, ok := Resolve(ev)
		if ok && d.Claim(ev.ID) {
			ex.Execute(context.Background(), tag, row)
		}
	}

	if len(caller.calls) != 1 {
		t.Fatalf("made %d calls, want exactly 1", len(caller.calls))
	}
	if caller.calls[0].Service != "turn_on" {
		t.Errorf("service = %s, want turn_on", caller.calls[0].Service)
	}
}
