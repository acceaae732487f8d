package daemon

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/drag"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/zone"
)

type fakeComp struct {
	screens []platform.Screen
	ctx     platform.Context
	active  string
	windows map[string]geometry.Rect
	pointer platform.PointerState
}

func newFakeComp() *fakeComp {
	return &fakeComp{
		screens: []platform.Screen{
			{ID: "DP-1", Area: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		},
		ctx:     platform.Context{ScreenID: "DP-1", Desktop: "1"},
		active:  "win-1",
		windows: map[string]geometry.Rect{},
	}
}

func (f *fakeComp) Screens() ([]platform.Screen, error)      { return f.screens, nil }
func (f *fakeComp) ActiveContext() (platform.Context, error) { return f.ctx, nil }
func (f *fakeComp) ActiveWindow() (string, error)            { return f.active, nil }
func (f *fakeComp) Pointer() (platform.PointerState, error)  { return f.pointer, nil }
func (f *fakeComp) Focus(id string) error                    { return nil }
func (f *fakeComp) ListWindows() ([]string, error) {
	ids := make([]string, 0, len(f.windows))
	for id := range f.windows {
		ids = append(ids, id)
	}
	return ids, nil
}
func (f *fakeComp) WindowGeometry(id string) (geometry.Rect, error) {
	r, ok := f.windows[id]
	if !ok {
		return geometry.Rect{}, errors.New("unknown window")
	}
	return r, nil
}
func (f *fakeComp) Apply(id string, r geometry.Rect) error {
	f.windows[id] = r
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDaemon(t *testing.T, comp *fakeComp) (*Daemon, *engine.Engine) {
	t.Helper()
	store := zone.NewStore()
	l, err := store.GenerateColumns(2)
	if err != nil {
		t.Fatalf("seed layout: %v", err)
	}
	eng := engine.New(store, comp, l.ID, engine.Options{TriggerDistance: 20}, drag.Events{})
	d := New(Config{Logger: quietLogger()}, eng, comp, make(chan struct{}))
	return d, eng
}

func TestPollDrivesDragToCommit(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}
	d, eng := newTestDaemon(t, comp)

	// Button press opens the session.
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 100, Y: 100}, ButtonDown: true}
	d.pollOnce()
	if !d.dragging || d.dragScreen != "DP-1" {
		t.Fatalf("session not opened: dragging=%v screen=%q", d.dragging, d.dragScreen)
	}

	// Move past the trigger distance into the right half.
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 1500, Y: 500}, ButtonDown: true}
	d.pollOnce()

	// Release commits.
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 1500, Y: 500}}
	d.pollOnce()
	if d.dragging {
		t.Fatal("session still live after release")
	}

	want := geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}
	if comp.windows["win-1"] != want {
		t.Fatalf("window rect = %+v, want %+v", comp.windows["win-1"], want)
	}
	entry, err := eng.QueryWindowZone("win-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entry.ZoneIDs) != 1 || entry.ZoneIDs[0] != "col-2" {
		t.Fatalf("tracked zones = %v", entry.ZoneIDs)
	}
}

func TestPollClickWithoutMovementCancels(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}
	d, eng := newTestDaemon(t, comp)

	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 100, Y: 100}, ButtonDown: true}
	d.pollOnce()
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 104, Y: 100}, ButtonDown: true}
	d.pollOnce()
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 104, Y: 100}}
	d.pollOnce()

	if got := comp.windows["win-1"]; got != (geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}) {
		t.Fatalf("window moved on a plain click: %+v", got)
	}
	if _, err := eng.QueryWindowZone("win-1"); err == nil {
		t.Fatal("plain click should not assign a zone")
	}
}

func TestPollSpanModifierUnionsZones(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}
	d, _ := newTestDaemon(t, comp)

	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 200, Y: 500}, ButtonDown: true}
	d.pollOnce()
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 1700, Y: 500}, ButtonDown: true, SpanModifier: true}
	d.pollOnce()
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 1700, Y: 500}}
	d.pollOnce()

	want := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if comp.windows["win-1"] != want {
		t.Fatalf("span commit = %+v, want %+v", comp.windows["win-1"], want)
	}
}

func TestPollNoActiveWindow(t *testing.T) {
	comp := newFakeComp()
	comp.active = ""
	d, _ := newTestDaemon(t, comp)

	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 100, Y: 100}, ButtonDown: true}
	d.pollOnce()
	if d.dragging {
		t.Fatal("opened a session with no active window")
	}
}

func TestReconcilerDropsClosedWindows(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}
	_, eng := newTestDaemon(t, comp)

	if _, err := eng.SnapToZone("win-1", "col-1"); err != nil {
		t.Fatalf("snap: %v", err)
	}
	delete(comp.windows, "win-1")

	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, eng, comp.ListWindows)
	r.ReconcileNow()

	if n := eng.TrackedWindows(); n != 0 {
		t.Fatalf("tracked windows after reconcile = %d, want 0", n)
	}
}

func TestApplyConfigSeedsEngine(t *testing.T) {
	comp := newFakeComp()
	store := zone.NewStore()
	seed, err := store.GenerateColumns(2)
	if err != nil {
		t.Fatalf("seed layout: %v", err)
	}
	eng := engine.New(store, comp, seed.ID, engine.Options{TriggerDistance: 20}, drag.Events{})

	cfg := config.DefaultConfig()
	cfg.ScreenDefaults = map[string]string{"DP-1": "thirds"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := ApplyConfig(eng, cfg, drag.Events{}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	l, err := eng.ResolveContext("DP-1", "1", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if l.ID != "thirds" {
		t.Fatalf("resolved layout = %q, want thirds", l.ID)
	}
	if _, err := eng.GetLayout("halves"); err != nil {
		t.Fatalf("builtin layout missing after apply: %v", err)
	}
}
