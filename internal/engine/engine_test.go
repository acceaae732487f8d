package engine

import (
	"errors"
	"testing"

	"github.com/1broseidon/zonetile/internal/drag"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/resolver"
	"github.com/1broseidon/zonetile/internal/zone"
)

type fakeComp struct {
	screens []platform.Screen
	ctx     platform.Context
	windows map[string]geometry.Rect
	applied []geometry.Rect
	pointer platform.PointerState
}

func newFakeComp() *fakeComp {
	return &fakeComp{
		screens: []platform.Screen{
			{ID: "DP-1", Area: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		},
		ctx:     platform.Context{ScreenID: "DP-1", Desktop: "1"},
		windows: map[string]geometry.Rect{},
	}
}

func (f *fakeComp) Screens() ([]platform.Screen, error)       { return f.screens, nil }
func (f *fakeComp) ActiveContext() (platform.Context, error)  { return f.ctx, nil }
func (f *fakeComp) ActiveWindow() (string, error)             { return "win-1", nil }
func (f *fakeComp) Pointer() (platform.PointerState, error)   { return f.pointer, nil }
func (f *fakeComp) Focus(id string) error                     { return nil }
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
	f.applied = append(f.applied, r)
	return nil
}

func newTestEngine(t *testing.T, comp *fakeComp) *Engine {
	t.Helper()
	store := zone.NewStore()
	l, err := store.GenerateColumns(2)
	if err != nil {
		t.Fatalf("seed layout: %v", err)
	}
	return New(store, comp, l.ID, Options{TriggerDistance: 20}, drag.Events{})
}

func TestSnapToZone_AppliesAndTracks(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 100, Y: 100, Width: 640, Height: 480}
	e := newTestEngine(t, comp)

	got, err := e.SnapToZone("win-1", "col-2")
	if err != nil {
		t.Fatalf("snap: %v", err)
	}
	want := geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}
	if got != want {
		t.Fatalf("target = %+v, want %+v", got, want)
	}
	if comp.windows["win-1"] != want {
		t.Fatal("rect not applied through compositor")
	}

	entry, err := e.QueryWindowZone("win-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entry.ZoneIDs) != 1 || entry.ZoneIDs[0] != "col-2" {
		t.Fatalf("tracked zones = %v", entry.ZoneIDs)
	}
}

func TestSnapToZone_UnknownZone(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{Width: 100, Height: 100}
	e := newTestEngine(t, comp)

	if _, err := e.SnapToZone("win-1", "col-9"); !errors.Is(err, zone.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestToggleFloat_RoundTrip(t *testing.T) {
	comp := newFakeComp()
	orig := geometry.Rect{X: 123, Y: 45, Width: 678, Height: 390}
	comp.windows["win-1"] = orig
	e := newTestEngine(t, comp)

	if _, err := e.SnapToZone("win-1", "col-1"); err != nil {
		t.Fatalf("snap: %v", err)
	}
	restored, err := e.ToggleFloat("win-1")
	if err != nil {
		t.Fatalf("float: %v", err)
	}
	if restored != orig {
		t.Fatalf("restored = %+v, want byte-exact original %+v", restored, orig)
	}
	if comp.windows["win-1"] != orig {
		t.Fatal("original geometry not applied")
	}
}

func TestToggleFloat_ResnapLastZones(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 10, Y: 10, Width: 100, Height: 100}
	e := newTestEngine(t, comp)

	if _, err := e.SnapToZone("win-1", "col-1"); err != nil {
		t.Fatalf("snap: %v", err)
	}
	if _, err := e.ToggleFloat("win-1"); err != nil {
		t.Fatalf("float: %v", err)
	}

	// Second toggle re-snaps to the remembered zone.
	got, err := e.ToggleFloat("win-1")
	if err != nil {
		t.Fatalf("second float: %v", err)
	}
	want := geometry.Rect{X: 0, Y: 0, Width: 960, Height: 1080}
	if got != want {
		t.Fatalf("re-snap target = %+v, want %+v", got, want)
	}
}

func TestToggleFloat_NothingToRestore(t *testing.T) {
	comp := newFakeComp()
	e := newTestEngine(t, comp)
	if _, err := e.ToggleFloat("never-seen"); !errors.Is(err, ErrNothingToRestore) {
		t.Fatalf("err = %v, want ErrNothingToRestore", err)
	}
}

func TestNavigate(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{Width: 100, Height: 100}
	e := newTestEngine(t, comp)

	if _, err := e.SnapToZone("win-1", "col-1"); err != nil {
		t.Fatalf("snap: %v", err)
	}
	moved, err := e.Navigate("win-1", zone.DirRight)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if !moved {
		t.Fatal("navigate right from col-1 should move")
	}
	entry, _ := e.QueryWindowZone("win-1")
	if entry.ZoneIDs[0] != "col-2" {
		t.Fatalf("after navigate zones = %v, want [col-2]", entry.ZoneIDs)
	}

	// No neighbor further right: a quiet no-op.
	moved, err = e.Navigate("win-1", zone.DirRight)
	if err != nil || moved {
		t.Fatalf("navigate past edge: moved=%v err=%v, want false,nil", moved, err)
	}
}

func TestDeleteLayout_LastOneRefused(t *testing.T) {
	comp := newFakeComp()
	e := newTestEngine(t, comp)
	layouts := e.ListLayouts()
	if err := e.DeleteLayout(layouts[0].ID); !errors.Is(err, zone.ErrLayoutInUse) {
		t.Fatalf("err = %v, want ErrLayoutInUse", err)
	}
}

func TestDeleteLayout_FallbackRefused(t *testing.T) {
	comp := newFakeComp()
	e := newTestEngine(t, comp)
	fallbackID := e.ListLayouts()[0].ID

	extra, err := e.GenerateGrid(2, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Another layout exists, but the fallback must stay resolvable.
	if err := e.DeleteLayout(fallbackID); !errors.Is(err, zone.ErrLayoutInUse) {
		t.Fatalf("err = %v, want ErrLayoutInUse", err)
	}
	l, err := e.ResolveContext("DP-1", "1", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if l.ID != fallbackID {
		t.Fatalf("resolved to %s, want fallback %s", l.ID, fallbackID)
	}

	// Replacing the fallback frees the old one for deletion.
	if err := e.SetFallbackLayout(extra.ID); err != nil {
		t.Fatalf("set fallback: %v", err)
	}
	if err := e.DeleteLayout(fallbackID); err != nil {
		t.Fatalf("delete after replacing fallback: %v", err)
	}
	if l, err := e.ResolveContext("DP-1", "1", ""); err != nil || l.ID != extra.ID {
		t.Fatalf("resolve = %v/%v, want %s", l.ID, err, extra.ID)
	}
}

func TestDeleteLayout_RetargetsBindings(t *testing.T) {
	comp := newFakeComp()
	e := newTestEngine(t, comp)
	fallbackID := e.ListLayouts()[0].ID

	extra, err := e.GenerateGrid(2, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := e.BindContext(resolver.Binding{Screen: "DP-1", Desktop: "2", LayoutID: extra.ID}); err != nil {
		t.Fatalf("bind: %v", err)
	}

	if err := e.DeleteLayout(extra.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	l, err := e.ResolveContext("DP-1", "2", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if l.ID != fallbackID {
		t.Fatalf("binding resolved to %s, want fallback %s", l.ID, fallbackID)
	}
}

func TestBindContext_UnknownLayout(t *testing.T) {
	comp := newFakeComp()
	e := newTestEngine(t, comp)
	err := e.BindContext(resolver.Binding{Screen: "DP-1", LayoutID: "missing"})
	if !errors.Is(err, zone.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDragFlow_CommitThroughEngine(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{X: 500, Y: 500, Width: 400, Height: 300}
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 600, Y: 600}}
	e := newTestEngine(t, comp)

	if err := e.BeginDrag("win-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := e.UpdateDrag("DP-1", geometry.Point{X: 1400, Y: 500}); err != nil {
		t.Fatalf("update: %v", err)
	}

	c, committed, err := e.EndDrag("DP-1")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !committed {
		t.Fatal("drag did not commit")
	}
	want := geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}
	if c.Target != want {
		t.Fatalf("commit target = %+v, want %+v", c.Target, want)
	}
	entry, err := e.QueryWindowZone("win-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entry.ZoneIDs) != 1 || entry.ZoneIDs[0] != "col-2" {
		t.Fatalf("tracked zones = %v, want [col-2]", entry.ZoneIDs)
	}

	// Duplicate release signal stays a no-op.
	if _, committed, _ := e.EndDrag("DP-1"); committed {
		t.Fatal("second end committed again")
	}
}

func TestDragFlow_SessionConflict(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{Width: 100, Height: 100}
	comp.windows["win-2"] = geometry.Rect{Width: 100, Height: 100}
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 100, Y: 100}}
	e := newTestEngine(t, comp)

	if err := e.BeginDrag("win-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := e.BeginDrag("win-2"); !errors.Is(err, drag.ErrSessionConflict) {
		t.Fatalf("err = %v, want ErrSessionConflict", err)
	}
}

func TestWindowClosed_MidDrag(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{Width: 100, Height: 100}
	comp.pointer = platform.PointerState{Pos: geometry.Point{X: 100, Y: 100}}
	e := newTestEngine(t, comp)

	if err := e.BeginDrag("win-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	e.WindowClosed("win-1")

	if _, ok := e.DragSession("DP-1"); ok {
		t.Fatal("session survived window close")
	}
	if _, committed, _ := e.EndDrag("DP-1"); committed {
		t.Fatal("end after close committed")
	}
	// The screen is free for the next drag.
	comp.windows["win-2"] = geometry.Rect{Width: 100, Height: 100}
	if err := e.BeginDrag("win-2"); err != nil {
		t.Fatalf("begin after close: %v", err)
	}
}

func TestPadding_InsetsZones(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{Width: 100, Height: 100}
	store := zone.NewStore()
	l, _ := store.GenerateColumns(2)
	e := New(store, comp, l.ID, Options{TriggerDistance: 20, Padding: 16}, drag.Events{})

	got, err := e.SnapToZone("win-1", "col-1")
	if err != nil {
		t.Fatalf("snap: %v", err)
	}
	want := geometry.Rect{X: 8, Y: 8, Width: 944, Height: 1064}
	if got != want {
		t.Fatalf("padded target = %+v, want %+v", got, want)
	}
}

func TestSnapToZoneNumber(t *testing.T) {
	comp := newFakeComp()
	comp.windows["win-1"] = geometry.Rect{Width: 100, Height: 100}
	e := newTestEngine(t, comp)

	got, err := e.SnapToZoneNumber("win-1", 2)
	if err != nil {
		t.Fatalf("snap by number: %v", err)
	}
	want := geometry.Rect{X: 960, Y: 0, Width: 960, Height: 1080}
	if got != want {
		t.Fatalf("target = %+v, want %+v", got, want)
	}
	if _, err := e.SnapToZoneNumber("win-1", 9); !errors.Is(err, zone.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
