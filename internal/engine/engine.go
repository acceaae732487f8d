// Package engine is the synchronous façade over the layout store,
// context resolver, drag sessions and window tracker. Every public
// entry point runs under one mutex so state transitions serialize even
// when the host calls in from multiple goroutines.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/zonetile/internal/drag"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/resolver"
	"github.com/1broseidon/zonetile/internal/tracker"
	"github.com/1broseidon/zonetile/internal/zone"
)

// ErrNothingToRestore indicates a float toggle with no remembered
// geometry or zone assignment to return to.
var ErrNothingToRestore = errors.New("nothing to restore")

// Options are the engine tuning knobs, typically sourced from config.
type Options struct {
	TriggerDistance float64
	EdgeMargin      int
	OverlapPolicy   drag.Policy
	Padding         int
	ShowNumbers     bool
}

// Engine coordinates the core components behind a single lock.
type Engine struct {
	mu       sync.Mutex
	store    *zone.Store
	resolver *resolver.Resolver
	tracker  *tracker.Tracker
	drags    *drag.Engine
	comp     platform.Compositor
	opts     Options

	// layout active per screen while a drag session runs there
	dragLayouts map[string]string
}

// New wires the engine together. fallbackLayoutID must name a layout in
// the store; it is the resolver's global fallback and the layout the
// delete guard protects when it is the last one standing.
func New(store *zone.Store, comp platform.Compositor, fallbackLayoutID string, opts Options, events drag.Events) *Engine {
	e := &Engine{
		store:       store,
		resolver:    resolver.New(fallbackLayoutID),
		tracker:     nil,
		comp:        comp,
		opts:        opts,
		dragLayouts: make(map[string]string),
	}
	e.tracker = tracker.New(func(layoutID, zoneID string) bool {
		l, err := store.Get(layoutID)
		if err != nil {
			return false
		}
		return l.HasZone(zoneID)
	})
	e.drags = drag.NewEngine(opts.TriggerDistance, opts.EdgeMargin, opts.OverlapPolicy, events)

	store.SetDeleteGuard(func(layoutID string) error {
		if store.Len() <= 1 {
			return fmt.Errorf("layout %s is the last one: %w", layoutID, zone.ErrLayoutInUse)
		}
		// The fallback is replaced via SetFallbackLayout, never
		// retargeted, so deleting it would leave a dangling id.
		if layoutID == e.resolver.Fallback() {
			return fmt.Errorf("layout %s is the global fallback: %w", layoutID, zone.ErrLayoutInUse)
		}
		return nil
	})
	store.OnDelete(e.resolver.Retarget)
	store.OnDelete(func(string) { e.tracker.ClearStale() })
	return e
}

// Resolver exposes the context resolver for config wiring at startup.
func (e *Engine) Resolver() *resolver.Resolver { return e.resolver }

// --- layout operations ---

func (e *Engine) ListLayouts() []zone.Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.List()
}

func (e *Engine) GetLayout(id string) (zone.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

func (e *Engine) CreateLayout(l zone.Layout) (zone.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Create(l)
}

func (e *Engine) UpdateZones(layoutID string, zones []zone.Zone) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.UpdateZones(layoutID, zones)
}

func (e *Engine) DeleteLayout(layoutID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Delete(layoutID)
}

// PutLayout creates the layout, or replaces an existing one with the
// same id.
func (e *Engine) PutLayout(l zone.Layout) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store.Has(l.ID) {
		return e.store.Update(l)
	}
	_, err := e.store.Create(l)
	return err
}

func (e *Engine) GenerateColumns(n int) (zone.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.GenerateColumns(n)
}

func (e *Engine) GenerateRows(n int) (zone.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.GenerateRows(n)
}

func (e *Engine) GenerateGrid(cols, rows int) (zone.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.GenerateGrid(cols, rows)
}

// --- context bindings ---

// BindContext adds a context binding after checking the layout exists.
func (e *Engine) BindContext(b resolver.Binding) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Has(b.LayoutID) {
		return fmt.Errorf("bind context: layout %s: %w", b.LayoutID, zone.ErrNotFound)
	}
	e.resolver.Bind(b)
	return nil
}

func (e *Engine) SetScreenDefault(screenID, layoutID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Has(layoutID) {
		return fmt.Errorf("screen default: layout %s: %w", layoutID, zone.ErrNotFound)
	}
	e.resolver.SetScreenDefault(screenID, layoutID)
	return nil
}

// ResolveContext returns the layout active for a context.
// SetFallbackLayout changes the resolver's global fallback.
func (e *Engine) SetFallbackLayout(layoutID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Has(layoutID) {
		return fmt.Errorf("layout %q: %w", layoutID, zone.ErrNotFound)
	}
	e.resolver.SetFallback(layoutID)
	return nil
}

func (e *Engine) ResolveContext(screenID, desktop, activity string) (zone.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(e.resolver.Resolve(screenID, desktop, activity))
}

// --- screens ---

func (e *Engine) Screens() ([]platform.Screen, error) {
	return e.comp.Screens()
}

// ActiveWindow returns the focused window id from the compositor.
func (e *Engine) ActiveWindow() (string, error) {
	return e.comp.ActiveWindow()
}

func (e *Engine) screenByID(id string) (platform.Screen, error) {
	screens, err := e.comp.Screens()
	if err != nil {
		return platform.Screen{}, err
	}
	for _, s := range screens {
		if s.ID == id {
			return s, nil
		}
	}
	return platform.Screen{}, fmt.Errorf("screen %s: %w", id, zone.ErrNotFound)
}

// ScreenAt returns the screen containing the point, or the first screen
// when the point falls in a dead area between outputs.
func (e *Engine) ScreenAt(p geometry.Point) (platform.Screen, error) {
	screens, err := e.comp.Screens()
	if err != nil {
		return platform.Screen{}, err
	}
	if len(screens) == 0 {
		return platform.Screen{}, fmt.Errorf("no screens: %w", zone.ErrNotFound)
	}
	for _, s := range screens {
		if geometry.Contains(s.Area, p) {
			return s, nil
		}
	}
	return screens[0], nil
}

// targetZones resolves a layout's zones to padded absolute rects.
func (e *Engine) targetZones(l zone.Layout, screen platform.Screen) ([]drag.TargetZone, error) {
	pad := l.PaddingOr(e.opts.Padding)
	out := make([]drag.TargetZone, 0, len(l.Zones))
	for i, z := range l.Zones {
		r, err := geometry.ToAbsolute(z.Rect, screen.Area)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		out = append(out, drag.TargetZone{
			ID:           z.ID,
			Rect:         insetRect(r, pad/2),
			DisplayIndex: z.DisplayIndex,
			Order:        i,
		})
	}
	return out, nil
}

func insetRect(r geometry.Rect, by int) geometry.Rect {
	if by <= 0 || r.Width <= 2*by || r.Height <= 2*by {
		return r
	}
	return geometry.Rect{X: r.X + by, Y: r.Y + by, Width: r.Width - 2*by, Height: r.Height - 2*by}
}

// --- drag session operations ---

// BeginDrag starts a drag of windowID on the active screen, resolving
// the layout for the current context.
func (e *Engine) BeginDrag(windowID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, err := e.comp.ActiveContext()
	if err != nil {
		return fmt.Errorf("begin drag: %w", err)
	}
	screen, err := e.screenByID(ctx.ScreenID)
	if err != nil {
		return err
	}
	l, err := e.store.Get(e.resolver.Resolve(ctx.ScreenID, ctx.Desktop, ctx.Activity))
	if err != nil {
		return err
	}
	zones, err := e.targetZones(l, screen)
	if err != nil {
		return err
	}
	ptr, err := e.comp.Pointer()
	if err != nil {
		return fmt.Errorf("begin drag: %w", err)
	}
	if err := e.drags.Begin(screen.ID, windowID, ptr.Pos, zones); err != nil {
		return err
	}
	e.dragLayouts[screen.ID] = l.ID
	return nil
}

// UpdateDrag feeds a pointer sample into the screen's session.
func (e *Engine) UpdateDrag(screenID string, p geometry.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	screen, err := e.screenByID(screenID)
	if err != nil {
		return err
	}
	e.drags.Update(screenID, p, screen.Area)
	return nil
}

// SetSpanning toggles rubber-band selection on the screen's session.
func (e *Engine) SetSpanning(screenID string, spanning bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drags.SetSpanning(screenID, spanning)
}

// EndDrag releases the screen's session. On commit the window is
// assigned in the tracker and the target rectangle applied through the
// compositor. Duplicate releases are no-ops.
func (e *Engine) EndDrag(screenID string) (drag.Commit, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.drags.End(screenID)
	if !ok {
		delete(e.dragLayouts, screenID)
		return drag.Commit{}, false, nil
	}
	layoutID := e.dragLayouts[screenID]
	delete(e.dragLayouts, screenID)

	if err := e.place(c.WindowID, c.ZoneIDs, layoutID, screenID, c.Target); err != nil {
		return c, true, err
	}
	return c, true, nil
}

// CancelDrag aborts the screen's session without moving anything.
func (e *Engine) CancelDrag(screenID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drags.Cancel(screenID)
	delete(e.dragLayouts, screenID)
}

// DragSession returns a copy of the screen's live session for overlay
// rendering.
func (e *Engine) DragSession(screenID string) (drag.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drags.Active(screenID)
}

// place records the assignment and applies the rect. Pre-snap geometry
// is captured from the compositor before the window moves.
func (e *Engine) place(windowID string, zoneIDs []string, layoutID, screenID string, target geometry.Rect) error {
	current, err := e.comp.WindowGeometry(windowID)
	if err != nil {
		return fmt.Errorf("place %s: %w", windowID, err)
	}
	e.tracker.Assign(windowID, zoneIDs, layoutID, screenID, current)
	if err := e.comp.Apply(windowID, target); err != nil {
		return fmt.Errorf("place %s: %w", windowID, err)
	}
	return nil
}

// --- direct commands ---

// SnapToZone snaps a window to a single zone of the layout active on
// the window's screen.
func (e *Engine) SnapToZone(windowID, zoneID string) (geometry.Rect, error) {
	return e.SnapToZones(windowID, []string{zoneID})
}

// SnapToZones snaps a window to the union of the named zones.
func (e *Engine) SnapToZones(windowID string, zoneIDs []string) (geometry.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapLocked(windowID, zoneIDs)
}

func (e *Engine) snapLocked(windowID string, zoneIDs []string) (geometry.Rect, error) {
	if len(zoneIDs) == 0 {
		return geometry.Rect{}, fmt.Errorf("snap %s: no zones named: %w", windowID, zone.ErrNotFound)
	}
	ctx, err := e.comp.ActiveContext()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("snap %s: %w", windowID, err)
	}
	screen, err := e.screenByID(ctx.ScreenID)
	if err != nil {
		return geometry.Rect{}, err
	}
	l, err := e.store.Get(e.resolver.Resolve(ctx.ScreenID, ctx.Desktop, ctx.Activity))
	if err != nil {
		return geometry.Rect{}, err
	}
	return e.snapToLayoutZones(windowID, l, screen, zoneIDs)
}

func (e *Engine) snapToLayoutZones(windowID string, l zone.Layout, screen platform.Screen, zoneIDs []string) (geometry.Rect, error) {
	zones, err := e.targetZones(l, screen)
	if err != nil {
		return geometry.Rect{}, err
	}
	rects := make([]geometry.Rect, 0, len(zoneIDs))
	for _, id := range zoneIDs {
		found := false
		for _, tz := range zones {
			if tz.ID == id {
				rects = append(rects, tz.Rect)
				found = true
				break
			}
		}
		if !found {
			return geometry.Rect{}, fmt.Errorf("zone %s in layout %s: %w", id, l.ID, zone.ErrNotFound)
		}
	}
	target, err := geometry.Union(rects)
	if err != nil {
		return geometry.Rect{}, err
	}
	if err := e.place(windowID, zoneIDs, l.ID, screen.ID, target); err != nil {
		return geometry.Rect{}, err
	}
	return target, nil
}

// SnapToZoneNumber snaps to the zone with the given display index in
// the active layout, for "zone N" shortcuts.
func (e *Engine) SnapToZoneNumber(windowID string, n int) (geometry.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, err := e.comp.ActiveContext()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("snap %s: %w", windowID, err)
	}
	l, err := e.store.Get(e.resolver.Resolve(ctx.ScreenID, ctx.Desktop, ctx.Activity))
	if err != nil {
		return geometry.Rect{}, err
	}
	z, ok := l.ZoneByNumber(n)
	if !ok {
		return geometry.Rect{}, fmt.Errorf("zone number %d in layout %s: %w", n, l.ID, zone.ErrNotFound)
	}
	screen, err := e.screenByID(ctx.ScreenID)
	if err != nil {
		return geometry.Rect{}, err
	}
	return e.snapToLayoutZones(windowID, l, screen, []string{z.ID})
}

// Navigate moves a window to its current zone's neighbor in the given
// direction. Returns false with no error when there is no neighbor.
func (e *Engine) Navigate(windowID string, dir zone.Direction) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.tracker.Query(windowID)
	if err != nil {
		return false, err
	}
	if len(entry.ZoneIDs) == 0 {
		return false, nil
	}
	g, err := e.store.Graph(entry.LayoutID)
	if err != nil {
		return false, err
	}
	next, ok := g.Neighbor(entry.ZoneIDs[0], dir)
	if !ok {
		return false, nil
	}
	l, err := e.store.Get(entry.LayoutID)
	if err != nil {
		return false, err
	}
	screen, err := e.screenByID(entry.ScreenID)
	if err != nil {
		return false, err
	}
	if _, err := e.snapToLayoutZones(windowID, l, screen, []string{next}); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleFloat clears an assigned window's zones and restores its
// pre-snap geometry. For an unassigned window it re-snaps the last
// remembered zones if they still resolve, otherwise reports
// ErrNothingToRestore.
func (e *Engine) ToggleFloat(windowID string) (geometry.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.tracker.Query(windowID)
	if err != nil && !errors.Is(err, tracker.ErrStaleAssignment) {
		if errors.Is(err, tracker.ErrNotFound) {
			return geometry.Rect{}, fmt.Errorf("float %s: %w", windowID, ErrNothingToRestore)
		}
		return geometry.Rect{}, err
	}

	if len(entry.ZoneIDs) > 0 {
		restore, err := e.tracker.Unassign(windowID)
		if err != nil {
			return geometry.Rect{}, err
		}
		if restore == nil {
			return geometry.Rect{}, fmt.Errorf("float %s: %w", windowID, ErrNothingToRestore)
		}
		if err := e.comp.Apply(windowID, *restore); err != nil {
			return geometry.Rect{}, fmt.Errorf("float %s: %w", windowID, err)
		}
		return *restore, nil
	}

	if len(entry.LastZoneIDs) == 0 {
		return geometry.Rect{}, fmt.Errorf("float %s: %w", windowID, ErrNothingToRestore)
	}
	l, err := e.store.Get(entry.LayoutID)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("float %s: %w", windowID, ErrNothingToRestore)
	}
	for _, zid := range entry.LastZoneIDs {
		if !l.HasZone(zid) {
			return geometry.Rect{}, fmt.Errorf("float %s: zone %s gone: %w", windowID, zid, ErrNothingToRestore)
		}
	}
	screen, err := e.screenByID(entry.ScreenID)
	if err != nil {
		return geometry.Rect{}, err
	}
	return e.snapToLayoutZones(windowID, l, screen, entry.LastZoneIDs)
}

// --- queries and lifecycle ---

// QueryWindowZone returns the window's tracked entry. The entry comes
// back alongside ErrStaleAssignment when its zone ids no longer
// resolve.
func (e *Engine) QueryWindowZone(windowID string) (tracker.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Query(windowID)
}

// ZoneOccupants maps each zone of a layout to its assigned windows.
func (e *Engine) ZoneOccupants(layoutID string) (map[string][]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Has(layoutID) {
		return nil, fmt.Errorf("occupants: layout %s: %w", layoutID, zone.ErrNotFound)
	}
	return e.tracker.Occupants(layoutID), nil
}

// WindowClosed drops all state for a window, aborting any drag it had
// in flight.
func (e *Engine) WindowClosed(windowID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drags.CancelWindow(windowID)
	e.tracker.Remove(windowID)
}

// TrackedWindows returns the number of windows under management.
func (e *Engine) TrackedWindows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Len()
}

// TrackedWindowIDs lists the ids of every window with a tracker entry.
func (e *Engine) TrackedWindowIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.WindowIDs()
}

// SetOptions replaces the tuning knobs. Live drag sessions are dropped
// because the trigger distance and overlap policy feed the drag engine
// at construction time.
func (e *Engine) SetOptions(opts Options, events drag.Events) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = opts
	e.drags = drag.NewEngine(opts.TriggerDistance, opts.EdgeMargin, opts.OverlapPolicy, events)
	e.dragLayouts = make(map[string]string)
}
