// Package tracker records which zones each managed window occupies and
// the geometry it had before its first snap.
package tracker

import (
	"errors"
	"fmt"

	"github.com/1broseidon/zonetile/internal/geometry"
)

var (
	// ErrNotFound indicates the window id is not tracked.
	ErrNotFound = errors.New("window not tracked")
	// ErrStaleAssignment indicates a tracked zone id no longer resolves
	// in the window's recorded layout.
	ErrStaleAssignment = errors.New("stale assignment")
)

// Entry is one tracked window. ZoneIDs empty means the window is
// floating. PreSnap is captured on the first unassigned→assigned
// transition and cleared only on explicit restore or window close.
type Entry struct {
	WindowID string
	ZoneIDs  []string
	// LastZoneIDs remembers the assignment cleared by the most recent
	// Unassign, so a float toggle can re-snap the window.
	LastZoneIDs []string
	PreSnap     *geometry.Rect
	LayoutID    string
	ScreenID    string
}

// clone returns a deep copy so callers never alias tracker state.
func (e Entry) clone() Entry {
	out := e
	out.ZoneIDs = append([]string(nil), e.ZoneIDs...)
	out.LastZoneIDs = append([]string(nil), e.LastZoneIDs...)
	if e.PreSnap != nil {
		r := *e.PreSnap
		out.PreSnap = &r
	}
	return out
}

// ZoneExistsFunc reports whether a zone id exists in a layout. The
// tracker holds only identifiers, so staleness checks are delegated to
// whoever owns the layouts.
type ZoneExistsFunc func(layoutID, zoneID string) bool

// Tracker is the window table. It does no locking: all mutation goes
// through the engine's serialized entry points.
type Tracker struct {
	entries    map[string]*Entry
	zoneExists ZoneExistsFunc
}

// New creates an empty tracker. zoneExists may be nil, in which case
// Query never reports staleness.
func New(zoneExists ZoneExistsFunc) *Tracker {
	return &Tracker{
		entries:    make(map[string]*Entry),
		zoneExists: zoneExists,
	}
}

func sameZones(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Assign records a window's zone assignment. currentGeom is the
// window's geometry at call time and is captured as PreSnap only on the
// first unassigned→assigned transition. Re-assigning the identical zone
// set is idempotent: it returns false and captures nothing.
func (t *Tracker) Assign(windowID string, zoneIDs []string, layoutID, screenID string, currentGeom geometry.Rect) bool {
	e, ok := t.entries[windowID]
	if !ok {
		e = &Entry{WindowID: windowID}
		t.entries[windowID] = e
	}
	if ok && e.LayoutID == layoutID && sameZones(e.ZoneIDs, zoneIDs) {
		return false
	}
	if len(e.ZoneIDs) == 0 && e.PreSnap == nil {
		g := currentGeom
		e.PreSnap = &g
	}
	e.ZoneIDs = append([]string(nil), zoneIDs...)
	e.LayoutID = layoutID
	e.ScreenID = screenID
	return true
}

// Unassign clears the window's zone assignment and returns the pre-snap
// geometry to restore, consuming it. Returns ErrNotFound for unknown
// windows and a nil rect when there is nothing remembered.
func (t *Tracker) Unassign(windowID string) (*geometry.Rect, error) {
	e, ok := t.entries[windowID]
	if !ok {
		return nil, fmt.Errorf("unassign %s: %w", windowID, ErrNotFound)
	}
	restore := e.PreSnap
	if len(e.ZoneIDs) > 0 {
		e.LastZoneIDs = e.ZoneIDs
	}
	e.ZoneIDs = nil
	e.PreSnap = nil
	return restore, nil
}

// Query returns a copy of the window's entry. If any tracked zone id no
// longer exists in the recorded layout the copy is returned alongside
// ErrStaleAssignment so the caller can remap or clear it; the tracker
// never fabricates a placement.
func (t *Tracker) Query(windowID string) (Entry, error) {
	e, ok := t.entries[windowID]
	if !ok {
		return Entry{}, fmt.Errorf("query %s: %w", windowID, ErrNotFound)
	}
	out := e.clone()
	if t.zoneExists != nil {
		for _, zid := range e.ZoneIDs {
			if !t.zoneExists(e.LayoutID, zid) {
				return out, fmt.Errorf("query %s: zone %s in layout %s: %w", windowID, zid, e.LayoutID, ErrStaleAssignment)
			}
		}
	}
	return out, nil
}

// Occupants maps each zone of a layout to the windows assigned to it.
// Zones without occupants are absent from the map.
func (t *Tracker) Occupants(layoutID string) map[string][]string {
	out := make(map[string][]string)
	for _, e := range t.entries {
		if e.LayoutID != layoutID {
			continue
		}
		for _, zid := range e.ZoneIDs {
			out[zid] = append(out[zid], e.WindowID)
		}
	}
	return out
}

// Remove drops a window entirely, typically on window close.
func (t *Tracker) Remove(windowID string) {
	delete(t.entries, windowID)
}

// ClearStale drops the assignment (not the entry) of every window whose
// zone ids no longer resolve. Returns the affected window ids.
func (t *Tracker) ClearStale() []string {
	if t.zoneExists == nil {
		return nil
	}
	var cleared []string
	for id, e := range t.entries {
		for _, zid := range e.ZoneIDs {
			if !t.zoneExists(e.LayoutID, zid) {
				e.ZoneIDs = nil
				cleared = append(cleared, id)
				break
			}
		}
	}
	return cleared
}

// Len returns the number of tracked windows.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// WindowIDs lists every window with an entry, assigned or floating.
func (t *Tracker) WindowIDs() []string {
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	return ids
}
