// Package drag implements the per-screen drag session state machine:
// Idle → Armed → Spanning? → Committed | Cancelled.
package drag

import (
	"errors"
	"fmt"

	"github.com/1broseidon/zonetile/internal/geometry"
)

// ErrSessionConflict indicates a drag start on a screen that already
// has an active session.
var ErrSessionConflict = errors.New("drag session already active")

// State is the lifecycle phase of a drag session.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateSpanning
	StateCommitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateSpanning:
		return "spanning"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Policy selects the winner among overlapping zones under the pointer
// while a session is Armed.
type Policy int

const (
	// PolicySmallestArea picks the smallest zone, ties broken by
	// declaration order (later wins).
	PolicySmallestArea Policy = iota
	// PolicyTopmost picks by declaration order alone, later wins.
	PolicyTopmost
)

// TargetZone is a zone resolved to absolute pixels for the session's
// screen. Order is the zone's position in the layout's declaration,
// used as the z tie-break.
type TargetZone struct {
	ID           string
	Rect         geometry.Rect
	DisplayIndex int
	Order        int
}

// Session is one in-flight drag. At most one exists per screen.
type Session struct {
	ScreenID   string
	WindowID   string
	Origin     geometry.Point
	Current    geometry.Point
	State      State
	Candidates []string

	zones         []TargetZone
	spanRequested bool
}

// Zones returns a copy of the target zones the session selects from.
func (s *Session) Zones() []TargetZone {
	out := make([]TargetZone, len(s.zones))
	copy(out, s.zones)
	return out
}

// IsCandidate reports whether the zone id is currently selected.
func (s *Session) IsCandidate(zoneID string) bool {
	for _, id := range s.Candidates {
		if id == zoneID {
			return true
		}
	}
	return false
}

// Commit is the outcome of a successful drag release.
type Commit struct {
	WindowID string
	ZoneIDs  []string
	Target   geometry.Rect
}

// Events are optional notification hooks, invoked synchronously from
// the engine's call path. Nil hooks are skipped.
type Events struct {
	OnArmed             func(screenID, windowID string)
	OnCandidatesChanged func(screenID string, zoneIDs []string)
	OnCommitted         func(screenID string, c Commit)
	OnCancelled         func(screenID, windowID string)
}

// Engine owns the drag sessions. It assumes serialized entry points.
type Engine struct {
	triggerDistance float64
	edgeMargin      int
	policy          Policy
	events          Events

	sessions map[string]*Session
}

// NewEngine creates a drag engine. triggerDistance is the pointer
// travel in pixels before a drag arms; edgeMargin, when positive, arms
// a drag immediately once the pointer is within that many pixels of the
// screen edge.
func NewEngine(triggerDistance float64, edgeMargin int, policy Policy, events Events) *Engine {
	return &Engine{
		triggerDistance: triggerDistance,
		edgeMargin:      edgeMargin,
		policy:          policy,
		events:          events,
		sessions:        make(map[string]*Session),
	}
}

// Begin registers a drag of windowID starting at origin on the given
// screen. zones are the active layout's zones resolved to absolute
// pixels. The session starts Idle and arms on pointer travel. A screen
// with a live session rejects the new drag with ErrSessionConflict.
func (e *Engine) Begin(screenID, windowID string, origin geometry.Point, zones []TargetZone) error {
	if s, ok := e.sessions[screenID]; ok && s.State != StateCommitted && s.State != StateCancelled {
		return fmt.Errorf("screen %s: %w", screenID, ErrSessionConflict)
	}
	e.sessions[screenID] = &Session{
		ScreenID: screenID,
		WindowID: windowID,
		Origin:   origin,
		Current:  origin,
		State:    StateIdle,
		zones:    zones,
	}
	return nil
}

// Update feeds a pointer sample into the screen's session. screenArea
// is the screen's available area, used for edge triggering. A sample on
// a screen with no live session is ignored.
func (e *Engine) Update(screenID string, pointer geometry.Point, screenArea geometry.Rect) {
	s, ok := e.sessions[screenID]
	if !ok || s.State == StateCommitted || s.State == StateCancelled {
		return
	}
	s.Current = pointer

	if s.State == StateIdle {
		if geometry.Distance(s.Origin, pointer) < e.triggerDistance && !e.nearEdge(pointer, screenArea) {
			return
		}
		s.State = StateArmed
		if s.spanRequested {
			s.State = StateSpanning
		}
		if e.events.OnArmed != nil {
			e.events.OnArmed(screenID, s.WindowID)
		}
	}
	e.recompute(s)
}

// SetSpanning toggles rubber-band selection for the screen's session.
// Enabling before the session is armed is remembered once it arms via
// the next Update; disabling returns to single-zone selection.
func (e *Engine) SetSpanning(screenID string, spanning bool) {
	s, ok := e.sessions[screenID]
	if !ok {
		return
	}
	s.spanRequested = spanning
	switch {
	case spanning && s.State == StateArmed:
		s.State = StateSpanning
		e.recompute(s)
	case !spanning && s.State == StateSpanning:
		s.State = StateArmed
		e.recompute(s)
	}
}

// End releases the drag. With candidates it commits: the target is the
// bounding-box union of the candidate rectangles. With none it cancels.
// End on an already-finished or absent session is an idempotent no-op.
func (e *Engine) End(screenID string) (Commit, bool) {
	s, ok := e.sessions[screenID]
	if !ok || s.State == StateCommitted || s.State == StateCancelled {
		return Commit{}, false
	}
	if s.State == StateIdle || len(s.Candidates) == 0 {
		e.cancel(s)
		return Commit{}, false
	}

	rects := make([]geometry.Rect, 0, len(s.Candidates))
	for _, id := range s.Candidates {
		for _, z := range s.zones {
			if z.ID == id {
				rects = append(rects, z.Rect)
				break
			}
		}
	}
	target, err := geometry.Union(rects)
	if err != nil {
		e.cancel(s)
		return Commit{}, false
	}

	s.State = StateCommitted
	c := Commit{
		WindowID: s.WindowID,
		ZoneIDs:  append([]string(nil), s.Candidates...),
		Target:   target,
	}
	delete(e.sessions, screenID)
	if e.events.OnCommitted != nil {
		e.events.OnCommitted(screenID, c)
	}
	return c, true
}

// Cancel aborts the screen's session from any state without touching
// window state. Safe to call with no session.
func (e *Engine) Cancel(screenID string) {
	s, ok := e.sessions[screenID]
	if !ok || s.State == StateCommitted || s.State == StateCancelled {
		return
	}
	e.cancel(s)
}

// CancelWindow aborts whichever session is dragging windowID, used when
// the window closes mid-drag.
func (e *Engine) CancelWindow(windowID string) {
	for _, s := range e.sessions {
		if s.WindowID == windowID && s.State != StateCommitted && s.State != StateCancelled {
			e.cancel(s)
			return
		}
	}
}

// Active returns a copy of the screen's session, if one is live.
func (e *Engine) Active(screenID string) (Session, bool) {
	s, ok := e.sessions[screenID]
	if !ok {
		return Session{}, false
	}
	out := *s
	out.Candidates = append([]string(nil), s.Candidates...)
	out.zones = append([]TargetZone(nil), s.zones...)
	return out, true
}

func (e *Engine) cancel(s *Session) {
	s.State = StateCancelled
	delete(e.sessions, s.ScreenID)
	if e.events.OnCancelled != nil {
		e.events.OnCancelled(s.ScreenID, s.WindowID)
	}
}

func (e *Engine) nearEdge(p geometry.Point, screen geometry.Rect) bool {
	if e.edgeMargin <= 0 {
		return false
	}
	return p.X <= screen.X+e.edgeMargin ||
		p.Y <= screen.Y+e.edgeMargin ||
		p.X >= screen.X+screen.Width-e.edgeMargin ||
		p.Y >= screen.Y+screen.Height-e.edgeMargin
}

func (e *Engine) recompute(s *Session) {
	var next []string
	switch s.State {
	case StateArmed:
		if z, ok := e.zoneUnder(s.zones, s.Current); ok {
			next = []string{z.ID}
		}
	case StateSpanning:
		band := geometry.Span(s.Origin, s.Current)
		for _, z := range s.zones {
			if geometry.Intersects(band, z.Rect) {
				next = append(next, z.ID)
			}
		}
	}
	if sameCandidates(s.Candidates, next) {
		return
	}
	s.Candidates = next
	if e.events.OnCandidatesChanged != nil {
		e.events.OnCandidatesChanged(s.ScreenID, append([]string(nil), next...))
	}
}

// zoneUnder picks the winning zone containing p. Overlaps resolve per
// the engine's policy; declaration order breaks remaining ties with the
// later zone treated as topmost.
func (e *Engine) zoneUnder(zones []TargetZone, p geometry.Point) (TargetZone, bool) {
	var best TargetZone
	found := false
	for _, z := range zones {
		if !geometry.Contains(z.Rect, p) {
			continue
		}
		if !found {
			best, found = z, true
			continue
		}
		switch e.policy {
		case PolicyTopmost:
			if z.Order >= best.Order {
				best = z
			}
		default:
			if a, b := geometry.Area(z.Rect), geometry.Area(best.Rect); a < b || (a == b && z.Order >= best.Order) {
				best = z
			}
		}
	}
	return best, found
}

func sameCandidates(a, b []string) bool {
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
