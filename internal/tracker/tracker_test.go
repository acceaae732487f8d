package tracker

import (
	"errors"
	"testing"

	"github.com/1broseidon/zonetile/internal/geometry"
)

func existsIn(zones map[string][]string) ZoneExistsFunc {
	return func(layoutID, zoneID string) bool {
		for _, z := range zones[layoutID] {
			if z == zoneID {
				return true
			}
		}
		return false
	}
}

func TestAssign_CapturesPreSnapOnce(t *testing.T) {
	tr := New(nil)
	orig := geometry.Rect{X: 100, Y: 50, Width: 640, Height: 480}

	if !tr.Assign("win-1", []string{"col-1"}, "layout-1", "DP-1", orig) {
		t.Fatal("first assign reported no change")
	}
	// Move to another zone with different current geometry; the original
	// pre-snap capture must survive.
	moved := geometry.Rect{X: 0, Y: 0, Width: 960, Height: 1080}
	if !tr.Assign("win-1", []string{"col-2"}, "layout-1", "DP-1", moved) {
		t.Fatal("reassign to a new zone reported no change")
	}

	e, err := tr.Query("win-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if e.PreSnap == nil || *e.PreSnap != orig {
		t.Fatalf("pre-snap = %+v, want %+v", e.PreSnap, orig)
	}
}

func TestAssign_IdempotentSameZones(t *testing.T) {
	tr := New(nil)
	g := geometry.Rect{X: 10, Y: 10, Width: 300, Height: 200}
	tr.Assign("win-1", []string{"a", "b"}, "layout-1", "DP-1", g)
	if tr.Assign("win-1", []string{"a", "b"}, "layout-1", "DP-1", geometry.Rect{Width: 1, Height: 1}) {
		t.Fatal("identical assign should be a no-op")
	}
	e, _ := tr.Query("win-1")
	if *e.PreSnap != g {
		t.Fatalf("idempotent assign recaptured pre-snap: %+v", *e.PreSnap)
	}
}

func TestFloatRestoreRoundTrip(t *testing.T) {
	tr := New(nil)
	orig := geometry.Rect{X: 123, Y: 456, Width: 789, Height: 321}
	tr.Assign("win-1", []string{"col-1"}, "layout-1", "DP-1", orig)

	restore, err := tr.Unassign("win-1")
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if restore == nil || *restore != orig {
		t.Fatalf("restore = %+v, want exact original %+v", restore, orig)
	}

	// After restore the memory is consumed.
	e, err := tr.Query("win-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(e.ZoneIDs) != 0 || e.PreSnap != nil {
		t.Fatalf("entry not cleared: %+v", e)
	}
	// The cleared assignment is remembered for re-snapping.
	if len(e.LastZoneIDs) != 1 || e.LastZoneIDs[0] != "col-1" {
		t.Fatalf("last zones = %v, want [col-1]", e.LastZoneIDs)
	}
}

func TestUnassign_UnknownWindow(t *testing.T) {
	tr := New(nil)
	if _, err := tr.Unassign("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestQuery_StaleAssignment(t *testing.T) {
	zones := map[string][]string{"layout-1": {"col-1", "col-2"}}
	tr := New(existsIn(zones))
	tr.Assign("win-1", []string{"col-2"}, "layout-1", "DP-1", geometry.Rect{Width: 100, Height: 100})

	// Zone disappears from the layout.
	zones["layout-1"] = []string{"col-1"}

	e, err := tr.Query("win-1")
	if !errors.Is(err, ErrStaleAssignment) {
		t.Fatalf("err = %v, want ErrStaleAssignment", err)
	}
	// The entry is still returned so the caller can remap it.
	if len(e.ZoneIDs) != 1 || e.ZoneIDs[0] != "col-2" {
		t.Fatalf("stale query lost the entry: %+v", e)
	}
}

func TestClearStale(t *testing.T) {
	zones := map[string][]string{"layout-1": {"col-1"}}
	tr := New(existsIn(zones))
	tr.Assign("fresh", []string{"col-1"}, "layout-1", "DP-1", geometry.Rect{Width: 1, Height: 1})
	tr.Assign("stale", []string{"gone"}, "layout-1", "DP-1", geometry.Rect{Width: 1, Height: 1})

	cleared := tr.ClearStale()
	if len(cleared) != 1 || cleared[0] != "stale" {
		t.Fatalf("cleared = %v, want [stale]", cleared)
	}
	if _, err := tr.Query("fresh"); err != nil {
		t.Fatalf("fresh entry affected: %v", err)
	}
	e, err := tr.Query("stale")
	if err != nil {
		t.Fatalf("cleared entry should query clean: %v", err)
	}
	if len(e.ZoneIDs) != 0 {
		t.Fatalf("stale assignment not cleared: %+v", e)
	}
}

func TestOccupants(t *testing.T) {
	tr := New(nil)
	g := geometry.Rect{Width: 1, Height: 1}
	tr.Assign("a", []string{"col-1"}, "layout-1", "DP-1", g)
	tr.Assign("b", []string{"col-1", "col-2"}, "layout-1", "DP-1", g)
	tr.Assign("c", []string{"col-1"}, "layout-2", "DP-1", g)

	occ := tr.Occupants("layout-1")
	if len(occ["col-1"]) != 2 {
		t.Fatalf("col-1 occupants = %v, want a and b", occ["col-1"])
	}
	if len(occ["col-2"]) != 1 || occ["col-2"][0] != "b" {
		t.Fatalf("col-2 occupants = %v, want [b]", occ["col-2"])
	}
	if _, ok := occ["col-3"]; ok {
		t.Fatal("empty zone should be absent from occupants map")
	}
}

func TestQuery_ReturnsCopy(t *testing.T) {
	tr := New(nil)
	tr.Assign("win-1", []string{"col-1"}, "layout-1", "DP-1", geometry.Rect{Width: 10, Height: 10})
	e, _ := tr.Query("win-1")
	e.ZoneIDs[0] = "mutated"
	e2, _ := tr.Query("win-1")
	if e2.ZoneIDs[0] != "col-1" {
		t.Fatal("query exposed internal state")
	}
}

func TestRemove(t *testing.T) {
	tr := New(nil)
	tr.Assign("win-1", []string{"col-1"}, "layout-1", "DP-1", geometry.Rect{Width: 10, Height: 10})
	tr.Remove("win-1")
	if _, err := tr.Query("win-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("removed window still tracked: %v", err)
	}
	if tr.Len() != 0 {
		t.Fatalf("len = %d, want 0", tr.Len())
	}
}
