package zone

import (
	"errors"
	"testing"

	"github.com/1broseidon/zonetile/internal/geometry"
)

func twoColumnLayout(id string) Layout {
	return Layout{
		ID:   id,
		Name: "Two Columns",
		Zones: []Zone{
			{ID: "left", Rect: geometry.Frac{X: 0, Y: 0, W: 0.5, H: 1}, DisplayIndex: 1},
			{ID: "right", Rect: geometry.Frac{X: 0.5, Y: 0, W: 0.5, H: 1}, DisplayIndex: 2},
		},
	}
}

func TestStore_CreateGetDelete(t *testing.T) {
	s := NewStore()

	created, err := s.Create(twoColumnLayout("two-col"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != "two-col" {
		t.Fatalf("expected id two-col, got %q", created.ID)
	}

	got, err := s.Get("two-col")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Zones) != 2 || got.Zones[0].ID != "left" {
		t.Fatalf("unexpected layout: %+v", got)
	}

	if err := s.Delete("two-col"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get("two-col"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	if _, err := s.Create(twoColumnLayout("two-col")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, _ := s.Get("two-col")
	got.Zones[0].ID = "mutated"

	again, _ := s.Get("two-col")
	if again.Zones[0].ID != "left" {
		t.Fatalf("store layout was mutated through a copy")
	}
}

func TestStore_CreateGeneratesID(t *testing.T) {
	s := NewStore()
	l := twoColumnLayout("")

	created, err := s.Create(l)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !s.Has(created.ID) {
		t.Fatalf("generated layout not stored")
	}
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	s := NewStore()

	cases := []struct {
		name   string
		layout Layout
	}{
		{"no zones", Layout{ID: "empty"}},
		{"duplicate zone ids", Layout{ID: "dup", Zones: []Zone{
			{ID: "a", Rect: geometry.Frac{W: 0.5, H: 1}},
			{ID: "a", Rect: geometry.Frac{X: 0.5, W: 0.5, H: 1}},
		}}},
		{"empty rect", Layout{ID: "flat", Zones: []Zone{
			{ID: "a", Rect: geometry.Frac{X: 0.2, Y: 0.2, W: 0, H: 0.5}},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Create(tc.layout); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestStore_DeleteGuardBlocksLastLayout(t *testing.T) {
	s := NewStore()
	if _, err := s.Create(twoColumnLayout("only")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	s.SetDeleteGuard(func(id string) error {
		if s.Len() == 1 {
			return ErrLayoutInUse
		}
		return nil
	})

	if err := s.Delete("only"); !errors.Is(err, ErrLayoutInUse) {
		t.Fatalf("expected ErrLayoutInUse, got %v", err)
	}
	if !s.Has("only") {
		t.Fatalf("guarded layout must survive a refused delete")
	}
}

func TestStore_OnDeleteHookFires(t *testing.T) {
	s := NewStore()
	if _, err := s.Create(twoColumnLayout("a")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Create(twoColumnLayout("b")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var deleted []string
	s.OnDelete(func(id string) { deleted = append(deleted, id) })

	if err := s.Delete("a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "a" {
		t.Fatalf("expected OnDelete for a, got %v", deleted)
	}
}

func TestStore_UpdateZonesInvalidatesGraph(t *testing.T) {
	s := NewStore()
	if _, err := s.Create(twoColumnLayout("two-col")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	g, err := s.Graph("two-col")
	if err != nil {
		t.Fatalf("graph failed: %v", err)
	}
	if n, ok := g.Neighbor("left", DirRight); !ok || n != "right" {
		t.Fatalf("expected right neighbor of left, got %q ok=%v", n, ok)
	}

	// Replace with a single full-screen zone; the cached graph must not
	// survive the mutation.
	err = s.UpdateZones("two-col", []Zone{
		{ID: "full", Rect: geometry.Frac{W: 1, H: 1}, DisplayIndex: 1},
	})
	if err != nil {
		t.Fatalf("update zones failed: %v", err)
	}

	g2, err := s.Graph("two-col")
	if err != nil {
		t.Fatalf("graph after update failed: %v", err)
	}
	if _, ok := g2.Neighbor("left", DirRight); ok {
		t.Fatalf("stale graph served after zone-set mutation")
	}
}

func TestGenerators_ClampCountToOne(t *testing.T) {
	for _, n := range []int{-3, 0, 1} {
		s := NewStore()

		cols, err := s.GenerateColumns(n)
		if err != nil {
			t.Fatalf("GenerateColumns(%d): %v", n, err)
		}
		if len(cols.Zones) != 1 {
			t.Fatalf("GenerateColumns(%d): expected 1 zone, got %d", n, len(cols.Zones))
		}
		full := geometry.Frac{X: 0, Y: 0, W: 1, H: 1}
		if cols.Zones[0].Rect != full {
			t.Fatalf("GenerateColumns(%d): expected full-area zone, got %+v", n, cols.Zones[0].Rect)
		}

		rows, err := s.GenerateRows(n)
		if err != nil {
			t.Fatalf("GenerateRows(%d): %v", n, err)
		}
		if len(rows.Zones) != 1 || rows.Zones[0].Rect != full {
			t.Fatalf("GenerateRows(%d): expected single full-area zone", n)
		}

		grid, err := s.GenerateGrid(n, n)
		if err != nil {
			t.Fatalf("GenerateGrid(%d,%d): %v", n, n, err)
		}
		if len(grid.Zones) != 1 || grid.Zones[0].Rect != full {
			t.Fatalf("GenerateGrid(%d,%d): expected single full-area zone", n, n)
		}
	}
}

func TestGenerateColumns_EqualWidths(t *testing.T) {
	s := NewStore()
	l, err := s.GenerateColumns(4)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(l.Zones) != 4 {
		t.Fatalf("expected 4 zones, got %d", len(l.Zones))
	}
	for i, z := range l.Zones {
		if z.Rect.W != 0.25 {
			t.Fatalf("zone %d: expected width 0.25, got %g", i, z.Rect.W)
		}
		if z.DisplayIndex != i+1 {
			t.Fatalf("zone %d: expected display index %d, got %d", i, i+1, z.DisplayIndex)
		}
	}
}

func TestGenerateGrid_RowMajorNumbering(t *testing.T) {
	s := NewStore()
	l, err := s.GenerateGrid(3, 2)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(l.Zones) != 6 {
		t.Fatalf("expected 6 zones, got %d", len(l.Zones))
	}

	// Zone 4 is the first cell of the second row.
	z, ok := l.ZoneByNumber(4)
	if !ok {
		t.Fatalf("zone 4 missing")
	}
	if z.Rect.X != 0 || z.Rect.Y != 0.5 {
		t.Fatalf("zone 4: expected origin (0,0.5), got (%g,%g)", z.Rect.X, z.Rect.Y)
	}
}

func TestLayout_OverridesFallBack(t *testing.T) {
	var l Layout
	if got := l.PaddingOr(8); got != 8 {
		t.Fatalf("expected fallback padding 8, got %d", got)
	}
	p := 2
	l.Padding = &p
	if got := l.PaddingOr(8); got != 2 {
		t.Fatalf("expected override padding 2, got %d", got)
	}

	if l.ShowNumbersOr(true) != true {
		t.Fatalf("expected fallback show-numbers true")
	}
	off := false
	l.ShowNumbers = &off
	if l.ShowNumbersOr(true) != false {
		t.Fatalf("expected override show-numbers false")
	}
}

func TestLayout_OverlappingZonesAreLegal(t *testing.T) {
	l := Layout{
		ID: "layered",
		Zones: []Zone{
			{ID: "outer", Rect: geometry.Frac{W: 1, H: 1}, DisplayIndex: 1},
			{ID: "inner", Rect: geometry.Frac{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}, DisplayIndex: 2},
		},
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("overlapping zones must validate: %v", err)
	}
}
