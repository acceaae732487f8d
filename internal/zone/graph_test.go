package zone

import (
	"testing"

	"github.com/1broseidon/zonetile/internal/geometry"
)

func gridLayout(t *testing.T, cols, rows int) Layout {
	t.Helper()
	s := NewStore()
	l, err := s.GenerateGrid(cols, rows)
	if err != nil {
		t.Fatalf("generate grid: %v", err)
	}
	return l
}

func TestGraph_TwoColumnNeighbors(t *testing.T) {
	l := twoColumnLayout("two-col")
	g := BuildGraph(&l)

	if n, ok := g.Neighbor("left", DirRight); !ok || n != "right" {
		t.Fatalf("expected right neighbor of left to be right, got %q ok=%v", n, ok)
	}
	if n, ok := g.Neighbor("right", DirLeft); !ok || n != "left" {
		t.Fatalf("expected left neighbor of right to be left, got %q ok=%v", n, ok)
	}
	if _, ok := g.Neighbor("left", DirLeft); ok {
		t.Fatalf("left zone must have no left neighbor")
	}
	if _, ok := g.Neighbor("left", DirUp); ok {
		t.Fatalf("full-height zone must have no vertical neighbor")
	}
}

func TestGraph_GridNavigation(t *testing.T) {
	l := gridLayout(t, 3, 3)
	g := BuildGraph(&l)

	// Center cell of a 3x3 grid is cell-2-2.
	cases := []struct {
		dir  Direction
		want string
	}{
		{DirUp, "cell-1-2"},
		{DirDown, "cell-3-2"},
		{DirLeft, "cell-2-1"},
		{DirRight, "cell-2-3"},
	}
	for _, tc := range cases {
		t.Run(tc.dir.String(), func(t *testing.T) {
			if n, ok := g.Neighbor("cell-2-2", tc.dir); !ok || n != tc.want {
				t.Fatalf("expected %s neighbor %q, got %q ok=%v", tc.dir, tc.want, n, ok)
			}
		})
	}
}

func TestGraph_DirectionalSymmetry(t *testing.T) {
	layouts := []Layout{
		twoColumnLayout("two-col"),
		gridLayout(t, 3, 2),
		gridLayout(t, 4, 4),
		{
			ID: "uneven",
			Zones: []Zone{
				{ID: "main", Rect: geometry.Frac{X: 0, Y: 0, W: 0.6, H: 1}, DisplayIndex: 1},
				{ID: "top", Rect: geometry.Frac{X: 0.6, Y: 0, W: 0.4, H: 0.5}, DisplayIndex: 2},
				{ID: "bottom", Rect: geometry.Frac{X: 0.6, Y: 0.5, W: 0.4, H: 0.5}, DisplayIndex: 3},
			},
		},
	}

	opposite := map[Direction]Direction{
		DirUp: DirDown, DirDown: DirUp, DirLeft: DirRight, DirRight: DirLeft,
	}

	for _, l := range layouts {
		g := BuildGraph(&l)
		for _, z := range l.Zones {
			for _, dir := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
				n, ok := g.Neighbor(z.ID, dir)
				if !ok {
					continue
				}
				back := g.Candidates(n, opposite[dir])
				found := false
				for _, c := range back {
					if c == z.ID {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("layout %q: %q is %s neighbor of %q but %q is not a %s candidate of %q",
						l.ID, n, dir, z.ID, z.ID, opposite[dir], n)
				}
			}
		}
	}
}

func TestGraph_LargestOverlapWins(t *testing.T) {
	// main's right edge touches two zones; big overlaps 0.7 of main's
	// height, small only 0.3.
	l := Layout{
		ID: "overlap",
		Zones: []Zone{
			{ID: "main", Rect: geometry.Frac{X: 0, Y: 0, W: 0.5, H: 1}, DisplayIndex: 1},
			{ID: "small", Rect: geometry.Frac{X: 0.5, Y: 0, W: 0.5, H: 0.3}, DisplayIndex: 2},
			{ID: "big", Rect: geometry.Frac{X: 0.5, Y: 0.3, W: 0.5, H: 0.7}, DisplayIndex: 3},
		},
	}
	g := BuildGraph(&l)

	if n, ok := g.Neighbor("main", DirRight); !ok || n != "big" {
		t.Fatalf("expected big to win by overlap, got %q ok=%v", n, ok)
	}
	cands := g.Candidates("main", DirRight)
	if len(cands) != 2 {
		t.Fatalf("expected both zones as candidates, got %v", cands)
	}
}

func TestGraph_TieBreakByDisplayIndex(t *testing.T) {
	// Two identical right-hand zones stacked on top of each other
	// (overlapping layout): equal overlap, equal center distance, so the
	// lower display index must win.
	l := Layout{
		ID: "tie",
		Zones: []Zone{
			{ID: "main", Rect: geometry.Frac{X: 0, Y: 0, W: 0.5, H: 1}, DisplayIndex: 1},
			{ID: "dup-b", Rect: geometry.Frac{X: 0.5, Y: 0, W: 0.5, H: 1}, DisplayIndex: 3},
			{ID: "dup-a", Rect: geometry.Frac{X: 0.5, Y: 0, W: 0.5, H: 1}, DisplayIndex: 2},
		},
	}
	g := BuildGraph(&l)

	if n, ok := g.Neighbor("main", DirRight); !ok || n != "dup-a" {
		t.Fatalf("expected dup-a by display index, got %q ok=%v", n, ok)
	}
}

func TestGraph_SmallAuthoringGapAbsorbed(t *testing.T) {
	// A 0.005 gap between edges is within the adjacency tolerance.
	l := Layout{
		ID: "gap",
		Zones: []Zone{
			{ID: "a", Rect: geometry.Frac{X: 0, Y: 0, W: 0.495, H: 1}, DisplayIndex: 1},
			{ID: "b", Rect: geometry.Frac{X: 0.5, Y: 0, W: 0.5, H: 1}, DisplayIndex: 2},
		},
	}
	g := BuildGraph(&l)

	if n, ok := g.Neighbor("a", DirRight); !ok || n != "b" {
		t.Fatalf("expected gap to be absorbed, got %q ok=%v", n, ok)
	}
}

func TestGraph_LargeGapIsNotAdjacent(t *testing.T) {
	l := Layout{
		ID: "far",
		Zones: []Zone{
			{ID: "a", Rect: geometry.Frac{X: 0, Y: 0, W: 0.3, H: 1}, DisplayIndex: 1},
			{ID: "b", Rect: geometry.Frac{X: 0.7, Y: 0, W: 0.3, H: 1}, DisplayIndex: 2},
		},
	}
	g := BuildGraph(&l)

	if _, ok := g.Neighbor("a", DirRight); ok {
		t.Fatalf("zones 0.4 apart must not be adjacent")
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down", "left", "right"} {
		d, err := ParseDirection(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if d.String() != s {
			t.Fatalf("round trip %q -> %q", s, d.String())
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatalf("expected error for invalid direction")
	}
}
