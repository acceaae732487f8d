package config

import (
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/zone"
)

// BuiltinLayouts returns the built-in layout library.
//
// These are always available without being defined in YAML. An authored
// layout with the same id replaces the builtin.
func BuiltinLayouts() []zone.Layout {
	halves := zone.Columns(2)
	halves.ID = "halves"
	halves.Name = "Halves"

	thirds := zone.Columns(3)
	thirds.ID = "thirds"
	thirds.Name = "Thirds"

	quarters := zone.Grid(2, 2)
	quarters.ID = "quarters"
	quarters.Name = "Quarters"

	// Wide center column with narrow side columns.
	priority := zone.Layout{
		ID:   "priority-center",
		Name: "Priority Center",
		Zones: []zone.Zone{
			{ID: "left", Rect: geometry.Frac{X: 0, Y: 0, W: 0.2, H: 1}, DisplayIndex: 1},
			{ID: "center", Rect: geometry.Frac{X: 0.2, Y: 0, W: 0.6, H: 1}, DisplayIndex: 2},
			{ID: "right", Rect: geometry.Frac{X: 0.8, Y: 0, W: 0.2, H: 1}, DisplayIndex: 3},
		},
	}

	// Full-screen zone layered under a centered focus zone; overlap is
	// legal and the focus zone wins the smallest-area tie-break.
	focus := zone.Layout{
		ID:   "focus",
		Name: "Focus",
		Zones: []zone.Zone{
			{ID: "full", Rect: geometry.Frac{X: 0, Y: 0, W: 1, H: 1}, DisplayIndex: 1},
			{ID: "focus", Rect: geometry.Frac{X: 0.2, Y: 0.1, W: 0.6, H: 0.8}, DisplayIndex: 2},
		},
	}

	return []zone.Layout{halves, thirds, quarters, priority, focus}
}
