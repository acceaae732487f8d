// Package zone defines the zone/layout data model, the in-memory layout
// store and the per-layout adjacency graph used for directional
// navigation.
package zone

import (
	"errors"
	"fmt"

	"github.com/1broseidon/zonetile/internal/geometry"
)

var (
	// ErrNotFound is returned for an unknown layout or zone id.
	ErrNotFound = errors.New("not found")
	// ErrLayoutInUse is returned when deleting a screen's last
	// remaining layout.
	ErrLayoutInUse = errors.New("layout in use")
)

// Appearance overrides the global zone appearance. When present on a
// zone it replaces the inherited appearance entirely; fields are never
// merged one by one.
type Appearance struct {
	Background   string `yaml:"background,omitempty" json:"background,omitempty"`
	Border       string `yaml:"border,omitempty" json:"border,omitempty"`
	CornerRadius int    `yaml:"corner_radius,omitempty" json:"corner_radius,omitempty"`
}

// Zone is one rectangular region within a layout. The rect is expressed
// in fractions of the target screen's usable area; zones of the same
// layout may overlap.
type Zone struct {
	ID           string        `yaml:"id" json:"id"`
	Rect         geometry.Frac `yaml:"rect" json:"rect"`
	DisplayIndex int           `yaml:"display_index" json:"display_index"`
	Appearance   *Appearance   `yaml:"appearance,omitempty" json:"appearance,omitempty"`
}

// Layout is an ordered, non-empty set of zones plus layout-level
// overrides. Padding and ShowNumbers fall back to the global default
// when nil.
type Layout struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Zones       []Zone `yaml:"zones" json:"zones"`
	Padding     *int   `yaml:"padding,omitempty" json:"padding,omitempty"`
	ShowNumbers *bool  `yaml:"show_numbers,omitempty" json:"show_numbers,omitempty"`
}

// PaddingOr returns the layout padding, falling back to def when unset.
func (l *Layout) PaddingOr(def int) int {
	if l == nil || l.Padding == nil {
		return def
	}
	return *l.Padding
}

// ShowNumbersOr returns the show-numbers flag, falling back to def when unset.
func (l *Layout) ShowNumbersOr(def bool) bool {
	if l == nil || l.ShowNumbers == nil {
		return def
	}
	return *l.ShowNumbers
}

// Zone returns the zone with the given id.
func (l *Layout) Zone(id string) (Zone, bool) {
	for _, z := range l.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// HasZone reports whether the layout contains a zone with the given id.
func (l *Layout) HasZone(id string) bool {
	_, ok := l.Zone(id)
	return ok
}

// ZoneByNumber returns the zone with the given display index.
func (l *Layout) ZoneByNumber(n int) (Zone, bool) {
	for _, z := range l.Zones {
		if z.DisplayIndex == n {
			return z, true
		}
	}
	return Zone{}, false
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() Layout {
	out := *l
	out.Zones = make([]Zone, len(l.Zones))
	copy(out.Zones, l.Zones)
	for i, z := range l.Zones {
		if z.Appearance != nil {
			a := *z.Appearance
			out.Zones[i].Appearance = &a
		}
	}
	if l.Padding != nil {
		p := *l.Padding
		out.Padding = &p
	}
	if l.ShowNumbers != nil {
		s := *l.ShowNumbers
		out.ShowNumbers = &s
	}
	return out
}

// Validate checks the layout invariants: a non-empty zone set, unique
// zone ids, and every rect positive-dimensioned within the unit square
// after clamping.
func (l *Layout) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("layout id is required")
	}
	if len(l.Zones) == 0 {
		return fmt.Errorf("layout %q has no zones", l.ID)
	}

	seen := make(map[string]struct{}, len(l.Zones))
	for i, z := range l.Zones {
		if z.ID == "" {
			return fmt.Errorf("layout %q: zone %d has no id", l.ID, i)
		}
		if _, dup := seen[z.ID]; dup {
			return fmt.Errorf("layout %q: duplicate zone id %q", l.ID, z.ID)
		}
		seen[z.ID] = struct{}{}

		n := geometry.Normalize(z.Rect)
		if n.W <= 0 || n.H <= 0 {
			return fmt.Errorf("layout %q: zone %q has empty rect %+v", l.ID, z.ID, z.Rect)
		}
	}
	return nil
}
