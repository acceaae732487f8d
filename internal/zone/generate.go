package zone

import (
	"fmt"

	"github.com/1broseidon/zonetile/internal/geometry"
)

// clampCount raises a requested zone count below 1 up to 1. Zero and
// negative counts are a common misuse of the generation API and must
// never crash or divide by zero, so this is a safe default rather than
// an error.
func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Columns builds a layout of n equal-width columns without storing it.
func Columns(n int) Layout {
	n = clampCount(n)
	zones := make([]Zone, n)
	w := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		zones[i] = Zone{
			ID:           fmt.Sprintf("col-%d", i+1),
			Rect:         geometry.Frac{X: float64(i) * w, Y: 0, W: w, H: 1},
			DisplayIndex: i + 1,
		}
	}
	return Layout{
		Name:  fmt.Sprintf("%d Columns", n),
		Zones: zones,
	}
}

// Rows builds a layout of n equal-height rows without storing it.
func Rows(n int) Layout {
	n = clampCount(n)
	zones := make([]Zone, n)
	h := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		zones[i] = Zone{
			ID:           fmt.Sprintf("row-%d", i+1),
			Rect:         geometry.Frac{X: 0, Y: float64(i) * h, W: 1, H: h},
			DisplayIndex: i + 1,
		}
	}
	return Layout{
		Name:  fmt.Sprintf("%d Rows", n),
		Zones: zones,
	}
}

// Grid builds a cols×rows grid layout without storing it. Zones are
// numbered row-major, left to right.
func Grid(cols, rows int) Layout {
	cols = clampCount(cols)
	rows = clampCount(rows)
	zones := make([]Zone, 0, cols*rows)
	w := 1.0 / float64(cols)
	h := 1.0 / float64(rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			zones = append(zones, Zone{
				ID:           fmt.Sprintf("cell-%d-%d", r+1, c+1),
				Rect:         geometry.Frac{X: float64(c) * w, Y: float64(r) * h, W: w, H: h},
				DisplayIndex: idx + 1,
			})
		}
	}
	return Layout{
		Name:  fmt.Sprintf("%dx%d Grid", cols, rows),
		Zones: zones,
	}
}

// GenerateColumns creates and stores a layout of n equal-width columns.
func (s *Store) GenerateColumns(n int) (Layout, error) {
	return s.Create(Columns(n))
}

// GenerateRows creates and stores a layout of n equal-height rows.
func (s *Store) GenerateRows(n int) (Layout, error) {
	return s.Create(Rows(n))
}

// GenerateGrid creates and stores a cols×rows grid layout.
func (s *Store) GenerateGrid(cols, rows int) (Layout, error) {
	return s.Create(Grid(cols, rows))
}
