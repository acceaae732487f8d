// Package geometry provides the pure rectangle math used by the zone
// engine: normalized-fraction to pixel conversion, hit testing,
// intersection and bounding-box union. It holds no state.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when a non-finite value or a
// non-positive dimension reaches the kernel. Callers that accept user
// counts (layout generators) must clamp before computing fractions.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Frac is a rectangle in normalized screen-fraction coordinates.
// All four fields are fractions of the target screen's usable area.
type Frac struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Rect describes a rectangular region in absolute pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Clamp01 clamps f into [0, 1]. NaN clamps to 0.
func Clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Normalize clamps all fields of f into [0, 1] and shrinks W/H so that
// x+w <= 1 and y+h <= 1.
func Normalize(f Frac) Frac {
	out := Frac{
		X: Clamp01(f.X),
		Y: Clamp01(f.Y),
		W: Clamp01(f.W),
		H: Clamp01(f.H),
	}
	if out.X+out.W > 1 {
		out.W = 1 - out.X
	}
	if out.Y+out.H > 1 {
		out.H = 1 - out.Y
	}
	return out
}

// finite reports whether all fields of f are finite numbers.
func finite(f Frac) bool {
	for _, v := range []float64{f.X, f.Y, f.W, f.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ToAbsolute converts a normalized rect to absolute pixels within screen.
// Fractions are clamped to [0,1] on input; a non-finite value or a
// dimension that is zero or negative after clamping fails with
// ErrInvalidGeometry.
func ToAbsolute(f Frac, screen Rect) (Rect, error) {
	if !finite(f) {
		return Rect{}, fmt.Errorf("%w: non-finite fraction %+v", ErrInvalidGeometry, f)
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return Rect{}, fmt.Errorf("%w: screen area %dx%d", ErrInvalidGeometry, screen.Width, screen.Height)
	}

	n := Normalize(f)
	if n.W <= 0 || n.H <= 0 {
		return Rect{}, fmt.Errorf("%w: non-positive dimension w=%g h=%g", ErrInvalidGeometry, n.W, n.H)
	}

	return Rect{
		X:      screen.X + int(math.Round(n.X*float64(screen.Width))),
		Y:      screen.Y + int(math.Round(n.Y*float64(screen.Height))),
		Width:  int(math.Round(n.W * float64(screen.Width))),
		Height: int(math.Round(n.H * float64(screen.Height))),
	}, nil
}

// Intersects reports whether two pixel rects overlap. Touching edges do
// not count as overlap.
func Intersects(a, b Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// Contains reports whether p lies inside r. The left/top edges are
// inclusive, the right/bottom edges exclusive, so abutting zones never
// both claim a boundary pixel.
func Contains(r Rect, p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Union returns the bounding box of rects. Spanning always yields a
// single rectangle, never a non-rectangular region. An empty set fails
// with ErrInvalidGeometry.
func Union(rects []Rect) (Rect, error) {
	if len(rects) == 0 {
		return Rect{}, fmt.Errorf("%w: union of empty set", ErrInvalidGeometry)
	}

	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].X+rects[0].Width, rects[0].Y+rects[0].Height
	for _, r := range rects[1:] {
		if r.X < minX {
			minX = r.X
		}
		if r.Y < minY {
			minY = r.Y
		}
		if r.X+r.Width > maxX {
			maxX = r.X + r.Width
		}
		if r.Y+r.Height > maxY {
			maxY = r.Y + r.Height
		}
	}

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}

// Span returns the rectangle spanned between two points, used for
// rubber-band selection during a spanning drag.
func Span(a, b Point) Rect {
	x0, x1 := a.X, b.X
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 := a.Y, b.Y
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	// A degenerate span still selects the zone under the anchor.
	return Rect{X: x0, Y: y0, Width: x1 - x0 + 1, Height: y1 - y0 + 1}
}

// Center returns the center point of r.
func Center(r Rect) Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the pixel area of r, never negative.
func Area(r Rect) int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
