package zone

import (
	"fmt"
	"math"
	"sort"

	"github.com/1broseidon/zonetile/internal/geometry"
)

// Direction is a navigation direction between zones.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection converts a direction name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (want up, down, left or right)", s)
	}
}

// adjacencyEpsilon absorbs floating-point error and sub-pixel authoring
// gaps between zone edges, in normalized screen fractions.
const adjacencyEpsilon = 0.01

// Graph holds the directional neighbor relation of one layout's zones.
// Absence of a neighbor is represented as absence, not an error.
type Graph struct {
	candidates map[string]map[Direction][]string
}

// BuildGraph derives the neighbor relation from the layout's zone
// geometries. For each zone and direction the candidates are the zones
// whose relevant edge is adjacent within epsilon and whose
// perpendicular projection overlaps the source's; they are ordered by
// largest overlapping span, then smallest center distance, then lowest
// display index.
func BuildGraph(l *Layout) *Graph {
	g := &Graph{candidates: make(map[string]map[Direction][]string, len(l.Zones))}

	for _, src := range l.Zones {
		dirs := make(map[Direction][]string, 4)
		for _, dir := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
			dirs[dir] = rankCandidates(src, l.Zones, dir)
		}
		g.candidates[src.ID] = dirs
	}
	return g
}

// Neighbor returns the best neighbor of a zone in a direction.
func (g *Graph) Neighbor(zoneID string, dir Direction) (string, bool) {
	c := g.candidates[zoneID][dir]
	if len(c) == 0 {
		return "", false
	}
	return c[0], true
}

// Candidates returns every valid neighbor of a zone in a direction, in
// preference order.
func (g *Graph) Candidates(zoneID string, dir Direction) []string {
	c := g.candidates[zoneID][dir]
	out := make([]string, len(c))
	copy(out, c)
	return out
}

type scoredCandidate struct {
	id           string
	overlap      float64
	distance     float64
	displayIndex int
}

func rankCandidates(src Zone, zones []Zone, dir Direction) []string {
	a := geometry.Normalize(src.Rect)

	var scored []scoredCandidate
	for _, z := range zones {
		if z.ID == src.ID {
			continue
		}
		b := geometry.Normalize(z.Rect)

		var edgeGap, overlap float64
		switch dir {
		case DirRight:
			edgeGap = math.Abs(b.X - (a.X + a.W))
			overlap = projectionOverlap(a.Y, a.H, b.Y, b.H)
		case DirLeft:
			edgeGap = math.Abs(a.X - (b.X + b.W))
			overlap = projectionOverlap(a.Y, a.H, b.Y, b.H)
		case DirDown:
			edgeGap = math.Abs(b.Y - (a.Y + a.H))
			overlap = projectionOverlap(a.X, a.W, b.X, b.W)
		case DirUp:
			edgeGap = math.Abs(a.Y - (b.Y + b.H))
			overlap = projectionOverlap(a.X, a.W, b.X, b.W)
		}

		if edgeGap > adjacencyEpsilon || overlap <= 0 {
			continue
		}

		scored = append(scored, scoredCandidate{
			id:           z.ID,
			overlap:      overlap,
			distance:     centerDistance(a, b),
			displayIndex: z.DisplayIndex,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if math.Abs(scored[i].overlap-scored[j].overlap) > adjacencyEpsilon {
			return scored[i].overlap > scored[j].overlap
		}
		if math.Abs(scored[i].distance-scored[j].distance) > adjacencyEpsilon {
			return scored[i].distance < scored[j].distance
		}
		return scored[i].displayIndex < scored[j].displayIndex
	})

	out := make([]string, len(scored))
	for i, c := range scored {
		out[i] = c.id
	}
	return out
}

// projectionOverlap returns the overlap span of two intervals on the
// perpendicular axis.
func projectionOverlap(aStart, aLen, bStart, bLen float64) float64 {
	lo := math.Max(aStart, bStart)
	hi := math.Min(aStart+aLen, bStart+bLen)
	return hi - lo
}

func centerDistance(a, b geometry.Frac) float64 {
	dx := (a.X + a.W/2) - (b.X + b.W/2)
	dy := (a.Y + a.H/2) - (b.Y + b.H/2)
	return math.Sqrt(dx*dx + dy*dy)
}
