package balance

import "math"

// Point is a vertex of a CG envelope: CG position against gross weight
type Point struct {
	CG     float64 `mapstructure:"cg"`
	Weight float64 `mapstructure:"weight"`
}

const edgeTolerance = 1e-9

// Contains reports whether p lies inside the polygon using the even-odd rule.
// Points on an edge or vertex count as inside. The polygon is implicitly
// closed and may be any simple or self-intersecting shape.
func Contains(polygon []Point, p Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := polygon[j], polygon[i]
		if onSegment(a, b, p) {
			return true
		}
		// Edge straddles the horizontal line through p
		if (a.Weight > p.Weight) != (b.Weight > p.Weight) {
			x := a.CG + (p.Weight-a.Weight)*(b.CG-a.CG)/(b.Weight-a.Weight)
			if p.CG < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, p Point) bool {
	cross := (b.CG-a.CG)*(p.Weight-a.Weight) - (b.Weight-a.Weight)*(p.CG-a.CG)
	scale := math.Max(1, math.Hypot(b.CG-a.CG, b.Weight-a.Weight))
	if math.Abs(cross) > edgeTolerance*scale*scale {
		return false
	}
	return p.CG >= math.Min(a.CG, b.CG)-edgeTolerance && p.CG <= math.Max(a.CG, b.CG)+edgeTolerance &&
		p.Weight >= math.Min(a.Weight, b.Weight)-edgeTolerance && p.Weight <= math.Max(a.Weight, b.Weight)+edgeTolerance
}
