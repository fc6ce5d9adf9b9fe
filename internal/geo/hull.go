package geo

import (
	"sort"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// ConvexHull returns the convex hull of the points in counter-clockwise
// order using Andrew's monotone chain. Fewer than three distinct points
// yield the deduplicated input; a courier's territory can then be rendered
// as markers instead of a polygon.
func ConvexHull(points []model.Point) []model.Point {
	pts := make([]model.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Deduplicate after sorting.
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq

	if len(pts) < 3 {
		out := make([]model.Point, len(pts))
		copy(out, pts)
		return out
	}

	var lower, upper []model.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// cross returns the z-component of (b-a) x (c-a): positive for a left turn.
func cross(a, b, c model.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
