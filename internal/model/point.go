package model

import "math"

// Point is a position in the run's planar projection, in meters.
// All points of one run share a single projection (see geo.Projection).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to q in meters.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Blend returns the weighted mix w*p + (1-w)*q.
func (p Point) Blend(q Point, w float64) Point {
	return Point{
		X: p.X*w + q.X*(1-w),
		Y: p.Y*w + q.Y*(1-w),
	}
}
