package geo

import (
	"math"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// NearestStreet returns the index of the street whose polyline passes
// closest to p, plus the distance in meters. ok is false when streets is
// empty or none has geometry. Ties go to the earlier street.
func NearestStreet(p model.Point, streets []model.Street) (idx int, dist float64, ok bool) {
	idx = -1
	dist = math.Inf(1)
	for i, s := range streets {
		for _, path := range s.Paths {
			for j := 1; j < len(path); j++ {
				if d := pointSegmentDist(p, path[j-1], path[j]); d < dist {
					dist = d
					idx = i
				}
			}
			// A single-vertex path still counts as geometry.
			if len(path) == 1 {
				if d := p.DistanceTo(path[0]); d < dist {
					dist = d
					idx = i
				}
			}
		}
	}
	return idx, dist, idx >= 0
}

// AssociateStreets joins every building to its nearest street and fills in
// the per-street house counts. Buildings without an address tag inherit the
// nearest street's name. The counts are purely spatial, matching how the
// progress tracker measures per-street workload.
func AssociateStreets(buildings []model.Building, streets []model.Street) {
	for i := range streets {
		streets[i].HouseCount = 0
	}
	for i := range buildings {
		idx, _, ok := NearestStreet(buildings[i].Point, streets)
		if !ok {
			continue
		}
		streets[idx].HouseCount++
		if buildings[i].Street == "" {
			buildings[i].Street = streets[idx].Name
		}
	}
}

// pointSegmentDist returns the distance from p to the segment ab.
func pointSegmentDist(p, a, b model.Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.DistanceTo(model.Point{X: a.X + t*abx, Y: a.Y + t*aby})
}
