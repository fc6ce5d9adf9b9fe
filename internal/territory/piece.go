package territory

import (
	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// Piece is a micro-cluster: a small, spatially compact group of points
// treated as an atomic unit during assignment. A piece is never split
// between two couriers.
type Piece struct {
	ID       int         `json:"id"`
	Centroid model.Point `json:"centroid"`
	Size     int         `json:"size"`
}

// BuildPieces derives pieces from a clustering result. Piece IDs follow the
// group order, so they are stable for a given input. The labels return value
// maps each point index to its piece ID.
func BuildPieces(points []model.Point, groups [][]int) (pieces []Piece, labels []int, err error) {
	labels = make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	pieces = make([]Piece, 0, len(groups))
	for id, group := range groups {
		if len(group) == 0 {
			return nil, nil, eris.Errorf("territory: cluster %d is empty", id)
		}

		var cx, cy float64
		for _, idx := range group {
			if idx < 0 || idx >= len(points) {
				return nil, nil, eris.Errorf("territory: cluster %d references point %d out of range", id, idx)
			}
			if labels[idx] != -1 {
				return nil, nil, eris.Errorf("territory: point %d in clusters %d and %d", idx, labels[idx], id)
			}
			labels[idx] = id
			cx += points[idx].X
			cy += points[idx].Y
		}

		n := float64(len(group))
		pieces = append(pieces, Piece{
			ID:       id,
			Centroid: model.Point{X: cx / n, Y: cy / n},
			Size:     len(group),
		})
	}

	for i, l := range labels {
		if l == -1 {
			return nil, nil, eris.Errorf("territory: point %d not covered by any cluster", i)
		}
	}
	return pieces, labels, nil
}
