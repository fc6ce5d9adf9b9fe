package territory

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// DefaultBlend is the weight kept on a courier's previous anchor when a new
// piece is acquired. The remaining 0.1 pulls the anchor toward the piece
// centroid, so the next nearest-piece search continues expanding from newly
// claimed ground instead of snapping back to the start point.
const DefaultBlend = 0.9

// Start is a courier's name and projected starting coordinate. The slice
// order passed to NewState is the tie-break order for equal loads.
type Start struct {
	Name string
	At   model.Point
}

// Territory is the mutable per-courier assignment state: the drifting
// anchor, the accumulated load and the owned pieces in acquisition order.
type Territory struct {
	Name     string      `json:"name"`
	Start    model.Point `json:"start"`
	Anchor   model.Point `json:"anchor"`
	Load     int         `json:"load"`
	PieceIDs []int       `json:"piece_ids"`
}

// State carries all courier territories through the assignment loop. It is
// the only mutable state of the assigner; there are no package globals.
type State struct {
	Couriers []*Territory
}

// NewState initializes one territory per start with zero load and the
// anchor at the start coordinate.
func NewState(starts []Start) (*State, error) {
	if len(starts) == 0 {
		return nil, eris.New("territory: no couriers to assign to")
	}

	st := &State{Couriers: make([]*Territory, len(starts))}
	for i, s := range starts {
		st.Couriers[i] = &Territory{
			Name:   s.Name,
			Start:  s.At,
			Anchor: s.At,
		}
	}
	return st, nil
}

// leastLoaded returns the courier with the strictly smallest load. Ties go
// to the earliest-declared courier.
func (st *State) leastLoaded() *Territory {
	best := st.Couriers[0]
	for _, c := range st.Couriers[1:] {
		if c.Load < best.Load {
			best = c
		}
	}
	return best
}

// Assigner distributes pieces over courier territories.
type Assigner struct {
	// Blend is the anchor weight kept on the old position, in (0, 1).
	// Zero means DefaultBlend.
	Blend float64
}

// Assign gives every piece to exactly one courier. Each round the globally
// least-loaded courier receives the unassigned piece nearest to its anchor
// (ties: lowest piece ID, which is the lowest slice index). The loop runs
// exactly len(pieces) times.
//
// Fairness: because the least-loaded courier always picks next, final loads
// differ by at most the size of the largest single piece.
func (a *Assigner) Assign(st *State, pieces []Piece) error {
	if st == nil || len(st.Couriers) == 0 {
		return eris.New("territory: no couriers to assign to")
	}

	blend := a.Blend
	if blend == 0 {
		blend = DefaultBlend
	}
	if blend < 0 || blend >= 1 {
		return eris.Errorf("territory: anchor blend %f out of range (0, 1)", blend)
	}

	assigned := make([]bool, len(pieces))
	for remaining := len(pieces); remaining > 0; remaining-- {
		c := st.leastLoaded()

		best := -1
		bestDist := math.Inf(1)
		for i := range pieces {
			if assigned[i] {
				continue
			}
			if d := pieces[i].Centroid.DistanceTo(c.Anchor); d < bestDist {
				bestDist = d
				best = i
			}
		}

		p := pieces[best]
		assigned[best] = true
		c.PieceIDs = append(c.PieceIDs, p.ID)
		c.Load += p.Size
		c.Anchor = c.Anchor.Blend(p.Centroid, blend)
	}
	return nil
}
