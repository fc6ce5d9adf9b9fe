package territory

import (
	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// DefaultMultiplier is the number of pieces generated per courier. Six
// pieces per courier keeps pieces small relative to a courier's final load
// while leaving the greedy loop enough granularity to balance.
const DefaultMultiplier = 6

// Options tunes a plan run. The zero value uses Ward clustering with the
// default multiplier and anchor blend.
type Options struct {
	Multiplier int
	Blend      float64
	Clusterer  Clusterer
}

// Plan is the finished partition: pieces, their owners and the transitive
// point ownership.
type Plan struct {
	Pieces []Piece
	// PointPiece maps point index to piece ID.
	PointPiece []int
	// Owners maps piece ID to courier name.
	Owners map[int]string
	// Couriers holds the final territories in declaration order.
	Couriers []*Territory
}

// Build partitions the points into couriers' territories. The piece count
// is fixed at len(starts) * Multiplier, independent of the courier count's
// eventual loads; Build fails loudly when fewer points than pieces exist
// or no couriers are configured, rather than producing a partial result.
func Build(points []model.Point, starts []Start, opts Options) (*Plan, error) {
	if len(starts) == 0 {
		return nil, eris.New("territory: no couriers configured")
	}
	if len(points) == 0 {
		return nil, eris.New("territory: no points to partition")
	}

	mult := opts.Multiplier
	if mult <= 0 {
		mult = DefaultMultiplier
	}
	pieceCount := len(starts) * mult
	if len(points) < pieceCount {
		return nil, eris.Errorf(
			"territory: %d points cannot fill %d pieces (%d couriers x %d); lower the multiplier",
			len(points), pieceCount, len(starts), mult,
		)
	}

	clusterer := opts.Clusterer
	if clusterer == nil {
		clusterer = WardClusterer{}
	}

	groups, err := clusterer.Partition(points, pieceCount)
	if err != nil {
		return nil, err
	}

	pieces, labels, err := BuildPieces(points, groups)
	if err != nil {
		return nil, err
	}

	st, err := NewState(starts)
	if err != nil {
		return nil, err
	}

	assigner := &Assigner{Blend: opts.Blend}
	if err := assigner.Assign(st, pieces); err != nil {
		return nil, err
	}

	owners := make(map[int]string, len(pieces))
	for _, c := range st.Couriers {
		for _, id := range c.PieceIDs {
			owners[id] = c.Name
		}
	}

	return &Plan{
		Pieces:     pieces,
		PointPiece: labels,
		Owners:     owners,
		Couriers:   st.Couriers,
	}, nil
}

// OwnerOfPoint returns the courier owning the point at index i.
func (p *Plan) OwnerOfPoint(i int) string {
	return p.Owners[p.PointPiece[i]]
}

// Loads returns the final building count per courier.
func (p *Plan) Loads() map[string]int {
	loads := make(map[string]int, len(p.Couriers))
	for _, c := range p.Couriers {
		loads[c.Name] = c.Load
	}
	return loads
}

// MaxPieceSize returns the largest piece size of the run, which bounds the
// permissible load imbalance between any two couriers.
func (p *Plan) MaxPieceSize() int {
	max := 0
	for _, piece := range p.Pieces {
		if piece.Size > max {
			max = piece.Size
		}
	}
	return max
}

// Summary flattens the plan for persistence. buildingIDs must parallel the
// point slice the plan was built from.
func (p *Plan) Summary(multiplier int, buildingIDs []int64) model.PlanSummary {
	sum := model.PlanSummary{
		TotalBuildings: len(p.PointPiece),
		PieceCount:     len(p.Pieces),
		Multiplier:     multiplier,
		Owners:         p.Owners,
	}
	for _, c := range p.Couriers {
		sum.Couriers = append(sum.Couriers, model.CourierLoad{
			Name:     c.Name,
			Load:     c.Load,
			PieceIDs: c.PieceIDs,
		})
	}
	if len(buildingIDs) == len(p.PointPiece) {
		sum.BuildingOwners = make(map[int64]string, len(buildingIDs))
		for i, id := range buildingIDs {
			sum.BuildingOwners[id] = p.OwnerOfPoint(i)
		}
	}
	return sum
}
