package model

import "time"

// CourierLoad is one courier's share of a finished plan.
type CourierLoad struct {
	Name     string `json:"name"`
	Load     int    `json:"load"`
	PieceIDs []int  `json:"piece_ids"`
}

// PlanSummary is the persisted outcome of a territory run: which courier
// owns which pieces and how many buildings each ended up with.
type PlanSummary struct {
	TotalBuildings int           `json:"total_buildings"`
	PieceCount     int           `json:"piece_count"`
	Multiplier     int           `json:"multiplier"`
	Couriers       []CourierLoad `json:"couriers"`
	// Owners maps piece ID to courier name. Every piece has exactly one owner.
	Owners map[int]string `json:"owners"`
	// BuildingOwners maps building ID to courier name, induced transitively
	// through piece membership.
	BuildingOwners map[int64]string `json:"building_owners,omitempty"`
}

// PlanRecord is a stored plan run.
type PlanRecord struct {
	ID        string      `json:"id"`
	Place     string      `json:"place"`
	Summary   PlanSummary `json:"summary"`
	CreatedAt time.Time   `json:"created_at"`
}

// ProgressEntry is the completion state of one named street.
type ProgressEntry struct {
	Street string     `json:"street"`
	Done   bool       `json:"done"`
	DoneBy string     `json:"done_by,omitempty"`
	DoneAt *time.Time `json:"done_at,omitempty"`
}
