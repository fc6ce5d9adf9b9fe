package store

import (
	"context"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// PlanFilter specifies criteria for listing stored plans.
type PlanFilter struct {
	Place string `json:"place,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Store is the shared backing store: persisted territory plans plus the
// street completion state that all volunteers read and write.
type Store interface {
	// Plans
	SavePlan(ctx context.Context, place string, summary model.PlanSummary) (*model.PlanRecord, error)
	GetPlan(ctx context.Context, id string) (*model.PlanRecord, error)
	// LatestPlan returns the most recent plan for a place, or nil when
	// none has been stored yet.
	LatestPlan(ctx context.Context, place string) (*model.PlanRecord, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]model.PlanRecord, error)

	// Street progress
	MarkStreetDone(ctx context.Context, street, by string) error
	MarkStreetOpen(ctx context.Context, street string) error
	ListProgress(ctx context.Context) ([]model.ProgressEntry, error)
	ResetProgress(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
