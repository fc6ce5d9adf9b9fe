// Package tracker maintains the street completion state shared by all
// volunteers: which streets of a place are fully worked, by whom, and when.
// Street identity is the OSM street name; the backing store is the source
// of truth so concurrent workers see each other's progress.
package tracker

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/store"
)

// Status is one street's merged view: OSM data plus completion state.
type Status struct {
	Street     string     `json:"street"`
	HouseCount int        `json:"house_count"`
	Done       bool       `json:"done"`
	DoneBy     string     `json:"done_by,omitempty"`
	DoneAt     *time.Time `json:"done_at,omitempty"`
	// Stale marks progress rows whose street no longer appears in the
	// current OSM street list, usually after a renamed or deleted way.
	Stale bool `json:"stale,omitempty"`
}

// Summary aggregates a snapshot.
type Summary struct {
	Total   int     `json:"total"`
	Done    int     `json:"done"`
	Percent float64 `json:"percent"`
}

// Tracker merges a place's street list with the stored completion state.
type Tracker struct {
	store    store.Store
	collator *collate.Collator
	log      *zap.Logger
}

func New(st store.Store) *Tracker {
	return &Tracker{
		store:    st,
		collator: collate.New(language.German),
		log:      zap.L().With(zap.String("component", "tracker")),
	}
}

// Snapshot merges the given street list with stored progress. Streets are
// sorted with German collation so umlauts and ß land where a street
// directory would put them. Stored rows without a matching street are
// appended at the end and flagged stale.
func (t *Tracker) Snapshot(ctx context.Context, streets []model.Street) ([]Status, Summary, error) {
	progress, err := t.store.ListProgress(ctx)
	if err != nil {
		return nil, Summary{}, eris.Wrap(err, "tracker: load progress")
	}

	byStreet := make(map[string]model.ProgressEntry, len(progress))
	for _, e := range progress {
		byStreet[e.Street] = e
	}

	known := make(map[string]bool, len(streets))
	statuses := make([]Status, 0, len(streets))
	for _, s := range streets {
		known[s.Name] = true
		st := Status{Street: s.Name, HouseCount: s.HouseCount}
		if e, ok := byStreet[s.Name]; ok {
			st.Done = e.Done
			st.DoneBy = e.DoneBy
			st.DoneAt = e.DoneAt
		}
		statuses = append(statuses, st)
	}

	var stale []Status
	for _, e := range progress {
		if known[e.Street] {
			continue
		}
		stale = append(stale, Status{
			Street: e.Street,
			Done:   e.Done,
			DoneBy: e.DoneBy,
			DoneAt: e.DoneAt,
			Stale:  true,
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		return t.collator.CompareString(statuses[i].Street, statuses[j].Street) < 0
	})
	sort.SliceStable(stale, func(i, j int) bool {
		return t.collator.CompareString(stale[i].Street, stale[j].Street) < 0
	})
	statuses = append(statuses, stale...)

	return statuses, summarize(statuses), nil
}

// MarkDone records a street as fully worked by the named volunteer.
func (t *Tracker) MarkDone(ctx context.Context, street, by string) error {
	if street == "" {
		return eris.New("tracker: street name is required")
	}
	if err := t.store.MarkStreetDone(ctx, street, by); err != nil {
		return err
	}
	t.log.Info("street marked done", zap.String("street", street), zap.String("by", by))
	return nil
}

// Reopen clears a street's done mark, e.g. after an accidental tap.
func (t *Tracker) Reopen(ctx context.Context, street string) error {
	if street == "" {
		return eris.New("tracker: street name is required")
	}
	if err := t.store.MarkStreetOpen(ctx, street); err != nil {
		return err
	}
	t.log.Info("street reopened", zap.String("street", street))
	return nil
}

// Reset clears all progress, returning the number of rows removed.
func (t *Tracker) Reset(ctx context.Context) (int, error) {
	n, err := t.store.ResetProgress(ctx)
	if err != nil {
		return 0, err
	}
	t.log.Warn("progress reset", zap.Int("rows", n))
	return n, nil
}

func summarize(statuses []Status) Summary {
	s := Summary{}
	for _, st := range statuses {
		if st.Stale {
			continue
		}
		s.Total++
		if st.Done {
			s.Done++
		}
	}
	if s.Total > 0 {
		s.Percent = 100 * float64(s.Done) / float64(s.Total)
	}
	return s
}
