package tracker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestTracker(t *testing.T) (*Tracker, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return New(st), st
}

func testStreets() []model.Street {
	return []model.Street{
		{Name: "Zeppelinstraße", HouseCount: 12},
		{Name: "Ahornweg", HouseCount: 5},
		{Name: "Österreicher Gasse", HouseCount: 3},
	}
}

func TestSnapshot_Empty(t *testing.T) {
	tr, _ := newTestTracker(t)

	statuses, sum, err := tr.Snapshot(context.Background(), testStreets())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 0, sum.Done)
	assert.Zero(t, sum.Percent)
}

func TestSnapshot_GermanCollation(t *testing.T) {
	tr, _ := newTestTracker(t)

	statuses, _, err := tr.Snapshot(context.Background(), testStreets())
	require.NoError(t, err)

	// Ö sorts with O, not after Z.
	assert.Equal(t, "Ahornweg", statuses[0].Street)
	assert.Equal(t, "Österreicher Gasse", statuses[1].Street)
	assert.Equal(t, "Zeppelinstraße", statuses[2].Street)
}

func TestMarkDone_AndSnapshot(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.MarkDone(ctx, "Ahornweg", "Anna"))

	statuses, sum, err := tr.Snapshot(ctx, testStreets())
	require.NoError(t, err)
	assert.True(t, statuses[0].Done)
	assert.Equal(t, "Anna", statuses[0].DoneBy)
	require.NotNil(t, statuses[0].DoneAt)
	assert.Equal(t, 1, sum.Done)
	assert.InDelta(t, 100.0/3.0, sum.Percent, 1e-9)
}

func TestReopen(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.MarkDone(ctx, "Ahornweg", "Anna"))
	require.NoError(t, tr.Reopen(ctx, "Ahornweg"))

	statuses, sum, err := tr.Snapshot(ctx, testStreets())
	require.NoError(t, err)
	assert.False(t, statuses[0].Done)
	assert.Equal(t, 0, sum.Done)
}

func TestReopen_UnknownStreet(t *testing.T) {
	tr, _ := newTestTracker(t)

	err := tr.Reopen(context.Background(), "Nirgendwoweg")
	assert.Error(t, err)
}

func TestMarkDone_EmptyName(t *testing.T) {
	tr, _ := newTestTracker(t)

	assert.Error(t, tr.MarkDone(context.Background(), "", "Anna"))
	assert.Error(t, tr.Reopen(context.Background(), ""))
}

func TestSnapshot_StaleProgressRows(t *testing.T) {
	tr, st := newTestTracker(t)
	ctx := context.Background()

	// Progress for a street the current OSM list no longer has.
	require.NoError(t, st.MarkStreetDone(ctx, "Umbenannte Straße", "Clara"))
	require.NoError(t, tr.MarkDone(ctx, "Ahornweg", "Anna"))

	statuses, sum, err := tr.Snapshot(ctx, testStreets())
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	last := statuses[3]
	assert.Equal(t, "Umbenannte Straße", last.Street)
	assert.True(t, last.Stale)

	// Stale rows do not count toward completion.
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Done)
}

func TestReset(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.MarkDone(ctx, "Ahornweg", "Anna"))
	require.NoError(t, tr.MarkDone(ctx, "Zeppelinstraße", "Bernd"))

	n, err := tr.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, sum, err := tr.Snapshot(ctx, testStreets())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Done)
}
