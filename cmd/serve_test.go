package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zustellwerk/gebiet-cli/internal/config"
	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/store"
	"github.com/zustellwerk/gebiet-cli/internal/tracker"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestRouter(t *testing.T, streets []model.Street) (http.Handler, store.Store) {
	t.Helper()
	cfg = &config.Config{Place: "Testdorf"}
	cfg.Server.AdminToken = "geheim"

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	return newRouter(st, tracker.New(st), streets), st
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Plan_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_Plan_Latest(t *testing.T) {
	r, st := newTestRouter(t, nil)

	_, err := st.SavePlan(context.Background(), "Testdorf", model.PlanSummary{TotalBuildings: 42})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var rec model.PlanRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "Testdorf", rec.Place)
	assert.Equal(t, 42, rec.Summary.TotalBuildings)
}

func TestRouter_MarkDoneAndProgress(t *testing.T) {
	streets := []model.Street{
		{Name: "Ahornweg", HouseCount: 5},
		{Name: "Hauptstraße", HouseCount: 12},
	}
	r, _ := newTestRouter(t, streets)

	body := bytes.NewReader([]byte(`{"by":"Anna"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/streets/Ahornweg/done", body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Streets []tracker.Status `json:"streets"`
		Summary tracker.Summary  `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Streets, 2)
	assert.True(t, resp.Streets[0].Done)
	assert.Equal(t, "Anna", resp.Streets[0].DoneBy)
	assert.Equal(t, 1, resp.Summary.Done)
	assert.Equal(t, 2, resp.Summary.Total)
}

func TestRouter_EscapedStreetName(t *testing.T) {
	r, st := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/streets/Hauptstra%C3%9Fe/done", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	entries, err := st.ListProgress(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hauptstraße", entries[0].Street)
}

func TestRouter_Undo_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/streets/Nirgendwoweg/undo", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_AdminReset(t *testing.T) {
	r, st := newTestRouter(t, nil)

	require.NoError(t, st.MarkStreetDone(context.Background(), "Ahornweg", "Anna"))

	// Without token.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// With token.
	req = httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
	req.Header.Set("X-Admin-Token", "geheim")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["cleared"])
}

func TestRouter_ProgressWithoutStreetList(t *testing.T) {
	r, st := newTestRouter(t, nil)

	require.NoError(t, st.MarkStreetDone(context.Background(), "Ahornweg", "Anna"))

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Streets []model.ProgressEntry `json:"streets"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Streets, 1)
	assert.Equal(t, "Ahornweg", resp.Streets[0].Street)
}
