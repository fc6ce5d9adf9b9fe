package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zustellwerk/gebiet-cli/internal/config"
	"github.com/zustellwerk/gebiet-cli/internal/store"
)

// writeBuildingShapefile lays out a small grid of building points.
func writeBuildingShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "buildings.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 40)}))

	i := 0
	for col := 0; col < 4; col++ {
		for row := 0; row < 2; row++ {
			w.Write(&shp.Point{
				X: 12.0 + float64(col)*0.001,
				Y: 48.0 + float64(row)*0.001,
			})
			require.NoError(t, w.WriteAttribute(i, 0, "Hauptstraße"))
			i++
		}
	}
	w.Close()
	return path
}

func TestPlanCommand_ShapefileSource(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	rosterPath := filepath.Join(dir, "zusteller.yaml")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`
couriers:
  - name: Anna
    lat: 48.0
    lon: 12.0
  - name: Bernd
    lat: 48.001
    lon: 12.003
`), 0o644))

	cfg = &config.Config{
		Place:  "Testdorf",
		Roster: rosterPath,
		Store:  config.StoreConfig{Driver: "sqlite", Path: filepath.Join(dir, "test.db")},
		Overpass: config.OverpassConfig{
			BaseURL: "http://127.0.0.1:1", // must not be contacted
		},
		Territory: config.TerritoryConfig{Multiplier: 2, AnchorBlend: 0.9},
		Output:    config.OutputConfig{Dir: outDir},
	}

	planPlace = ""
	planOut = ""
	planMultiplier = 0
	planBuildingsSHP = writeBuildingShapefile(t, dir)
	planStreetsSHP = ""
	planNoSave = false
	t.Cleanup(func() {
		planBuildingsSHP = ""
		planNoSave = false
	})

	var out bytes.Buffer
	planCmd.SetOut(&out)
	planCmd.SetContext(context.Background())

	require.NoError(t, planCmd.RunE(planCmd, nil))

	for _, name := range []string{"plan.geojson", "plan.html", "plan.kml", "report.txt"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, out.String(), "Anna")
	assert.Contains(t, out.String(), "Plan gespeichert")

	// The plan landed in the store.
	st, err := store.NewSQLite(cfg.Store.Path)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	rec, err := st.LatestPlan(context.Background(), "Testdorf")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 8, rec.Summary.TotalBuildings)
	assert.Equal(t, 4, rec.Summary.PieceCount)
	assert.Len(t, rec.Summary.Couriers, 2)
}

func TestPlanCommand_InvalidConfig(t *testing.T) {
	cfg = &config.Config{
		Store:     config.StoreConfig{Driver: "sqlite", Path: "x.db"},
		Territory: config.TerritoryConfig{Multiplier: 6, AnchorBlend: 0.9},
	}
	planPlace = ""

	planCmd.SetContext(context.Background())
	err := planCmd.RunE(planCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "place is required")
}
