package shapeload

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func writePointShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "buildings.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 40)}))

	points := []struct {
		x, y float64
		name string
	}{
		{12.001, 48.001, "Hauptstraße"},
		{12.002, 48.002, ""},
	}
	for i, p := range points {
		w.Write(&shp.Point{X: p.x, Y: p.y})
		require.NoError(t, w.WriteAttribute(i, 0, p.name))
	}
	w.Close()
	return path
}

func writeLineShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "streets.shp")

	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 40)}))

	lines := []struct {
		pts  [][]shp.Point
		name string
	}{
		{[][]shp.Point{{{X: 12.0, Y: 48.0}, {X: 12.001, Y: 48.001}}}, "Hauptstraße"},
		{[][]shp.Point{{{X: 12.001, Y: 48.001}, {X: 12.002, Y: 48.002}}}, "Hauptstraße"},
		{[][]shp.Point{{{X: 12.0, Y: 48.0}, {X: 12.002, Y: 48.0}}}, "Kirchweg"},
		{[][]shp.Point{{{X: 12.0, Y: 48.1}, {X: 12.1, Y: 48.1}}}, ""},
	}
	for i, l := range lines {
		w.Write(shp.NewPolyLine(l.pts))
		require.NoError(t, w.WriteAttribute(i, 0, l.name))
	}
	w.Close()
	return path
}

func TestLoadBuildings(t *testing.T) {
	path := writePointShapefile(t, t.TempDir())

	buildings, err := LoadBuildings(path)
	require.NoError(t, err)
	require.Len(t, buildings, 2)

	assert.InDelta(t, 48.001, buildings[0].Lat, 1e-9)
	assert.InDelta(t, 12.001, buildings[0].Lon, 1e-9)
	assert.Equal(t, "Hauptstraße", buildings[0].Street)
	assert.Empty(t, buildings[1].Street)
	assert.NotEqual(t, buildings[0].ID, buildings[1].ID)
}

func TestLoadStreets(t *testing.T) {
	path := writeLineShapefile(t, t.TempDir())

	streets, err := LoadStreets(path)
	require.NoError(t, err)
	require.Len(t, streets, 2, "unnamed lines are dropped, named parts merge")

	assert.Equal(t, "Hauptstraße", streets[0].Name)
	assert.Len(t, streets[0].Paths, 2)
	assert.Equal(t, "Kirchweg", streets[1].Name)
	assert.Len(t, streets[1].Paths, 1)
}

func TestLoadBuildings_MissingFile(t *testing.T) {
	_, err := LoadBuildings(filepath.Join(t.TempDir(), "missing.shp"))
	assert.Error(t, err)
}

func TestLoadStreets_OnlyUnnamed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unnamed.shp")

	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 40)}))
	w.Write(shp.NewPolyLine([][]shp.Point{{{X: 12.0, Y: 48.0}, {X: 12.1, Y: 48.1}}}))
	require.NoError(t, w.WriteAttribute(0, 0, ""))
	w.Close()

	_, err = LoadStreets(path)
	assert.Error(t, err)
}

func TestVertexCentroid(t *testing.T) {
	lat, lon, ok := vertexCentroid([]shp.Point{
		{X: 12.0, Y: 48.0},
		{X: 12.002, Y: 48.0},
		{X: 12.002, Y: 48.002},
		{X: 12.0, Y: 48.002},
	})
	require.True(t, ok)
	assert.InDelta(t, 48.001, lat, 1e-9)
	assert.InDelta(t, 12.001, lon, 1e-9)

	_, _, ok = vertexCentroid(nil)
	assert.False(t, ok)
}
