// Package shapeload reads buildings and streets from local shapefiles, the
// offline alternative to the Overpass client. Coordinates are expected in
// WGS84 (EPSG:4326), the usual export of QGIS and municipal open-data
// portals.
package shapeload

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zustellwerk/gebiet-cli/internal/osm"
)

// nameFields are the attribute names tried, in order, when looking for a
// street name on a record.
var nameFields = []string{"name", "street", "strasse", "str_name"}

// LoadBuildings reads point or polygon records as buildings. Polygons are
// reduced to their vertex centroid, matching the Overpass path.
func LoadBuildings(path string) ([]osm.Building, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapeload: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := indexFields(reader)

	var buildings []osm.Building
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		var lat, lon float64
		switch s := shape.(type) {
		case *shp.Point:
			lat, lon = s.Y, s.X
		case *shp.Polygon:
			var ok bool
			lat, lon, ok = vertexCentroid(s.Points)
			if !ok {
				skipped++
				continue
			}
		default:
			skipped++
			continue
		}

		buildings = append(buildings, osm.Building{
			ID:     int64(n) + 1,
			Lat:    lat,
			Lon:    lon,
			Street: lookupName(reader, fieldIdx),
		})
	}

	if skipped > 0 {
		zap.L().Debug("shapeload: skipped building records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(buildings) == 0 {
		return nil, eris.Errorf("shapeload: no usable building records in %s", path)
	}
	return buildings, nil
}

// LoadStreets reads polyline records as streets. Parts sharing a name merge
// into one street, in first-seen order; unnamed records are dropped.
func LoadStreets(path string) ([]osm.Street, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapeload: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := indexFields(reader)

	var order []string
	paths := make(map[string][][]osm.LatLon)
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		pl, ok := shape.(*shp.PolyLine)
		if !ok {
			skipped++
			continue
		}
		name := lookupName(reader, fieldIdx)
		if name == "" {
			skipped++
			continue
		}

		for i := int32(0); i < pl.NumParts; i++ {
			start := pl.Parts[i]
			end := int32(len(pl.Points))
			if i+1 < pl.NumParts {
				end = pl.Parts[i+1]
			}

			part := make([]osm.LatLon, 0, end-start)
			for j := start; j < end; j++ {
				part = append(part, osm.LatLon{Lat: pl.Points[j].Y, Lon: pl.Points[j].X})
			}
			if len(part) < 2 {
				continue
			}
			if _, seen := paths[name]; !seen {
				order = append(order, name)
			}
			paths[name] = append(paths[name], part)
		}
	}

	if skipped > 0 {
		zap.L().Debug("shapeload: skipped street records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	streets := make([]osm.Street, 0, len(order))
	for _, name := range order {
		streets = append(streets, osm.Street{Name: name, Paths: paths[name]})
	}
	if len(streets) == 0 {
		return nil, eris.Errorf("shapeload: no named street records in %s", path)
	}
	return streets, nil
}

// indexFields maps lowercased attribute names to their column index.
func indexFields(reader *shp.Reader) map[string]int {
	fields := reader.Fields()
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		idx[strings.ToLower(name)] = i
	}
	return idx
}

func lookupName(reader *shp.Reader, fieldIdx map[string]int) string {
	for _, candidate := range nameFields {
		i, ok := fieldIdx[candidate]
		if !ok {
			continue
		}
		val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		if val != "" {
			return val
		}
	}
	return ""
}

func vertexCentroid(points []shp.Point) (lat, lon float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	for _, p := range points {
		lat += p.Y
		lon += p.X
	}
	n := float64(len(points))
	return lat / n, lon / n, true
}
