// Package render turns a finished plan into the artifacts people actually
// use on the street: a GeoJSON feature collection, a self-contained Leaflet
// map, a KML file for navigation apps and a plain-text fairness report.
package render

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/zustellwerk/gebiet-cli/internal/geo"
	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/territory"
)

// Input bundles everything the renderers need. Buildings must parallel the
// point slice the plan was built from, and Proj must be the projection that
// produced those points so hulls can be mapped back to WGS84.
type Input struct {
	Place     string
	Buildings []model.Building
	Plan      *territory.Plan
	Proj      *geo.Projection
}

func (in Input) validate() error {
	if in.Plan == nil {
		return eris.New("render: plan is required")
	}
	if len(in.Buildings) != len(in.Plan.PointPiece) {
		return eris.Errorf("render: %d buildings do not match %d planned points",
			len(in.Buildings), len(in.Plan.PointPiece))
	}
	if in.Proj == nil {
		return eris.New("render: projection is required")
	}
	return nil
}

// courierIndex maps courier name to declaration order, which fixes colors.
func courierIndex(plan *territory.Plan) map[string]int {
	idx := make(map[string]int, len(plan.Couriers))
	for i, c := range plan.Couriers {
		idx[c.Name] = i
	}
	return idx
}

// FeatureCollection builds the GeoJSON rendition of a plan: one polygon per
// courier (the convex hull of their buildings), one marker per courier start
// and one point per building.
func FeatureCollection(in Input) (*geojson.FeatureCollection, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	idx := courierIndex(in.Plan)
	fc := &geojson.FeatureCollection{}

	for i, c := range in.Plan.Couriers {
		color := ColorFor(i)

		if hull := courierHull(in, c.Name); hull != nil {
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: hull,
				Properties: map[string]any{
					"kind":    "territory",
					"courier": c.Name,
					"color":   color,
					"load":    c.Load,
				},
			})
		}

		lat, lon := in.Proj.Inverse(c.Start)
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{lon, lat}),
			Properties: map[string]any{
				"kind":    "start",
				"courier": c.Name,
				"color":   color,
			},
		})
	}

	for i, b := range in.Buildings {
		owner := in.Plan.OwnerOfPoint(i)
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{b.Lon, b.Lat}),
			Properties: map[string]any{
				"kind":    "building",
				"id":      b.ID,
				"street":  b.Street,
				"piece":   in.Plan.PointPiece[i],
				"courier": owner,
				"color":   ColorFor(idx[owner]),
			},
		})
	}

	return fc, nil
}

// courierHull computes the courier's territory outline in WGS84, or nil when
// the courier owns fewer than three distinct buildings.
func courierHull(in Input, courier string) *geom.Polygon {
	var pts []model.Point
	for i := range in.Buildings {
		if in.Plan.OwnerOfPoint(i) == courier {
			pts = append(pts, in.Buildings[i].Point)
		}
	}

	hull := geo.ConvexHull(pts)
	if len(hull) < 3 {
		return nil
	}

	// GeoJSON rings close explicitly.
	flat := make([]float64, 0, (len(hull)+1)*2)
	for _, p := range hull {
		lat, lon := in.Proj.Inverse(p)
		flat = append(flat, lon, lat)
	}
	flat = append(flat, flat[0], flat[1])

	poly := geom.NewPolygon(geom.XY)
	if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
		return nil
	}
	return poly
}

// WriteGeoJSON renders the plan and writes it to path.
func WriteGeoJSON(path string, in Input) error {
	fc, err := FeatureCollection(in)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "render: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}
	return nil
}
