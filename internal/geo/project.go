// Package geo holds the planar geometry helpers: a local metric projection,
// building-to-street association and convex hulls for territory outlines.
package geo

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/model"
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371000.0

// Projection is a local equirectangular projection anchored at a reference
// coordinate. For municipal-scale areas (a few kilometers across) the
// distortion is negligible, and every point of a run must be projected with
// the same instance so distances stay comparable.
type Projection struct {
	lat0    float64 // radians
	lon0    float64 // radians
	cosLat0 float64
}

// NewProjection anchors a projection at the given WGS84 coordinate.
func NewProjection(lat0, lon0 float64) (*Projection, error) {
	if lat0 < -90 || lat0 > 90 {
		return nil, eris.Errorf("geo: anchor latitude %f out of range", lat0)
	}
	if lon0 < -180 || lon0 > 180 {
		return nil, eris.Errorf("geo: anchor longitude %f out of range", lon0)
	}
	latRad := lat0 * math.Pi / 180
	return &Projection{
		lat0:    latRad,
		lon0:    lon0 * math.Pi / 180,
		cosLat0: math.Cos(latRad),
	}, nil
}

// Forward projects a WGS84 coordinate into the local plane, in meters.
func (p *Projection) Forward(lat, lon float64) model.Point {
	return model.Point{
		X: earthRadius * (lon*math.Pi/180 - p.lon0) * p.cosLat0,
		Y: earthRadius * (lat*math.Pi/180 - p.lat0),
	}
}

// Inverse maps a projected point back to WGS84.
func (p *Projection) Inverse(pt model.Point) (lat, lon float64) {
	lat = (p.lat0 + pt.Y/earthRadius) * 180 / math.Pi
	lon = (p.lon0 + pt.X/(earthRadius*p.cosLat0)) * 180 / math.Pi
	return lat, lon
}

// ProjectionFor anchors a projection at the mean coordinate of the inputs.
func ProjectionFor(coords [][2]float64) (*Projection, error) {
	if len(coords) == 0 {
		return nil, eris.New("geo: no coordinates to anchor projection")
	}
	var lat, lon float64
	for _, c := range coords {
		lat += c[0]
		lon += c[1]
	}
	n := float64(len(coords))
	return NewProjection(lat/n, lon/n)
}
