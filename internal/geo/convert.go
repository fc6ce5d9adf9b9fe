package geo

import (
	"github.com/rotisserie/eris"

	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/osm"
)

// ProjectArea anchors a projection at the mean building coordinate and
// projects buildings and streets into the local plane. The returned
// projection must be reused for anything else belonging to this run, such
// as courier start coordinates.
func ProjectArea(buildings []osm.Building, streets []osm.Street) ([]model.Building, []model.Street, *Projection, error) {
	if len(buildings) == 0 {
		return nil, nil, nil, eris.New("geo: no buildings to project")
	}

	coords := make([][2]float64, len(buildings))
	for i, b := range buildings {
		coords[i] = [2]float64{b.Lat, b.Lon}
	}
	proj, err := ProjectionFor(coords)
	if err != nil {
		return nil, nil, nil, err
	}

	mb := make([]model.Building, len(buildings))
	for i, b := range buildings {
		mb[i] = model.Building{
			ID:     b.ID,
			Lat:    b.Lat,
			Lon:    b.Lon,
			Point:  proj.Forward(b.Lat, b.Lon),
			Street: b.Street,
		}
	}

	ms := make([]model.Street, len(streets))
	for i, s := range streets {
		ms[i].Name = s.Name
		for _, path := range s.Paths {
			pts := make([]model.Point, len(path))
			raw := make([][2]float64, len(path))
			for j, ll := range path {
				pts[j] = proj.Forward(ll.Lat, ll.Lon)
				raw[j] = [2]float64{ll.Lat, ll.Lon}
			}
			ms[i].Paths = append(ms[i].Paths, pts)
			ms[i].LatLon = append(ms[i].LatLon, raw)
		}
	}

	return mb, ms, proj, nil
}
