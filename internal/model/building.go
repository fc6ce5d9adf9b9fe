package model

// Building is one delivery target: the centroid of a building footprint.
type Building struct {
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Point  Point   `json:"point"`
	Street string  `json:"street,omitempty"`
}

// Street is a named way with one or more polyline parts in projected
// coordinates, plus the number of buildings associated with it.
type Street struct {
	Name       string         `json:"name"`
	Paths      [][]Point      `json:"paths"`
	LatLon     [][][2]float64 `json:"latlon,omitempty"` // [lat, lon] vertices for rendering
	HouseCount int            `json:"house_count"`
}
