// Package osm fetches building footprints and the named street network for
// a place from the Overpass API.
package osm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Overpass API endpoint.
const DefaultBaseURL = "https://overpass-api.de/api/interpreter"

// relevantHighways are the way classes that count as deliverable streets.
var relevantHighways = []string{
	"residential", "living_street", "service", "secondary", "tertiary",
	"unclassified", "primary", "track",
}

// LatLon is a WGS84 coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Building is a building footprint reduced to its centroid.
type Building struct {
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Street string  `json:"street,omitempty"`
}

// Street is a named way, possibly in several disconnected parts.
type Street struct {
	Name  string     `json:"name"`
	Paths [][]LatLon `json:"paths"`
}

// Area bundles everything fetched for one place.
type Area struct {
	Place     string
	Buildings []Building
	Streets   []Street
}

// Client is a rate-limited Overpass API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client. An empty baseURL selects the public endpoint;
// ratePerSec caps outgoing queries (the public endpoint throttles hard).
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if ratePerSec <= 0 {
		ratePerSec = 0.5
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// FetchArea fetches buildings and streets for a place concurrently.
func (c *Client) FetchArea(ctx context.Context, place string) (*Area, error) {
	if place == "" {
		return nil, eris.New("osm: place is required")
	}

	area := &Area{Place: place}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buildings, err := c.FetchBuildings(gctx, place)
		if err != nil {
			return err
		}
		area.Buildings = buildings
		return nil
	})
	g.Go(func() error {
		streets, err := c.FetchStreets(gctx, place)
		if err != nil {
			return err
		}
		area.Streets = streets
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("fetched area",
		zap.String("place", place),
		zap.Int("buildings", len(area.Buildings)),
		zap.Int("streets", len(area.Streets)),
	)
	return area, nil
}

// FetchBuildings returns the centroids of all buildings in the place.
func (c *Client) FetchBuildings(ctx context.Context, place string) ([]Building, error) {
	ql := buildingsQL(place)
	resp, err := c.query(ctx, ql)
	if err != nil {
		return nil, err
	}
	return assembleBuildings(resp.Elements), nil
}

// FetchStreets returns the named street polylines in the place, merged by
// street name.
func (c *Client) FetchStreets(ctx context.Context, place string) ([]Street, error) {
	ql := streetsQL(place)
	resp, err := c.query(ctx, ql)
	if err != nil {
		return nil, err
	}
	return assembleStreets(resp.Elements), nil
}

func buildingsQL(place string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:90];\n")
	b.WriteString(`area["name"=` + qlQuote(place) + "]->.a;\n")
	b.WriteString(`(way["building"](area.a););` + "\n")
	b.WriteString("out body;\n>;\nout skel qt;\n")
	return b.String()
}

func streetsQL(place string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:90];\n")
	b.WriteString(`area["name"=` + qlQuote(place) + "]->.a;\n")
	b.WriteString(`(way["highway"~"^(` + strings.Join(relevantHighways, "|") + `)$"]["name"](area.a););` + "\n")
	b.WriteString("out body;\n>;\nout skel qt;\n")
	return b.String()
}

// qlQuote quotes a place name for use inside an Overpass QL filter.
func qlQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func (c *Client) query(ctx context.Context, ql string) (*overpassResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "osm: rate limit")
	}

	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "osm: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "osm: overpass request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("osm: overpass returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "osm: read response")
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "osm: parse response")
	}
	return &parsed, nil
}
