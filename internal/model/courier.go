package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Courier is a volunteer with a fixed starting location. The declaration
// order of couriers in the roster file is significant: it is the tie-break
// order used when several couriers carry the same load.
type Courier struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// Roster is the ordered set of couriers for a run.
type Roster struct {
	Couriers []Courier `yaml:"couriers"`
}

// LoadRoster reads and validates a courier roster from a YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", path)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "roster: parse %s", path)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks that the roster is non-empty, names are unique and
// coordinates are plausible WGS84 values.
func (r *Roster) Validate() error {
	if len(r.Couriers) == 0 {
		return eris.New("roster: no couriers configured")
	}

	seen := make(map[string]bool, len(r.Couriers))
	for _, c := range r.Couriers {
		if c.Name == "" {
			return eris.New("roster: courier with empty name")
		}
		if seen[c.Name] {
			return eris.Errorf("roster: duplicate courier %q", c.Name)
		}
		seen[c.Name] = true

		if c.Lat < -90 || c.Lat > 90 {
			return eris.Errorf("roster: courier %q latitude %f out of range", c.Name, c.Lat)
		}
		if c.Lon < -180 || c.Lon > 180 {
			return eris.Errorf("roster: courier %q longitude %f out of range", c.Name, c.Lon)
		}
	}
	return nil
}

// Names returns the courier names in declaration order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.Couriers))
	for i, c := range r.Couriers {
		names[i] = c.Name
	}
	return names
}
