package osm

// overpassResponse is the JSON envelope of an Overpass API reply.
type overpassResponse struct {
	Elements []element `json:"elements"`
}

// element is a single OSM node or way.
type element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

// assembleBuildings resolves building ways against their member nodes and
// reduces each footprint to its vertex centroid. Ways whose nodes are
// missing from the reply are skipped. Output order follows the reply.
func assembleBuildings(elements []element) []Building {
	nodes := nodeIndex(elements)

	var buildings []Building
	for _, el := range elements {
		if el.Type != "way" || el.Tags["building"] == "" {
			continue
		}

		var lat, lon float64
		resolved := 0
		for _, id := range el.Nodes {
			n, ok := nodes[id]
			if !ok {
				continue
			}
			lat += n.Lat
			lon += n.Lon
			resolved++
		}
		if resolved == 0 {
			continue
		}

		buildings = append(buildings, Building{
			ID:     el.ID,
			Lat:    lat / float64(resolved),
			Lon:    lon / float64(resolved),
			Street: el.Tags["addr:street"],
		})
	}
	return buildings
}

// assembleStreets resolves named highway ways into polylines and merges
// parts sharing a name into one street, in first-seen name order.
func assembleStreets(elements []element) []Street {
	nodes := nodeIndex(elements)

	var order []string
	paths := make(map[string][][]LatLon)

	for _, el := range elements {
		if el.Type != "way" || el.Tags["highway"] == "" {
			continue
		}
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		var path []LatLon
		for _, id := range el.Nodes {
			if n, ok := nodes[id]; ok {
				path = append(path, n)
			}
		}
		if len(path) < 2 {
			continue
		}

		if _, seen := paths[name]; !seen {
			order = append(order, name)
		}
		paths[name] = append(paths[name], path)
	}

	streets := make([]Street, 0, len(order))
	for _, name := range order {
		streets = append(streets, Street{Name: name, Paths: paths[name]})
	}
	return streets
}

func nodeIndex(elements []element) map[int64]LatLon {
	nodes := make(map[int64]LatLon)
	for _, el := range elements {
		if el.Type == "node" {
			nodes[el.ID] = LatLon{Lat: el.Lat, Lon: el.Lon}
		}
	}
	return nodes
}
