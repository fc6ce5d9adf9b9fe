package render

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// KML output targets navigation apps (Organic Maps, Google Earth). One
// folder per courier with their start, territory outline and buildings.

type kml struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name    string      `xml:"name"`
	Styles  []kmlStyle  `xml:"Style"`
	Folders []kmlFolder `xml:"Folder"`
}

type kmlStyle struct {
	ID        string        `xml:"id,attr"`
	IconStyle *kmlColor     `xml:"IconStyle,omitempty"`
	LineStyle *kmlLineStyle `xml:"LineStyle,omitempty"`
	PolyStyle *kmlPolyStyle `xml:"PolyStyle,omitempty"`
}

type kmlColor struct {
	Color string `xml:"color"`
}

type kmlLineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width"`
}

type kmlPolyStyle struct {
	Color string `xml:"color"`
	Fill  int    `xml:"fill"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name     string      `xml:"name"`
	StyleURL string      `xml:"styleUrl"`
	Point    *kmlPoint   `xml:"Point,omitempty"`
	Polygon  *kmlPolygon `xml:"Polygon,omitempty"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Coordinates string `xml:"outerBoundaryIs>LinearRing>coordinates"`
}

// kmlColorFor converts a #rrggbb palette color to KML's aabbggrr order.
func kmlColorFor(hex string, alpha string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return alpha + "ffffff"
	}
	return alpha + hex[4:6] + hex[2:4] + hex[0:2]
}

// WriteKML renders the plan as a KML file.
func WriteKML(path string, in Input) error {
	if err := in.validate(); err != nil {
		return err
	}

	doc := kmlDocument{Name: "Gebietsplan " + in.Place}

	for i, c := range in.Plan.Couriers {
		color := ColorFor(i)
		styleID := fmt.Sprintf("courier%d", i)
		doc.Styles = append(doc.Styles,
			kmlStyle{
				ID:        styleID,
				IconStyle: &kmlColor{Color: kmlColorFor(color, "ff")},
				LineStyle: &kmlLineStyle{Color: kmlColorFor(color, "ff"), Width: 2},
				PolyStyle: &kmlPolyStyle{Color: kmlColorFor(color, "30"), Fill: 1},
			},
		)

		folder := kmlFolder{Name: fmt.Sprintf("%s (%d)", c.Name, c.Load)}

		lat, lon := in.Proj.Inverse(c.Start)
		folder.Placemarks = append(folder.Placemarks, kmlPlacemark{
			Name:     "Start " + c.Name,
			StyleURL: "#" + styleID,
			Point:    &kmlPoint{Coordinates: fmt.Sprintf("%f,%f,0", lon, lat)},
		})

		if hull := courierHull(in, c.Name); hull != nil {
			coords := hull.FlatCoords()
			var sb strings.Builder
			for j := 0; j < len(coords); j += 2 {
				fmt.Fprintf(&sb, "%f,%f,0 ", coords[j], coords[j+1])
			}
			folder.Placemarks = append(folder.Placemarks, kmlPlacemark{
				Name:     "Gebiet " + c.Name,
				StyleURL: "#" + styleID,
				Polygon:  &kmlPolygon{Coordinates: strings.TrimSpace(sb.String())},
			})
		}

		doc.Folders = append(doc.Folders, folder)
	}

	idx := courierIndex(in.Plan)
	buildings := kmlFolder{Name: "Gebäude"}
	for i, b := range in.Buildings {
		owner := in.Plan.OwnerOfPoint(i)
		name := b.Street
		if name == "" {
			name = fmt.Sprintf("Gebäude %d", b.ID)
		}
		buildings.Placemarks = append(buildings.Placemarks, kmlPlacemark{
			Name:     fmt.Sprintf("%s (%s)", name, owner),
			StyleURL: fmt.Sprintf("#courier%d", idx[owner]),
			Point:    &kmlPoint{Coordinates: fmt.Sprintf("%f,%f,0", b.Lon, b.Lat)},
		})
	}
	doc.Folders = append(doc.Folders, buildings)

	out, err := xml.MarshalIndent(kml{
		Xmlns:    "http://www.opengis.net/kml/2.2",
		Document: doc,
	}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "render: marshal kml")
	}

	data := append([]byte(xml.Header), out...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}
	return nil
}
