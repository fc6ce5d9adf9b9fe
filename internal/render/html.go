package render

import (
	"encoding/json"
	"html/template"
	"os"

	"github.com/rotisserie/eris"
)

// leafletPage is a self-contained map: the feature collection is inlined so
// the file works from a phone without a server.
const leafletPage = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .legend { background: white; padding: 6px 10px; border-radius: 4px; box-shadow: 0 1px 4px rgba(0,0,0,.3); }
  .legend i { display: inline-block; width: 12px; height: 12px; margin-right: 6px; border-radius: 50%; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.Data}};
var map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var layer = L.geoJSON(data, {
  style: function (f) {
    return { color: f.properties.color, weight: 2, fillOpacity: 0.08 };
  },
  pointToLayer: function (f, latlng) {
    if (f.properties.kind === 'start') {
      return L.marker(latlng).bindPopup('Start: ' + f.properties.courier);
    }
    return L.circleMarker(latlng, {
      radius: 4, color: f.properties.color, fillColor: f.properties.color, fillOpacity: 0.9
    }).bindPopup((f.properties.street || '?') + '<br>' + f.properties.courier);
  }
}).addTo(map);
map.fitBounds(layer.getBounds());

var legend = L.control({ position: 'bottomright' });
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
  var seen = {};
  data.features.forEach(function (f) {
    if (f.properties.kind !== 'territory' || seen[f.properties.courier]) return;
    seen[f.properties.courier] = true;
    div.innerHTML += '<div><i style="background:' + f.properties.color + '"></i>' +
      f.properties.courier + ' (' + f.properties.load + ')</div>';
  });
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`

var leafletTmpl = template.Must(template.New("map").Parse(leafletPage))

// WriteHTML renders the plan as an interactive Leaflet map.
func WriteHTML(path string, in Input) error {
	fc, err := FeatureCollection(in)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "render: marshal geojson")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	err = leafletTmpl.Execute(f, struct {
		Title string
		Data  template.JS
	}{
		Title: "Gebietsplan " + in.Place,
		Data:  template.JS(data), //nolint:gosec // our own marshaled JSON
	})
	if err != nil {
		return eris.Wrap(err, "render: execute map template")
	}
	return eris.Wrapf(f.Sync(), "render: flush %s", path)
}
