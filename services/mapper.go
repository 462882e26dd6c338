package services

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"booking-scraper/models"
)

var mapPage = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
	attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
L.geoJSON({{.Features}}, {
	onEachFeature: function (feature, layer) {
		layer.bindPopup(feature.properties.name);
	}
}).addTo(map);
</script>
</body>
</html>
`))

type mapView struct {
	Title     string
	CenterLat float64
	CenterLng float64
	Zoom      int
	Features  template.JS
}

// MarkerCollection builds a GeoJSON point collection from markers.
func MarkerCollection(markers []models.MapMarker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Longitude, m.Latitude})
		f.Properties["name"] = m.Name
		f.Properties["geohash"] = m.Geohash
		fc.Append(f)
	}
	return fc
}

// Map writes map_<name>.html with one pin per marker, plus the same points
// as map_<name>.geojson. It returns the HTML path.
func (r *Reporter) Map(name string, markers []models.MapMarker) (string, error) {
	fc := MarkerCollection(markers)
	features, err := fc.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("reporter: encode markers: %w", err)
	}

	base := filepath.Join(r.dir, "map_"+name)
	if err := os.WriteFile(base+".geojson", features, 0644); err != nil {
		return "", fmt.Errorf("reporter: write geojson: %w", err)
	}

	view := mapView{Title: name, Zoom: 2, Features: template.JS(features)}
	if len(markers) > 0 {
		points := make(orb.MultiPoint, len(markers))
		for i, m := range markers {
			points[i] = orb.Point{m.Longitude, m.Latitude}
		}
		center := points.Bound().Center()
		view.CenterLng, view.CenterLat = center.Lon(), center.Lat()
		view.Zoom = 5
	}

	path := base + ".html"
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("reporter: create %q: %w", path, err)
	}
	if err := mapPage.Execute(f, view); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("reporter: render map: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("reporter: close %q: %w", path, err)
	}

	r.logger.Info("[reporter] Wrote map with %d markers to %s", len(markers), path)
	return path, nil
}
