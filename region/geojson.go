package region

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"pothole-service/models"
)

// FromFeature takes the outer ring of a GeoJSON Polygon feature. GeoJSON
// positions are [lon, lat].
func FromFeature(f *geojson.Feature) (models.Region, error) {
	if f == nil || f.Geometry == nil {
		return nil, &ValidationError{Reason: "feature has no geometry"}
	}
	if !f.Geometry.IsPolygon() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported geometry type: %s", f.Geometry.Type)}
	}
	if len(f.Geometry.Polygon) == 0 {
		return nil, &ValidationError{Reason: "polygon has no rings"}
	}
	outer := f.Geometry.Polygon[0]
	r := make(models.Region, 0, len(outer))
	for i, pos := range outer {
		if len(pos) < 2 {
			return nil, &ValidationError{Reason: fmt.Sprintf("position %d has %d coordinates", i, len(pos))}
		}
		r = append(r, models.Vertex{Lat: pos[1], Lon: pos[0]})
	}
	return Open(r), nil
}

// ToFeature renders the region as a closed GeoJSON Polygon feature.
func ToFeature(r models.Region) *geojson.Feature {
	closed := Close(r)
	ring := make([][]float64, len(closed))
	for i, v := range closed {
		ring[i] = []float64{v.Lon, v.Lat}
	}
	return geojson.NewPolygonFeature([][][]float64{ring})
}
