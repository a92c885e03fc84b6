package region

import (
	"encoding/json"
	"errors"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"pothole-service/models"
)

func TestFromFeature(t *testing.T) {
	raw := []byte(`{
		"type": "Feature",
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[8.54, 47.37], [8.55, 47.37], [8.55, 47.38], [8.54, 47.37]]]
		},
		"properties": {}
	}`)
	f, err := geojson.UnmarshalFeature(raw)
	if err != nil {
		t.Fatal(err)
	}
	r, err := FromFeature(f)
	if err != nil {
		t.Fatal(err)
	}
	expected := models.Region{{Lat: 47.37, Lon: 8.54}, {Lat: 47.37, Lon: 8.55}, {Lat: 47.38, Lon: 8.55}}
	if len(r) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, r)
	}
	for i := range r {
		if r[i] != expected[i] {
			t.Errorf("vertex %d: expected %v, got %v", i, expected[i], r[i])
		}
	}
}

func TestFromFeatureUnsupported(t *testing.T) {
	f := geojson.NewPointFeature([]float64{8.54, 47.37})
	_, err := FromFeature(f)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a *ValidationError, got %v", err)
	}
	if _, err := FromFeature(nil); err == nil {
		t.Error("expected an error for a nil feature")
	}
}

func TestToFeature(t *testing.T) {
	f := ToFeature(models.Region{{Lat: 47.37, Lon: 8.54}, {Lat: 47.37, Lon: 8.55}, {Lat: 47.38, Lon: 8.55}})
	b, err := json.Marshal(f.Geometry)
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"type":"Polygon","coordinates":[[[8.54,47.37],[8.55,47.37],[8.55,47.38],[8.54,47.37]]]}`
	if string(b) != expected {
		t.Errorf("expected %s, got %s", expected, b)
	}
}
