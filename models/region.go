package models

import (
	"encoding/json"
	"fmt"
)

// Vertex is a polygon corner in decimal degrees. On the wire it is a
// [latitude, longitude] pair.
type Vertex struct {
	Lat float64
	Lon float64
}

func (v Vertex) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{v.Lat, v.Lon})
}

func (v *Vertex) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("vertex must be a [latitude, longitude] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("vertex must have 2 coordinates, got %d", len(pair))
	}
	v.Lat, v.Lon = pair[0], pair[1]
	return nil
}

// Region is a polygon ring. The ring is implicitly closed.
type Region []Vertex

type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
