package region

import (
	"fmt"
	"math"

	"pothole-service/models"
)

const MinVertices = 3

// ValidationError is returned for regions that cannot be used for selection.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid region: " + e.Reason
}

// Validate checks the vertex count and that every coordinate is a finite
// value within the latitude/longitude ranges.
func Validate(r models.Region) error {
	if len(r) < MinVertices {
		return &ValidationError{Reason: fmt.Sprintf("expected at least %d vertices, got %d", MinVertices, len(r))}
	}
	for i, v := range r {
		if problem := vertexProblem(v); problem != "" {
			return &ValidationError{Reason: fmt.Sprintf("vertex %d: %s", i, problem)}
		}
	}
	return nil
}

// ValidateVertex checks a single coordinate pair.
func ValidateVertex(v models.Vertex) error {
	if problem := vertexProblem(v); problem != "" {
		return &ValidationError{Reason: problem}
	}
	return nil
}

func vertexProblem(v models.Vertex) string {
	if !finite(v.Lat) || !finite(v.Lon) {
		return "non-finite coordinate"
	}
	if v.Lat < -90 || v.Lat > 90 || v.Lon < -180 || v.Lon > 180 {
		return fmt.Sprintf("(%g, %g) is out of range", v.Lat, v.Lon)
	}
	return ""
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Close returns the ring with the first vertex appended when the last one
// differs from it. The input is never modified.
func Close(r models.Region) models.Region {
	if len(r) == 0 || r[0] == r[len(r)-1] {
		return r
	}
	closed := make(models.Region, 0, len(r)+1)
	closed = append(closed, r...)
	return append(closed, r[0])
}

// Open drops a closing vertex equal to the first one.
func Open(r models.Region) models.Region {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// BoundingBox returns the axis-aligned box spanned by the vertices.
func BoundingBox(r models.Region) models.ViewPort {
	if len(r) == 0 {
		return models.ViewPort{}
	}
	vp := models.ViewPort{
		LatMin: r[0].Lat,
		LonMin: r[0].Lon,
		LatMax: r[0].Lat,
		LonMax: r[0].Lon,
	}
	for _, v := range r[1:] {
		vp.LatMin = math.Min(vp.LatMin, v.Lat)
		vp.LonMin = math.Min(vp.LonMin, v.Lon)
		vp.LatMax = math.Max(vp.LatMax, v.Lat)
		vp.LonMax = math.Max(vp.LonMax, v.Lon)
	}
	return vp
}

// InBoundingBox reports whether the point lies in vp, borders included.
func InBoundingBox(vp models.ViewPort, lat, lon float64) bool {
	return lat >= vp.LatMin && lat <= vp.LatMax && lon >= vp.LonMin && lon <= vp.LonMax
}
