package region

import (
	"math"

	"pothole-service/models"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// ComputeArea returns the area in square meters enclosed by the ring of
// vertices. Each vertex is projected with x = R·cos(lat)·cos(lon),
// y = R·cos(lat)·sin(lon) and the shoelace formula is applied to the
// projected ring. The approximation is only meant for small regions.
//
// Less than 3 vertices yield 0. NaN coordinates yield NaN.
func ComputeArea(vertices []models.Vertex) float64 {
	n := len(vertices)
	if n < 3 {
		return 0
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, v := range vertices {
		phi := v.Lat * math.Pi / 180
		lambda := v.Lon * math.Pi / 180
		xs[i] = EarthRadius * math.Cos(phi) * math.Cos(lambda)
		ys[i] = EarthRadius * math.Cos(phi) * math.Sin(lambda)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += xs[i]*ys[j] - xs[j]*ys[i]
	}
	return math.Abs(sum) / 2
}
