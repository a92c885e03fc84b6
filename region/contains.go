package region

import (
	"github.com/golang/geo/s2"

	"pothole-service/models"
)

// Loop builds a normalized S2 loop from the ring, so the loop always
// encloses the smaller side of the sphere regardless of winding order.
func Loop(r models.Region) *s2.Loop {
	ring := Open(r)
	pts := make([]s2.Point, len(ring))
	for i, v := range ring {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(v.Lat, v.Lon))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop
}

// Contains reports whether the point lies inside the region.
func Contains(r models.Region, lat, lon float64) bool {
	if len(Open(r)) < MinVertices {
		return false
	}
	return Loop(r).ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}
