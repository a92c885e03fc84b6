package region

import (
	"fmt"
	"strings"

	"pothole-service/models"
)

// MySQL reads SRID 4326 geometries in latitude-longitude axis order, so all
// WKT produced here is "lat lon".

func PointToWKT(latitude, longitude float64) string {
	return fmt.Sprintf("POINT(%g %g)", latitude, longitude)
}

// ToWKT renders the closed ring as a WKT polygon.
func ToWKT(r models.Region) string {
	closed := Close(r)
	pairs := make([]string, len(closed))
	for i, v := range closed {
		pairs[i] = fmt.Sprintf("%g %g", v.Lat, v.Lon)
	}
	return fmt.Sprintf("POLYGON((%s))", strings.Join(pairs, ","))
}
