package stores

import (
	"math"

	"github.com/lemarcheci/storefront-backend/pkg/types"
)

const earthRadiusMeters = 6371000.0

// distanceMeters computes the planar equirectangular distance between two
// coordinates. Both branches sit inside one metro area, so the flat-earth
// approximation stays within a few meters of the great-circle answer at this
// scale. Keep it; nearest-store ranking only needs relative ordering.
func distanceMeters(from, to types.LatLng) float64 {
	latRadFrom := from.Lat * math.Pi / 180
	latRadTo := to.Lat * math.Pi / 180
	meanLat := (latRadFrom + latRadTo) / 2

	x := (to.Lng - from.Lng) * math.Pi / 180 * math.Cos(meanLat)
	y := latRadTo - latRadFrom
	return earthRadiusMeters * math.Sqrt(x*x+y*y)
}
