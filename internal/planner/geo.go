package planner

import (
	"math"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// EarthRadiusKm is the mean Earth radius used for Haversine distances.
const EarthRadiusKm = 6371.0

// speedsKmph are the average speeds used for travel estimates.
var speedsKmph = map[types.TransportMode]float64{
	types.TransportWalking:   5,
	types.TransportBicycling: 15,
	types.TransportTransit:   20,
	types.TransportDriving:   30,
}

// DistanceKm returns the great-circle distance between a and b in kilometres.
// A nil point yields 0.
func DistanceKm(a, b *types.Point) float64 {
	if a == nil || b == nil {
		return 0
	}
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ParseTransportMode falls back to walking for unknown modes.
func ParseTransportMode(raw string) types.TransportMode {
	m := types.TransportMode(raw)
	if _, ok := speedsKmph[m]; ok {
		return m
	}
	return types.TransportWalking
}

// TravelMinutes estimates travel time for km at the mode's average speed.
func TravelMinutes(km float64, mode types.TransportMode) int {
	speed, ok := speedsKmph[mode]
	if !ok {
		speed = speedsKmph[types.TransportWalking]
	}
	return int(math.Round(km / speed * 60))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
