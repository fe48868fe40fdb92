package utils

import "math"

// CalculateHaversineDistance returns the great-circle distance between two coordinates in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000

	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Geofence is a circular area around a fixed point. A zero radius disables it.
type Geofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

func (g Geofence) Enabled() bool {
	return g.RadiusMeters > 0
}

// Contains reports whether the coordinate lies inside the fence.
func (g Geofence) Contains(lat, lon float64) bool {
	return CalculateHaversineDistance(g.Latitude, g.Longitude, lat, lon) <= g.RadiusMeters
}
