package geo

import "math"

const earthRadiusKm = 6371.0

// Coordinate is a WGS 84 point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Place is a geocoding match.
type Place struct {
	Coordinate  Coordinate `json:"coordinate"`
	DisplayName string     `json:"display_name"`
}

// DistanceKm returns the great-circle distance between a and b using the
// Haversine formula. Out-of-range inputs are not rejected.
func DistanceKm(a Coordinate, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(h, 1)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
