package utils

import (
	"math"
	"strconv"
	"strings"

	"sharebite/internal/models"
)

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(loc1, loc2 *models.Location) float64 {
	const earthRadiusKm = 6371

	lat1Rad := toRadians(loc1.Lat())
	lon1Rad := toRadians(loc1.Lng())
	lat2Rad := toRadians(loc2.Lat())
	lon2Rad := toRadians(loc2.Lng())

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ParsePoint turns free-form latitude/longitude input into a point. It
// returns nil unless both values are finite numbers inside the valid ranges;
// callers treat nil as "no location".
func ParsePoint(latitude, longitude string) *models.Location {
	lat, ok := parseCoordinate(latitude, 90)
	if !ok {
		return nil
	}
	lng, ok := parseCoordinate(longitude, 180)
	if !ok {
		return nil
	}
	return models.NewPoint(lat, lng)
}

func parseCoordinate(raw string, limit float64) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
