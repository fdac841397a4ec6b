// Package geo ranks cinemas by great-circle distance from a point.
package geo

import (
	"cmp"
	"math"
	"slices"

	"github.com/m3rciful/cinebot/bot/model"
)

const earthRadiusKM = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Ranked pairs a cinema with its distance from the origin.
type Ranked struct {
	Cinema     model.Cinema
	DistanceKM float64
}

// DistanceKM returns the haversine distance between a and b.
func DistanceKM(a, b Point) float64 {
	const toRad = math.Pi / 180
	lat1, lat2 := a.Lat*toRad, b.Lat*toRad
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * toRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Rank orders cinemas by ascending distance from origin. Equal distances keep
// their input order.
func Rank(origin Point, cinemas []model.Cinema) []Ranked {
	out := make([]Ranked, 0, len(cinemas))
	for _, c := range cinemas {
		out = append(out, Ranked{
			Cinema:     c,
			DistanceKM: DistanceKM(origin, Point{Lat: c.Lat, Lon: c.Lon}),
		})
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		return cmp.Compare(a.DistanceKM, b.DistanceKM)
	})
	return out
}

// RoundKM rounds a distance to one decimal for display.
func RoundKM(km float64) float64 {
	return math.Round(km*10) / 10
}
