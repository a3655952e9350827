package geo

import (
	"math"
	"sort"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// Ranked pairs an entity with its distance from the reference point.
type Ranked[T any] struct {
	Entity         T       `json:"entity"`
	DistanceMeters float64 `json:"distance_meters"`
}

// RankByDistance orders items by ascending haversine distance from ref. Items
// without a coordinate are excluded from the ranking and returned separately,
// keeping their input order. The sort is stable so equidistant items keep
// their input order too.
func RankByDistance[T any](ref Point, items []T, at func(T) (Point, bool)) ([]Ranked[T], []T) {
	ranked := make([]Ranked[T], 0, len(items))
	var unlocated []T
	for _, item := range items {
		p, ok := at(item)
		if !ok {
			unlocated = append(unlocated, item)
			continue
		}
		ranked = append(ranked, Ranked[T]{Entity: item, DistanceMeters: Haversine(ref, p)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})
	return ranked, unlocated
}
