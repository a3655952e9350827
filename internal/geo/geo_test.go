package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineZeroDistance(t *testing.T) {
	p := Point{Lat: 55.7558, Lon: 37.6173}
	assert.Zero(t, Haversine(p, p))
}

func TestHaversineKnownDistance(t *testing.T) {
	moscow := Point{Lat: 55.7558, Lon: 37.6173}
	spb := Point{Lat: 59.9311, Lon: 30.3609}

	d := Haversine(moscow, spb)
	// straight-line distance Moscow to Saint Petersburg is about 634 km
	assert.InDelta(t, 634000, d, 5000)
}

func TestHaversineSymmetric(t *testing.T) {
	a := Point{Lat: 10, Lon: 20}
	b := Point{Lat: -5, Lon: 120}
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}

type spot struct {
	name string
	lat  float64
	lon  float64
	loc  bool
}

func TestRankByDistanceOrdersAscending(t *testing.T) {
	ref := Point{Lat: 0, Lon: 0}
	spots := []spot{
		{name: "far", lat: 0, lon: 0.2, loc: true},
		{name: "near", lat: 0, lon: 0.01, loc: true},
		{name: "mid", lat: 0, lon: 0.1, loc: true},
	}

	ranked, unlocated := RankByDistance(ref, spots, func(s spot) (Point, bool) {
		return Point{Lat: s.lat, Lon: s.lon}, s.loc
	})

	require.Len(t, ranked, 3)
	assert.Empty(t, unlocated)
	assert.Equal(t, "near", ranked[0].Entity.name)
	assert.Equal(t, "mid", ranked[1].Entity.name)
	assert.Equal(t, "far", ranked[2].Entity.name)
	assert.Less(t, ranked[0].DistanceMeters, ranked[1].DistanceMeters)
	assert.Less(t, ranked[1].DistanceMeters, ranked[2].DistanceMeters)
}

func TestRankByDistanceStableOnTies(t *testing.T) {
	ref := Point{Lat: 0, Lon: 0}
	spots := []spot{
		{name: "first", lat: 0, lon: 0.05, loc: true},
		{name: "second", lat: 0, lon: 0.05, loc: true},
	}

	ranked, _ := RankByDistance(ref, spots, func(s spot) (Point, bool) {
		return Point{Lat: s.lat, Lon: s.lon}, s.loc
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "first", ranked[0].Entity.name)
	assert.Equal(t, "second", ranked[1].Entity.name)
}

func TestRankByDistanceSeparatesUnlocated(t *testing.T) {
	ref := Point{Lat: 0, Lon: 0}
	spots := []spot{
		{name: "nowhere-a"},
		{name: "here", lat: 1, lon: 1, loc: true},
		{name: "nowhere-b"},
	}

	ranked, unlocated := RankByDistance(ref, spots, func(s spot) (Point, bool) {
		return Point{Lat: s.lat, Lon: s.lon}, s.loc
	})

	require.Len(t, ranked, 1)
	assert.Equal(t, "here", ranked[0].Entity.name)
	require.Len(t, unlocated, 2)
	assert.Equal(t, "nowhere-a", unlocated[0].name)
	assert.Equal(t, "nowhere-b", unlocated[1].name)
}

func TestClusterByCellGroupsIdenticalCoordinates(t *testing.T) {
	spots := []spot{
		{name: "a", lat: 55.75580, lon: 37.61730},
		{name: "b", lat: 55.75580, lon: 37.61730},
		{name: "c", lat: 55.80000, lon: 37.61730},
	}

	cells, keys := ClusterByCell(spots, func(s spot) Point {
		return Point{Lat: s.lat, Lon: s.lon}
	})

	require.Len(t, keys, 2)
	require.Len(t, cells[keys[0]], 2)
	assert.Equal(t, "a", cells[keys[0]][0].name)
	assert.Equal(t, "b", cells[keys[0]][1].name)
	require.Len(t, cells[keys[1]], 1)
	assert.Equal(t, "c", cells[keys[1]][0].name)
}

func TestClusterByCellAbsorbsJitter(t *testing.T) {
	// differences past the fifth decimal land in the same cell
	spots := []spot{
		{name: "a", lat: 55.755800, lon: 37.617300},
		{name: "b", lat: 55.755801, lon: 37.617299},
	}

	cells, keys := ClusterByCell(spots, func(s spot) Point {
		return Point{Lat: s.lat, Lon: s.lon}
	})

	require.Len(t, keys, 1)
	assert.Len(t, cells[keys[0]], 2)
}

func TestCellKeyFormat(t *testing.T) {
	key := CellKey(Point{Lat: 55.7558, Lon: 37.6173})
	assert.Equal(t, "55.75580,37.61730", key)
}
