package geo

import (
	"fmt"
	"math"
)

// cellPrecision quantizes coordinates to 5 decimal places (~1m) so that
// near-duplicate points produced by floating-point jitter still share a cell.
const cellPrecision = 1e5

// CellKey returns the quantized grouping key for a point.
func CellKey(p Point) string {
	lat := math.Round(p.Lat*cellPrecision) / cellPrecision
	lon := math.Round(p.Lon*cellPrecision) / cellPrecision
	return fmt.Sprintf("%.5f,%.5f", lat, lon)
}

// ClusterByCell groups items into quantized coordinate cells. Order within a
// cell follows input order; keys preserves first-seen cell order so callers
// can render a deterministic marker list.
func ClusterByCell[T any](items []T, at func(T) Point) (cells map[string][]T, keys []string) {
	cells = make(map[string][]T, len(items))
	for _, item := range items {
		key := CellKey(at(item))
		if _, ok := cells[key]; !ok {
			keys = append(keys, key)
		}
		cells[key] = append(cells[key], item)
	}
	return cells, keys
}
