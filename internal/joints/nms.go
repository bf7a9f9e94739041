package joints

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// suppress runs non-max suppression over the weighted points: repeatedly
// keep the highest-density point and discard everything within the
// exclusion radius. Returns the survivors and their densities, ordered by
// descending density.
func suppress(points []r3.Vec, density []float64, radius float64) ([]r3.Vec, []float64) {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return density[order[a]] > density[order[b]]
	})

	r2 := radius * radius
	visited := make([]bool, len(points))
	var keptPts []r3.Vec
	var keptDen []float64
	for _, i := range order {
		if visited[i] {
			continue
		}
		keptPts = append(keptPts, points[i])
		keptDen = append(keptDen, density[i])
		for j := range points {
			if !visited[j] && dist2(points[i], points[j]) <= r2 {
				visited[j] = true
			}
		}
	}
	return keptPts, keptDen
}
