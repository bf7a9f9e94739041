// Package joints turns the displacement model's raw candidate points into a
// deduplicated, left-right symmetric joint set: weighted mean-shift
// clustering, kernel density pruning, non-max suppression and structural
// symmetrization.
package joints

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// kernelVal is the truncated quadratic kernel max(b^2 - d^2, 0) shared by
// the mean-shift update and the density estimate.
func kernelVal(bandwidth2, d2 float64) float64 {
	if v := bandwidth2 - d2; v > 0 {
		return v
	}
	return 0
}

func dist2(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return r3.Dot(d, d)
}

// MeanShift iterates weighted mean-shift over the points with the truncated
// quadratic kernel of the given bandwidth, moving every point toward its
// weighted local density maximum. Iteration is capped at maxIter and stops
// early once the largest per-point shift falls below 1e-3 of the bandwidth.
// The input slice is not modified.
func MeanShift(points []r3.Vec, weights []float64, bandwidth float64, maxIter int) []r3.Vec {
	cur := make([]r3.Vec, len(points))
	copy(cur, points)
	next := make([]r3.Vec, len(points))
	b2 := bandwidth * bandwidth
	stop2 := (1e-3 * bandwidth) * (1e-3 * bandwidth)

	for iter := 0; iter < maxIter; iter++ {
		maxShift2 := 0.0
		for i, p := range cur {
			var acc r3.Vec
			var mass float64
			for j, q := range cur {
				k := kernelVal(b2, dist2(p, q)) * weights[j]
				if k <= 0 {
					continue
				}
				acc = r3.Add(acc, r3.Scale(k, q))
				mass += k
			}
			if mass <= 0 {
				next[i] = p // isolated point, nothing in reach
				continue
			}
			next[i] = r3.Scale(1/mass, acc)
			if s := dist2(next[i], p); s > maxShift2 {
				maxShift2 = s
			}
		}
		cur, next = next, cur
		if maxShift2 < stop2 {
			break
		}
	}
	return cur
}

// Densities computes the kernel density estimate per point with the same
// truncated quadratic kernel, unweighted, and the total density mass.
func Densities(points []r3.Vec, bandwidth float64) (density []float64, total float64) {
	b2 := bandwidth * bandwidth
	density = make([]float64, len(points))
	for i, p := range points {
		var d float64
		for _, q := range points {
			d += kernelVal(b2, dist2(p, q))
		}
		density[i] = d
		total += d
	}
	return density, total
}
