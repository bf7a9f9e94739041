package joints

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// mirror reflects a point across the x=0 symmetry plane.
func mirror(p r3.Vec) r3.Vec {
	return r3.Vec{X: -p.X, Y: p.Y, Z: p.Z}
}

// symmetrize enforces exact left-right structural symmetry on the joint
// set. Joints within planeTol of the plane are snapped onto it. For every
// off-plane joint, a near-mirror partner within matchTol is merged into an
// exact mirrored pair; when no partner exists the missing mirror is
// inserted. The result is ordered by descending density.
func symmetrize(points []r3.Vec, density []float64, planeTol, matchTol float64) ([]r3.Vec, []float64) {
	used := make([]bool, len(points))
	var outPts []r3.Vec
	var outDen []float64

	tol2 := matchTol * matchTol
	for i, p := range points {
		if used[i] {
			continue
		}
		used[i] = true

		if p.X > -planeTol && p.X < planeTol {
			p.X = 0
			outPts = append(outPts, p)
			outDen = append(outDen, density[i])
			continue
		}

		// Closest unused candidate to the exact mirror position.
		want := mirror(p)
		partner := -1
		best := tol2
		for j := i + 1; j < len(points); j++ {
			if used[j] {
				continue
			}
			if d := dist2(points[j], want); d < best {
				best = d
				partner = j
			}
		}

		merged := p
		partnerDen := density[i]
		if partner >= 0 {
			used[partner] = true
			q := points[partner]
			merged = r3.Vec{
				X: (p.X - q.X) / 2,
				Y: (p.Y + q.Y) / 2,
				Z: (p.Z + q.Z) / 2,
			}
			partnerDen = density[partner]
		}
		outPts = append(outPts, merged, mirror(merged))
		outDen = append(outDen, density[i], partnerDen)
	}

	order := make([]int, len(outPts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return outDen[order[a]] > outDen[order[b]]
	})
	sortedPts := make([]r3.Vec, len(outPts))
	sortedDen := make([]float64, len(outDen))
	for k, i := range order {
		sortedPts[k] = outPts[i]
		sortedDen[k] = outDen[i]
	}
	return sortedPts, sortedDen
}
