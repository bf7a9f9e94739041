// Package skeleton assembles the rooted bone hierarchy: a connection cost
// matrix from model probabilities and volume containment, a root choice
// from the root model's scores, and a symmetry-constrained minimum spanning
// tree over the joints.
package skeleton

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/model"
	"github.com/autorig/autorig/internal/rig"
	"github.com/autorig/autorig/internal/voxel"
)

// boneSampleStep is the spacing of containment samples along a candidate
// bone, in canonical units.
const boneSampleStep = 0.01

// probEps keeps the -log cost finite for zero-probability pairs.
const probEps = 1e-10

// SampleSegment returns points spaced boneSampleStep apart along the
// segment ab, endpoints included, with at least two samples.
func SampleSegment(a, b r3.Vec) []r3.Vec {
	n := int(math.Round(r3.Norm(r3.Sub(b, a))/boneSampleStep)) + 1
	if n < 2 {
		n = 2
	}
	pts := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
	}
	return pts
}

// PairAttrs enumerates all unordered joint pairs with the geometric
// attributes the connectivity model conditions on: pair distance and the
// fraction of segment samples inside the voxelized volume.
func PairAttrs(joints []r3.Vec, grid *voxel.Grid) (pairs [][2]int, attrs []model.PairAttr) {
	for i := 0; i < len(joints); i++ {
		for j := i + 1; j < len(joints); j++ {
			samples := SampleSegment(joints[i], joints[j])
			inside := 0
			for _, s := range samples {
				if grid.Contains(s) {
					inside++
				}
			}
			pairs = append(pairs, [2]int{i, j})
			attrs = append(attrs, model.PairAttr{
				Dist:       r3.Norm(r3.Sub(joints[i], joints[j])),
				InsideFrac: float64(inside) / float64(len(samples)),
			})
		}
	}
	return pairs, attrs
}

// CostMatrix builds the symmetric connection cost matrix: -log of the
// model's connection probability, plus a penalty for bones that leave the
// volume which grows with both the outside fraction and the bone length.
func CostMatrix(n int, pairs [][2]int, probs []float64, attrs []model.PairAttr, outsidePenalty float64) (*mat.SymDense, error) {
	if len(pairs) != len(probs) || len(pairs) != len(attrs) {
		return nil, fmt.Errorf("skeleton: %d pairs, %d probs, %d attrs", len(pairs), len(probs), len(attrs))
	}
	cost := mat.NewSymDense(n, nil)
	for k, pr := range pairs {
		p := probs[k]
		if math.IsNaN(p) || p < 0 {
			return nil, fmt.Errorf("%w: connection probability %v for pair %v", rig.ErrInvariant, p, pr)
		}
		c := -math.Log(p + probEps)
		c += outsidePenalty * (1 - attrs[k].InsideFrac) * attrs[k].Dist
		cost.SetSym(pr[0], pr[1], c)
	}
	return cost, nil
}

// SelectRoot returns the joint with the highest root-model score.
func SelectRoot(scores []float64) (int, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: no root scores", rig.ErrInvariant)
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best, nil
}
