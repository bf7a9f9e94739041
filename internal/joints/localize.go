package joints

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/model"
	"github.com/autorig/autorig/internal/voxel"
)

// ErrInsufficientJoints reports that filtering left no usable joint
// candidates; a skeleton cannot be built from zero joints.
var ErrInsufficientJoints = errors.New("joints: no usable joint candidates")

// Localizer holds the clustering parameters of the joint localization
// stage. The zero value uses the model-estimated bandwidth and the defaults
// below.
type Localizer struct {
	// Bandwidth overrides the model's bandwidth estimate when positive.
	Bandwidth float64
	// Threshold is the density mass fraction below which shifted points are
	// pruned.
	Threshold float64
	// MinAttention discards candidates the model itself barely believes in.
	MinAttention float64
	// MaxIterations caps the mean-shift loop.
	MaxIterations int
	// PlaneTol and MatchTol control symmetrization: snapping distance to
	// the symmetry plane and the mirror pairing radius.
	PlaneTol float64
	MatchTol float64
}

func (l Localizer) withDefaults() Localizer {
	if l.Threshold <= 0 {
		l.Threshold = 1e-5
	}
	if l.MinAttention <= 0 {
		l.MinAttention = 1e-3
	}
	if l.MaxIterations <= 0 {
		l.MaxIterations = 40
	}
	if l.PlaneTol <= 0 {
		l.PlaneTol = 0.02
	}
	if l.MatchTol <= 0 {
		l.MatchTol = 0.05
	}
	return l
}

// Localize clusters the displacement model's candidate points into the
// final joint set: containment and attention filtering, reflection across
// the symmetry plane, weighted mean-shift, density pruning, non-max
// suppression and structural symmetrization. Joints are returned with their
// densities, ordered by descending density. An empty surviving set fails
// with ErrInsufficientJoints.
func (l Localizer) Localize(pred *model.JointPrediction, positions []r3.Vec, grid *voxel.Grid) ([]r3.Vec, []float64, error) {
	l = l.withDefaults()
	if len(pred.Displacements) != len(positions) {
		return nil, nil, fmt.Errorf("joints: %d displacements for %d vertices",
			len(pred.Displacements), len(positions))
	}

	// 1. Shifted candidates that land inside the mesh with enough attention.
	var pts []r3.Vec
	var weights []float64
	for i, p := range positions {
		c := r3.Add(p, pred.Displacements[i])
		if pred.Attention[i] <= l.MinAttention || !grid.Contains(c) {
			continue
		}
		pts = append(pts, c)
		weights = append(weights, pred.Attention[i])
	}
	if len(pts) == 0 {
		return nil, nil, fmt.Errorf("%w: all candidates outside mesh or below attention %g",
			ErrInsufficientJoints, l.MinAttention)
	}

	// 2. Reflect across x=0: the model is not trusted to be symmetric.
	n := len(pts)
	for i := 0; i < n; i++ {
		pts = append(pts, mirror(pts[i]))
		weights = append(weights, weights[i])
	}

	bandwidth := pred.Bandwidth
	if l.Bandwidth > 0 {
		bandwidth = l.Bandwidth
	}
	if bandwidth <= 0 {
		return nil, nil, fmt.Errorf("joints: non-positive bandwidth %g", bandwidth)
	}

	// 3. Mean-shift toward weighted density maxima.
	shifted := MeanShift(pts, weights, bandwidth, l.MaxIterations)

	// 4. Density prune.
	density, total := Densities(shifted, bandwidth)
	if total <= 0 {
		return nil, nil, fmt.Errorf("%w: zero density mass", ErrInsufficientJoints)
	}
	var keptPts []r3.Vec
	var keptDen []float64
	for i, d := range density {
		if d/total > l.Threshold {
			keptPts = append(keptPts, shifted[i])
			keptDen = append(keptDen, d)
		}
	}
	if len(keptPts) == 0 {
		return nil, nil, fmt.Errorf("%w: density threshold %g pruned everything",
			ErrInsufficientJoints, l.Threshold)
	}

	// 5. Non-max suppression with the bandwidth as exclusion radius.
	nmsPts, nmsDen := suppress(keptPts, keptDen, bandwidth)

	// 6. Exact structural symmetry.
	outPts, outDen := symmetrize(nmsPts, nmsDen, l.PlaneTol, l.MatchTol)
	if len(outPts) == 0 {
		return nil, nil, ErrInsufficientJoints
	}
	return outPts, outDen, nil
}
