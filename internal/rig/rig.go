package rig

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/autorig/autorig/internal/geom"
)

// Rig is the pipeline's final product: skeleton, per-vertex skinning
// weights and the normalization transform still to be undone. Immutable
// after assembly; Denormalize must run exactly once before egress.
type Rig struct {
	Skeleton Skeleton
	// Weights is V x B, rows non-negative and summing to 1.
	Weights   *mat.Dense
	Transform geom.Transform

	denormalized bool
}

// Denormalize maps the joint positions back into the mesh's original
// coordinate frame. Calling it twice is a bug and fails with ErrInvariant:
// the transform must be inverted exactly once.
func (r *Rig) Denormalize() error {
	if r.denormalized {
		return fmt.Errorf("%w: rig already denormalized", ErrInvariant)
	}
	for i, j := range r.Skeleton.Joints {
		r.Skeleton.Joints[i] = r.Transform.Invert(j)
	}
	r.denormalized = true
	return nil
}

// vertexWeight is one non-zero skinning influence in the JSON egress.
type vertexWeight struct {
	Bone   int     `json:"bone"`
	Weight float64 `json:"weight"`
}

// rigJSON is the egress document consumed by host-side armature
// generation: joint positions, parent pointers, bones and sparse
// per-vertex weights.
type rigJSON struct {
	Joints  [][3]float64     `json:"joints"`
	Root    int              `json:"root"`
	Parents []int            `json:"parents"`
	Bones   [][2]int         `json:"bones"`
	Weights [][]vertexWeight `json:"weights"`
}

// WriteJSON serializes the rig for the host. Weights are emitted sparsely:
// only non-zero influences per vertex.
func (r *Rig) WriteJSON(w io.Writer) error {
	doc := rigJSON{
		Joints:  make([][3]float64, len(r.Skeleton.Joints)),
		Root:    r.Skeleton.Root,
		Parents: r.Skeleton.Parent,
	}
	for i, j := range r.Skeleton.Joints {
		doc.Joints[i] = [3]float64{j.X, j.Y, j.Z}
	}
	for _, b := range r.Skeleton.Bones() {
		doc.Bones = append(doc.Bones, [2]int{b.Start, b.End})
	}

	nv, nb := r.Weights.Dims()
	doc.Weights = make([][]vertexWeight, nv)
	for v := 0; v < nv; v++ {
		for b := 0; b < nb; b++ {
			if wgt := r.Weights.At(v, b); wgt > 0 {
				doc.Weights[v] = append(doc.Weights[v], vertexWeight{Bone: b, Weight: wgt})
			}
		}
	}

	enc := json.NewEncoder(w)
	return enc.Encode(&doc)
}

// CheckWeights verifies the row-stochastic property of the weight matrix:
// all entries non-negative and finite, every row summing to 1 within eps.
func (r *Rig) CheckWeights(eps float64) error {
	nv, nb := r.Weights.Dims()
	for v := 0; v < nv; v++ {
		sum := 0.0
		for b := 0; b < nb; b++ {
			w := r.Weights.At(v, b)
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: weight %v at vertex %d bone %d", ErrInvariant, w, v, b)
			}
			sum += w
		}
		if math.Abs(sum-1) > eps {
			return fmt.Errorf("%w: vertex %d weights sum to %v", ErrInvariant, v, sum)
		}
	}
	return nil
}
