// Package skin turns the volumetric geodesic matrix and the skinning
// model's per-slot output into the final vertex weight matrix: nearest-bone
// feature construction, scatter into a full matrix, topological smoothing,
// relative thresholding and renormalization.
package skin

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/geom"
	"github.com/autorig/autorig/internal/model"
	"github.com/autorig/autorig/internal/rig"
)

// distEps guards the inverse-distance feature and the row renormalization.
const distEps = 1e-10

// Assembler holds the skinning-stage parameters. The zero value uses the
// pipeline defaults: 5 nearest bones, one smoothing ring, 0.35 relative
// threshold.
type Assembler struct {
	NearestBones int
	RelThreshold float64
}

func (a Assembler) withDefaults() Assembler {
	if a.NearestBones <= 0 {
		a.NearestBones = 5
	}
	if a.RelThreshold <= 0 {
		a.RelThreshold = 0.35
	}
	return a
}

// BuildInput constructs the fixed-width nearest-bone feature block per
// vertex from the volumetric geodesic matrix. When fewer bones exist than
// slots, padding repeats the nearest bone with the validity mask cleared.
// The returned nearest index table maps each slot back to its bone.
func (a Assembler) BuildInput(geoDist *mat.Dense, skel *rig.Skeleton) (*model.SkinInput, [][]int) {
	a = a.withDefaults()
	bones := skel.Bones()
	nv, nb := geoDist.Dims()
	k := a.NearestBones

	boneFeat := make([][6]float64, len(bones))
	for i, b := range bones {
		s, e := skel.Joints[b.Start], skel.Joints[b.End]
		boneFeat[i] = [6]float64{s.X, s.Y, s.Z, e.X, e.Y, e.Z}
	}

	in := &model.SkinInput{
		Slots: make([][]float64, nv),
		Mask:  make([][]bool, nv),
	}
	nearest := make([][]int, nv)
	for v := 0; v < nv; v++ {
		order := make([]int, nb)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return geoDist.At(v, order[i]) < geoDist.At(v, order[j])
		})

		slots := make([]float64, 0, k*8)
		mask := make([]bool, k)
		nn := make([]int, k)
		for s := 0; s < k; s++ {
			bi := order[0] // padding repeats the nearest bone
			valid := s < nb
			if valid {
				bi = order[s]
			}
			f := boneFeat[bi]
			slots = append(slots, f[0], f[1], f[2], f[3], f[4], f[5])
			slots = append(slots, 1/(geoDist.At(v, bi)+distEps))
			if bones[bi].Leaf {
				slots = append(slots, 1)
			} else {
				slots = append(slots, 0)
			}
			mask[s] = valid
			if valid {
				nn[s] = bi
			}
		}
		in.Slots[v] = slots
		in.Mask[v] = mask
		nearest[v] = nn
	}
	return in, nearest
}

// Assemble runs the skinning model over the nearest-bone features and
// produces the final rig: scatter the per-slot weights into a full V-by-B
// matrix, smooth over the 1-ring mesh neighborhood, zero weights below the
// relative threshold and renormalize each row. The returned rig is still in
// canonical space; the caller denormalizes it exactly once.
func (a Assembler) Assemble(f *model.Features, geoDist *mat.Dense, skel *rig.Skeleton,
	scorer model.SkinScorer, mesh *geom.Mesh, transform geom.Transform) (*rig.Rig, error) {

	a = a.withDefaults()
	in, nearest := a.BuildInput(geoDist, skel)
	slotWeights, err := scorer.PredictWeights(f, in)
	if err != nil {
		return nil, fmt.Errorf("skin: scoring weights: %w", err)
	}
	nv, nb := geoDist.Dims()
	if len(slotWeights) != nv {
		return nil, fmt.Errorf("skin: model returned %d rows for %d vertices", len(slotWeights), nv)
	}

	// Scatter masked slot weights into the full matrix.
	full := mat.NewDense(nv, nb, nil)
	for v := 0; v < nv; v++ {
		for s, w := range slotWeights[v] {
			if s < len(in.Mask[v]) && in.Mask[v][s] && w > 0 {
				full.Set(v, nearest[v][s], full.At(v, nearest[v][s])+w)
			}
		}
		// A row the model zeroed entirely falls back to its nearest bone.
		if mat.Sum(full.RowView(v)) <= 0 {
			full.Set(v, nearest[v][0], 1)
		}
	}

	smoothed := smoothOneRing(full, mesh.Adjacency())

	// Relative threshold, then renormalize.
	for v := 0; v < nv; v++ {
		rowMax := 0.0
		for b := 0; b < nb; b++ {
			if w := smoothed.At(v, b); w > rowMax {
				rowMax = w
			}
		}
		cut := a.RelThreshold * rowMax
		sum := 0.0
		for b := 0; b < nb; b++ {
			w := smoothed.At(v, b)
			if w < cut {
				w = 0
				smoothed.Set(v, b, 0)
			}
			sum += w
		}
		if sum <= 0 || math.IsNaN(sum) {
			return nil, fmt.Errorf("%w: vertex %d weight row sums to %v before renormalization",
				rig.ErrInvariant, v, sum)
		}
		for b := 0; b < nb; b++ {
			smoothed.Set(v, b, smoothed.At(v, b)/(sum+distEps))
		}
	}

	// The rig owns its skeleton: Denormalize mutates the joints in place,
	// and the caller's skeleton must stay in the canonical frame.
	out := &rig.Rig{
		Skeleton: rig.Skeleton{
			Joints: append([]r3.Vec(nil), skel.Joints...),
			Root:   skel.Root,
			Parent: append([]int(nil), skel.Parent...),
		},
		Weights:   smoothed,
		Transform: transform,
	}
	if err := out.CheckWeights(1e-6); err != nil {
		return nil, err
	}
	return out, nil
}

// smoothOneRing blends every vertex's weight row with the mean of its
// 1-ring neighbors (self included), damping speckled discontinuities from
// independent per-vertex prediction.
func smoothOneRing(w *mat.Dense, adj [][]int) *mat.Dense {
	nv, nb := w.Dims()
	out := mat.NewDense(nv, nb, nil)
	for v := 0; v < nv; v++ {
		count := 1.0
		row := make([]float64, nb)
		for b := 0; b < nb; b++ {
			row[b] = w.At(v, b)
		}
		for _, u := range adj[v] {
			for b := 0; b < nb; b++ {
				row[b] += w.At(u, b)
			}
			count++
		}
		for b := 0; b < nb; b++ {
			out.Set(v, b, row[b]/count)
		}
	}
	return out
}
