// Package geodesic estimates vertex-to-bone distances that respect mesh
// occlusion: direct visibility ray casts where a bone can be seen, and
// surface-geodesic propagation through visible relay points where it
// cannot.
package geodesic

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/autorig/autorig/internal/geom"
	"github.com/autorig/autorig/internal/rig"
)

// unreachableBase is added to the raw Euclidean distance when no finite
// surface geodesic path reaches any visible relay point.
const unreachableBase = 8.0

// visiblePercentile and visibleSlack reject spuriously "visible" points:
// anything farther than visibleSlack times the visiblePercentile distance
// of a bone's visible set is treated as occluded (thin-geometry leaks).
const (
	visiblePercentile = 0.15
	visibleSlack      = 1.3
)

// Estimator computes the V-by-B volumetric geodesic matrix. The zero value
// runs at full resolution, single-threaded.
type Estimator struct {
	// Subsample bounds the cost on dense meshes: visibility runs on at most
	// SampleLimit seeded-random vertices against a decimated mesh, and
	// results propagate to all vertices by nearest-sample lookup.
	Subsample     bool
	SampleLimit   int
	DecimateFaces int
	Seed          int64
	// Workers fans the per-sample visibility casts over a worker pool.
	Workers int
}

func (e Estimator) withDefaults() Estimator {
	if e.SampleLimit <= 0 {
		e.SampleLimit = 1500
	}
	if e.DecimateFaces <= 0 {
		e.DecimateFaces = 3000
	}
	if e.Workers <= 0 {
		e.Workers = 1
	}
	return e
}

// closestOnSegment returns the closest point to p on the segment ab.
func closestOnSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	denom := r3.Dot(ab, ab)
	if denom < 1e-18 {
		return a // zero-length bone
	}
	t := r3.Dot(r3.Sub(p, a), ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r3.Add(a, r3.Scale(t, ab))
}

// Matrix estimates the volumetric geodesic distance from every mesh vertex
// to every bone of the skeleton. surfGeo is the precomputed V-by-V surface
// geodesic matrix. The result contains no NaN or Inf entries.
func (e Estimator) Matrix(m *geom.Mesh, skel *rig.Skeleton, surfGeo *mat.SymDense) (*mat.Dense, error) {
	e = e.withDefaults()
	bones := skel.Bones()
	nv := len(m.Positions)
	nb := len(bones)
	if nb == 0 {
		return nil, fmt.Errorf("%w: skeleton has no bones", rig.ErrInvariant)
	}

	// 1. Sampling policy: choose the visibility sample set and ray target.
	sampleIDs := make([]int, nv)
	for i := range sampleIDs {
		sampleIDs[i] = i
	}
	target := m
	if e.Subsample && nv > e.SampleLimit {
		rnd := rand.New(rand.NewSource(e.Seed))
		sampleIDs = rnd.Perm(nv)[:e.SampleLimit]
		sort.Ints(sampleIDs)
		target = geom.Decimate(m, e.DecimateFaces)
	}
	ns := len(sampleIDs)

	// 2. Distance and visibility per (sample, bone).
	dist := make([][]float64, ns)
	visible := make([][]bool, ns)
	caster := geom.NewCaster(target)

	var wg sync.WaitGroup
	work := make(chan int, e.Workers*2)
	for w := 0; w < e.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for si := range work {
				p := m.Positions[sampleIDs[si]]
				dRow := make([]float64, nb)
				vRow := make([]bool, nb)
				for bi, bone := range bones {
					q := closestOnSegment(p, skel.Joints[bone.Start], skel.Joints[bone.End])
					dRow[bi] = r3.Norm(r3.Sub(q, p))
					vRow[bi] = !caster.Occluded(p, q)
				}
				dist[si] = dRow
				visible[si] = vRow
			}
		}()
	}
	for si := 0; si < ns; si++ {
		work <- si
	}
	close(work)
	wg.Wait()

	// 3. Reject visible points far beyond the bone's 15th-percentile
	// visible distance: long-range visibility through thin geometry.
	for bi := 0; bi < nb; bi++ {
		var visDists []float64
		for si := 0; si < ns; si++ {
			if visible[si][bi] {
				visDists = append(visDists, dist[si][bi])
			}
		}
		if len(visDists) == 0 {
			continue
		}
		sort.Float64s(visDists)
		cutoff := visibleSlack * stat.Quantile(visiblePercentile, stat.Empirical, visDists, nil)
		for si := 0; si < ns; si++ {
			if visible[si][bi] && dist[si][bi] > cutoff {
				visible[si][bi] = false
			}
		}
	}

	// 4. Per-bone assembly: visible points keep their Euclidean distance,
	// occluded points take the cheapest geodesic relay through any visible
	// point. No finite relay path falls back to a large constant plus the
	// raw distance; a bone nobody sees falls back entirely to Euclidean.
	out := mat.NewDense(ns, nb, nil)
	for bi := 0; bi < nb; bi++ {
		var vis []int
		for si := 0; si < ns; si++ {
			if visible[si][bi] {
				vis = append(vis, si)
			}
		}
		if len(vis) == 0 {
			for si := 0; si < ns; si++ {
				out.Set(si, bi, dist[si][bi])
			}
			continue
		}
		for si := 0; si < ns; si++ {
			if visible[si][bi] {
				out.Set(si, bi, dist[si][bi])
				continue
			}
			best := math.Inf(1)
			for _, v := range vis {
				g := surfGeo.At(sampleIDs[si], sampleIDs[v])
				if math.IsInf(g, 1) {
					continue
				}
				if combined := g + dist[v][bi]; combined < best {
					best = combined
				}
			}
			if math.IsInf(best, 1) {
				best = unreachableBase + dist[si][bi]
			}
			out.Set(si, bi, best)
		}
	}

	// 5. Propagate back to every vertex by nearest-sample lookup.
	if ns != nv {
		full := mat.NewDense(nv, nb, nil)
		for v := 0; v < nv; v++ {
			nearest, bestD2 := 0, math.Inf(1)
			for si, id := range sampleIDs {
				d := r3.Sub(m.Positions[v], m.Positions[id])
				if d2 := r3.Dot(d, d); d2 < bestD2 {
					bestD2 = d2
					nearest = si
				}
			}
			for bi := 0; bi < nb; bi++ {
				full.Set(v, bi, out.At(nearest, bi))
			}
		}
		out = full
	}

	for v := 0; v < nv; v++ {
		for bi := 0; bi < nb; bi++ {
			if d := out.At(v, bi); math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, fmt.Errorf("%w: non-finite distance %v at vertex %d bone %d",
					rig.ErrInvariant, d, v, bi)
			}
		}
	}
	return out, nil
}
