package skeleton

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/rig"
)

// mirrorTol is the matching radius for pairing a joint with its reflection.
// The localizer emits exactly mirrored joints, so this only absorbs float
// noise.
const mirrorTol = 1e-3

// mirrorIndex maps every joint to its reflection partner across x=0, or to
// itself for joints on the plane (or with no partner in reach).
func mirrorIndex(joints []r3.Vec) []int {
	idx := make([]int, len(joints))
	tol2 := mirrorTol * mirrorTol
	for i, p := range joints {
		idx[i] = i
		want := r3.Vec{X: -p.X, Y: p.Y, Z: p.Z}
		best := tol2
		for j, q := range joints {
			if j == i {
				continue
			}
			d := r3.Sub(q, want)
			if d2 := r3.Dot(d, d); d2 < best {
				best = d2
				idx[i] = j
			}
		}
	}
	return idx
}

// PrimSymmetric grows a minimum spanning tree from the root with a
// bilateral symmetry constraint: whenever a joint is admitted, its mirror
// partner is admitted in the same step with its parent set to the mirror of
// the admitted joint's parent (or to the joint's own parent when that
// parent sits on the symmetry plane). The mirrored attachment is a policy
// choice carried over from the source pipeline, not a cost-optimal rule;
// on genuinely asymmetric costs it trades a slightly costlier tree for a
// structurally symmetric one.
//
// Returns the parent array (root entry is -1). A frontier with no finite
// edge, or a malformed result, fails with rig.ErrInvariant.
func PrimSymmetric(cost *mat.SymDense, root int, joints []r3.Vec) ([]int, error) {
	n := len(joints)
	if n == 0 {
		return nil, fmt.Errorf("%w: no joints", rig.ErrInvariant)
	}
	if root < 0 || root >= n {
		return nil, fmt.Errorf("%w: root %d out of range", rig.ErrInvariant, root)
	}
	if r, c := cost.Dims(); r != n || c != n {
		return nil, fmt.Errorf("%w: %dx%d cost matrix for %d joints", rig.ErrInvariant, r, c, n)
	}

	mirrors := mirrorIndex(joints)
	inTree := make([]bool, n)
	parent := make([]int, n)
	key := make([]float64, n)
	for i := range key {
		parent[i] = -1
		key[i] = math.Inf(1)
	}
	key[root] = 0

	added := 0
	for added < n {
		// Cheapest edge expanding the frontier.
		u := -1
		for i := 0; i < n; i++ {
			if !inTree[i] && (u < 0 || key[i] < key[u]) {
				u = i
			}
		}
		if u < 0 || math.IsInf(key[u], 1) {
			return nil, fmt.Errorf("%w: disconnected joint frontier after %d of %d joints",
				rig.ErrInvariant, added, n)
		}
		inTree[u] = true
		added++

		admitted := []int{u}
		// Admit the mirror twin in lockstep with a mirrored attachment.
		if v := mirrors[u]; v != u && !inTree[v] {
			if parent[u] >= 0 {
				parent[v] = mirrors[parent[u]]
			} else {
				parent[v] = u // root is off-plane: attach the twin to it
			}
			inTree[v] = true
			added++
			admitted = append(admitted, v)
		}

		for _, w := range admitted {
			for x := 0; x < n; x++ {
				if !inTree[x] && cost.At(w, x) < key[x] {
					key[x] = cost.At(w, x)
					parent[x] = w
				}
			}
		}
	}

	if parent[root] != -1 {
		return nil, fmt.Errorf("%w: root %d acquired parent %d", rig.ErrInvariant, root, parent[root])
	}
	return parent, nil
}

// Build materializes the rooted skeleton from the parent array and
// validates its tree invariants.
func Build(joints []r3.Vec, parent []int, root int) (*rig.Skeleton, error) {
	s := &rig.Skeleton{
		Joints: append([]r3.Vec(nil), joints...),
		Root:   root,
		Parent: append([]int(nil), parent...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
