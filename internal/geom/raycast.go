package geom

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max r3.Vec
}

// Expand grows the box to contain p.
func (b *AABB) Expand(p r3.Vec) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// segmentHitsBox is the slab test for the parametric segment a + t*(b-a),
// t in [0, 1]. It reports whether the segment can pass through the box.
func segmentHitsBox(a, d r3.Vec, box AABB) bool {
	tmin, tmax := 0.0, 1.0

	for axis := 0; axis < 3; axis++ {
		var o, dir, lo, hi float64
		switch axis {
		case 0:
			o, dir, lo, hi = a.X, d.X, box.Min.X, box.Max.X
		case 1:
			o, dir, lo, hi = a.Y, d.Y, box.Min.Y, box.Max.Y
		default:
			o, dir, lo, hi = a.Z, d.Z, box.Min.Z, box.Max.Z
		}
		if dir == 0 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t1 := (lo - o) / dir
		t2 := (hi - o) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmax < tmin {
			return false
		}
	}
	return true
}

// Caster answers segment occlusion queries against a fixed mesh. Per-face
// bounding boxes are precomputed once; queries are then a slab pre-test
// followed by a Moller-Trumbore triangle intersection.
type Caster struct {
	mesh  *Mesh
	boxes []AABB
}

// NewCaster prepares occlusion queries against m.
func NewCaster(m *Mesh) *Caster {
	boxes := make([]AABB, len(m.Faces))
	for i, f := range m.Faces {
		box := AABB{Min: m.Positions[f[0]], Max: m.Positions[f[0]]}
		box.Expand(m.Positions[f[1]])
		box.Expand(m.Positions[f[2]])
		boxes[i] = box
	}
	return &Caster{mesh: m, boxes: boxes}
}

const segmentEps = 1e-6

// Occluded reports whether the open segment between a and b is blocked by
// any mesh triangle. Intersections within segmentEps of either endpoint are
// ignored, so a segment leaving or arriving exactly on a surface point does
// not occlude itself.
func (c *Caster) Occluded(a, b r3.Vec) bool {
	d := r3.Sub(b, a)
	for i, f := range c.mesh.Faces {
		if !segmentHitsBox(a, d, c.boxes[i]) {
			continue
		}
		t, hit := intersectTriangle(a, d,
			c.mesh.Positions[f[0]], c.mesh.Positions[f[1]], c.mesh.Positions[f[2]])
		if hit && t > segmentEps && t < 1-segmentEps {
			return true
		}
	}
	return false
}

// Crossings returns the sorted parameters t in (0, 1) at which the segment
// a + t*(b-a) crosses mesh triangles. Used by the scanline rasterizer for
// parity filling.
func (c *Caster) Crossings(a, b r3.Vec) []float64 {
	d := r3.Sub(b, a)
	var ts []float64
	for i, f := range c.mesh.Faces {
		if !segmentHitsBox(a, d, c.boxes[i]) {
			continue
		}
		t, hit := intersectTriangle(a, d,
			c.mesh.Positions[f[0]], c.mesh.Positions[f[1]], c.mesh.Positions[f[2]])
		if hit && t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	sort.Float64s(ts)
	return ts
}

// intersectTriangle is Moller-Trumbore for the parametric segment a + t*d.
// Returns the parameter t of the intersection and whether the segment's
// supporting line crosses the triangle.
func intersectTriangle(a, d, v0, v1, v2 r3.Vec) (float64, bool) {
	e1 := r3.Sub(v1, v0)
	e2 := r3.Sub(v2, v0)
	p := r3.Cross(d, e2)
	det := r3.Dot(e1, p)
	if det > -1e-12 && det < 1e-12 {
		return 0, false // segment parallel to triangle plane
	}
	inv := 1 / det
	s := r3.Sub(a, v0)
	u := r3.Dot(s, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := r3.Dot(d, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return r3.Dot(e2, q) * inv, true
}
