package geom

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateMesh reports zero-extent geometry that cannot be normalized.
var ErrDegenerateMesh = errors.New("geom: degenerate mesh")

// Transform maps between the mesh's original frame and the canonical frame
// produced by Normalize. It must be inverted exactly once, on the final rig.
type Transform struct {
	Pivot r3.Vec  // subtracted before scaling
	Scale float64 // uniform scale into the unit-ish cube
	ZUp   bool    // original frame was Z-up (basis change applied)
}

// ToCanonical rotates a Z-up point into the pipeline's Y-up convention
// (-90 degrees about X).
func ToCanonical(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Z, Z: -p.Y}
}

// FromCanonical is the inverse of ToCanonical.
func FromCanonical(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X, Y: -p.Z, Z: p.Y}
}

// Normalize rewrites the mesh positions in place into the canonical frame:
// optional Z-up basis change, translate by the bounding box's horizontal
// centers and vertical minimum, then uniform scale by 1/max(extent). The
// returned Transform undoes the mapping. A mesh with zero extent on every
// axis fails with ErrDegenerateMesh.
func Normalize(m *Mesh, zUp bool) (Transform, error) {
	if zUp {
		for i, p := range m.Positions {
			m.Positions[i] = ToCanonical(p)
		}
		for i, n := range m.Normals {
			m.Normals[i] = ToCanonical(n)
		}
	}

	min, max := m.Bounds()
	ext := r3.Sub(max, min)
	largest := ext.X
	if ext.Y > largest {
		largest = ext.Y
	}
	if ext.Z > largest {
		largest = ext.Z
	}
	if largest <= 0 {
		return Transform{}, fmt.Errorf("%w: extent %v", ErrDegenerateMesh, ext)
	}

	t := Transform{
		Pivot: r3.Vec{X: (min.X + max.X) / 2, Y: min.Y, Z: (min.Z + max.Z) / 2},
		Scale: 1.0 / largest,
		ZUp:   zUp,
	}
	for i, p := range m.Positions {
		m.Positions[i] = r3.Scale(t.Scale, r3.Sub(p, t.Pivot))
	}
	return t, nil
}

// Apply maps a point from the original frame into the canonical frame.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	if t.ZUp {
		p = ToCanonical(p)
	}
	return r3.Scale(t.Scale, r3.Sub(p, t.Pivot))
}

// Invert maps a canonical-frame point back to the original frame.
func (t Transform) Invert(p r3.Vec) r3.Vec {
	p = r3.Add(r3.Scale(1/t.Scale, p), t.Pivot)
	if t.ZUp {
		p = FromCanonical(p)
	}
	return p
}
