package voxel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/geom"
)

// Rasterizer is the in-process substitute for the external voxelizer: a
// scanline parity fill. For every (x, z) cell column it casts a vertical
// segment through the bounding cube and fills cells whose centers lie
// between odd and even surface crossings. Watertight meshes rasterize
// exactly; open meshes degrade to whatever their crossings imply.
type Rasterizer struct{}

// Voxelize builds the occupancy grid over the mesh's bounding cube, using
// the binvox convention of a cube anchored at the bounding box minimum with
// edge length equal to the largest extent.
func (Rasterizer) Voxelize(m *geom.Mesh, resolution int) (*Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("voxel: invalid resolution %d", resolution)
	}
	min, max := m.Bounds()
	ext := r3.Sub(max, min)
	edge := math.Max(ext.X, math.Max(ext.Y, ext.Z))
	if edge <= 0 {
		return nil, fmt.Errorf("%w: cannot voxelize", geom.ErrDegenerateMesh)
	}
	// A hair of padding keeps boundary triangles off the cube faces.
	edge *= 1 + 1e-9

	g := NewGrid(resolution, min, edge)
	caster := geom.NewCaster(m)
	cell := edge / float64(resolution)

	for x := 0; x < resolution; x++ {
		cx := min.X + (float64(x)+0.5)*cell
		for z := 0; z < resolution; z++ {
			cz := min.Z + (float64(z)+0.5)*cell
			bottom := r3.Vec{X: cx, Y: min.Y - cell, Z: cz}
			top := r3.Vec{X: cx, Y: min.Y + edge + cell, Z: cz}
			ts := dedupeCrossings(caster.Crossings(bottom, top))
			if len(ts) < 2 {
				continue
			}
			span := top.Y - bottom.Y
			// Fill between crossing pairs (parity rule).
			for i := 0; i+1 < len(ts); i += 2 {
				yLo := bottom.Y + ts[i]*span
				yHi := bottom.Y + ts[i+1]*span
				for y := 0; y < resolution; y++ {
					cy := min.Y + (float64(y)+0.5)*cell
					if cy >= yLo && cy <= yHi {
						g.Set(x, y, z, true)
					}
				}
			}
		}
	}
	return g, nil
}

// dedupeCrossings collapses crossings reported by two triangles sharing the
// edge the ray passes through. Without this the duplicate flips parity and
// hollows out the column.
func dedupeCrossings(ts []float64) []float64 {
	out := ts[:0]
	for i, t := range ts {
		if i > 0 && t-out[len(out)-1] < 1e-9 {
			continue
		}
		out = append(out, t)
	}
	return out
}
