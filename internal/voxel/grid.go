// Package voxel wraps the occupancy grid used for point-inside-mesh
// queries: binvox file interchange, an external voxelizer runner and an
// in-process rasterizer fallback.
package voxel

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a fixed-resolution binary occupancy grid over the bounding cube
// of the canonical mesh. Immutable once built; queried many times.
//
// Cells use the binvox linear ordering: index = x*N*N + z*N + y, with
// Translate the world position of the cube's minimum corner and Scale the
// cube's edge length.
type Grid struct {
	N         int
	Translate r3.Vec
	Scale     float64
	cells     []bool
}

// NewGrid allocates an empty grid of resolution n.
func NewGrid(n int, translate r3.Vec, scale float64) *Grid {
	return &Grid{
		N:         n,
		Translate: translate,
		Scale:     scale,
		cells:     make([]bool, n*n*n),
	}
}

func (g *Grid) index(x, y, z int) int {
	return x*g.N*g.N + z*g.N + y
}

// Set marks the cell at grid coordinates (x, y, z).
func (g *Grid) Set(x, y, z int, occupied bool) {
	g.cells[g.index(x, y, z)] = occupied
}

// At reports the occupancy bit at grid coordinates (x, y, z).
func (g *Grid) At(x, y, z int) bool {
	return g.cells[g.index(x, y, z)]
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// cellOf maps a continuous point to grid coordinates. ok is false when the
// point falls outside the cube.
func (g *Grid) cellOf(p r3.Vec) (x, y, z int, ok bool) {
	if g.Scale <= 0 {
		return 0, 0, 0, false
	}
	fx := (p.X - g.Translate.X) / g.Scale * float64(g.N)
	fy := (p.Y - g.Translate.Y) / g.Scale * float64(g.N)
	fz := (p.Z - g.Translate.Z) / g.Scale * float64(g.N)
	x, y, z = int(fx), int(fy), int(fz)
	if fx < 0 || fy < 0 || fz < 0 || x >= g.N || y >= g.N || z >= g.N {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

// Contains reports whether the voxel cell containing p is occupied. Points
// outside the grid cube are outside the mesh by definition.
func (g *Grid) Contains(p r3.Vec) bool {
	x, y, z, ok := g.cellOf(p)
	return ok && g.At(x, y, z)
}

// ContainsAll evaluates Contains for a batch of points.
func (g *Grid) ContainsAll(pts []r3.Vec) []bool {
	out := make([]bool, len(pts))
	for i, p := range pts {
		out[i] = g.Contains(p)
	}
	return out
}
