// Package geom provides the triangle mesh representation and the geometric
// services of the rigging pipeline: canonical-frame normalization, OBJ
// interchange, surface geodesic distances, segment/triangle visibility tests
// and mesh decimation.
package geom

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangulated mesh: vertex positions, per-vertex normals and
// triangle index triples. Faces reference Positions by index.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	Faces     [][3]int
}

// NewMesh validates and wraps the given geometry. Normals may be nil; they
// are then derived with ComputeNormals. Faces with out-of-range indices are
// rejected.
func NewMesh(positions []r3.Vec, normals []r3.Vec, faces [][3]int) (*Mesh, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("geom: mesh has no vertices")
	}
	for fi, f := range faces {
		for _, v := range f {
			if v < 0 || v >= len(positions) {
				return nil, fmt.Errorf("geom: face %d references vertex %d of %d", fi, v, len(positions))
			}
		}
	}
	if normals != nil && len(normals) != len(positions) {
		return nil, fmt.Errorf("geom: %d normals for %d vertices", len(normals), len(positions))
	}
	m := &Mesh{Positions: positions, Normals: normals, Faces: faces}
	if m.Normals == nil {
		m.ComputeNormals()
	}
	return m, nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Positions: make([]r3.Vec, len(m.Positions)),
		Normals:   make([]r3.Vec, len(m.Normals)),
		Faces:     make([][3]int, len(m.Faces)),
	}
	copy(c.Positions, m.Positions)
	copy(c.Normals, m.Normals)
	copy(c.Faces, m.Faces)
	return c
}

// ComputeNormals derives area-weighted vertex normals from the faces,
// replacing any existing normals.
func (m *Mesh) ComputeNormals() {
	normals := make([]r3.Vec, len(m.Positions))
	for _, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		// Cross product length is twice the face area, so summing the raw
		// cross products area-weights the contribution.
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, v := range f {
			normals[v] = r3.Add(normals[v], n)
		}
	}
	for i, n := range normals {
		if l := r3.Norm(n); l > 1e-12 {
			normals[i] = r3.Scale(1/l, n)
		}
	}
	m.Normals = normals
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	min = m.Positions[0]
	max = m.Positions[0]
	for _, p := range m.Positions[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max
}

// TopologyEdges returns the unique undirected edges of the face graph, each
// pair ordered (low, high) and sorted for determinism.
func (m *Mesh) TopologyEdges() [][2]int {
	seen := make(map[[2]int]struct{}, len(m.Faces)*3)
	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			if a != b {
				seen[[2]int{a, b}] = struct{}{}
			}
		}
	}
	edges := make([][2]int, 0, len(seen))
	for e := range seen {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// Adjacency returns the 1-ring neighbor lists of every vertex.
func (m *Mesh) Adjacency() [][]int {
	adj := make([][]int, len(m.Positions))
	for _, e := range m.TopologyEdges() {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	return adj
}
