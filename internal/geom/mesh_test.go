package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// squareMesh is two triangles forming the unit square in the XY plane.
func squareMesh() *Mesh {
	m := &Mesh{
		Positions: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	m.ComputeNormals()
	return m
}

func TestNewMesh(t *testing.T) {
	positions := []r3.Vec{{X: 0}, {X: 1}, {Y: 1}}
	m, err := NewMesh(positions, nil, [][3]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}
	if len(m.Normals) != 3 {
		t.Errorf("expected 3 derived normals, got %d", len(m.Normals))
	}

	if _, err := NewMesh(nil, nil, nil); err == nil {
		t.Error("expected error for empty mesh")
	}
	if _, err := NewMesh(positions, nil, [][3]int{{0, 1, 5}}); err == nil {
		t.Error("expected error for out-of-range face index")
	}
	if _, err := NewMesh(positions, []r3.Vec{{Z: 1}}, nil); err == nil {
		t.Error("expected error for normal count mismatch")
	}
}

func TestComputeNormals(t *testing.T) {
	m := squareMesh()
	for i, n := range m.Normals {
		if math.Abs(n.Z-1) > 1e-12 || math.Abs(n.X) > 1e-12 || math.Abs(n.Y) > 1e-12 {
			t.Errorf("vertex %d: expected normal (0,0,1), got %v", i, n)
		}
	}
}

func TestBounds(t *testing.T) {
	m := &Mesh{Positions: []r3.Vec{
		{X: -1, Y: 2, Z: 0},
		{X: 3, Y: -4, Z: 5},
		{X: 0, Y: 0, Z: -2},
	}}
	min, max := m.Bounds()
	if min.X != -1 || min.Y != -4 || min.Z != -2 {
		t.Errorf("wrong min: %v", min)
	}
	if max.X != 3 || max.Y != 2 || max.Z != 5 {
		t.Errorf("wrong max: %v", max)
	}
}

func TestTopologyEdges(t *testing.T) {
	edges := squareMesh().TopologyEdges()
	want := [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {2, 3}}
	if len(edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(edges))
	}
	for i, e := range edges {
		if e != want[i] {
			t.Errorf("edge %d: expected %v, got %v", i, want[i], e)
		}
	}
}

func TestAdjacency(t *testing.T) {
	adj := squareMesh().Adjacency()
	if len(adj) != 4 {
		t.Fatalf("expected 4 adjacency lists, got %d", len(adj))
	}
	// Vertex 0 sits on both triangles and touches every other vertex.
	if len(adj[0]) != 3 {
		t.Errorf("expected 3 neighbors for vertex 0, got %d", len(adj[0]))
	}
	// Vertices 1 and 3 touch two vertices each.
	if len(adj[1]) != 2 || len(adj[3]) != 2 {
		t.Errorf("expected 2 neighbors for vertices 1 and 3, got %d and %d", len(adj[1]), len(adj[3]))
	}
}

func TestClone(t *testing.T) {
	m := squareMesh()
	c := m.Clone()
	c.Positions[0].X = 99
	c.Faces[0][0] = 3
	if m.Positions[0].X == 99 {
		t.Error("clone shares position storage with original")
	}
	if m.Faces[0][0] == 3 {
		t.Error("clone shares face storage with original")
	}
}
