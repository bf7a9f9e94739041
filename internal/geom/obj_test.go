package geom

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestReadOBJ(t *testing.T) {
	src := `# comment
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1 2 3 4
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if len(m.Positions) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(m.Positions))
	}
	// The quad fan-triangulates into two triangles.
	if len(m.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(m.Faces))
	}
	if m.Faces[0] != [3]int{0, 1, 2} || m.Faces[1] != [3]int{0, 2, 3} {
		t.Errorf("wrong fan triangulation: %v", m.Faces)
	}
	if len(m.Normals) != 4 {
		t.Errorf("expected recomputed normals, got %d", len(m.Normals))
	}
}

func TestReadOBJIndexForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f 1/1 2/2/2 -1//3
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if m.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("wrong indices: %v", m.Faces[0])
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v a b c\n"},
		{"short face", "v 0 0 0\nf 1 1\n"},
		{"out of range index", "v 0 0 0\nf 1 2 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadOBJ(strings.NewReader(tt.src)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	m := squareMesh()
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}

	back, err := ReadOBJ(&buf)
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if len(back.Positions) != len(m.Positions) {
		t.Fatalf("expected %d vertices, got %d", len(m.Positions), len(back.Positions))
	}
	for i := range m.Positions {
		d := math.Abs(back.Positions[i].X-m.Positions[i].X) +
			math.Abs(back.Positions[i].Y-m.Positions[i].Y) +
			math.Abs(back.Positions[i].Z-m.Positions[i].Z)
		if d > 1e-7 {
			t.Errorf("vertex %d drifted by %g", i, d)
		}
	}
	if len(back.Faces) != len(m.Faces) {
		t.Fatalf("expected %d faces, got %d", len(m.Faces), len(back.Faces))
	}
	for i := range m.Faces {
		if back.Faces[i] != m.Faces[i] {
			t.Errorf("face %d: expected %v, got %v", i, m.Faces[i], back.Faces[i])
		}
	}
}
