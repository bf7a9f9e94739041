package model

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func writeBundle(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "joints.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing bundle: %v", err)
	}
	return path
}

func TestLoadJoints(t *testing.T) {
	path := writeBundle(t, `{
		"displacements": [[0.1, 0.2, 0.3], [0, 0, 0]],
		"attention": [0.9, 0.1],
		"bandwidth": 0.05
	}`)

	fj, err := LoadJoints(path)
	if err != nil {
		t.Fatalf("LoadJoints failed: %v", err)
	}

	f := &Features{Positions: []r3.Vec{{}, {}}}
	pred, err := fj.PredictJoints(f)
	if err != nil {
		t.Fatalf("PredictJoints failed: %v", err)
	}
	if pred.Bandwidth != 0.05 {
		t.Errorf("expected bandwidth 0.05, got %g", pred.Bandwidth)
	}
	if pred.Displacements[0] != (r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}) {
		t.Errorf("wrong displacement: %v", pred.Displacements[0])
	}
	if pred.Attention[1] != 0.1 {
		t.Errorf("wrong attention: %g", pred.Attention[1])
	}
}

func TestLoadJointsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{`},
		{"count mismatch", `{"displacements": [[0,0,0]], "attention": [1, 1], "bandwidth": 0.05}`},
		{"zero bandwidth", `{"displacements": [[0,0,0]], "attention": [1], "bandwidth": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadJoints(writeBundle(t, tt.content)); err == nil {
				t.Error("expected load error, got nil")
			}
		})
	}

	if _, err := LoadJoints("/nonexistent/joints.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileJointsVertexMismatch(t *testing.T) {
	path := writeBundle(t, `{"displacements": [[0,0,0]], "attention": [1], "bandwidth": 0.05}`)
	fj, err := LoadJoints(path)
	if err != nil {
		t.Fatalf("LoadJoints failed: %v", err)
	}
	if _, err := fj.PredictJoints(&Features{Positions: []r3.Vec{{}, {}}}); err == nil {
		t.Error("expected error for vertex count mismatch")
	}
}
