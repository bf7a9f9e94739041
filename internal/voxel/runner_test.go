package voxel

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/geom"
)

func testMesh(t *testing.T) *geom.Mesh {
	t.Helper()
	m, err := geom.NewMesh(
		[]r3.Vec{{X: 0}, {X: 1}, {Y: 1}},
		nil,
		[][3]int{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("building test mesh: %v", err)
	}
	return m
}

func TestBinvoxRunnerNoPath(t *testing.T) {
	r := &BinvoxRunner{}
	_, err := r.Voxelize(testMesh(t), 32)
	if !errors.Is(err, ErrToolingUnavailable) {
		t.Errorf("expected ErrToolingUnavailable, got %v", err)
	}
}

func TestBinvoxRunnerMissingExecutable(t *testing.T) {
	r := &BinvoxRunner{Path: "/nonexistent/binvox"}
	_, err := r.Voxelize(testMesh(t), 32)
	if !errors.Is(err, ErrToolingUnavailable) {
		t.Errorf("expected ErrToolingUnavailable, got %v", err)
	}
}

func TestBinvoxRunnerFailingTool(t *testing.T) {
	// A stand-in executable that exits nonzero and writes no output.
	dir := t.TempDir()
	tool := filepath.Join(dir, "binvox")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\nexit 3\n"), 0755); err != nil {
		t.Fatalf("writing stub tool: %v", err)
	}

	r := &BinvoxRunner{Path: tool}
	_, err := r.Voxelize(testMesh(t), 32)
	if !errors.Is(err, ErrToolingUnavailable) {
		t.Errorf("expected ErrToolingUnavailable, got %v", err)
	}

	// The runner must not leave its working directory behind.
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatalf("reading temp dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "autorig-vox-") {
			t.Errorf("leftover temp dir %s", e.Name())
		}
	}
}

func TestBinvoxRunnerNoOutput(t *testing.T) {
	// A tool that succeeds but writes nothing.
	dir := t.TempDir()
	tool := filepath.Join(dir, "binvox")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("writing stub tool: %v", err)
	}

	r := &BinvoxRunner{Path: tool}
	_, err := r.Voxelize(testMesh(t), 32)
	if !errors.Is(err, ErrToolingUnavailable) {
		t.Errorf("expected ErrToolingUnavailable, got %v", err)
	}
}
