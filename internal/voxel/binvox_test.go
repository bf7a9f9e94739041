package voxel

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBinvoxRoundTrip(t *testing.T) {
	g := NewGrid(8, r3.Vec{X: -0.5, Y: 0, Z: 0.25}, 1.5)
	// An asymmetric pattern so axis confusion would be caught.
	g.Set(0, 0, 0, true)
	g.Set(1, 2, 3, true)
	g.Set(7, 7, 7, true)
	for y := 0; y < 8; y++ {
		g.Set(4, y, 2, true)
	}

	var buf bytes.Buffer
	if err := WriteBinvox(&buf, g); err != nil {
		t.Fatalf("WriteBinvox failed: %v", err)
	}

	back, err := ReadBinvox(&buf)
	if err != nil {
		t.Fatalf("ReadBinvox failed: %v", err)
	}
	if back.N != g.N {
		t.Fatalf("expected resolution %d, got %d", g.N, back.N)
	}
	if math.Abs(back.Scale-g.Scale) > 1e-5 {
		t.Errorf("expected scale %g, got %g", g.Scale, back.Scale)
	}
	if math.Abs(back.Translate.X-g.Translate.X) > 1e-5 ||
		math.Abs(back.Translate.Y-g.Translate.Y) > 1e-5 ||
		math.Abs(back.Translate.Z-g.Translate.Z) > 1e-5 {
		t.Errorf("expected translate %v, got %v", g.Translate, back.Translate)
	}
	if back.Count() != g.Count() {
		t.Fatalf("expected %d occupied cells, got %d", g.Count(), back.Count())
	}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			for z := 0; z < 8; z++ {
				if back.At(x, y, z) != g.At(x, y, z) {
					t.Fatalf("cell (%d,%d,%d) changed across round trip", x, y, z)
				}
			}
		}
	}
}

func TestBinvoxLongRuns(t *testing.T) {
	// A fully occupied grid forces runs longer than one RLE byte.
	g := NewGrid(8, r3.Vec{}, 1)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			for z := 0; z < 8; z++ {
				g.Set(x, y, z, true)
			}
		}
	}

	var buf bytes.Buffer
	if err := WriteBinvox(&buf, g); err != nil {
		t.Fatalf("WriteBinvox failed: %v", err)
	}
	back, err := ReadBinvox(&buf)
	if err != nil {
		t.Fatalf("ReadBinvox failed: %v", err)
	}
	if back.Count() != 512 {
		t.Errorf("expected 512 occupied cells, got %d", back.Count())
	}
}

func TestReadBinvoxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad signature", "#voxels 1\ndim 2 2 2\n"},
		{"non-cubic", "#binvox 1\ndim 2 3 2\ntranslate 0 0 0\nscale 1\ndata\n"},
		{"truncated data", "#binvox 1\ndim 2 2 2\ntranslate 0 0 0\nscale 1\ndata\n\x01"},
		{"run overflow", "#binvox 1\ndim 2 2 2\ntranslate 0 0 0\nscale 1\ndata\n\x01\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadBinvox(strings.NewReader(tt.src)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}
