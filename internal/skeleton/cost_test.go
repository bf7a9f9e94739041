package skeleton

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/model"
	"github.com/autorig/autorig/internal/rig"
	"github.com/autorig/autorig/internal/voxel"
)

func TestSampleSegment(t *testing.T) {
	// A segment of length 0.1 at step 0.01 gives 11 samples.
	pts := SampleSegment(r3.Vec{}, r3.Vec{X: 0.1})
	if len(pts) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(pts))
	}
	if pts[0].X != 0 || math.Abs(pts[10].X-0.1) > 1e-12 {
		t.Errorf("endpoints not included: %v ... %v", pts[0], pts[10])
	}

	// Coincident endpoints still produce two samples.
	if pts := SampleSegment(r3.Vec{X: 1}, r3.Vec{X: 1}); len(pts) != 2 {
		t.Errorf("expected 2 samples for a zero-length segment, got %d", len(pts))
	}
}

func TestPairAttrs(t *testing.T) {
	joints := []r3.Vec{
		{X: 0.25, Y: 0.25, Z: 0.25},
		{X: 0.75, Y: 0.25, Z: 0.25},
		{X: 0.25, Y: 0.75, Z: 0.25},
	}
	// Occupy the full unit cube: every sample is inside.
	g := voxel.NewGrid(2, r3.Vec{}, 1)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				g.Set(x, y, z, true)
			}
		}
	}

	pairs, attrs := PairAttrs(joints, g)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	if pairs[0] != [2]int{0, 1} || pairs[1] != [2]int{0, 2} || pairs[2] != [2]int{1, 2} {
		t.Errorf("wrong pair enumeration: %v", pairs)
	}
	if math.Abs(attrs[0].Dist-0.5) > 1e-12 {
		t.Errorf("expected distance 0.5, got %g", attrs[0].Dist)
	}
	for i, a := range attrs {
		if a.InsideFrac != 1 {
			t.Errorf("pair %d: expected full containment, got %g", i, a.InsideFrac)
		}
	}
}

func TestPairAttrsOutside(t *testing.T) {
	// Empty grid: everything is outside.
	g := voxel.NewGrid(2, r3.Vec{}, 1)
	_, attrs := PairAttrs([]r3.Vec{{X: 0.2}, {X: 0.8}}, g)
	if attrs[0].InsideFrac != 0 {
		t.Errorf("expected zero containment, got %g", attrs[0].InsideFrac)
	}
}

func TestCostMatrix(t *testing.T) {
	pairs := [][2]int{{0, 1}, {0, 2}}
	probs := []float64{0.9, 0.1}
	attrs := []model.PairAttr{
		{Dist: 1, InsideFrac: 1},
		{Dist: 1, InsideFrac: 0},
	}

	cost, err := CostMatrix(3, pairs, probs, attrs, 10)
	if err != nil {
		t.Fatalf("CostMatrix failed: %v", err)
	}

	// Fully inside: pure -log probability.
	if c := cost.At(0, 1); math.Abs(c-(-math.Log(0.9+1e-10))) > 1e-9 {
		t.Errorf("wrong inside cost: %g", c)
	}
	// Fully outside: -log probability plus penalty * dist.
	want := -math.Log(0.1+1e-10) + 10
	if c := cost.At(0, 2); math.Abs(c-want) > 1e-9 {
		t.Errorf("wrong outside cost: %g, want %g", c, want)
	}
	// Unlisted pairs stay at zero and the matrix is symmetric.
	if cost.At(1, 0) != cost.At(0, 1) {
		t.Error("cost matrix is not symmetric")
	}
}

func TestCostMatrixZeroProbability(t *testing.T) {
	cost, err := CostMatrix(2, [][2]int{{0, 1}}, []float64{0},
		[]model.PairAttr{{Dist: 1, InsideFrac: 1}}, 10)
	if err != nil {
		t.Fatalf("CostMatrix failed: %v", err)
	}
	if c := cost.At(0, 1); math.IsInf(c, 1) || c < 20 {
		t.Errorf("zero probability should cost about -log(eps), got %g", c)
	}
}

func TestCostMatrixInvalid(t *testing.T) {
	attrs := []model.PairAttr{{Dist: 1, InsideFrac: 1}}

	if _, err := CostMatrix(2, [][2]int{{0, 1}}, []float64{math.NaN()}, attrs, 10); !errors.Is(err, rig.ErrInvariant) {
		t.Errorf("expected ErrInvariant for NaN probability, got %v", err)
	}
	if _, err := CostMatrix(2, [][2]int{{0, 1}}, []float64{-0.5}, attrs, 10); !errors.Is(err, rig.ErrInvariant) {
		t.Errorf("expected ErrInvariant for negative probability, got %v", err)
	}
	if _, err := CostMatrix(2, [][2]int{{0, 1}}, []float64{0.5, 0.5}, attrs, 10); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestSelectRoot(t *testing.T) {
	root, err := SelectRoot([]float64{-3, 7, 2})
	if err != nil {
		t.Fatalf("SelectRoot failed: %v", err)
	}
	if root != 1 {
		t.Errorf("expected root 1, got %d", root)
	}

	if _, err := SelectRoot(nil); !errors.Is(err, rig.ErrInvariant) {
		t.Errorf("expected ErrInvariant for empty scores, got %v", err)
	}
}
