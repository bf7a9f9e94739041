package joints

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestKernelVal(t *testing.T) {
	if v := kernelVal(1, 0.25); math.Abs(v-0.75) > 1e-12 {
		t.Errorf("expected 0.75, got %g", v)
	}
	if v := kernelVal(1, 2); v != 0 {
		t.Errorf("kernel must truncate to 0 beyond the bandwidth, got %g", v)
	}
	if v := kernelVal(1, 1); v != 0 {
		t.Errorf("kernel is 0 exactly at the bandwidth, got %g", v)
	}
}

func TestMeanShiftTwoClusters(t *testing.T) {
	// Two tight groups far apart: points must converge within their group
	// and stay away from the other.
	points := []r3.Vec{
		{X: 0.00}, {X: 0.01}, {X: -0.01},
		{X: 1.00}, {X: 1.01}, {X: 0.99},
	}
	weights := []float64{1, 1, 1, 1, 1, 1}

	shifted := MeanShift(points, weights, 0.1, 40)
	for i := 0; i < 3; i++ {
		if math.Abs(shifted[i].X) > 0.02 {
			t.Errorf("point %d should stay near cluster at 0, got %g", i, shifted[i].X)
		}
	}
	for i := 3; i < 6; i++ {
		if math.Abs(shifted[i].X-1) > 0.02 {
			t.Errorf("point %d should stay near cluster at 1, got %g", i, shifted[i].X)
		}
	}

	// Within a cluster the points collapse to a common mode.
	if d := dist2(shifted[0], shifted[1]); d > 1e-6 {
		t.Errorf("cluster members did not converge, spread %g", d)
	}

	// Input slice is untouched.
	if points[1].X != 0.01 {
		t.Error("MeanShift modified its input")
	}
}

func TestMeanShiftWeighted(t *testing.T) {
	// With overwhelming weight on one point, the mode lands on it.
	points := []r3.Vec{{X: 0}, {X: 0.05}}
	weights := []float64{100, 1}

	shifted := MeanShift(points, weights, 0.1, 40)
	if math.Abs(shifted[1].X) > 0.01 {
		t.Errorf("light point should be pulled to the heavy one, got %g", shifted[1].X)
	}
}

func TestMeanShiftIsolated(t *testing.T) {
	// A point with nothing in kernel range keeps its position.
	points := []r3.Vec{{X: 0}, {X: 10}}
	weights := []float64{1, 1}

	shifted := MeanShift(points, weights, 0.1, 40)
	if shifted[1].X != 10 {
		t.Errorf("isolated point moved to %g", shifted[1].X)
	}
}

func TestDensities(t *testing.T) {
	points := []r3.Vec{{X: 0}, {X: 0}, {X: 5}}
	density, total := Densities(points, 1)

	// The coincident pair sees two full-kernel contributions, the far point
	// only its own.
	if density[0] != 2 || density[1] != 2 {
		t.Errorf("expected density 2 for the pair, got %g and %g", density[0], density[1])
	}
	if density[2] != 1 {
		t.Errorf("expected density 1 for the lone point, got %g", density[2])
	}
	if math.Abs(total-5) > 1e-12 {
		t.Errorf("expected total 5, got %g", total)
	}
}

func TestSuppress(t *testing.T) {
	points := []r3.Vec{
		{X: 0},            // density 3, kept
		{X: 0.05},         // inside radius of the first, suppressed
		{X: 1},            // kept
		{X: 0.5, Y: 0.02}, // outside both radii, kept
	}
	density := []float64{3, 2, 2.5, 1}

	kept, keptDen := suppress(points, density, 0.1)
	if len(kept) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(kept))
	}
	// Descending density order.
	if keptDen[0] != 3 || keptDen[1] != 2.5 || keptDen[2] != 1 {
		t.Errorf("wrong survivor order: %v", keptDen)
	}
	if kept[0].X != 0 || kept[1].X != 1 || kept[2].X != 0.5 {
		t.Errorf("wrong survivors: %v", kept)
	}
}
