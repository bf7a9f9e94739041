package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestStubJoints(t *testing.T) {
	f := &Features{Positions: []r3.Vec{
		{X: 0.4, Y: 0.5, Z: -0.2},
		{X: 0, Y: 1, Z: 0},
	}}

	pred, err := StubJoints{Pull: 1}.PredictJoints(f)
	if err != nil {
		t.Fatalf("PredictJoints failed: %v", err)
	}
	if pred.Bandwidth != 0.05 {
		t.Errorf("expected default bandwidth 0.05, got %g", pred.Bandwidth)
	}

	// Full pull moves each vertex onto the vertical axis at its own height.
	c := r3.Add(f.Positions[0], pred.Displacements[0])
	if c.X != 0 || c.Z != 0 {
		t.Errorf("expected candidate on the axis, got %v", c)
	}
	if c.Y != 0.5 {
		t.Errorf("pull must not change height, got %g", c.Y)
	}
	for i, a := range pred.Attention {
		if a != 1 {
			t.Errorf("attention %d should be uniform, got %g", i, a)
		}
	}

	if _, err := (StubJoints{}).PredictJoints(&Features{}); err == nil {
		t.Error("expected error for empty features")
	}
}

func TestStubRoot(t *testing.T) {
	joints := []r3.Vec{
		{X: 0.5, Y: 0.1}, // off-plane
		{X: 0, Y: 0.2},   // on-plane, low
		{X: 0, Y: 0.9},   // on-plane, high
	}
	scores, err := StubRoot{}.ScoreRoots(nil, joints)
	if err != nil {
		t.Fatalf("ScoreRoots failed: %v", err)
	}
	// The on-plane low joint wins.
	if !(scores[1] > scores[0] && scores[1] > scores[2]) {
		t.Errorf("expected joint 1 to score highest, got %v", scores)
	}
}

func TestStubConnectivity(t *testing.T) {
	pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	attrs := []PairAttr{
		{Dist: 0.1, InsideFrac: 1},
		{Dist: 0.1, InsideFrac: 0},
		{Dist: 2, InsideFrac: 1},
	}
	probs, err := StubConnectivity{}.ScorePairs(nil, nil, pairs, attrs)
	if err != nil {
		t.Fatalf("ScorePairs failed: %v", err)
	}

	if probs[0] <= probs[2] {
		t.Error("shorter bones should score higher")
	}
	// Outside bones are clamped at the floor, never zero.
	if probs[1] != 1e-6 {
		t.Errorf("expected clamped probability 1e-6, got %g", probs[1])
	}
	for i, p := range probs {
		if p <= 0 || p > 1 {
			t.Errorf("probability %d out of range: %g", i, p)
		}
	}

	if _, err := (StubConnectivity{}).ScorePairs(nil, nil, pairs, attrs[:1]); err == nil {
		t.Error("expected error for attr count mismatch")
	}
}

func TestStubSkin(t *testing.T) {
	// One vertex, two slots: slot 0 at distance 1, slot 1 at distance 3.
	slots := make([]float64, 16)
	slots[6] = 1.0 / 1.0
	slots[14] = 1.0 / 3.0
	in := &SkinInput{
		Slots: [][]float64{slots},
		Mask:  [][]bool{{true, true}},
	}

	weights, err := StubSkin{}.PredictWeights(nil, in)
	if err != nil {
		t.Fatalf("PredictWeights failed: %v", err)
	}
	if len(weights) != 1 || len(weights[0]) != 2 {
		t.Fatalf("wrong shape: %v", weights)
	}
	sum := weights[0][0] + weights[0][1]
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights should sum to 1, got %g", sum)
	}
	if weights[0][0] <= weights[0][1] {
		t.Error("closer bone should carry more weight")
	}
}

func TestStubSkinMasked(t *testing.T) {
	slots := make([]float64, 16)
	slots[6] = 0.5
	slots[14] = 5 // high score, but masked out
	in := &SkinInput{
		Slots: [][]float64{slots},
		Mask:  [][]bool{{true, false}},
	}

	weights, err := StubSkin{}.PredictWeights(nil, in)
	if err != nil {
		t.Fatalf("PredictWeights failed: %v", err)
	}
	if weights[0][1] != 0 {
		t.Errorf("masked slot must get zero weight, got %g", weights[0][1])
	}
	if math.Abs(weights[0][0]-1) > 1e-12 {
		t.Errorf("single valid slot should get full weight, got %g", weights[0][0])
	}
}

func TestStubSet(t *testing.T) {
	set := StubSet()
	if set.Joints == nil || set.Root == nil || set.Connectivity == nil || set.Skin == nil {
		t.Error("StubSet must fill every scorer")
	}
}
