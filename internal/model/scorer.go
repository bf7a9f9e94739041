// Package model defines the capability interfaces for the four pretrained
// scoring oracles the pipeline consumes, the feature bundle they are fed,
// and deterministic geometric stand-ins used for testing and for running
// the pipeline without any model runtime.
//
// Scorers are pure: the same features always yield the same scores, they
// hold no mutable state past construction, and construction (weight
// loading) is a one-time per-process cost the caller may cache.
package model

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Features is the structured geometric bundle shared by all scorers:
// canonical-frame vertex data plus the two edge sets the networks message
// over.
type Features struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	// TopologyEdges are the mesh's 1-ring edges; GeodesicEdges connect
	// vertices within a surface geodesic radius of each other.
	TopologyEdges [][2]int
	GeodesicEdges [][2]int
}

// JointPrediction is the joint-displacement model's output: a displacement
// per vertex, an attention weight per vertex, and a suggested clustering
// bandwidth.
type JointPrediction struct {
	Displacements []r3.Vec
	Attention     []float64
	Bandwidth     float64
}

// JointScorer predicts where vertices want to move to form joints.
type JointScorer interface {
	PredictJoints(f *Features) (*JointPrediction, error)
}

// RootScorer scores every candidate joint's fitness as skeleton root.
type RootScorer interface {
	ScoreRoots(f *Features, joints []r3.Vec) ([]float64, error)
}

// PairAttr carries the geometric attributes of one candidate bone that the
// connectivity model conditions on.
type PairAttr struct {
	Dist       float64 // Euclidean distance between the pair
	InsideFrac float64 // fraction of segment samples inside the volume
}

// ConnectivityScorer returns, for each unordered joint pair, the
// sigmoid-activated probability that the pair is connected by a bone.
type ConnectivityScorer interface {
	ScorePairs(f *Features, joints []r3.Vec, pairs [][2]int, attrs []PairAttr) ([]float64, error)
}

// SkinInput is one vertex's fixed-width nearest-bone feature block: for
// each of the K slots, the bone's endpoints (6 values), the inverse
// geodesic distance, and the leaf flag. Mask marks slots that hold a real
// bone rather than padding.
type SkinInput struct {
	Slots [][]float64 // V rows of K*8 values
	Mask  [][]bool    // V rows of K validity bits
}

// SkinScorer returns per-slot skinning weights, each row already
// softmax-normalized over the K slots.
type SkinScorer interface {
	PredictWeights(f *Features, in *SkinInput) ([][]float64, error)
}

// Set bundles one scorer per stage.
type Set struct {
	Joints       JointScorer
	Root         RootScorer
	Connectivity ConnectivityScorer
	Skin         SkinScorer
}
