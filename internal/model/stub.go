package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// StubJoints is a deterministic stand-in for the joint-displacement model:
// every vertex is pulled toward the vertical axis through the mesh interior
// (no learned displacement field), with uniform attention. Pull controls
// how far toward the axis each vertex moves; 0 leaves vertices in place.
type StubJoints struct {
	Bandwidth float64
	Pull      float64
}

// PredictJoints displaces each vertex Pull of the way toward the vertical
// axis at its own height.
func (s StubJoints) PredictJoints(f *Features) (*JointPrediction, error) {
	if len(f.Positions) == 0 {
		return nil, fmt.Errorf("model: empty feature bundle")
	}
	bw := s.Bandwidth
	if bw <= 0 {
		bw = 0.05
	}
	disp := make([]r3.Vec, len(f.Positions))
	attn := make([]float64, len(f.Positions))
	for i, p := range f.Positions {
		disp[i] = r3.Vec{X: -s.Pull * p.X, Y: 0, Z: -s.Pull * p.Z}
		attn[i] = 1
	}
	return &JointPrediction{Displacements: disp, Attention: attn, Bandwidth: bw}, nil
}

// StubRoot scores joints by closeness to the symmetry plane and then by
// lowness, mimicking the hips-near-the-plane prior of the learned root
// classifier.
type StubRoot struct{}

// ScoreRoots returns -10*|x| - y per joint.
func (StubRoot) ScoreRoots(_ *Features, joints []r3.Vec) ([]float64, error) {
	scores := make([]float64, len(joints))
	for i, j := range joints {
		scores[i] = -10*math.Abs(j.X) - j.Y
	}
	return scores, nil
}

// StubConnectivity scores pairs by an exponential falloff in distance,
// dampened by how much of the segment leaves the volume.
type StubConnectivity struct{}

// ScorePairs returns exp(-4*dist) * insideFrac per pair, clamped away from
// zero so the downstream -log cost stays finite.
func (StubConnectivity) ScorePairs(_ *Features, _ []r3.Vec, pairs [][2]int, attrs []PairAttr) ([]float64, error) {
	if len(pairs) != len(attrs) {
		return nil, fmt.Errorf("model: %d pairs with %d attributes", len(pairs), len(attrs))
	}
	probs := make([]float64, len(pairs))
	for i, a := range attrs {
		p := math.Exp(-4*a.Dist) * a.InsideFrac
		if p < 1e-6 {
			p = 1e-6
		}
		probs[i] = p
	}
	return probs, nil
}

// StubSkin weights each vertex's candidate bones by their inverse geodesic
// distance, softmaxed, which is what the learned skinning network converges
// to on featureless geometry.
type StubSkin struct{}

// PredictWeights softmaxes the inverse-distance feature of each valid slot.
func (StubSkin) PredictWeights(_ *Features, in *SkinInput) ([][]float64, error) {
	out := make([][]float64, len(in.Slots))
	for v, slots := range in.Slots {
		k := len(slots) / 8
		logits := make([]float64, k)
		maxLogit := math.Inf(-1)
		for s := 0; s < k; s++ {
			l := slots[s*8+6] // inverse distance feature
			if !in.Mask[v][s] {
				l = math.Inf(-1)
			}
			logits[s] = l
			if l > maxLogit {
				maxLogit = l
			}
		}
		weights := make([]float64, k)
		var sum float64
		for s, l := range logits {
			if math.IsInf(l, -1) {
				continue
			}
			w := math.Exp(l - maxLogit)
			weights[s] = w
			sum += w
		}
		if sum > 0 {
			for s := range weights {
				weights[s] /= sum
			}
		}
		out[v] = weights
	}
	return out, nil
}

// StubSet returns a full set of deterministic scorers.
func StubSet() *Set {
	return &Set{
		Joints:       StubJoints{},
		Root:         StubRoot{},
		Connectivity: StubConnectivity{},
		Skin:         StubSkin{},
	}
}
