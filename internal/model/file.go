package model

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// jointBundle is the on-disk form of a precomputed joint prediction: the
// displacement network evaluated offline (e.g. in the model's own runtime)
// and serialized for this pipeline to consume.
type jointBundle struct {
	Displacements [][3]float64 `json:"displacements"`
	Attention     []float64    `json:"attention"`
	Bandwidth     float64      `json:"bandwidth"`
}

// FileJoints replays a joint prediction loaded from a JSON bundle. Only the
// joint stage can be precomputed this way: the later scorers condition on
// joints discovered at run time, so they need a live scorer.
type FileJoints struct {
	pred JointPrediction
}

// LoadJoints reads a joint prediction bundle from path.
func LoadJoints(path string) (*FileJoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: reading joint bundle: %w", err)
	}
	var b jointBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("model: parsing joint bundle %s: %w", path, err)
	}
	if len(b.Displacements) != len(b.Attention) {
		return nil, fmt.Errorf("model: bundle has %d displacements but %d attention weights",
			len(b.Displacements), len(b.Attention))
	}
	if b.Bandwidth <= 0 {
		return nil, fmt.Errorf("model: bundle bandwidth %v must be positive", b.Bandwidth)
	}
	fj := &FileJoints{pred: JointPrediction{
		Displacements: make([]r3.Vec, len(b.Displacements)),
		Attention:     b.Attention,
		Bandwidth:     b.Bandwidth,
	}}
	for i, d := range b.Displacements {
		fj.pred.Displacements[i] = r3.Vec{X: d[0], Y: d[1], Z: d[2]}
	}
	return fj, nil
}

// PredictJoints returns the loaded prediction after checking it matches the
// mesh it is being applied to.
func (fj *FileJoints) PredictJoints(f *Features) (*JointPrediction, error) {
	if len(fj.pred.Displacements) != len(f.Positions) {
		return nil, fmt.Errorf("model: bundle holds %d vertices but mesh has %d",
			len(fj.pred.Displacements), len(f.Positions))
	}
	return &fj.pred, nil
}
