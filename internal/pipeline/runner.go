// Package pipeline wires the rigging stages together: normalization,
// voxelization, joint localization, skeleton topology, volumetric geodesics
// and skinning. All intermediate state lives in the per-run result, so
// independent runs are reentrant.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/autorig/autorig/internal/geodesic"
	"github.com/autorig/autorig/internal/geom"
	"github.com/autorig/autorig/internal/joints"
	"github.com/autorig/autorig/internal/model"
	"github.com/autorig/autorig/internal/rig"
	"github.com/autorig/autorig/internal/skeleton"
	"github.com/autorig/autorig/internal/skin"
	"github.com/autorig/autorig/internal/voxel"
)

// Options are the tunables of one pipeline run.
type Options struct {
	// ZUp applies the basis change for hosts with Z-up coordinates.
	ZUp bool
	// Resolution is the voxel grid resolution (default 88).
	Resolution int
	// GeodesicEdgeRadius bounds the geodesic feature edge set (default 0.06).
	GeodesicEdgeRadius float64
	// OutsidePenalty scales the cost added to bones leaving the volume.
	OutsidePenalty float64

	Localizer joints.Localizer
	Estimator geodesic.Estimator
	Assembler skin.Assembler
}

func (o Options) withDefaults() Options {
	if o.Resolution <= 0 {
		o.Resolution = 88
	}
	if o.GeodesicEdgeRadius <= 0 {
		o.GeodesicEdgeRadius = 0.06
	}
	if o.OutsidePenalty <= 0 {
		o.OutsidePenalty = 10
	}
	return o
}

// Runner executes the full rigging pipeline. Scorer construction is the
// caller's one-time cost; a Runner may serve many meshes, one Run at a
// time each with its own Result.
type Runner struct {
	Scorers   *model.Set
	Voxelizer voxel.Voxelizer
	Options   Options
	Log       *zap.Logger
}

// Result carries the rig plus the intermediates worth keeping for
// inspection and debug rendering.
type Result struct {
	// Mesh is the normalized working copy; the caller's mesh is untouched.
	Mesh      *geom.Mesh
	Transform geom.Transform
	Grid      *voxel.Grid
	Joints    []r3.Vec
	Densities []float64
	Skeleton  *rig.Skeleton
	Rig       *rig.Rig
}

// Run performs the stage-sequential pipeline on the mesh. Each stage fully
// completes before the next begins; ctx is consulted at stage boundaries
// only (a caller aborts between stages, never mid-stage).
func (r *Runner) Run(ctx context.Context, mesh *geom.Mesh) (*Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	opt := r.Options.withDefaults()
	res := &Result{Mesh: mesh.Clone()}

	// Stage 1: normalization into the canonical frame.
	start := time.Now()
	transform, err := geom.Normalize(res.Mesh, opt.ZUp)
	if err != nil {
		return res, err
	}
	res.Transform = transform
	log.Info("mesh normalized",
		zap.Int("vertices", len(res.Mesh.Positions)),
		zap.Int("faces", len(res.Mesh.Faces)),
		zap.Float64("scale", transform.Scale),
		zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Stage 2: features and the surface geodesic matrix.
	start = time.Now()
	surfGeo := geom.SurfaceGeodesic(res.Mesh)
	features := &model.Features{
		Positions:     res.Mesh.Positions,
		Normals:       res.Mesh.Normals,
		TopologyEdges: res.Mesh.TopologyEdges(),
		GeodesicEdges: geom.GeodesicEdges(res.Mesh, surfGeo, opt.GeodesicEdgeRadius),
	}
	log.Info("surface geodesics computed",
		zap.Int("topology_edges", len(features.TopologyEdges)),
		zap.Int("geodesic_edges", len(features.GeodesicEdges)),
		zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Stage 3: voxelization.
	start = time.Now()
	res.Grid, err = r.Voxelizer.Voxelize(res.Mesh, opt.Resolution)
	if err != nil {
		return res, fmt.Errorf("voxelizing mesh: %w", err)
	}
	log.Info("mesh voxelized",
		zap.Int("resolution", res.Grid.N),
		zap.Int("occupied", res.Grid.Count()),
		zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Stage 4: joint localization.
	start = time.Now()
	pred, err := r.Scorers.Joints.PredictJoints(features)
	if err != nil {
		return res, fmt.Errorf("joint model: %w", err)
	}
	res.Joints, res.Densities, err = opt.Localizer.Localize(pred, res.Mesh.Positions, res.Grid)
	if err != nil {
		return res, err
	}
	log.Info("joints localized",
		zap.Int("joints", len(res.Joints)),
		zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Stage 5: skeleton topology.
	start = time.Now()
	rootScores, err := r.Scorers.Root.ScoreRoots(features, res.Joints)
	if err != nil {
		return res, fmt.Errorf("root model: %w", err)
	}
	root, err := skeleton.SelectRoot(rootScores)
	if err != nil {
		return res, err
	}
	pairs, attrs := skeleton.PairAttrs(res.Joints, res.Grid)
	probs, err := r.Scorers.Connectivity.ScorePairs(features, res.Joints, pairs, attrs)
	if err != nil {
		return res, fmt.Errorf("connectivity model: %w", err)
	}
	cost, err := skeleton.CostMatrix(len(res.Joints), pairs, probs, attrs, opt.OutsidePenalty)
	if err != nil {
		return res, err
	}
	parent, err := skeleton.PrimSymmetric(cost, root, res.Joints)
	if err != nil {
		return res, err
	}
	res.Skeleton, err = skeleton.Build(res.Joints, parent, root)
	if err != nil {
		return res, err
	}
	log.Info("skeleton built",
		zap.Int("root", root),
		zap.Int("bones", len(res.Skeleton.Bones())),
		zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Stage 6: volumetric geodesic matrix.
	start = time.Now()
	geoDist, err := opt.Estimator.Matrix(res.Mesh, res.Skeleton, surfGeo)
	if err != nil {
		return res, err
	}
	log.Info("volumetric geodesics estimated", zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Stage 7: skinning and rig assembly.
	start = time.Now()
	res.Rig, err = opt.Assembler.Assemble(features, geoDist, res.Skeleton, r.Scorers.Skin, res.Mesh, transform)
	if err != nil {
		return res, err
	}
	if err := res.Rig.Denormalize(); err != nil {
		return res, err
	}
	log.Info("rig assembled", zap.Duration("took", time.Since(start)))
	return res, nil
}
