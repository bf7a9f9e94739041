// Package main is the entry point for the autorig CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/autorig/autorig/internal/config"
	"github.com/autorig/autorig/internal/geodesic"
	"github.com/autorig/autorig/internal/geom"
	"github.com/autorig/autorig/internal/joints"
	"github.com/autorig/autorig/internal/logger"
	"github.com/autorig/autorig/internal/model"
	"github.com/autorig/autorig/internal/pipeline"
	"github.com/autorig/autorig/internal/render"
	"github.com/autorig/autorig/internal/skin"
	"github.com/autorig/autorig/internal/voxel"
)

var (
	flagMesh       = flag.String("mesh", "", "Input mesh (OBJ)")
	flagOut        = flag.String("out", "", "Output rig JSON (default stdout)")
	flagScores     = flag.String("scores", "", "Precomputed joint prediction JSON")
	flagZUp        = flag.Bool("zup", false, "Input mesh uses Z-up coordinates")
	flagDebugImage = flag.String("debug-image", "", "Write a WebP snapshot of the rig")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *flagMesh == "" {
		fmt.Fprintln(os.Stderr, "Usage: autorig -mesh <file.obj> [-out rig.json] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger.Info("=== autorig ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("rigging failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("done")
}

func run(ctx context.Context, cfg *config.Config) error {
	f, err := os.Open(*flagMesh)
	if err != nil {
		return fmt.Errorf("opening mesh: %w", err)
	}
	mesh, err := geom.ReadOBJ(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading mesh: %w", err)
	}
	logger.Info("mesh loaded",
		zap.String("path", *flagMesh),
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("faces", len(mesh.Faces)))

	scorers := model.StubSet()
	if *flagScores != "" {
		fj, err := model.LoadJoints(*flagScores)
		if err != nil {
			return fmt.Errorf("loading joint scores: %w", err)
		}
		scorers.Joints = fj
	}

	var voxelizer voxel.Voxelizer
	if cfg.Voxel.BinvoxPath != "" {
		voxelizer = &voxel.BinvoxRunner{Path: cfg.Voxel.BinvoxPath}
	} else {
		voxelizer = voxel.Rasterizer{}
	}

	runner := &pipeline.Runner{
		Scorers:   scorers,
		Voxelizer: voxelizer,
		Options: pipeline.Options{
			ZUp:            *flagZUp,
			Resolution:     cfg.Voxel.Resolution,
			OutsidePenalty: cfg.Skeleton.OutsidePenalty,
			Localizer: joints.Localizer{
				Bandwidth:     cfg.Joints.Bandwidth,
				Threshold:     cfg.Joints.Threshold,
				MinAttention:  cfg.Joints.MinAttention,
				MaxIterations: cfg.Joints.MaxIterations,
			},
			Estimator: geodesic.Estimator{
				Subsample:     true,
				SampleLimit:   cfg.Geodesic.SampleLimit,
				DecimateFaces: cfg.Geodesic.DecimateFaces,
				Seed:          cfg.Geodesic.Seed,
				Workers:       cfg.Geodesic.Workers,
			},
			Assembler: skin.Assembler{
				NearestBones: cfg.Skin.NearestBones,
				RelThreshold: cfg.Skin.RelThreshold,
			},
		},
		Log: logger.Log,
	}

	res, err := runner.Run(ctx, mesh)
	if err != nil {
		return err
	}

	if *flagDebugImage != "" {
		if err := writeDebugImage(res, *flagDebugImage); err != nil {
			logger.Warn("debug image failed", zap.Error(err))
		}
	}

	out := os.Stdout
	if *flagOut != "" {
		out, err = os.Create(*flagOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()
	}
	if err := res.Rig.WriteJSON(out); err != nil {
		return fmt.Errorf("writing rig: %w", err)
	}
	if *flagOut != "" {
		logger.Info("rig written", zap.String("path", *flagOut))
	}
	return nil
}

func writeDebugImage(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	snap := render.Snapshot{
		Mesh:      res.Mesh,
		Joints:    res.Joints,
		Densities: res.Densities,
		Skeleton:  res.Skeleton,
	}
	return render.WriteWebP(f, snap, 1024)
}
