package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagBinvox     = flag.String("binvox", "", "Path to binvox executable")
	flagResolution = flag.Int("resolution", 0, "Voxel grid resolution")
	flagWorkers    = flag.Int("workers", 0, "Visibility worker count")
	flagSeed       = flag.Int64("seed", 0, "Subsampling random seed")
	flagBandwidth  = flag.Float64("bandwidth", 0, "Clustering bandwidth (0 uses the model estimate)")
	flagThreshold  = flag.Float64("threshold", 0, "Density prune threshold")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBinvox != "" {
		cfg.Voxel.BinvoxPath = *flagBinvox
	}
	if *flagResolution > 0 {
		cfg.Voxel.Resolution = *flagResolution
	}
	if *flagWorkers > 0 {
		cfg.Geodesic.Workers = *flagWorkers
	}
	if *flagSeed != 0 {
		cfg.Geodesic.Seed = *flagSeed
	}
	if *flagBandwidth > 0 {
		cfg.Joints.Bandwidth = *flagBandwidth
	}
	if *flagThreshold > 0 {
		cfg.Joints.Threshold = *flagThreshold
	}
}
