// Package config handles pipeline configuration loading and management.
package config

// Config holds all pipeline settings.
type Config struct {
	Voxel    VoxelConfig    `yaml:"voxel"`
	Joints   JointsConfig   `yaml:"joints"`
	Skeleton SkeletonConfig `yaml:"skeleton"`
	Geodesic GeodesicConfig `yaml:"geodesic"`
	Skin     SkinConfig     `yaml:"skin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// VoxelConfig holds voxelization settings.
type VoxelConfig struct {
	// BinvoxPath is the external voxelizer executable. When empty, the
	// built-in rasterizer is used instead.
	BinvoxPath string `yaml:"binvox_path"`
	Resolution int    `yaml:"resolution"`
}

// JointsConfig holds joint localization settings.
type JointsConfig struct {
	Bandwidth     float64 `yaml:"bandwidth"` // 0 defers to the model's suggestion
	Threshold     float64 `yaml:"threshold"`
	MinAttention  float64 `yaml:"min_attention"`
	MaxIterations int     `yaml:"max_iterations"`
}

// SkeletonConfig holds skeleton topology settings.
type SkeletonConfig struct {
	OutsidePenalty float64 `yaml:"outside_penalty"`
}

// GeodesicConfig holds volumetric geodesic estimation settings.
type GeodesicConfig struct {
	SampleLimit   int   `yaml:"sample_limit"`
	DecimateFaces int   `yaml:"decimate_faces"`
	Seed          int64 `yaml:"seed"`
	Workers       int   `yaml:"workers"`
}

// SkinConfig holds skinning settings.
type SkinConfig struct {
	NearestBones int     `yaml:"nearest_bones"`
	RelThreshold float64 `yaml:"rel_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Voxel: VoxelConfig{
			BinvoxPath: "",
			Resolution: 88,
		},
		Joints: JointsConfig{
			Bandwidth:     0,
			Threshold:     1e-5,
			MinAttention:  1e-3,
			MaxIterations: 40,
		},
		Skeleton: SkeletonConfig{
			OutsidePenalty: 10,
		},
		Geodesic: GeodesicConfig{
			SampleLimit:   1500,
			DecimateFaces: 3000,
			Seed:          1,
			Workers:       0,
		},
		Skin: SkinConfig{
			NearestBones: 5,
			RelThreshold: 0.35,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
