package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	LogLevel   string             `yaml:"log_level"`
	Generation GenerationSettings `yaml:"generation"`
	Layers     []NoiseLayer       `yaml:"noise_layers"`
	Chunks     ChunkConfig        `yaml:"chunks"`
	Cache      CacheConfig        `yaml:"cache"`
	Viewer     ViewerConfig       `yaml:"viewer"`
}

// Offset is a 3D offset applied to noise sampling
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// GenerationSettings contains every tunable of the cave generation pipeline.
// A settings value is created once per world/region and read-only thereafter.
type GenerationSettings struct {
	Seed        int64  `yaml:"seed"` // 0 means pick from current time
	NoiseOffset Offset `yaml:"noise_offset"`

	// Chamber placement
	ChamberFrequency     float64 `yaml:"chamber_frequency"` // chambers per 100^3 units of bounds volume
	ChamberMinRadius     float64 `yaml:"chamber_min_radius"`
	ChamberMaxRadius     float64 `yaml:"chamber_max_radius"`
	ChamberFloorFlatness float64 `yaml:"chamber_floor_flatness"` // 0 = spherical floor, 1 = fully flat
	ChamberVerticalScale float64 `yaml:"chamber_vertical_scale"` // < 1 flattens chambers vertically

	// Tunnel routing
	TunnelMinRadius             float64 `yaml:"tunnel_min_radius"`
	TunnelMaxRadius             float64 `yaml:"tunnel_max_radius"`
	TunnelFrequency             float64 `yaml:"tunnel_frequency"` // radius noise frequency along the path
	TunnelCurvature             float64 `yaml:"tunnel_curvature"` // 0 = straight, 1 = full spline
	TunnelConnectionsPerChamber int     `yaml:"tunnel_connections_per_chamber"`
	MinTunnelLength             float64 `yaml:"min_tunnel_length"`
	MaxTunnelLength             float64 `yaml:"max_tunnel_length"`
	NodeSpacing                 float64 `yaml:"node_spacing"`
	MaxPathfindingSteps         int     `yaml:"max_pathfinding_steps"`

	// Geology
	StratificationStrength  float64 `yaml:"stratification_strength"`
	StratificationFrequency float64 `yaml:"stratification_frequency"`
	ErosionStrength         float64 `yaml:"erosion_strength"`
	RockHardness            float64 `yaml:"rock_hardness"` // 0 = soft, 1 = erosion-proof

	// Vertical extents
	MinCaveHeight           float64 `yaml:"min_cave_height"`
	MaxCaveHeight           float64 `yaml:"max_cave_height"`
	SurfaceTransitionHeight float64 `yaml:"surface_transition_height"`
}

// NoiseLayer describes one layer of the evaluation stack. Kind and Blend are
// parsed by the generation package into its closed enum sets.
type NoiseLayer struct {
	Enabled        bool    `yaml:"enabled"`
	Kind           string  `yaml:"kind"`  // value, gradient, cellular, ridged, composite_cavern
	Blend          string  `yaml:"blend"` // add, subtract, multiply, min, max, override
	Frequency      float64 `yaml:"frequency"`
	Amplitude      float64 `yaml:"amplitude"`
	Octaves        int     `yaml:"octaves"`
	Persistence    float64 `yaml:"persistence"`
	Lacunarity     float64 `yaml:"lacunarity"`
	Offset         Offset  `yaml:"offset"`
	VerticalSquash float64 `yaml:"vertical_squash"`
	DensityBias    float64 `yaml:"density_bias"`
	Power          float64 `yaml:"power"`

	// Optional height window; layer output fades to zero outside
	// [HeightMin, HeightMax] over HeightFalloff units.
	UseHeightWindow bool    `yaml:"use_height_window"`
	HeightMin       float64 `yaml:"height_min"`
	HeightMax       float64 `yaml:"height_max"`
	HeightFalloff   float64 `yaml:"height_falloff"`
}

// ChunkConfig controls chunk evaluation and mesh extraction
type ChunkConfig struct {
	Size      int     `yaml:"size"`       // voxels per axis (grid is size+1 samples)
	VoxelSize float64 `yaml:"voxel_size"` // world units per voxel
	LODStep   int     `yaml:"lod_step"`   // marching cubes step, power of two
	IsoLevel  float64 `yaml:"iso_level"`

	// Region to generate, in chunk coordinates
	RegionMin [3]int `yaml:"region_min"`
	RegionMax [3]int `yaml:"region_max"`

	// World-space bounds for chamber placement
	BoundsMin [3]float64 `yaml:"bounds_min"`
	BoundsMax [3]float64 `yaml:"bounds_max"`
}

// CacheConfig controls the optional density grid cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ViewerConfig contains viewer window configuration
type ViewerConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FOV    float64 `yaml:"fov"`
	VSync  bool    `yaml:"vsync"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Generation: GenerationSettings{
			Seed:                 1337,
			ChamberFrequency:     2.0,
			ChamberMinRadius:     8.0,
			ChamberMaxRadius:     16.0,
			ChamberFloorFlatness: 0.6,
			ChamberVerticalScale: 0.6,

			TunnelMinRadius:             2.0,
			TunnelMaxRadius:             4.5,
			TunnelFrequency:             0.15,
			TunnelCurvature:             0.7,
			TunnelConnectionsPerChamber: 2,
			MinTunnelLength:             20.0,
			MaxTunnelLength:             120.0,
			NodeSpacing:                 4.0,
			MaxPathfindingSteps:         20000,

			StratificationStrength:  0.08,
			StratificationFrequency: 0.35,
			ErosionStrength:         0.25,
			RockHardness:            0.4,

			MinCaveHeight:           -120.0,
			MaxCaveHeight:           40.0,
			SurfaceTransitionHeight: 30.0,
		},
		Layers: []NoiseLayer{
			{
				Enabled:        true,
				Kind:           "composite_cavern",
				Blend:          "add",
				Frequency:      0.03,
				Amplitude:      0.35,
				Octaves:        1,
				Persistence:    0.5,
				Lacunarity:     2.0,
				VerticalSquash: 0.7,
				Power:          1.0,
			},
			{
				Enabled:        true,
				Kind:           "gradient",
				Blend:          "add",
				Frequency:      0.12,
				Amplitude:      0.08,
				Octaves:        3,
				Persistence:    0.5,
				Lacunarity:     2.0,
				VerticalSquash: 1.0,
				Power:          1.0,
			},
		},
		Chunks: ChunkConfig{
			Size:      32,
			VoxelSize: 1.0,
			LODStep:   1,
			IsoLevel:  0.5,
			RegionMin: [3]int{-2, -2, -2},
			RegionMax: [3]int{2, 1, 2},
			BoundsMin: [3]float64{-96, -96, -96},
			BoundsMax: [3]float64{96, 48, 96},
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "cache/chunks.db",
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			FOV:    60.0,
			VSync:  true,
		},
	}
}

// LoadConfig loads the configuration from a file
func LoadConfig(filePath string) (*Config, error) {
	// Create default config
	config := DefaultConfig()

	// Read file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %v", err)
	}

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return config, fmt.Errorf("error parsing config: %v", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	// Convert to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %v", err)
	}

	// Write file
	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}

	return nil
}

// Validate checks generation preconditions and fails fast with a descriptive
// error instead of producing silently wrong geometry.
func (s *GenerationSettings) Validate() error {
	if s.ChamberMinRadius <= 0 || s.ChamberMaxRadius <= 0 {
		return fmt.Errorf("chamber radii must be positive, got [%v, %v]", s.ChamberMinRadius, s.ChamberMaxRadius)
	}
	if s.ChamberMinRadius > s.ChamberMaxRadius {
		return fmt.Errorf("chamber_min_radius %v exceeds chamber_max_radius %v", s.ChamberMinRadius, s.ChamberMaxRadius)
	}
	if s.TunnelMinRadius <= 0 || s.TunnelMaxRadius <= 0 {
		return fmt.Errorf("tunnel radii must be positive, got [%v, %v]", s.TunnelMinRadius, s.TunnelMaxRadius)
	}
	if s.TunnelMinRadius > s.TunnelMaxRadius {
		return fmt.Errorf("tunnel_min_radius %v exceeds tunnel_max_radius %v", s.TunnelMinRadius, s.TunnelMaxRadius)
	}
	if s.ChamberVerticalScale <= 0 {
		return fmt.Errorf("chamber_vertical_scale must be positive, got %v", s.ChamberVerticalScale)
	}
	if s.MinTunnelLength < 0 || s.MinTunnelLength > s.MaxTunnelLength {
		return fmt.Errorf("invalid tunnel length range [%v, %v]", s.MinTunnelLength, s.MaxTunnelLength)
	}
	if s.NodeSpacing <= 0 {
		return fmt.Errorf("node_spacing must be positive, got %v", s.NodeSpacing)
	}
	if s.MaxPathfindingSteps <= 0 {
		return fmt.Errorf("max_pathfinding_steps must be positive, got %v", s.MaxPathfindingSteps)
	}
	if s.TunnelConnectionsPerChamber < 0 {
		return fmt.Errorf("tunnel_connections_per_chamber must not be negative, got %v", s.TunnelConnectionsPerChamber)
	}
	if s.TunnelCurvature < 0 || s.TunnelCurvature > 1 {
		return fmt.Errorf("tunnel_curvature must be in [0, 1], got %v", s.TunnelCurvature)
	}
	if s.RockHardness < 0 || s.RockHardness > 1 {
		return fmt.Errorf("rock_hardness must be in [0, 1], got %v", s.RockHardness)
	}
	return nil
}

// Validate checks chunk evaluation preconditions
func (c *ChunkConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %v", c.Size)
	}
	if c.VoxelSize <= 0 {
		return fmt.Errorf("voxel_size must be positive, got %v", c.VoxelSize)
	}
	if c.LODStep < 1 || c.LODStep&(c.LODStep-1) != 0 {
		return fmt.Errorf("lod_step must be a positive power of two, got %v", c.LODStep)
	}
	if c.Size%c.LODStep != 0 {
		return fmt.Errorf("lod_step %v does not divide chunk size %v", c.LODStep, c.Size)
	}
	for i := 0; i < 3; i++ {
		if c.BoundsMin[i] >= c.BoundsMax[i] {
			return fmt.Errorf("empty bounds on axis %d: [%v, %v]", i, c.BoundsMin[i], c.BoundsMax[i])
		}
	}
	return nil
}
