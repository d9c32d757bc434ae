package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Generation.Validate(); err != nil {
		t.Fatalf("default generation settings invalid: %v", err)
	}
	if err := cfg.Chunks.Validate(); err != nil {
		t.Fatalf("default chunk settings invalid: %v", err)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GenerationSettings)
	}{
		{"inverted chamber radii", func(s *GenerationSettings) { s.ChamberMinRadius = 20; s.ChamberMaxRadius = 10 }},
		{"zero chamber radius", func(s *GenerationSettings) { s.ChamberMinRadius = 0 }},
		{"inverted tunnel radii", func(s *GenerationSettings) { s.TunnelMinRadius = 9; s.TunnelMaxRadius = 3 }},
		{"zero vertical scale", func(s *GenerationSettings) { s.ChamberVerticalScale = 0 }},
		{"zero node spacing", func(s *GenerationSettings) { s.NodeSpacing = 0 }},
		{"zero step budget", func(s *GenerationSettings) { s.MaxPathfindingSteps = 0 }},
		{"curvature above one", func(s *GenerationSettings) { s.TunnelCurvature = 1.5 }},
		{"negative connections", func(s *GenerationSettings) { s.TunnelConnectionsPerChamber = -1 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := DefaultConfig().Generation
			c.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestValidateRejectsBadChunkConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ChunkConfig)
	}{
		{"negative size", func(c *ChunkConfig) { c.Size = -1 }},
		{"zero voxel size", func(c *ChunkConfig) { c.VoxelSize = 0 }},
		{"non power of two lod", func(c *ChunkConfig) { c.LODStep = 3 }},
		{"lod not dividing size", func(c *ChunkConfig) { c.Size = 12; c.LODStep = 8 }},
		{"empty bounds", func(c *ChunkConfig) { c.BoundsMin = [3]float64{10, 0, 0}; c.BoundsMax = [3]float64{10, 50, 50} }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cc := DefaultConfig().Chunks
			c.mutate(&cc)
			if err := cc.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Generation.Seed = 9001
	cfg.Chunks.Size = 16
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Generation.Seed != 9001 {
		t.Errorf("seed = %d, want 9001", loaded.Generation.Seed)
	}
	if loaded.Chunks.Size != 16 {
		t.Errorf("chunk size = %d, want 16", loaded.Chunks.Size)
	}
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(os.TempDir(), "definitely-not-here.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if cfg == nil {
		t.Fatal("missing file should still return defaults")
	}
	if cfg.Chunks.Size != DefaultConfig().Chunks.Size {
		t.Error("fallback config does not match defaults")
	}
}
