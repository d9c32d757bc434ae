package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cavernkit/internal/cache"
	"cavernkit/internal/logger"
	"cavernkit/pkg/cavegen"
	"cavernkit/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	outPath := flag.String("out", "caves.obj", "Output OBJ path")
	seed := flag.Int64("seed", 0, "Override the configured generation seed")
	lodStep := flag.Int("lod", 0, "Override the configured LOD step")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Missing config falls back to defaults; still worth mentioning
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	logger := logger.NewLogger(cfg.LogLevel)
	logger.Info("Starting cave generation...")

	if *seed != 0 {
		cfg.Generation.Seed = *seed
	}
	if cfg.Generation.Seed == 0 {
		cfg.Generation.Seed = time.Now().UnixNano()
		logger.Infof("No seed configured, using %d", cfg.Generation.Seed)
	}
	if *lodStep != 0 {
		cfg.Chunks.LODStep = *lodStep
	}
	if err := cfg.Chunks.Validate(); err != nil {
		logger.Fatalf("Invalid chunk configuration: %v", err)
	}

	bounds := cavegen.Bounds{
		Min: cavegen.Vec3{X: cfg.Chunks.BoundsMin[0], Y: cfg.Chunks.BoundsMin[1], Z: cfg.Chunks.BoundsMin[2]},
		Max: cavegen.Vec3{X: cfg.Chunks.BoundsMax[0], Y: cfg.Chunks.BoundsMax[1], Z: cfg.Chunks.BoundsMax[2]},
	}

	start := time.Now()
	gen, err := cavegen.NewGenerator(&cfg.Generation, cfg.Layers, bounds, nil)
	if err != nil {
		logger.Fatalf("Failed to initialize generator: %v", err)
	}
	logger.Infof("Placed %d chambers, routed %d tunnels in %v",
		len(gen.Network.Chambers), len(gen.Paths), time.Since(start).Round(time.Millisecond))

	var chunkCache *cache.ChunkCache
	var digest string
	if cfg.Cache.Enabled {
		chunkCache, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			logger.Fatalf("Failed to open chunk cache: %v", err)
		}
		defer chunkCache.Close()

		digest, err = cache.Digest(cfg.Generation)
		if err != nil {
			logger.Fatalf("Failed to digest settings: %v", err)
		}
		if removed, err := chunkCache.Purge(digest); err != nil {
			logger.Warnf("Cache purge failed: %v", err)
		} else if removed > 0 {
			logger.Infof("Purged %d stale cache entries", removed)
		}
	}

	mesh := &cavegen.Mesh{}
	chunks, hits := 0, 0

	rmin, rmax := cfg.Chunks.RegionMin, cfg.Chunks.RegionMax
	for cz := rmin[2]; cz <= rmax[2]; cz++ {
		for cy := rmin[1]; cy <= rmax[1]; cy++ {
			for cx := rmin[0]; cx <= rmax[0]; cx++ {
				coords := [3]int{cx, cy, cz}
				grid, hit, err := chunkGrid(gen, chunkCache, digest, coords, cfg.Chunks)
				if err != nil {
					logger.Fatalf("Chunk %v failed: %v", coords, err)
				}
				if hit {
					hits++
				}

				chunkMesh, err := cavegen.ExtractMesh(grid, cfg.Chunks.IsoLevel, cfg.Chunks.LODStep)
				if err != nil {
					logger.Fatalf("Mesh extraction for chunk %v failed: %v", coords, err)
				}
				mesh.Append(chunkMesh)
				chunks++

				logger.Debugf("Chunk %v: %d triangles", coords, chunkMesh.TriangleCount())
			}
		}
	}

	logger.Infof("Generated %d chunks (%d cache hits), %d triangles in %v",
		chunks, hits, mesh.TriangleCount(), time.Since(start).Round(time.Millisecond))

	if err := mesh.SaveOBJ(*outPath, "caves"); err != nil {
		logger.Fatalf("Failed to save mesh: %v", err)
	}
	logger.Infof("Wrote %s", *outPath)
}

// chunkGrid returns the density grid for one chunk, consulting the cache
// when enabled. The second return reports a cache hit.
func chunkGrid(gen *cavegen.Generator, chunkCache *cache.ChunkCache, digest string, coords [3]int, chunks config.ChunkConfig) (*cavegen.DensityGrid, bool, error) {
	var key cache.Key
	if chunkCache != nil {
		key = cache.Key{
			Seed:   gen.Settings.Seed,
			X:      coords[0],
			Y:      coords[1],
			Z:      coords[2],
			Size:   chunks.Size,
			Digest: digest,
		}
		if blob, ok, err := chunkCache.Get(key); err == nil && ok {
			origin := cavegen.ChunkOrigin(coords, chunks.Size, chunks.VoxelSize)
			grid, err := cavegen.UnmarshalDensityGrid(origin, chunks.Size, chunks.VoxelSize, blob)
			if err == nil {
				return grid, true, nil
			}
			// Corrupt entry: fall through and regenerate
		}
	}

	grid, err := gen.EvaluateChunk(coords, chunks.Size, chunks.VoxelSize)
	if err != nil {
		return nil, false, err
	}
	if chunkCache != nil {
		if err := chunkCache.Put(key, grid.Marshal()); err != nil {
			return grid, false, nil // cache write failure is not fatal
		}
	}
	return grid, false, nil
}
