package cavegen

import (
	"fmt"
	"math"

	"cavernkit/pkg/config"
)

// Generator runs the full cave pipeline: chamber placement, tunnel routing,
// density evaluation and mesh extraction. After New returns, the generator
// is immutable and safe for concurrent chunk requests.
type Generator struct {
	Settings *config.GenerationSettings
	Network  *ChamberNetwork
	Paths    []TunnelPath

	stack     *LayerStack
	evaluator *DensityFieldEvaluator
}

// ChamberCountForBounds derives the chamber target from the configured
// frequency, expressed as chambers per 100^3 units of bounds volume.
func ChamberCountForBounds(frequency float64, bounds Bounds) int {
	size := bounds.Size()
	volume := size.X * size.Y * size.Z
	return int(math.Round(frequency * volume / 1e6))
}

// NewGenerator builds the one-shot world state: validates settings, places
// chambers, routes every tunnel. curve may be nil for a constant tunnel
// radius profile.
func NewGenerator(settings *config.GenerationSettings, layers []config.NoiseLayer, bounds Bounds, curve RadiusCurve) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation settings: %v", err)
	}

	stack, err := NewLayerStack(layers, settings.Seed)
	if err != nil {
		return nil, fmt.Errorf("invalid noise layers: %v", err)
	}

	count := ChamberCountForBounds(settings.ChamberFrequency, bounds)
	network, err := GenerateChamberNetwork(bounds, count, settings)
	if err != nil {
		return nil, err
	}

	router := NewTunnelRouter(settings, curve)
	paths := router.RouteAll(network)

	gen := &Generator{
		Settings: settings,
		Network:  network,
		Paths:    paths,
		stack:    stack,
	}
	gen.evaluator = NewDensityFieldEvaluator(settings, stack, network, paths)
	return gen, nil
}

// NewNoiseGenerator builds a generator with no chambers or tunnels; the
// density field is pure noise over solid rock.
func NewNoiseGenerator(settings *config.GenerationSettings, layers []config.NoiseLayer) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation settings: %v", err)
	}
	stack, err := NewLayerStack(layers, settings.Seed)
	if err != nil {
		return nil, fmt.Errorf("invalid noise layers: %v", err)
	}
	gen := &Generator{Settings: settings, stack: stack}
	gen.evaluator = NewDensityFieldEvaluator(settings, stack, nil, nil)
	return gen, nil
}

// ChunkOrigin returns the world-space origin of a chunk
func ChunkOrigin(coords [3]int, chunkSize int, voxelSize float64) Vec3 {
	span := float64(chunkSize) * voxelSize
	return Vec3{
		X: float64(coords[0]) * span,
		Y: float64(coords[1]) * span,
		Z: float64(coords[2]) * span,
	}
}

// EvaluateChunk produces the density grid for one chunk
func (g *Generator) EvaluateChunk(coords [3]int, chunkSize int, voxelSize float64) (*DensityGrid, error) {
	origin := ChunkOrigin(coords, chunkSize, voxelSize)
	return g.evaluator.EvaluateChunk(origin, chunkSize, voxelSize)
}

// ChunkMesh evaluates a chunk and extracts its mesh at the given LOD step
func (g *Generator) ChunkMesh(coords [3]int, chunkSize int, voxelSize float64, isoLevel float64, lodStep int) (*Mesh, error) {
	grid, err := g.EvaluateChunk(coords, chunkSize, voxelSize)
	if err != nil {
		return nil, err
	}
	return ExtractMesh(grid, isoLevel, lodStep)
}

// DensityAt exposes the point evaluator, mainly for inspection and tests
func (g *Generator) DensityAt(p Vec3) float64 {
	return g.evaluator.DensityAt(p)
}
