package cavegen

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"cavernkit/internal/noise"
	"cavernkit/internal/util"
	"cavernkit/pkg/config"
)

// DensityGrid holds scalar density samples over one chunk. The grid is
// boundary-inclusive (Size+1 samples per axis) so adjacent chunks share
// their boundary samples and mesh seamlessly. Density 1 is solid rock,
// values below the isolevel are air.
type DensityGrid struct {
	Size      int // voxels per axis; samples per axis is Size+1
	VoxelSize float64
	Origin    Vec3
	Values    []float32 // indexed x + y*(Size+1) + z*(Size+1)^2
}

// NewDensityGrid allocates a fresh all-solid grid
func NewDensityGrid(origin Vec3, size int, voxelSize float64) *DensityGrid {
	n := size + 1
	return &DensityGrid{
		Size:      size,
		VoxelSize: voxelSize,
		Origin:    origin,
		Values:    make([]float32, n*n*n),
	}
}

// Index converts sample coordinates to the flat array index
func (g *DensityGrid) Index(x, y, z int) int {
	n := g.Size + 1
	return x + y*n + z*n*n
}

// At returns the density sample at grid coordinates
func (g *DensityGrid) At(x, y, z int) float64 {
	return float64(g.Values[g.Index(x, y, z)])
}

// WorldPos returns the world position of a grid sample
func (g *DensityGrid) WorldPos(x, y, z int) Vec3 {
	return Vec3{
		X: g.Origin.X + float64(x)*g.VoxelSize,
		Y: g.Origin.Y + float64(y)*g.VoxelSize,
		Z: g.Origin.Z + float64(z)*g.VoxelSize,
	}
}

// Marshal serializes the grid values as flat little-endian float32 in index
// order, for caching.
func (g *DensityGrid) Marshal() []byte {
	buf := make([]byte, len(g.Values)*4)
	for i, v := range g.Values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// UnmarshalDensityGrid reconstructs a grid from cached bytes
func UnmarshalDensityGrid(origin Vec3, size int, voxelSize float64, data []byte) (*DensityGrid, error) {
	n := size + 1
	want := n * n * n * 4
	if len(data) != want {
		return nil, fmt.Errorf("density blob is %d bytes, want %d for size %d", len(data), want, size)
	}
	grid := NewDensityGrid(origin, size, voxelSize)
	for i := range grid.Values {
		grid.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return grid, nil
}

// surfaceBlendBand is the height band, in world units, over which density
// fades to open air above the surface transition height.
const surfaceBlendBand = 10.0

// carveBand is the half-width of the smoothstep band around the normalized
// chamber/tunnel boundary. Heuristic shape kept from the original tuning.
const carveBand = 0.2

// DensityFieldEvaluator combines chamber, tunnel, stratification and erosion
// signals into per-voxel density. It holds read-only inputs only and is safe
// to use from many goroutines.
type DensityFieldEvaluator struct {
	settings *config.GenerationSettings
	stack    *LayerStack
	network  *ChamberNetwork
	paths    []TunnelPath
}

// NewDensityFieldEvaluator creates an evaluator. network and paths may be
// nil, in which case the field is pure noise over solid rock.
func NewDensityFieldEvaluator(settings *config.GenerationSettings, stack *LayerStack, network *ChamberNetwork, paths []TunnelPath) *DensityFieldEvaluator {
	return &DensityFieldEvaluator{
		settings: settings,
		stack:    stack,
		network:  network,
		paths:    paths,
	}
}

// EvaluateChunk evaluates every sample of a chunk grid. Slices along Z are
// evaluated in parallel; every sample is a pure function of its position.
func (e *DensityFieldEvaluator) EvaluateChunk(origin Vec3, chunkSize int, voxelSize float64) (*DensityGrid, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if voxelSize <= 0 {
		return nil, fmt.Errorf("voxel size must be positive, got %v", voxelSize)
	}

	grid := NewDensityGrid(origin, chunkSize, voxelSize)
	n := chunkSize + 1

	var wg sync.WaitGroup
	for z := 0; z < n; z++ {
		wg.Add(1)
		go func(z int) {
			defer wg.Done()
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					p := grid.WorldPos(x, y, z)
					grid.Values[grid.Index(x, y, z)] = float32(e.DensityAt(p))
				}
			}
		}(z)
	}
	wg.Wait()

	return grid, nil
}

// DensityAt evaluates the full density pipeline at one world position
func (e *DensityFieldEvaluator) DensityAt(p Vec3) float64 {
	s := e.settings

	// Outside the cave height band everything is solid. An inverted band
	// (min > max) therefore yields all-solid everywhere.
	if p.Y < s.MinCaveHeight || p.Y > s.MaxCaveHeight {
		return 1
	}

	chamberTerm := e.chamberTerm(p)
	tunnelTerm := e.tunnelTerm(p)

	// Union of emptiness: either signal can open space
	density := math.Min(chamberTerm, tunnelTerm)

	// Stratification bands plus high-frequency detail from the layer stack
	density += math.Sin(p.Y*s.StratificationFrequency) * s.StratificationStrength
	if e.stack != nil {
		density += e.stack.Evaluate(p)
	}

	density -= e.erosion(p)

	// Open-air blend near the surface
	if p.Y > s.SurfaceTransitionHeight {
		t := util.Clamp((p.Y-s.SurfaceTransitionHeight)/surfaceBlendBand, 0, 1)
		density *= 1 - t
	}

	return util.Clamp(density, 0, 1)
}

// chamberTerm is a soft solidity signal in [0,1]: ~0 inside the nearest
// chamber, 1 in plain rock. Chambers are flattened vertically by the
// configured scale, and the floor is flattened by penalizing positions
// below the chamber center.
func (e *DensityFieldEvaluator) chamberTerm(p Vec3) float64 {
	idx, dist := e.nearestChamber(p)
	if idx < 0 {
		return 1
	}

	chamber := &e.network.Chambers[idx]

	// Flat floor: distance penalty grows with depth below the center, so
	// the isosurface truncates into a floor instead of a sphere bottom.
	floorAdjustment := 0.0
	if below := chamber.Center.Y - p.Y; below > 0 {
		floorAdjustment = below * e.settings.ChamberFloorFlatness
	}

	normalized := (dist+floorAdjustment)/chamber.Radius - 1
	return util.SmoothStepEdge(-carveBand, carveBand, normalized)
}

func (e *DensityFieldEvaluator) nearestChamber(p Vec3) (int, float64) {
	if e.network == nil {
		return -1, math.MaxFloat64
	}
	return e.network.NearestChamberDistance(p, e.settings.ChamberVerticalScale)
}

// tunnelTerm is the tunnel counterpart of chamberTerm: ~0 inside the
// nearest tunnel tube, 1 in plain rock.
func (e *DensityFieldEvaluator) tunnelTerm(p Vec3) float64 {
	best := math.MaxFloat64

	for pi := range e.paths {
		path := &e.paths[pi]
		for i := 0; i+1 < len(path.Points); i++ {
			d, t := distanceToSegment(p, path.Points[i], path.Points[i+1])
			radius := util.Lerp(path.Radii[i], path.Radii[i+1], t)
			if radius <= 0 {
				continue
			}
			normalized := d/radius - 1
			if normalized < best {
				best = normalized
			}
		}
	}

	if best == math.MaxFloat64 {
		return 1
	}
	return util.SmoothStepEdge(-carveBand, carveBand, best)
}

// erosion removes material preferentially low in the world and in soft rock
func (e *DensityFieldEvaluator) erosion(p Vec3) float64 {
	s := e.settings
	if s.ErosionStrength == 0 {
		return 0
	}

	span := s.MaxCaveHeight - s.MinCaveHeight
	heightFactor := 0.0
	if span > 0 {
		heightFactor = util.Clamp((s.MaxCaveHeight-p.Y)/span, 0, 1)
	}

	n := (noise.Gradient3D(p.X*0.15, p.Y*0.15, p.Z*0.15, s.Seed+8191) + 1) * 0.5
	return n * s.ErosionStrength * heightFactor * (1 - s.RockHardness)
}
