package cavegen

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"cavernkit/pkg/config"
)

// Bounds is an axis-aligned box in world space
type Bounds struct {
	Min, Max Vec3
}

// Size returns the extents of the box per axis
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box (inclusive of Min,
// exclusive of Max).
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

// Chamber is a large open cavity in the cave network
type Chamber struct {
	Center      Vec3
	Radius      float64
	Connections []int // indices of connected chambers
}

// Edge is one undirected connection between two chambers
type Edge struct {
	A, B int
}

// ChamberNetwork holds the placed chambers and their connectivity graph
type ChamberNetwork struct {
	Chambers []Chamber
	Edges    []Edge
}

// maxSampleTries is the number of candidate offsets attempted around an
// active point before it is retired (Bridson's recommended K).
const maxSampleTries = 30

// GenerateChamberNetwork places chamber centers via Poisson-disk sampling
// over bounds and connects each chamber to its nearest neighbors within the
// configured length band. If sampling stalls before reaching count, fewer
// chambers are returned; callers must tolerate sparse networks.
func GenerateChamberNetwork(bounds Bounds, count int, settings *config.GenerationSettings) (*ChamberNetwork, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation settings: %v", err)
	}
	size := bounds.Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("empty chamber bounds: %v", bounds)
	}
	if count <= 0 {
		return &ChamberNetwork{}, nil
	}

	rng := rand.New(rand.NewSource(settings.Seed))
	minDist := 2 * settings.ChamberMaxRadius
	centers := poissonSample(rng, bounds, minDist, count)

	network := &ChamberNetwork{Chambers: make([]Chamber, 0, len(centers))}
	for _, c := range centers {
		radius := settings.ChamberMinRadius + rng.Float64()*(settings.ChamberMaxRadius-settings.ChamberMinRadius)
		network.Chambers = append(network.Chambers, Chamber{Center: c, Radius: radius})
	}

	network.connect(settings)
	return network, nil
}

// poissonSample runs Bridson's algorithm over a 3D box: a background grid
// with cell size r/sqrt(3) guarantees at most one point per cell, so
// neighbor checks only need a fixed-size cell neighborhood.
func poissonSample(rng *rand.Rand, bounds Bounds, minDist float64, maxPoints int) []Vec3 {
	size := bounds.Size()
	cellSize := minDist / math.Sqrt(3)
	gridW := int(math.Ceil(size.X / cellSize))
	gridH := int(math.Ceil(size.Y / cellSize))
	gridD := int(math.Ceil(size.Z / cellSize))

	// Grid stores index into points slice, or -1 if empty
	grid := make([]int, gridW*gridH*gridD)
	for i := range grid {
		grid[i] = -1
	}

	points := make([]Vec3, 0, maxPoints)
	active := make([]int, 0, 128)

	toGrid := func(p Vec3) (int, int, int) {
		gx := int((p.X - bounds.Min.X) / cellSize)
		gy := int((p.Y - bounds.Min.Y) / cellSize)
		gz := int((p.Z - bounds.Min.Z) / cellSize)
		if gx < 0 {
			gx = 0
		} else if gx >= gridW {
			gx = gridW - 1
		}
		if gy < 0 {
			gy = 0
		} else if gy >= gridH {
			gy = gridH - 1
		}
		if gz < 0 {
			gz = 0
		} else if gz >= gridD {
			gz = gridD - 1
		}
		return gx, gy, gz
	}

	isValid := func(p Vec3) bool {
		if !bounds.Contains(p) {
			return false
		}
		gx, gy, gz := toGrid(p)

		// A 5x5x5 neighborhood is sufficient for r/sqrt(3) cell size
		r2 := minDist * minDist
		for dz := -2; dz <= 2; dz++ {
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					nx, ny, nz := gx+dx, gy+dy, gz+dz
					if nx < 0 || nx >= gridW || ny < 0 || ny >= gridH || nz < 0 || nz >= gridD {
						continue
					}
					idx := grid[(nz*gridH+ny)*gridW+nx]
					if idx != -1 && points[idx].Sub(p).LengthSq() < r2 {
						return false
					}
				}
			}
		}
		return true
	}

	insert := func(p Vec3) {
		idx := len(points)
		points = append(points, p)
		active = append(active, idx)
		gx, gy, gz := toGrid(p)
		grid[(gz*gridH+gy)*gridW+gx] = idx
	}

	// Start with a random initial point
	insert(Vec3{
		X: bounds.Min.X + rng.Float64()*size.X,
		Y: bounds.Min.Y + rng.Float64()*size.Y,
		Z: bounds.Min.Z + rng.Float64()*size.Z,
	})

	for len(active) > 0 && len(points) < maxPoints {
		// Pick a random active point
		ai := rng.Intn(len(active))
		p := points[active[ai]]

		found := false
		for k := 0; k < maxSampleTries; k++ {
			// Uniform direction on the sphere, distance in the annulus [r, 2r]
			candidate := p.Add(randomAnnulusOffset(rng, minDist))
			if isValid(candidate) {
				insert(candidate)
				found = true
				break
			}
		}

		if !found {
			// Retire the point: swap with last, then pop
			active[ai] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}

	return points
}

// randomAnnulusOffset returns a random offset with length in [r, 2r],
// uniformly distributed in direction.
func randomAnnulusOffset(rng *rand.Rand, r float64) Vec3 {
	// Marsaglia-style direction: z uniform in [-1,1], angle uniform
	z := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi
	s := math.Sqrt(1 - z*z)
	dir := Vec3{X: s * math.Cos(theta), Y: s * math.Sin(theta), Z: z}
	return dir.Mul(r + rng.Float64()*r)
}

// connect links each chamber to its nearest neighbors whose distance lies in
// the configured tunnel length band. Edges are undirected and deduplicated.
func (n *ChamberNetwork) connect(settings *config.GenerationSettings) {
	type neighbor struct {
		index int
		dist  float64
	}

	seen := make(map[Edge]bool)

	for i := range n.Chambers {
		neighbors := make([]neighbor, 0, len(n.Chambers)-1)
		for j := range n.Chambers {
			if i == j {
				continue
			}
			d := n.Chambers[i].Center.DistanceTo(n.Chambers[j].Center)
			neighbors = append(neighbors, neighbor{index: j, dist: d})
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })

		connected := 0
		for _, nb := range neighbors {
			if connected >= settings.TunnelConnectionsPerChamber {
				break
			}
			if nb.dist < settings.MinTunnelLength || nb.dist > settings.MaxTunnelLength {
				continue
			}

			edge := Edge{A: i, B: nb.index}
			if edge.A > edge.B {
				edge.A, edge.B = edge.B, edge.A
			}
			if seen[edge] {
				connected++ // an existing reverse edge still counts toward i's quota
				continue
			}
			seen[edge] = true

			n.Edges = append(n.Edges, edge)
			n.Chambers[i].Connections = append(n.Chambers[i].Connections, nb.index)
			n.Chambers[nb.index].Connections = append(n.Chambers[nb.index].Connections, i)
			connected++
		}
	}
}

// NearestChamberDistance returns the index of the nearest chamber under a
// vertically-scaled metric (Y differences divided by verticalScale flatten
// the effective chamber shape) and the scaled distance to its center.
// Returns index -1 when the network is empty.
func (n *ChamberNetwork) NearestChamberDistance(p Vec3, verticalScale float64) (int, float64) {
	if n == nil || len(n.Chambers) == 0 {
		return -1, math.MaxFloat64
	}
	if verticalScale <= 0 {
		verticalScale = 1
	}

	best := -1
	bestDist := math.MaxFloat64
	for i := range n.Chambers {
		d := p.Sub(n.Chambers[i].Center)
		d.Y /= verticalScale
		dist := d.Length()
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best, bestDist
}
