package cavegen

import (
	"fmt"
	"math"
	"sync"
)

// interpEpsilon guards edge interpolation against near-equal corner
// densities; below it the nearer endpoint is returned instead of dividing.
const interpEpsilon = 1e-6

// ExtractMesh runs marching cubes over a density grid. lodStep must be a
// power of two; larger steps skip voxels and produce coarser meshes. A
// fully solid or fully empty grid yields a valid zero-triangle mesh.
func ExtractMesh(grid *DensityGrid, isoLevel float64, lodStep int) (*Mesh, error) {
	if grid == nil {
		return nil, fmt.Errorf("nil density grid")
	}
	if lodStep < 1 || lodStep&(lodStep-1) != 0 {
		return nil, fmt.Errorf("lod step must be a positive power of two, got %d", lodStep)
	}
	if lodStep > grid.Size {
		return nil, fmt.Errorf("lod step %d exceeds grid size %d", lodStep, grid.Size)
	}
	if grid.Size%lodStep != 0 {
		// A non-dividing step would silently leave the high-face voxels unmeshed
		return nil, fmt.Errorf("lod step %d does not divide grid size %d", lodStep, grid.Size)
	}

	// Cubes are independent; extract one Z-slab per goroutine into local
	// meshes, then merge in slab order so output stays deterministic.
	slabs := 0
	for z := 0; z+lodStep <= grid.Size; z += lodStep {
		slabs++
	}

	parts := make([]*Mesh, slabs)
	var wg sync.WaitGroup
	for s := 0; s < slabs; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			parts[s] = extractSlab(grid, isoLevel, lodStep, s*lodStep)
		}(s)
	}
	wg.Wait()

	mesh := &Mesh{}
	for _, part := range parts {
		mesh.Append(part)
	}
	return mesh, nil
}

// extractSlab processes all cubes with the given base Z coordinate
func extractSlab(grid *DensityGrid, isoLevel float64, lodStep, z int) *Mesh {
	mesh := &Mesh{}

	var corners [8]Vec3
	var values [8]float64
	var vertList [12]Vec3

	for y := 0; y+lodStep <= grid.Size; y += lodStep {
		for x := 0; x+lodStep <= grid.Size; x += lodStep {
			// Classify the cube: bit set for corners on the air side
			cubeIndex := 0
			for i, off := range cornerOffsets {
				cx := x + off[0]*lodStep
				cy := y + off[1]*lodStep
				cz := z + off[2]*lodStep
				corners[i] = grid.WorldPos(cx, cy, cz)
				values[i] = grid.At(cx, cy, cz)
				if values[i] < isoLevel {
					cubeIndex |= 1 << i
				}
			}

			// Fully solid or fully air cubes emit nothing
			edges := edgeTable[cubeIndex]
			if edges == 0 {
				continue
			}

			for e := 0; e < 12; e++ {
				if edges&(1<<e) != 0 {
					c := edgeCorners[e]
					vertList[e] = interpolateEdge(isoLevel, corners[c[0]], corners[c[1]], values[c[0]], values[c[1]])
				}
			}

			// The table emits triangles wound for the solid side; swap two
			// indices so winding is counter-clockwise seen from the air side
			// and the flat normals point into the open space.
			tri := &triTable[cubeIndex]
			for i := 0; tri[i] != -1; i += 3 {
				mesh.addTriangle(vertList[tri[i]], vertList[tri[i+2]], vertList[tri[i+1]])
			}
		}
	}

	return mesh
}

// interpolateEdge finds the isosurface crossing on an edge. Near-equal
// corner densities would make the division blow up, so those cases snap to
// the nearer endpoint. The endpoints are put in a canonical order first:
// floating-point lerp is not symmetric under endpoint swap, and adjacent
// cubes visiting a shared edge from opposite ends must produce the
// bit-identical vertex or the mesh gains 1-ulp seams.
func interpolateEdge(isoLevel float64, p1, p2 Vec3, v1, v2 float64) Vec3 {
	if p2.X < p1.X || (p2.X == p1.X && (p2.Y < p1.Y || (p2.Y == p1.Y && p2.Z < p1.Z))) {
		p1, p2 = p2, p1
		v1, v2 = v2, v1
	}
	if math.Abs(isoLevel-v1) < interpEpsilon {
		return p1
	}
	if math.Abs(isoLevel-v2) < interpEpsilon {
		return p2
	}
	if math.Abs(v1-v2) < interpEpsilon {
		return p1
	}
	t := (isoLevel - v1) / (v2 - v1)
	return p1.Lerp(p2, t)
}
