package cavegen

import "math"

// Mesh is an extracted triangle mesh. Vertices are duplicated per triangle
// corner (no welding pass), so normals are flat per-triangle.
type Mesh struct {
	Vertices []Vec3
	Normals  []Vec3
	UVs      [][2]float64
	Indices  []uint32
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// addTriangle appends one triangle with a flat normal and planar UVs.
// Winding is counter-clockwise seen from the air side of the surface.
func (m *Mesh) addTriangle(a, b, c Vec3) {
	normal := b.Sub(a).Cross(c.Sub(a)).Normalize()

	base := uint32(len(m.Vertices))
	for _, v := range [3]Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, v)
		m.Normals = append(m.Normals, normal)
		m.UVs = append(m.UVs, planarUV(v, normal))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Append appends another mesh's data, rebasing its indices
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	m.UVs = append(m.UVs, other.UVs...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// planarUV projects a world position onto the plane most aligned with the
// normal (the dominant axis drops out).
func planarUV(p Vec3, normal Vec3) [2]float64 {
	ax := math.Abs(normal.X)
	ay := math.Abs(normal.Y)
	az := math.Abs(normal.Z)

	switch {
	case ax >= ay && ax >= az:
		return [2]float64{p.Z, p.Y}
	case ay >= ax && ay >= az:
		return [2]float64{p.X, p.Z}
	default:
		return [2]float64{p.X, p.Y}
	}
}
