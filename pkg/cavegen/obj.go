package cavegen

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteOBJ writes the mesh in Wavefront OBJ format with positions, texture
// coordinates and normals.
func (m *Mesh) WriteOBJ(w io.Writer, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "o %s\n", name)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	// OBJ indices are 1-based
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Indices[i] + 1
		b := m.Indices[i+1] + 1
		c := m.Indices[i+2] + 1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	return bw.Flush()
}

// SaveOBJ writes the mesh to a file
func (m *Mesh) SaveOBJ(path, name string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create obj file: %v", err)
	}
	defer file.Close()

	if err := m.WriteOBJ(file, name); err != nil {
		return fmt.Errorf("failed to write obj: %v", err)
	}
	return nil
}
