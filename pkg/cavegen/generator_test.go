package cavegen

import (
	"testing"

	"cavernkit/pkg/config"
)

func testLayers() []config.NoiseLayer {
	return []config.NoiseLayer{
		{
			Enabled:        true,
			Kind:           "gradient",
			Blend:          "add",
			Frequency:      0.08,
			Amplitude:      0.1,
			Octaves:        2,
			Persistence:    0.5,
			Lacunarity:     2.0,
			VerticalSquash: 1.0,
			Power:          1.0,
		},
	}
}

func TestChamberCountForBounds(t *testing.T) {
	bounds := Bounds{Min: Vec3{}, Max: Vec3{X: 100, Y: 100, Z: 100}}
	if got := ChamberCountForBounds(2.0, bounds); got != 2 {
		t.Errorf("ChamberCountForBounds(2.0, 100^3) = %d, want 2", got)
	}
	small := Bounds{Min: Vec3{}, Max: Vec3{X: 10, Y: 10, Z: 10}}
	if got := ChamberCountForBounds(2.0, small); got != 0 {
		t.Errorf("ChamberCountForBounds(2.0, 10^3) = %d, want 0", got)
	}
}

func TestChunkOrigin(t *testing.T) {
	got := ChunkOrigin([3]int{1, -2, 0}, 16, 0.5)
	want := Vec3{X: 8, Y: -16, Z: 0}
	if got != want {
		t.Errorf("ChunkOrigin = %v, want %v", got, want)
	}
}

func TestNewGeneratorRejectsBadInput(t *testing.T) {
	bounds := testBounds()

	bad := testSettings()
	bad.NodeSpacing = 0
	if _, err := NewGenerator(bad, testLayers(), bounds, nil); err == nil {
		t.Error("expected error for invalid settings")
	}

	badLayer := testLayers()
	badLayer[0].Kind = "perlin"
	if _, err := NewGenerator(testSettings(), badLayer, bounds, nil); err == nil {
		t.Error("expected error for invalid layer kind")
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	settings := testSettings()
	bounds := testBounds()

	a, err := NewGenerator(settings, testLayers(), bounds, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	b, err := NewGenerator(testSettings(), testLayers(), bounds, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	if len(a.Network.Chambers) != len(b.Network.Chambers) {
		t.Fatalf("chamber counts differ: %d vs %d", len(a.Network.Chambers), len(b.Network.Chambers))
	}
	if len(a.Paths) != len(b.Paths) {
		t.Fatalf("path counts differ: %d vs %d", len(a.Paths), len(b.Paths))
	}

	ga, err := a.EvaluateChunk([3]int{0, 0, 0}, 12, 1.0)
	if err != nil {
		t.Fatalf("EvaluateChunk failed: %v", err)
	}
	gb, err := b.EvaluateChunk([3]int{0, 0, 0}, 12, 1.0)
	if err != nil {
		t.Fatalf("EvaluateChunk failed: %v", err)
	}
	for i := range ga.Values {
		if ga.Values[i] != gb.Values[i] {
			t.Fatalf("density value %d differs: %v vs %v", i, ga.Values[i], gb.Values[i])
		}
	}
}

func TestGeneratorChunkMesh(t *testing.T) {
	gen, err := NewGenerator(testSettings(), testLayers(), testBounds(), nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	mesh, err := gen.ChunkMesh([3]int{-1, -1, -1}, 16, 1.0, 0.5, 1)
	if err != nil {
		t.Fatalf("ChunkMesh failed: %v", err)
	}
	// The mesh may legitimately be empty if the chunk is all rock; just
	// verify structural consistency.
	if len(mesh.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(mesh.Indices))
	}
	if len(mesh.Vertices) != len(mesh.Normals) || len(mesh.Vertices) != len(mesh.UVs) {
		t.Errorf("attribute counts diverge: %d vertices, %d normals, %d uvs",
			len(mesh.Vertices), len(mesh.Normals), len(mesh.UVs))
	}
}

func TestNewNoiseGeneratorPureField(t *testing.T) {
	gen, err := NewNoiseGenerator(testSettings(), testLayers())
	if err != nil {
		t.Fatalf("NewNoiseGenerator failed: %v", err)
	}
	if gen.Network != nil || gen.Paths != nil {
		t.Error("noise-only generator should carry no chambers or paths")
	}

	d := gen.DensityAt(Vec3{X: 5, Y: 5, Z: 5})
	if d < 0 || d > 1 {
		t.Errorf("DensityAt = %v, want in [0, 1]", d)
	}
}
