package cavegen

import (
	"math"
	"testing"

	"cavernkit/pkg/config"
)

// testSettings returns a small, valid settings value shared by the package
// tests. Individual tests override fields as needed.
func testSettings() *config.GenerationSettings {
	return &config.GenerationSettings{
		Seed:                 42,
		ChamberFrequency:     3.0,
		ChamberMinRadius:     6.0,
		ChamberMaxRadius:     12.0,
		ChamberFloorFlatness: 0.5,
		ChamberVerticalScale: 0.7,

		TunnelMinRadius:             2.0,
		TunnelMaxRadius:             4.0,
		TunnelFrequency:             0.2,
		TunnelCurvature:             0.7,
		TunnelConnectionsPerChamber: 2,
		MinTunnelLength:             10.0,
		MaxTunnelLength:             200.0,
		NodeSpacing:                 4.0,
		MaxPathfindingSteps:         5000,

		StratificationStrength:  0.05,
		StratificationFrequency: 0.3,
		ErosionStrength:         0.2,
		RockHardness:            0.5,

		MinCaveHeight:           -200.0,
		MaxCaveHeight:           200.0,
		SurfaceTransitionHeight: 180.0,
	}
}

func testBounds() Bounds {
	return Bounds{Min: Vec3{X: -50, Y: -50, Z: -50}, Max: Vec3{X: 50, Y: 50, Z: 50}}
}

func TestGenerateChamberNetworkDeterminism(t *testing.T) {
	settings := testSettings()
	bounds := testBounds()

	a, err := GenerateChamberNetwork(bounds, 8, settings)
	if err != nil {
		t.Fatalf("GenerateChamberNetwork failed: %v", err)
	}
	b, err := GenerateChamberNetwork(bounds, 8, settings)
	if err != nil {
		t.Fatalf("GenerateChamberNetwork failed: %v", err)
	}

	if len(a.Chambers) != len(b.Chambers) {
		t.Fatalf("chamber counts differ: %d vs %d", len(a.Chambers), len(b.Chambers))
	}
	for i := range a.Chambers {
		if a.Chambers[i].Center != b.Chambers[i].Center || a.Chambers[i].Radius != b.Chambers[i].Radius {
			t.Errorf("chamber %d differs between runs: %+v vs %+v", i, a.Chambers[i], b.Chambers[i])
		}
	}
	if len(a.Edges) != len(b.Edges) {
		t.Fatalf("edge counts differ: %d vs %d", len(a.Edges), len(b.Edges))
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			t.Errorf("edge %d differs: %v vs %v", i, a.Edges[i], b.Edges[i])
		}
	}
}

func TestChamberSpacingAndBounds(t *testing.T) {
	settings := testSettings()
	bounds := testBounds()

	network, err := GenerateChamberNetwork(bounds, 10, settings)
	if err != nil {
		t.Fatalf("GenerateChamberNetwork failed: %v", err)
	}
	if len(network.Chambers) == 0 {
		t.Fatal("expected at least one chamber")
	}

	minDist := 2 * settings.ChamberMaxRadius
	for i := range network.Chambers {
		ci := network.Chambers[i]
		if !bounds.Contains(ci.Center) {
			t.Errorf("chamber %d center %v outside bounds", i, ci.Center)
		}
		if ci.Radius < settings.ChamberMinRadius || ci.Radius > settings.ChamberMaxRadius {
			t.Errorf("chamber %d radius %v outside [%v, %v]", i, ci.Radius, settings.ChamberMinRadius, settings.ChamberMaxRadius)
		}
		for j := i + 1; j < len(network.Chambers); j++ {
			d := ci.Center.DistanceTo(network.Chambers[j].Center)
			if d < minDist {
				t.Errorf("chambers %d and %d are %v apart, want >= %v", i, j, d, minDist)
			}
		}
	}
}

func TestChamberEdgeLengthBand(t *testing.T) {
	settings := testSettings()
	network, err := GenerateChamberNetwork(testBounds(), 10, settings)
	if err != nil {
		t.Fatalf("GenerateChamberNetwork failed: %v", err)
	}

	for _, e := range network.Edges {
		if e.A >= e.B {
			t.Errorf("edge %v not normalized", e)
		}
		d := network.Chambers[e.A].Center.DistanceTo(network.Chambers[e.B].Center)
		if d < settings.MinTunnelLength || d > settings.MaxTunnelLength {
			t.Errorf("edge %v has length %v, want in [%v, %v]", e, d, settings.MinTunnelLength, settings.MaxTunnelLength)
		}
	}
}

func TestChamberEdgesDeduplicated(t *testing.T) {
	settings := testSettings()
	network, err := GenerateChamberNetwork(testBounds(), 10, settings)
	if err != nil {
		t.Fatalf("GenerateChamberNetwork failed: %v", err)
	}

	seen := make(map[Edge]bool)
	for _, e := range network.Edges {
		if seen[e] {
			t.Errorf("duplicate edge %v", e)
		}
		seen[e] = true
	}
}

func TestGenerateChamberNetworkZeroCount(t *testing.T) {
	network, err := GenerateChamberNetwork(testBounds(), 0, testSettings())
	if err != nil {
		t.Fatalf("GenerateChamberNetwork failed: %v", err)
	}
	if len(network.Chambers) != 0 || len(network.Edges) != 0 {
		t.Errorf("expected empty network, got %d chambers, %d edges", len(network.Chambers), len(network.Edges))
	}
}

func TestGenerateChamberNetworkRejectsBadInput(t *testing.T) {
	settings := testSettings()

	empty := Bounds{Min: Vec3{X: 10}, Max: Vec3{X: 10}}
	if _, err := GenerateChamberNetwork(empty, 5, settings); err == nil {
		t.Error("expected error for empty bounds")
	}

	bad := testSettings()
	bad.ChamberMinRadius = 20
	bad.ChamberMaxRadius = 10
	if _, err := GenerateChamberNetwork(testBounds(), 5, bad); err == nil {
		t.Error("expected error for inverted radius range")
	}
}

func TestNearestChamberDistance(t *testing.T) {
	network := &ChamberNetwork{Chambers: []Chamber{
		{Center: Vec3{X: 0, Y: 0, Z: 0}, Radius: 5},
		{Center: Vec3{X: 100, Y: 0, Z: 0}, Radius: 5},
	}}

	idx, dist := network.NearestChamberDistance(Vec3{X: 10, Y: 0, Z: 0}, 1)
	if idx != 0 {
		t.Fatalf("nearest chamber index = %d, want 0", idx)
	}
	if math.Abs(dist-10) > 1e-9 {
		t.Errorf("distance = %v, want 10", dist)
	}

	// With vertical scale < 1, vertical offsets measure farther than the
	// same horizontal offset.
	_, horiz := network.NearestChamberDistance(Vec3{X: 10, Y: 0, Z: 0}, 0.5)
	_, vert := network.NearestChamberDistance(Vec3{X: 0, Y: 10, Z: 0}, 0.5)
	if vert <= horiz {
		t.Errorf("vertical distance %v should exceed horizontal %v under scale 0.5", vert, horiz)
	}
}

func TestNearestChamberDistanceEmpty(t *testing.T) {
	var network *ChamberNetwork
	if idx, _ := network.NearestChamberDistance(Vec3{}, 1); idx != -1 {
		t.Errorf("nil network index = %d, want -1", idx)
	}
	empty := &ChamberNetwork{}
	if idx, _ := empty.NearestChamberDistance(Vec3{}, 1); idx != -1 {
		t.Errorf("empty network index = %d, want -1", idx)
	}
}
