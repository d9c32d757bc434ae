package cavegen

import "testing"

func twoChamberNetwork(a, b Vec3) *ChamberNetwork {
	return &ChamberNetwork{
		Chambers: []Chamber{
			{Center: a, Radius: 8},
			{Center: b, Radius: 8},
		},
		Edges: []Edge{{A: 0, B: 1}},
	}
}

func TestRouteEndpointsMatchChamberCenters(t *testing.T) {
	settings := testSettings()
	start := Vec3{X: -30, Y: 5, Z: 0}
	goal := Vec3{X: 30, Y: -5, Z: 10}
	network := twoChamberNetwork(start, goal)

	router := NewTunnelRouter(settings, nil)
	path := router.Route(network, network.Edges[0])

	if len(path.Points) < 2 {
		t.Fatalf("path has %d points, want >= 2", len(path.Points))
	}
	if path.Points[0] != start {
		t.Errorf("path starts at %v, want %v", path.Points[0], start)
	}
	if path.Points[len(path.Points)-1] != goal {
		t.Errorf("path ends at %v, want %v", path.Points[len(path.Points)-1], goal)
	}
	if len(path.Radii) != len(path.Points) {
		t.Errorf("got %d radii for %d points", len(path.Radii), len(path.Points))
	}
}

func TestRouteFallbackOnExhaustedBudget(t *testing.T) {
	settings := testSettings()
	settings.MaxPathfindingSteps = 1

	start := Vec3{X: 0, Y: 0, Z: 0}
	goal := Vec3{X: 80, Y: 0, Z: 0}
	network := twoChamberNetwork(start, goal)

	router := NewTunnelRouter(settings, nil)
	path := router.Route(network, network.Edges[0])

	// The direct two-point fallback passes through smoothing unchanged
	if len(path.Points) != 2 {
		t.Fatalf("fallback path has %d points, want 2", len(path.Points))
	}
	if path.Points[0] != start || path.Points[1] != goal {
		t.Errorf("fallback path %v does not connect %v to %v", path.Points, start, goal)
	}
}

func TestRouteDeterminism(t *testing.T) {
	settings := testSettings()
	network := twoChamberNetwork(Vec3{X: -25, Y: 0, Z: 0}, Vec3{X: 25, Y: 10, Z: -15})

	router := NewTunnelRouter(settings, nil)
	a := router.Route(network, network.Edges[0])
	b := router.Route(network, network.Edges[0])

	if len(a.Points) != len(b.Points) {
		t.Fatalf("point counts differ: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Errorf("point %d differs: %v vs %v", i, a.Points[i], b.Points[i])
		}
		if a.Radii[i] != b.Radii[i] {
			t.Errorf("radius %d differs: %v vs %v", i, a.Radii[i], b.Radii[i])
		}
	}
}

func TestRouteAllCoversEveryEdge(t *testing.T) {
	settings := testSettings()
	network := &ChamberNetwork{
		Chambers: []Chamber{
			{Center: Vec3{X: -30, Y: 0, Z: 0}, Radius: 8},
			{Center: Vec3{X: 0, Y: 0, Z: 30}, Radius: 8},
			{Center: Vec3{X: 30, Y: 0, Z: 0}, Radius: 8},
		},
		Edges: []Edge{{A: 0, B: 1}, {A: 1, B: 2}},
	}

	router := NewTunnelRouter(settings, nil)
	paths := router.RouteAll(network)

	if len(paths) != len(network.Edges) {
		t.Fatalf("routed %d paths for %d edges", len(paths), len(network.Edges))
	}
	for i, path := range paths {
		edge := network.Edges[i]
		if path.Source != edge.A || path.Target != edge.B {
			t.Errorf("path %d connects %d-%d, want %d-%d", i, path.Source, path.Target, edge.A, edge.B)
		}
	}
}

func TestRouteAllEmptyNetwork(t *testing.T) {
	router := NewTunnelRouter(testSettings(), nil)
	if paths := router.RouteAll(nil); paths != nil {
		t.Errorf("expected nil paths for nil network, got %d", len(paths))
	}
	if paths := router.RouteAll(&ChamberNetwork{}); paths != nil {
		t.Errorf("expected nil paths for empty network, got %d", len(paths))
	}
}

func TestRadiusProfileWithinBand(t *testing.T) {
	settings := testSettings()
	network := twoChamberNetwork(Vec3{X: -40, Y: 0, Z: 0}, Vec3{X: 40, Y: 0, Z: 0})

	router := NewTunnelRouter(settings, nil)
	path := router.Route(network, network.Edges[0])

	for i, r := range path.Radii {
		if r < settings.TunnelMinRadius || r > settings.TunnelMaxRadius {
			t.Errorf("radius[%d] = %v, want in [%v, %v]", i, r, settings.TunnelMinRadius, settings.TunnelMaxRadius)
		}
	}
}

func TestRadiusCurveApplied(t *testing.T) {
	settings := testSettings()
	network := twoChamberNetwork(Vec3{X: -40, Y: 0, Z: 0}, Vec3{X: 40, Y: 0, Z: 0})

	// A zero curve collapses every radius to the clamped minimum
	router := NewTunnelRouter(settings, func(t float64) float64 { return 0 })
	path := router.Route(network, network.Edges[0])

	for i, r := range path.Radii {
		if r != settings.TunnelMinRadius {
			t.Errorf("radius[%d] = %v, want clamped to %v", i, r, settings.TunnelMinRadius)
		}
	}
}

func TestResistanceNonNegative(t *testing.T) {
	router := NewTunnelRouter(testSettings(), nil)

	points := []Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 100, Y: -50, Z: 30},
		{X: -7.5, Y: 120, Z: -64},
	}
	for _, p := range points {
		if r := router.Resistance(p); r < 0 {
			t.Errorf("Resistance(%v) = %v, want >= 0", p, r)
		}
	}
}
