package cavegen

import (
	"container/heap"
	"math"
	"sync"

	"cavernkit/internal/noise"
	"cavernkit/internal/util"
	"cavernkit/pkg/config"
)

// TunnelPath is a routed, smoothed passage between two chambers
type TunnelPath struct {
	Source int // chamber index
	Target int // chamber index
	Points []Vec3
	Radii  []float64 // per-point radius, same length as Points
}

// RadiusCurve shapes the tunnel radius along the path; t runs 0..1 from
// source to target. The default profile is constant 1.
type RadiusCurve func(t float64) float64

// TunnelRouter routes tunnels between connected chambers through a
// geological-resistance field
type TunnelRouter struct {
	settings    *config.GenerationSettings
	radiusCurve RadiusCurve
}

// NewTunnelRouter creates a router for the given settings. curve may be nil
// for a constant radius profile.
func NewTunnelRouter(settings *config.GenerationSettings, curve RadiusCurve) *TunnelRouter {
	if curve == nil {
		curve = func(t float64) float64 { return 1 }
	}
	return &TunnelRouter{settings: settings, radiusCurve: curve}
}

// Resistance returns the geological resistance at a world position. It is
// always >= 0, which keeps the Euclidean A* heuristic admissible.
func (r *TunnelRouter) Resistance(p Vec3) float64 {
	s := r.settings

	// Sinusoidal stratification: harder and softer rock bands by height
	strat := (math.Sin(p.Y*s.StratificationFrequency) + 1) * 0.5 * s.StratificationStrength

	// Noise term breaks up the bands
	n := (noise.Gradient3D(p.X*0.05, p.Y*0.05, p.Z*0.05, s.Seed+4099) + 1) * 0.5 * 0.5

	return strat + s.RockHardness + n
}

// RouteAll routes one tunnel per network edge. Edges are independent, so
// each is routed on its own goroutine with read-only access to the network.
func (r *TunnelRouter) RouteAll(network *ChamberNetwork) []TunnelPath {
	if network == nil || len(network.Edges) == 0 {
		return nil
	}

	paths := make([]TunnelPath, len(network.Edges))
	var wg sync.WaitGroup
	for i, edge := range network.Edges {
		wg.Add(1)
		go func(i int, edge Edge) {
			defer wg.Done()
			paths[i] = r.Route(network, edge)
		}(i, edge)
	}
	wg.Wait()
	return paths
}

// Route computes a single smoothed tunnel path for an edge
func (r *TunnelRouter) Route(network *ChamberNetwork, edge Edge) TunnelPath {
	start := network.Chambers[edge.A].Center
	goal := network.Chambers[edge.B].Center

	raw := r.search(start, goal)
	smoothed := r.smooth(raw)

	// Endpoints must coincide with the chamber centers exactly
	smoothed[0] = start
	smoothed[len(smoothed)-1] = goal

	return TunnelPath{
		Source: edge.A,
		Target: edge.B,
		Points: smoothed,
		Radii:  r.radiusProfile(smoothed, edge),
	}
}

// gridKey identifies an A* node on the implicit search grid
type gridKey struct {
	X, Y, Z int
}

type searchNode struct {
	key gridKey
	f   float64
	h   float64 // kept for tie-breaking
	idx int
}

type nodePQ []*searchNode

func (p nodePQ) Len() int { return len(p) }
func (p nodePQ) Less(i, j int) bool {
	if p[i].f != p[j].f {
		return p[i].f < p[j].f
	}
	// Among equal f-cost nodes, prefer the one closer to the goal
	return p[i].h < p[j].h
}
func (p nodePQ) Swap(i, j int) { p[i], p[j] = p[j], p[i]; p[i].idx = i; p[j].idx = j }
func (p *nodePQ) Push(x any)   { *p = append(*p, x.(*searchNode)) }
func (p *nodePQ) Pop() any {
	old := *p
	n := len(old)
	x := old[n-1]
	*p = old[:n-1]
	return x
}

// neighborOffsets is the 26-connected neighborhood of a grid node
var neighborOffsets = func() [][3]int {
	offsets := make([][3]int, 0, 26)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offsets = append(offsets, [3]int{dx, dy, dz})
			}
		}
	}
	return offsets
}()

// search runs A* over an implicit grid anchored at start with spacing
// NodeSpacing. On step budget exhaustion it falls back to a direct two-point
// path; a degraded straight tunnel beats no tunnel at all.
func (r *TunnelRouter) search(start, goal Vec3) []Vec3 {
	spacing := r.settings.NodeSpacing

	toWorld := func(k gridKey) Vec3 {
		return Vec3{
			X: start.X + float64(k.X)*spacing,
			Y: start.Y + float64(k.Y)*spacing,
			Z: start.Z + float64(k.Z)*spacing,
		}
	}

	open := &nodePQ{}
	heap.Init(open)

	startKey := gridKey{}
	g := map[gridKey]float64{startKey: 0}
	came := map[gridKey]gridKey{}
	closed := map[gridKey]bool{}

	heap.Push(open, &searchNode{key: startKey, f: start.DistanceTo(goal), h: start.DistanceTo(goal)})

	steps := 0
	for open.Len() > 0 {
		steps++
		if steps > r.settings.MaxPathfindingSteps {
			break
		}

		cur := heap.Pop(open).(*searchNode)
		if closed[cur.key] {
			continue
		}
		closed[cur.key] = true

		curPos := toWorld(cur.key)
		if curPos.DistanceTo(goal) <= spacing {
			return reconstruct(came, cur.key, toWorld, goal)
		}

		for _, off := range neighborOffsets {
			nk := gridKey{X: cur.key.X + off[0], Y: cur.key.Y + off[1], Z: cur.key.Z + off[2]}
			if closed[nk] {
				continue
			}
			nPos := toWorld(nk)

			stepLen := curPos.DistanceTo(nPos)
			cost := stepLen * (1 + r.Resistance(nPos))

			tentative := g[cur.key] + cost
			old, ok := g[nk]
			if !ok || tentative < old {
				g[nk] = tentative
				came[nk] = cur.key
				h := nPos.DistanceTo(goal)
				heap.Push(open, &searchNode{key: nk, f: tentative + h, h: h})
			}
		}
	}

	// Budget exhausted or search space emptied: direct fallback
	return []Vec3{start, goal}
}

// reconstruct walks the came-from chain back to the origin and appends the
// exact goal position.
func reconstruct(came map[gridKey]gridKey, end gridKey, toWorld func(gridKey) Vec3, goal Vec3) []Vec3 {
	keys := []gridKey{end}
	k := end
	for {
		prev, ok := came[k]
		if !ok {
			break
		}
		keys = append(keys, prev)
		k = prev
	}

	path := make([]Vec3, 0, len(keys)+1)
	for i := len(keys) - 1; i >= 0; i-- {
		path = append(path, toWorld(keys[i]))
	}
	return append(path, goal)
}

// smooth applies centripetal Catmull-Rom interpolation across the raw path,
// blending each spline point toward the straight segment by TunnelCurvature
// to bound overshoot. A two-point path passes through unchanged.
func (r *TunnelRouter) smooth(raw []Vec3) []Vec3 {
	if len(raw) < 3 {
		out := make([]Vec3, len(raw))
		copy(out, raw)
		return out
	}

	spacing := r.settings.NodeSpacing
	curvature := r.settings.TunnelCurvature

	out := make([]Vec3, 0, len(raw)*2)
	out = append(out, raw[0])

	for i := 0; i < len(raw)-1; i++ {
		p1 := raw[i]
		p2 := raw[i+1]
		p0 := p1
		if i > 0 {
			p0 = raw[i-1]
		}
		p3 := p2
		if i+2 < len(raw) {
			p3 = raw[i+2]
		}

		segLen := p1.DistanceTo(p2)
		steps := int(math.Ceil(segLen / spacing))
		if steps < 1 {
			steps = 1
		}

		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps)
			spline := catmullRom(p0, p1, p2, p3, t)
			linear := p1.Lerp(p2, t)
			out = append(out, linear.Lerp(spline, curvature))
		}
	}

	return out
}

// catmullRom evaluates the centripetal Catmull-Rom spline through p1..p2 at
// parameter t in [0,1]. The centripetal knot spacing (alpha = 0.5) avoids
// cusps and self-intersections on uneven control points.
func catmullRom(p0, p1, p2, p3 Vec3, t float64) Vec3 {
	const eps = 1e-6

	t0 := 0.0
	t1 := t0 + math.Sqrt(p0.DistanceTo(p1))
	t2 := t1 + math.Sqrt(p1.DistanceTo(p2))
	t3 := t2 + math.Sqrt(p2.DistanceTo(p3))

	// Coincident control points collapse knot intervals; fall back to the
	// straight segment.
	if t2-t1 < eps {
		return p1.Lerp(p2, t)
	}
	if t1-t0 < eps {
		t1 = t0 + eps
	}
	if t3-t2 < eps {
		t3 = t2 + eps
	}

	u := t1 + t*(t2-t1)

	a1 := p0.Mul((t1 - u) / (t1 - t0)).Add(p1.Mul((u - t0) / (t1 - t0)))
	a2 := p1.Mul((t2 - u) / (t2 - t1)).Add(p2.Mul((u - t1) / (t2 - t1)))
	a3 := p2.Mul((t3 - u) / (t3 - t2)).Add(p3.Mul((u - t2) / (t3 - t2)))

	b1 := a1.Mul((t2 - u) / (t2 - t0)).Add(a2.Mul((u - t0) / (t2 - t0)))
	b2 := a2.Mul((t3 - u) / (t3 - t1)).Add(a3.Mul((u - t1) / (t3 - t1)))

	return b1.Mul((t2 - u) / (t2 - t1)).Add(b2.Mul((u - t1) / (t2 - t1)))
}

// radiusProfile assigns a radius to each path point: noise along the
// parametric position picks a value in the configured radius band, shaped
// by the user profile curve.
func (r *TunnelRouter) radiusProfile(points []Vec3, edge Edge) []float64 {
	s := r.settings
	radii := make([]float64, len(points))

	// Total arc length for frequency scaling
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceTo(points[i])
	}

	edgeSeed := s.Seed + int64(edge.A)*31 + int64(edge.B)*131071

	for i := range points {
		t := 0.0
		if len(points) > 1 {
			t = float64(i) / float64(len(points)-1)
		}

		n := noise.Value3D(t*total*s.TunnelFrequency, 0.37, 0.91, edgeSeed)
		n = (n + 1) * 0.5 // [0,1]

		radius := util.Lerp(s.TunnelMinRadius, s.TunnelMaxRadius, n) * r.radiusCurve(t)
		radii[i] = util.Clamp(radius, s.TunnelMinRadius, s.TunnelMaxRadius)
	}

	return radii
}
