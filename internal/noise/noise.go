package noise

import "math"

// Stateless scalar noise primitives. Every function is a pure function of
// position and seed, so callers may evaluate from any number of goroutines.

// hash combines lattice coordinates and a seed into a well-mixed integer.
func hash(x, y, z, seed int) int {
	h := seed + x*374761393 + y*668265263 + z*1274126177
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// hashToFloat converts a hash to a float in range [0, 1).
func hashToFloat(h int) float64 {
	return float64(h&0xFFFFFF) / 16777216.0
}

// hashToSigned converts a hash to a float in range [-1, 1).
func hashToSigned(h int) float64 {
	return hashToFloat(h)*2.0 - 1.0
}

// gradient3D derives a unit-ish gradient vector from a hash, using the
// twelve edge directions of a cube.
func gradient3D(h int) [3]float64 {
	switch h & 15 {
	case 0:
		return [3]float64{1, 1, 0}
	case 1:
		return [3]float64{-1, 1, 0}
	case 2:
		return [3]float64{1, -1, 0}
	case 3:
		return [3]float64{-1, -1, 0}
	case 4:
		return [3]float64{1, 0, 1}
	case 5:
		return [3]float64{-1, 0, 1}
	case 6:
		return [3]float64{1, 0, -1}
	case 7:
		return [3]float64{-1, 0, -1}
	case 8:
		return [3]float64{0, 1, 1}
	case 9:
		return [3]float64{0, -1, 1}
	case 10:
		return [3]float64{0, 1, -1}
	case 11:
		return [3]float64{0, -1, -1}
	case 12:
		return [3]float64{1, 1, 0}
	case 13:
		return [3]float64{-1, 1, 0}
	case 14:
		return [3]float64{0, -1, 1}
	default:
		return [3]float64{0, -1, -1}
	}
}

func dot3D(g [3]float64, x, y, z float64) float64 {
	return g[0]*x + g[1]*y + g[2]*z
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// fade is the improved Perlin smoothstep: 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}

// Value3D generates 3D value noise in [-1, 1]: random lattice values with
// smooth trilinear interpolation.
func Value3D(x, y, z float64, seed int64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	z0 := int(math.Floor(z))

	sx := fade(x - math.Floor(x))
	sy := fade(y - math.Floor(y))
	sz := fade(z - math.Floor(z))

	s := int(seed)
	v000 := hashToSigned(hash(x0, y0, z0, s))
	v100 := hashToSigned(hash(x0+1, y0, z0, s))
	v010 := hashToSigned(hash(x0, y0+1, z0, s))
	v110 := hashToSigned(hash(x0+1, y0+1, z0, s))
	v001 := hashToSigned(hash(x0, y0, z0+1, s))
	v101 := hashToSigned(hash(x0+1, y0, z0+1, s))
	v011 := hashToSigned(hash(x0, y0+1, z0+1, s))
	v111 := hashToSigned(hash(x0+1, y0+1, z0+1, s))

	v00 := lerp(v000, v100, sx)
	v10 := lerp(v010, v110, sx)
	v01 := lerp(v001, v101, sx)
	v11 := lerp(v011, v111, sx)

	v0 := lerp(v00, v10, sy)
	v1 := lerp(v01, v11, sy)

	return lerp(v0, v1, sz)
}

// Gradient3D generates 3D gradient (Perlin-style) noise in roughly [-1, 1].
func Gradient3D(x, y, z float64, seed int64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	fz := math.Floor(z)
	x0 := int(fx)
	y0 := int(fy)
	z0 := int(fz)

	dx := x - fx
	dy := y - fy
	dz := z - fz

	sx := fade(dx)
	sy := fade(dy)
	sz := fade(dz)

	s := int(seed)
	g000 := gradient3D(hash(x0, y0, z0, s))
	g100 := gradient3D(hash(x0+1, y0, z0, s))
	g010 := gradient3D(hash(x0, y0+1, z0, s))
	g110 := gradient3D(hash(x0+1, y0+1, z0, s))
	g001 := gradient3D(hash(x0, y0, z0+1, s))
	g101 := gradient3D(hash(x0+1, y0, z0+1, s))
	g011 := gradient3D(hash(x0, y0+1, z0+1, s))
	g111 := gradient3D(hash(x0+1, y0+1, z0+1, s))

	dp000 := dot3D(g000, dx, dy, dz)
	dp100 := dot3D(g100, dx-1, dy, dz)
	dp010 := dot3D(g010, dx, dy-1, dz)
	dp110 := dot3D(g110, dx-1, dy-1, dz)
	dp001 := dot3D(g001, dx, dy, dz-1)
	dp101 := dot3D(g101, dx-1, dy, dz-1)
	dp011 := dot3D(g011, dx, dy-1, dz-1)
	dp111 := dot3D(g111, dx-1, dy-1, dz-1)

	v00 := lerp(dp000, dp100, sx)
	v10 := lerp(dp010, dp110, sx)
	v01 := lerp(dp001, dp101, sx)
	v11 := lerp(dp011, dp111, sx)

	v0 := lerp(v00, v10, sy)
	v1 := lerp(v01, v11, sy)

	// Gradient dot products land in about [-0.87, 0.87]; stretch toward [-1, 1].
	return lerp(v0, v1, sz) * 1.1547
}

// Cellular3D generates 3D Worley noise: the distance to the nearest feature
// point, in [0, 1]. One feature point per unit lattice cell.
func Cellular3D(x, y, z float64, seed int64) float64 {
	ix := int(math.Floor(x))
	iy := int(math.Floor(y))
	iz := int(math.Floor(z))

	s := int(seed)
	minDist := 1.0

	for nz := -1; nz <= 1; nz++ {
		for ny := -1; ny <= 1; ny++ {
			for nx := -1; nx <= 1; nx++ {
				cx := ix + nx
				cy := iy + ny
				cz := iz + nz

				// Feature point location within this cell.
				px := float64(cx) + hashToFloat(hash(cx, cy, cz, s))
				py := float64(cy) + hashToFloat(hash(cx, cy, cz, s+131))
				pz := float64(cz) + hashToFloat(hash(cx, cy, cz, s+313))

				dx := px - x
				dy := py - y
				dz := pz - z
				dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if dist < minDist {
					minDist = dist
				}
			}
		}
	}

	return minDist
}

// Ridged3D turns gradient noise into sharp ridges in [0, 1]: fold the signal
// around zero, invert, and sharpen with a power curve.
func Ridged3D(x, y, z float64, seed int64) float64 {
	n := Gradient3D(x, y, z, seed)
	n = math.Abs(n)
	n = 1.0 - n
	return n * n
}

// Fractal3D accumulates octaves of a base sampler with amplitude decay
// (persistence) and frequency growth (lacunarity), normalized by the
// maximum possible amplitude sum so the result stays in the base range.
func Fractal3D(sample func(x, y, z float64, seed int64) float64, x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	if octaves < 1 {
		octaves = 1
	}

	result := 0.0
	amplitude := 1.0
	frequency := 1.0
	max := 0.0

	for i := 0; i < octaves; i++ {
		result += sample(x*frequency, y*frequency, z*frequency, seed+int64(i)) * amplitude
		max += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	return result / max
}
