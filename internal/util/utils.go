package util

import "math"

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Map remaps a value from one range to another
func Map(value, inMin, inMax, outMin, outMax float64) float64 {
	// Calculate normalized position in input range [0,1]
	t := (value - inMin) / (inMax - inMin)
	// Clamp t to [0,1] to handle values outside the input range
	t = Clamp(t, 0, 1)
	// Apply to output range
	return outMin + t*(outMax-outMin)
}

// SmoothStep performs cubic interpolation between a and b
func SmoothStep(a, b, t float64) float64 {
	// Clamp t to [0,1]
	t = Clamp(t, 0, 1)
	// Apply cubic interpolation formula: 3t² - 2t³
	t = t * t * (3 - 2*t)
	return a + t*(b-a)
}

// SmoothStepEdge maps value across the band [edge0, edge1] with the cubic
// smoothstep curve, returning 0 below edge0 and 1 above edge1.
func SmoothStepEdge(edge0, edge1, value float64) float64 {
	if edge1 == edge0 {
		if value < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((value-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Distance3D calculates the Euclidean distance between two 3D points
func Distance3D(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	dz := z2 - z1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// SignPow applies sign(v)*|v|^power, preserving the sign of v through an
// arbitrary power curve.
func SignPow(v, power float64) float64 {
	if power == 1 {
		return v
	}
	if v < 0 {
		return -math.Pow(-v, power)
	}
	return math.Pow(v, power)
}
