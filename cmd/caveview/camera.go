package main

import (
	"math"

	"cavernkit/pkg/cavegen"
)

// camera is a free-fly camera controlled with WASD and the mouse
type camera struct {
	position cavegen.Vec3
	yaw      float64 // radians, 0 looks down -Z
	pitch    float64

	moveSpeed float64
	turnSpeed float64
}

func newCamera(position cavegen.Vec3) *camera {
	return &camera{
		position:  position,
		yaw:       0,
		pitch:     0,
		moveSpeed: 20.0,
		turnSpeed: 0.002,
	}
}

// forward returns the view direction
func (c *camera) forward() cavegen.Vec3 {
	cp := math.Cos(c.pitch)
	return cavegen.Vec3{
		X: math.Sin(c.yaw) * cp,
		Y: math.Sin(c.pitch),
		Z: -math.Cos(c.yaw) * cp,
	}
}

func (c *camera) right() cavegen.Vec3 {
	return cavegen.Vec3{X: math.Cos(c.yaw), Y: 0, Z: math.Sin(c.yaw)}
}

func (c *camera) rotate(dx, dy float64) {
	c.yaw += dx * c.turnSpeed
	c.pitch -= dy * c.turnSpeed

	// Clamp pitch short of the poles
	limit := math.Pi/2 - 0.01
	if c.pitch > limit {
		c.pitch = limit
	}
	if c.pitch < -limit {
		c.pitch = -limit
	}
}

func (c *camera) move(forward, strafe, lift, dt float64) {
	f := c.forward().Mul(forward * c.moveSpeed * dt)
	r := c.right().Mul(strafe * c.moveSpeed * dt)
	c.position = c.position.Add(f).Add(r)
	c.position.Y += lift * c.moveSpeed * dt
}

// viewProjection builds the combined view-projection matrix in column-major
// order as OpenGL expects.
func (c *camera) viewProjection(fovDegrees, aspect float64) [16]float32 {
	view := lookAt(c.position, c.position.Add(c.forward()))
	proj := perspective(fovDegrees*math.Pi/180, aspect, 0.1, 1000.0)
	return matMul(proj, view)
}

func lookAt(eye, target cavegen.Vec3) [16]float64 {
	up := cavegen.Vec3{Y: 1}
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return [16]float64{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

func perspective(fovY, aspect, near, far float64) [16]float64 {
	t := 1 / math.Tan(fovY/2)
	return [16]float64{
		t / aspect, 0, 0, 0,
		0, t, 0, 0,
		0, 0, (far + near) / (near - far), -1,
		0, 0, 2 * far * near / (near - far), 0,
	}
}

// matMul multiplies two column-major 4x4 matrices, narrowing to float32 for
// the GL uniform upload.
func matMul(a, b [16]float64) [16]float32 {
	var out [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = float32(sum)
		}
	}
	return out
}
