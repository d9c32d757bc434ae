package util

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, c := range cases {
		if got := Clamp(c.value, c.min, c.max); got != c.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", c.value, c.min, c.max, got, c.want)
		}
	}
}

func TestSmoothStepEdge(t *testing.T) {
	if v := SmoothStepEdge(0, 1, -0.5); v != 0 {
		t.Errorf("below edge0 should be 0, got %f", v)
	}
	if v := SmoothStepEdge(0, 1, 1.5); v != 1 {
		t.Errorf("above edge1 should be 1, got %f", v)
	}
	if v := SmoothStepEdge(0, 1, 0.5); math.Abs(v-0.5) > 1e-12 {
		t.Errorf("midpoint should be 0.5, got %f", v)
	}
	// Degenerate band behaves like a step.
	if v := SmoothStepEdge(1, 1, 0.5); v != 0 {
		t.Errorf("degenerate band below edge should be 0, got %f", v)
	}
	if v := SmoothStepEdge(1, 1, 2); v != 1 {
		t.Errorf("degenerate band above edge should be 1, got %f", v)
	}
}

func TestSignPow(t *testing.T) {
	if v := SignPow(-0.25, 2); math.Abs(v+0.0625) > 1e-12 {
		t.Errorf("SignPow(-0.25, 2) = %f, want -0.0625", v)
	}
	if v := SignPow(0.5, 1); v != 0.5 {
		t.Errorf("power 1 must be identity, got %f", v)
	}
	if v := SignPow(0.25, 0.5); math.Abs(v-0.5) > 1e-12 {
		t.Errorf("SignPow(0.25, 0.5) = %f, want 0.5", v)
	}
}

func TestMap(t *testing.T) {
	if v := Map(5, 0, 10, 0, 100); v != 50 {
		t.Errorf("Map midpoint = %f, want 50", v)
	}
	if v := Map(-5, 0, 10, 0, 100); v != 0 {
		t.Errorf("Map clamps below, got %f", v)
	}
}
