package noise

import (
	"math"
	"testing"
)

func TestValue3DDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.13
		y := float64(i) * 0.29
		z := float64(i) * 0.41
		if Value3D(x, y, z, 12345) != Value3D(x, y, z, 12345) {
			t.Fatalf("Value3D not deterministic at (%f, %f, %f)", x, y, z)
		}
	}
}

func TestValue3DRange(t *testing.T) {
	for i := 0; i < 10000; i++ {
		x := float64(i)*0.37 - 500
		y := float64(i)*0.53 - 500
		z := float64(i)*0.71 - 500
		v := Value3D(x, y, z, 42)
		if v < -1.0 || v > 1.0 {
			t.Fatalf("Value3D(%f, %f, %f) = %f, out of [-1,1]", x, y, z, v)
		}
	}
}

func TestGradient3DSeedChangesOutput(t *testing.T) {
	same := true
	for i := 0; i < 50; i++ {
		x := float64(i)*0.17 + 0.5
		if Gradient3D(x, x*0.3, x*0.7, 1) != Gradient3D(x, x*0.3, x*0.7, 2) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("Gradient3D ignores the seed")
	}
}

func TestGradient3DRange(t *testing.T) {
	// The stretch factor is calibrated so output stays close to [-1, 1];
	// allow a small overshoot for the extreme gradient alignments.
	for i := 0; i < 5000; i++ {
		x := float64(i)*0.37 - 900
		y := float64(i)*0.53 - 900
		z := float64(i)*0.29 - 900
		v := Gradient3D(x, y, z, 7)
		if math.Abs(v) > 1.02 {
			t.Fatalf("Gradient3D(%f, %f, %f) = %f, outside [-1.02, 1.02]", x, y, z, v)
		}
	}
}

func TestGradient3DContinuity(t *testing.T) {
	// Small input steps must produce small output steps.
	prev := Gradient3D(0, 0.5, 0.5, 7)
	for i := 1; i < 1000; i++ {
		x := float64(i) * 0.001
		v := Gradient3D(x, 0.5, 0.5, 7)
		if math.Abs(v-prev) > 0.05 {
			t.Fatalf("discontinuity at x=%f: %f -> %f", x, prev, v)
		}
		prev = v
	}
}

func TestCellular3DRange(t *testing.T) {
	for i := 0; i < 5000; i++ {
		x := float64(i)*0.43 - 200
		y := float64(i)*0.61 - 200
		z := float64(i)*0.23 - 200
		v := Cellular3D(x, y, z, 99)
		if v < 0 || v > 1.0 {
			t.Fatalf("Cellular3D(%f, %f, %f) = %f, out of [0,1]", x, y, z, v)
		}
	}
}

func TestRidged3DRange(t *testing.T) {
	for i := 0; i < 5000; i++ {
		x := float64(i)*0.31 - 100
		v := Ridged3D(x, x*0.7, x*1.3, 5)
		if v < 0 || v > 1.0 {
			t.Fatalf("Ridged3D out of [0,1]: %f", v)
		}
	}
}

func TestFractal3DNormalized(t *testing.T) {
	for i := 0; i < 2000; i++ {
		x := float64(i)*0.19 - 50
		v := Fractal3D(Value3D, x, x*0.5, x*0.9, 11, 4, 0.5, 2.0)
		if v < -1.0 || v > 1.0 {
			t.Fatalf("Fractal3D out of [-1,1]: %f", v)
		}
	}
}

func TestFractal3DSingleOctaveMatchesBase(t *testing.T) {
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.37
		got := Fractal3D(Gradient3D, x, x, x, 3, 1, 0.5, 2.0)
		want := Gradient3D(x, x, x, 3)
		if got != want {
			t.Fatalf("single octave mismatch at %f: %f != %f", x, got, want)
		}
	}
}
