package cavegen

import (
	"fmt"

	"cavernkit/internal/noise"
	"cavernkit/internal/util"
	"cavernkit/pkg/config"
)

// NoiseKind selects the base noise primitive of a layer
type NoiseKind int

// Noise kinds
const (
	KindValue NoiseKind = iota
	KindGradient
	KindCellular
	KindRidged
	KindCompositeCavern
)

// BlendMode selects how a layer's output folds into the running stack result
type BlendMode int

// Blend modes
const (
	BlendAdd BlendMode = iota
	BlendSubtract
	BlendMultiply
	BlendMin
	BlendMax
	BlendOverride
)

// ParseNoiseKind parses a configuration string into a NoiseKind
func ParseNoiseKind(s string) (NoiseKind, error) {
	switch s {
	case "value":
		return KindValue, nil
	case "gradient":
		return KindGradient, nil
	case "cellular":
		return KindCellular, nil
	case "ridged":
		return KindRidged, nil
	case "composite_cavern":
		return KindCompositeCavern, nil
	default:
		return 0, fmt.Errorf("unknown noise kind %q", s)
	}
}

// ParseBlendMode parses a configuration string into a BlendMode
func ParseBlendMode(s string) (BlendMode, error) {
	switch s {
	case "add":
		return BlendAdd, nil
	case "subtract":
		return BlendSubtract, nil
	case "multiply":
		return BlendMultiply, nil
	case "min":
		return BlendMin, nil
	case "max":
		return BlendMax, nil
	case "override":
		return BlendOverride, nil
	default:
		return 0, fmt.Errorf("unknown blend mode %q", s)
	}
}

// Layer is one evaluated noise layer with parsed parameters
type Layer struct {
	Enabled        bool
	Kind           NoiseKind
	Blend          BlendMode
	Frequency      float64
	Amplitude      float64
	Octaves        int
	Persistence    float64
	Lacunarity     float64
	Offset         Vec3
	VerticalSquash float64
	DensityBias    float64
	Power          float64

	UseHeightWindow bool
	HeightMin       float64
	HeightMax       float64
	HeightFalloff   float64

	seed int64
}

// LayerStack is an ordered list of noise layers folded left-to-right
type LayerStack struct {
	Layers []Layer
}

// NewLayerStack builds a stack from configuration, assigning each layer a
// seed derived from the global seed and its position in the stack.
func NewLayerStack(layers []config.NoiseLayer, seed int64) (*LayerStack, error) {
	stack := &LayerStack{Layers: make([]Layer, 0, len(layers))}

	for i, lc := range layers {
		kind, err := ParseNoiseKind(lc.Kind)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %v", i, err)
		}
		blend, err := ParseBlendMode(lc.Blend)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %v", i, err)
		}

		layer := Layer{
			Enabled:         lc.Enabled,
			Kind:            kind,
			Blend:           blend,
			Frequency:       lc.Frequency,
			Amplitude:       lc.Amplitude,
			Octaves:         lc.Octaves,
			Persistence:     lc.Persistence,
			Lacunarity:      lc.Lacunarity,
			Offset:          Vec3{X: lc.Offset.X, Y: lc.Offset.Y, Z: lc.Offset.Z},
			VerticalSquash:  lc.VerticalSquash,
			DensityBias:     lc.DensityBias,
			Power:           lc.Power,
			UseHeightWindow: lc.UseHeightWindow,
			HeightMin:       lc.HeightMin,
			HeightMax:       lc.HeightMax,
			HeightFalloff:   lc.HeightFalloff,
			seed:            seed + int64(i)*7919,
		}
		if layer.Octaves < 1 {
			layer.Octaves = 1
		}
		if layer.Power == 0 {
			layer.Power = 1
		}
		stack.Layers = append(stack.Layers, layer)
	}

	return stack, nil
}

// sampleKind evaluates the layer's base noise at a point already scaled to
// noise space. The seed comes in as a parameter so fractal octaves can
// decorrelate.
func (l *Layer) sampleKind(x, y, z float64, seed int64) float64 {
	switch l.Kind {
	case KindValue:
		return noise.Value3D(x, y, z, seed)
	case KindGradient:
		return noise.Gradient3D(x, y, z, seed)
	case KindCellular:
		return noise.Cellular3D(x, y, z, seed)
	case KindRidged:
		return noise.Ridged3D(x, y, z, seed)
	case KindCompositeCavern:
		return compositeCavern(x, y, z, seed)
	default:
		return 0
	}
}

// compositeCavern is a derived kind: the product of two cellular samples at
// different frequency scales, sharpened, with a small gradient admixture,
// remapped to [-1, 1].
func compositeCavern(x, y, z float64, seed int64) float64 {
	cellA := noise.Cellular3D(x, y, z, seed)
	cellB := noise.Cellular3D(x*2.7, y*2.7, z*2.7, seed+977)

	v := cellA * cellB
	v = v * v // sharpen the cavity walls
	v += noise.Gradient3D(x*1.3, y*1.3, z*1.3, seed+1553) * 0.15

	return util.Clamp(v*2.0-1.0, -1, 1)
}

// Evaluate applies the full layer transform at a world position
func (l *Layer) Evaluate(p Vec3) float64 {
	// Vertical squash stretches features horizontally; floor the factor to
	// avoid division blow-up.
	squash := l.VerticalSquash
	if squash < 0.01 {
		squash = 0.01
	}

	sx := (p.X + l.Offset.X) * l.Frequency
	sy := (p.Y/squash + l.Offset.Y) * l.Frequency
	sz := (p.Z + l.Offset.Z) * l.Frequency

	v := noise.Fractal3D(l.sampleKind, sx, sy, sz, l.seed, l.Octaves, l.Persistence, l.Lacunarity)

	v = util.SignPow(v, l.Power)
	v += l.DensityBias

	if l.UseHeightWindow {
		v *= l.heightFalloff(p.Y)
	}

	return v * l.Amplitude
}

// heightFalloff returns 1 inside [HeightMin, HeightMax] fading smoothly to 0
// over HeightFalloff units outside the window.
func (l *Layer) heightFalloff(y float64) float64 {
	falloff := l.HeightFalloff
	if falloff <= 0 {
		if y < l.HeightMin || y > l.HeightMax {
			return 0
		}
		return 1
	}
	below := util.SmoothStepEdge(l.HeightMin-falloff, l.HeightMin, y)
	above := 1 - util.SmoothStepEdge(l.HeightMax, l.HeightMax+falloff, y)
	if below < above {
		return below
	}
	return above
}

// Evaluate folds all enabled layers into a single scalar
func (s *LayerStack) Evaluate(p Vec3) float64 {
	result := 0.0

	for i := range s.Layers {
		layer := &s.Layers[i]
		if !layer.Enabled {
			continue
		}

		v := layer.Evaluate(p)

		switch layer.Blend {
		case BlendAdd:
			result += v
		case BlendSubtract:
			result -= v
		case BlendMultiply:
			result *= v
		case BlendMin:
			if v < result {
				result = v
			}
		case BlendMax:
			if v > result {
				result = v
			}
		case BlendOverride:
			result = v
		}
	}

	return result
}
