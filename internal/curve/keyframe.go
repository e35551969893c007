package curve

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedCurveShape is returned when a segment's tangent handles
	// do not fit any of the four interpolation shapes.
	ErrUnsupportedCurveShape = errors.New("unsupported curve shape")
	ErrEmptyCurve            = errors.New("curve has no keyframes")
	ErrUnorderedKeys         = errors.New("keyframe times are not strictly increasing")
)

// Tangent is an optional slope. An unset tangent marks a missing Bezier handle.
type Tangent struct {
	Slope float64
	Set   bool
}

// Slope returns a set tangent with slope s.
func Slope(s float64) Tangent {
	return Tangent{Slope: s, Set: true}
}

// None is the missing handle.
var None = Tangent{}

// TangentFromFloat maps the source encoding, where an infinite slope means
// "no handle", onto Tangent.
func TangentFromFloat(f float64) Tangent {
	if math.IsInf(f, 0) {
		return None
	}
	return Slope(f)
}

func (t Tangent) String() string {
	if !t.Set {
		return "none"
	}
	return fmt.Sprintf("%g", t.Slope)
}

// Keyframe is a single curve sample with its Bezier tangent handles.
type Keyframe struct {
	Time  float64
	Value float64
	In    Tangent
	Out   Tangent
}

// Shape is the interpolation used between two keyframes.
type Shape int

const (
	ShapeLinear    Shape = iota // no handles
	ShapeStartOnly              // only the start-side handle
	ShapeEndOnly                // only the end-side handle
	ShapeBoth                   // cubic
)

func (s Shape) String() string {
	switch s {
	case ShapeLinear:
		return "linear"
	case ShapeStartOnly:
		return "start-only"
	case ShapeEndOnly:
		return "end-only"
	case ShapeBoth:
		return "both"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// classify picks the segment shape from the handles stored on its first key.
func classify(k Keyframe) (Shape, error) {
	if (k.In.Set && math.IsNaN(k.In.Slope)) || (k.Out.Set && math.IsNaN(k.Out.Slope)) {
		return 0, fmt.Errorf("%w: NaN tangent at t=%g", ErrUnsupportedCurveShape, k.Time)
	}
	switch {
	case !k.In.Set && !k.Out.Set:
		return ShapeLinear, nil
	case k.In.Set && !k.Out.Set:
		return ShapeStartOnly, nil
	case !k.In.Set && k.Out.Set:
		return ShapeEndOnly, nil
	default:
		return ShapeBoth, nil
	}
}
