package curve

import "fmt"

// Evaluate returns the curve value at time t. Times after the last key clamp
// to its value; times before the first key follow the first segment.
func (c *Curve) Evaluate(t float64) float64 {
	i := c.segment(t)
	if i < 0 {
		return c.last()
	}

	start, end := c.keys[i], c.keys[i+1]
	dt := end.Time - start.Time
	u := (t - start.Time) / dt

	switch c.shapes[i] {
	case ShapeLinear:
		return lerp(start.Value, end.Value, u)
	case ShapeStartOnly:
		return quadratic(start.Value, startControl(start, dt), end.Value, u)
	case ShapeEndOnly:
		return quadratic(start.Value, endControl(start, end, dt), end.Value, u)
	case ShapeBoth:
		return cubic(start.Value, startControl(start, dt), endControl(start, end, dt), end.Value, u)
	default:
		panic(fmt.Errorf("%w: %v", ErrUnsupportedCurveShape, c.shapes[i]))
	}
}

// EvaluateStepped returns the start value of the segment containing t, without
// interpolation. Used for flag and integer tracks.
func (c *Curve) EvaluateStepped(t float64) float64 {
	i := c.segment(t)
	if i < 0 {
		return c.last()
	}
	return c.keys[i].Value
}

func startControl(start Keyframe, dt float64) float64 {
	return start.Value + start.In.Slope/3*dt
}

func endControl(start, end Keyframe, dt float64) float64 {
	return end.Value - start.Out.Slope/3*dt
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// quadratic evaluates a quadratic Bezier with a single control point.
func quadratic(p1, cp, p2, t float64) float64 {
	tt := 1 - t
	return tt*tt*p1 + 2*t*tt*cp + t*t*p2
}

// cubic evaluates a cubic Bezier with two control points.
func cubic(p1, cp1, cp2, p2, t float64) float64 {
	tt := 1 - t
	return tt*tt*tt*p1 + 3*tt*tt*t*cp1 + 3*tt*t*t*cp2 + t*t*t*p2
}
