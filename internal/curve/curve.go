// Package curve evaluates scalar animation curves made of keyframes with
// one-dimensional Bezier tangent handles.
package curve

import (
	"errors"
	"fmt"
)

// ErrMalformedCurve is returned by FromFlat for arrays that are not made of
// whole (time, value, in, out) groups.
var ErrMalformedCurve = errors.New("malformed flat curve")

// Curve is an immutable, time-ordered keyframe sequence.
type Curve struct {
	keys   []Keyframe
	shapes []Shape // shapes[i] is the shape of segment [keys[i], keys[i+1]]
}

// New validates keys and classifies every segment once.
func New(keys []Keyframe) (*Curve, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyCurve
	}
	c := &Curve{
		keys:   append([]Keyframe(nil), keys...),
		shapes: make([]Shape, len(keys)-1),
	}
	for i := 0; i < len(keys)-1; i++ {
		if keys[i+1].Time <= keys[i].Time {
			return nil, fmt.Errorf("%w: key %d at %g follows %g", ErrUnorderedKeys, i+1, keys[i+1].Time, keys[i].Time)
		}
		shape, err := classify(keys[i])
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		c.shapes[i] = shape
	}
	return c, nil
}

// FromFlat builds a curve from the interchange layout
// [time, value, inSlope, outSlope, time, value, ...] where an infinite slope
// means the handle is absent.
func FromFlat(values []float64) (*Curve, error) {
	if len(values) == 0 {
		return nil, ErrEmptyCurve
	}
	if len(values)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrMalformedCurve, len(values))
	}
	keys := make([]Keyframe, 0, len(values)/4)
	for i := 0; i < len(values); i += 4 {
		keys = append(keys, Keyframe{
			Time:  values[i],
			Value: values[i+1],
			In:    TangentFromFloat(values[i+2]),
			Out:   TangentFromFloat(values[i+3]),
		})
	}
	return New(keys)
}

// Constant returns a single-key curve at t=0 that evaluates to v everywhere.
func Constant(v float64) *Curve {
	return &Curve{keys: []Keyframe{{Time: 0, Value: v}}}
}

// Len returns the number of keyframes.
func (c *Curve) Len() int { return len(c.keys) }

// End returns the time of the last keyframe.
func (c *Curve) End() float64 { return c.keys[len(c.keys)-1].Time }

// Keys returns a copy of the keyframes.
func (c *Curve) Keys() []Keyframe { return append([]Keyframe(nil), c.keys...) }

// Shape returns the interpolation shape of segment i.
func (c *Curve) Shape(i int) Shape { return c.shapes[i] }

// segment returns the index of the first segment whose end time is >= t,
// or -1 when t lies beyond every segment.
func (c *Curve) segment(t float64) int {
	for i := 0; i < len(c.keys)-1; i++ {
		if t > c.keys[i+1].Time {
			continue
		}
		return i
	}
	return -1
}

// last is the clamp value for times past the final key.
func (c *Curve) last() float64 {
	return c.keys[len(c.keys)-1].Value
}
