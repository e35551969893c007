// Package sampler turns the camera curve set into a dense, fixed-rate
// sequence of camera poses.
package sampler

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultRate is the sample rate of the source animation, in frames per second.
const DefaultRate = 60

// CameraPose is the camera state at one sampled frame, in source space.
type CameraPose struct {
	Frame       uint64
	Time        float64
	FocalLength float64
	Cut         int32
	Angle       r3.Vec // Euler angles, degrees
	Position    r3.Vec
	Target      r3.Vec // look-at point
}

// Sampler evaluates a CurveSet at a fixed rate.
type Sampler struct {
	Rate float64
}

// New creates a Sampler at DefaultRate.
func New() *Sampler {
	return &Sampler{Rate: DefaultRate}
}

// Sample returns the lazy pose sequence for set. Tracks missing from set are
// treated as constant zero.
func (s *Sampler) Sample(set CurveSet) Sequence {
	rate := s.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	zero := NewCurveSet()
	for i, c := range set {
		if c == nil {
			set[i] = zero[i]
		}
	}
	return Sequence{
		set:   set,
		rate:  rate,
		count: int(math.Floor(set.Duration() * rate)),
	}
}

// Sequence is a finite, restartable pose sequence. Poses are computed on
// demand; a Sequence holds no per-frame state.
type Sequence struct {
	set   CurveSet
	rate  float64
	count int
}

// Len is the number of frames.
func (q Sequence) Len() int { return q.count }

// Rate is the sample rate in frames per second.
func (q Sequence) Rate() float64 { return q.rate }

// At evaluates frame i.
func (q Sequence) At(i int) CameraPose {
	t := float64(i) / q.rate
	eval := func(tr Track) float64 { return q.set[tr].Evaluate(t) }

	return CameraPose{
		Frame:       uint64(i),
		Time:        t,
		FocalLength: eval(FocalLength),
		Cut:         int32(q.set[Cut].EvaluateStepped(t)),
		Angle:       r3.Vec{X: eval(AngleX), Y: eval(AngleY), Z: eval(AngleZ)},
		Position:    r3.Vec{X: eval(PositionX), Y: eval(PositionY), Z: eval(PositionZ)},
		Target:      r3.Vec{X: eval(TargetX), Y: eval(TargetY), Z: eval(TargetZ)},
	}
}

// All yields frames 0..Len()-1 in order.
func (q Sequence) All() iter.Seq2[int, CameraPose] {
	return func(yield func(int, CameraPose) bool) {
		for i := 0; i < q.count; i++ {
			if !yield(i, q.At(i)) {
				return
			}
		}
	}
}

// Collect materializes the whole sequence.
func (q Sequence) Collect() []CameraPose {
	out := make([]CameraPose, 0, q.count)
	for _, p := range q.All() {
		out = append(out, p)
	}
	return out
}
