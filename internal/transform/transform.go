// Package transform converts sampled camera poses from the source engine's
// left-handed space into the destination camera representation.
package transform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ivlev/imo2vmd/internal/geom"
	"github.com/ivlev/imo2vmd/internal/sampler"
)

const (
	// DefaultScale converts source units to destination units.
	DefaultScale = 12.5
	// DefaultSensorWidth is the source engine's fixed sensor constant, in
	// focal-length units.
	DefaultSensorWidth = 11
)

// ErrDegenerateGeometry is returned when the camera sits on its target and
// the view direction is undefined.
var ErrDegenerateGeometry = errors.New("camera position equals target")

// restOffset aligns the destination resting pose with the source one.
var restOffset = geom.Euler{Roll: math.Pi, Yaw: math.Pi}

// Camera is a destination-space camera frame before format-specific encoding.
type Camera struct {
	Frame    uint64
	Position r3.Vec
	Distance float64 // camera to target
	Rotation geom.Euler
	FOV      float64 // radians
}

// Transformer holds the conversion constants.
type Transformer struct {
	Scale       float64
	SensorWidth float64
}

// New returns a Transformer with the default constants.
func New() *Transformer {
	return &Transformer{Scale: DefaultScale, SensorWidth: DefaultSensorWidth}
}

// ToDestination converts one pose. It is a pure function of its input.
func (tr *Transformer) ToDestination(p sampler.CameraPose) (Camera, error) {
	pos := geom.FlipHandedness(p.Position, tr.Scale)
	target := geom.FlipHandedness(p.Target, tr.Scale)

	d := r3.Sub(target, pos)
	dist := r3.Norm(d)
	if dist == 0 {
		return Camera{}, fmt.Errorf("frame %d: %w", p.Frame, ErrDegenerateGeometry)
	}

	q := geom.LookAt(r3.Scale(1/dist, d))
	rot := geom.DestinationOrientation(q, p.Angle.Z).Add(restOffset)

	return Camera{
		Frame:    p.Frame,
		Position: pos,
		Distance: dist,
		Rotation: rot,
		FOV:      2 * math.Atan(tr.SensorWidth/p.FocalLength),
	}, nil
}

// ToDestinationAll converts every pose of seq using up to workers goroutines.
// The result is ordered by frame index; the first error aborts the run.
func (tr *Transformer) ToDestinationAll(ctx context.Context, seq sampler.Sequence, workers int) ([]Camera, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]Camera, seq.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// frames are handed out in fixed-size chunks
	const chunk = 256
	for start := 0; start < seq.Len(); start += chunk {
		end := min(start+chunk, seq.Len())
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				cam, err := tr.ToDestination(seq.At(i))
				if err != nil {
					return err
				}
				out[i] = cam
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
