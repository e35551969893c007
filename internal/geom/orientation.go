// Package geom holds the orientation math shared by the camera transform:
// look-at quaternions, Euler decomposition and the handedness flip between
// the source (left-handed) and destination (right-handed) spaces.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// Forward is the reference axis a look-at rotation starts from.
	Forward = r3.Vec{Z: 1}
	// fallbackAxis is used when the look direction is parallel to Forward.
	fallbackAxis = r3.Vec{Y: 1}
)

// Euler is an orientation in radians as the destination format stores it.
type Euler struct {
	Roll, Pitch, Yaw float64
}

// Add returns the component-wise sum.
func (e Euler) Add(o Euler) Euler {
	return Euler{Roll: e.Roll + o.Roll, Pitch: e.Pitch + o.Pitch, Yaw: e.Yaw + o.Yaw}
}

// Vec returns the angles as (Roll, Pitch, Yaw) = (X, Y, Z).
func (e Euler) Vec() r3.Vec {
	return r3.Vec{X: e.Roll, Y: e.Pitch, Z: e.Yaw}
}

// LookAt returns the minimal rotation taking Forward onto the unit vector dir.
// Roll around dir is left unconstrained. The axis is Forward × dir; the
// reversed order dir × Forward yields the same direction with roll and pitch
// of opposite sign once converted to Euler angles.
func LookAt(dir r3.Vec) quat.Number {
	axis := r3.Cross(Forward, dir)
	if n := r3.Norm(axis); n == 0 {
		axis = fallbackAxis
	} else {
		axis = r3.Scale(1/n, axis)
	}
	half := math.Acos(clamp(r3.Dot(dir, Forward))) / 2
	s := math.Sin(half)
	return quat.Number{
		Real: math.Cos(half),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// ToEuler decomposes q with the axis ordering the destination format uses.
// The vector part is read as (y, x, z), i.e. the first two axes swapped.
func ToEuler(q quat.Number) (roll, pitch, yaw float64) {
	y, x, z, w := q.Imag, q.Jmag, q.Kmag, q.Real
	r1 := w*w - y*y
	r2 := x*x - z*z
	pitch = math.Atan2(2*(y*x+w*z), r1+r2)
	roll = math.Asin(clamp(-2 * (x*z - w*y)))
	yaw = math.Atan2(2*(y*z+w*x), r1-r2)
	return roll, pitch, yaw
}

// DestinationOrientation converts a look-at quaternion and the source azimuth
// channel (degrees) into destination Euler angles. The look-at rotation has no
// roll, so the view-axis angle comes from the azimuth instead.
func DestinationOrientation(q quat.Number, azimuthDeg float64) Euler {
	roll, _, yaw := ToEuler(q)
	return Euler{
		Roll:  roll,
		Pitch: yaw,
		Yaw:   -Radians(azimuthDeg),
	}
}

// FlipHandedness maps a source-space point into destination space:
// (x, y, z) -> (-x, y, -z), then scales it.
func FlipHandedness(v r3.Vec, scale float64) r3.Vec {
	return r3.Vec{X: -v.X * scale, Y: v.Y * scale, Z: -v.Z * scale}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
