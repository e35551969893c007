// Package mvd writes the variable-track motion format ("Motion Vector Data
// file"). Only the camera object is produced.
package mvd

import "github.com/ivlev/imo2vmd/internal/transform"

const (
	Magic = "Motion Vector Data file"

	magicSize = 30

	// DefaultName is the camera object name.
	DefaultName = "カメラ00"
	// DefaultFPS is the frame rate written to the header.
	DefaultFPS = 30
)

// Interpolation is one Bezier handle block: x1, y1, x2, y2.
type Interpolation [4]byte

var linear = Interpolation{0, 0, 255, 255}

// LinearInterpolation returns the straight-line handle block.
func LinearInterpolation() Interpolation { return linear }

// CameraFrame is one record of the camera track.
type CameraFrame struct {
	Frame    uint64
	Distance float32
	Position [3]float32
	Rotation [3]float32 // Euler, radians
	FOV      float32    // radians
	Spline   bool

	Translation   Interpolation
	RotationCurve Interpolation
	DistanceCurve Interpolation
	FOVCurve      Interpolation
}

// NewCameraFrame builds the record for a transformed camera. Distances are
// written in transform units.
func NewCameraFrame(cam transform.Camera) CameraFrame {
	return CameraFrame{
		Frame:    cam.Frame,
		Distance: float32(cam.Distance),
		Position: [3]float32{
			float32(cam.Position.X),
			float32(cam.Position.Y),
			float32(cam.Position.Z),
		},
		Rotation: [3]float32{
			float32(cam.Rotation.Roll),
			float32(cam.Rotation.Pitch),
			float32(cam.Rotation.Yaw),
		},
		FOV:           float32(cam.FOV),
		Translation:   LinearInterpolation(),
		RotationCurve: LinearInterpolation(),
		DistanceCurve: LinearInterpolation(),
		FOVCurve:      LinearInterpolation(),
	}
}

// Motion is a camera-only variable-track file.
type Motion struct {
	Name    string
	FPS     float32
	Cameras []CameraFrame
}

// NewMotion returns an empty motion with the default name and frame rate.
func NewMotion() *Motion {
	return &Motion{Name: DefaultName, FPS: DefaultFPS}
}
