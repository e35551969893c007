// Package vmd reads and writes the legacy keyframe motion format
// ("Vocaloid Motion Data 0002").
package vmd

import (
	"math"

	"github.com/ivlev/imo2vmd/internal/geom"
	"github.com/ivlev/imo2vmd/internal/transform"
)

const (
	Magic = "Vocaloid Motion Data 0002"

	magicSize     = 30
	modelNameSize = 20
	frameNameSize = 15

	// CameraModelName is the model name tools expect on camera motions.
	CameraModelName = "カメラ・照明"

	// distanceScale converts transform units to the format's distance unit.
	distanceScale = 10
)

// BoneFrame is a position/rotation key of one bone.
type BoneFrame struct {
	Name          string
	Frame         uint32
	Position      [3]float32
	Rotation      [4]float32 // quaternion x, y, z, w
	Interpolation [64]byte
}

// MorphFrame is a shape weight key.
type MorphFrame struct {
	Name   string
	Frame  uint32
	Weight float32
}

// CameraFrame is a camera key.
type CameraFrame struct {
	Frame         uint32
	Distance      float32
	Position      [3]float32
	Rotation      [3]float32 // Euler, radians
	Interpolation [24]byte
	FOV           uint32 // degrees
	Perspective   uint8  // 0 = perspective on
}

// LightFrame is a key of the scene light.
type LightFrame struct {
	Frame    uint32
	Color    [3]float32
	Position [3]float32
}

// SelfShadowFrame is a key of the self-shadow settings.
type SelfShadowFrame struct {
	Frame    uint32
	Mode     uint8
	Distance float32
}

// Motion is a complete legacy-format file.
type Motion struct {
	ModelName   string
	Bones       []BoneFrame
	Morphs      []MorphFrame
	Cameras     []CameraFrame
	Lights      []LightFrame
	SelfShadows []SelfShadowFrame
}

// NewCameraMotion returns an empty motion carrying the camera model name.
func NewCameraMotion() *Motion {
	return &Motion{ModelName: CameraModelName}
}

var linearCamera = func() (b [24]byte) {
	// six channels (x, y, z, rotation, distance, fov), each ax, bx, ay, by
	for i := 0; i < 24; i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = 20, 107, 20, 107
	}
	return b
}()

var linearBone = func() (b [64]byte) {
	// first row holds ax, ay, bx, by, each for the x, y, z and rotation
	// channels; the remaining rows repeat it shifted by one byte
	row := [16]byte{
		20, 20, 20, 20, 20, 20, 20, 20,
		107, 107, 107, 107, 107, 107, 107, 107,
	}
	for r := 0; r < 4; r++ {
		copy(b[r*16:], row[r:])
	}
	return b
}()

// LinearCameraInterpolation returns the camera interpolation block for
// straight-line motion between keys.
func LinearCameraInterpolation() [24]byte { return linearCamera }

// LinearBoneInterpolation returns the bone interpolation block for
// straight-line motion between keys.
func LinearBoneInterpolation() [64]byte { return linearBone }

// NewCameraFrame builds the record for a transformed camera. The distance is
// scaled to the format's unit and the field of view stored in whole degrees.
func NewCameraFrame(cam transform.Camera) CameraFrame {
	return CameraFrame{
		Frame:    uint32(cam.Frame),
		Distance: float32(cam.Distance / distanceScale),
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
		Interpolation: LinearCameraInterpolation(),
		FOV:           uint32(math.Trunc(geom.Degrees(cam.FOV))),
	}
}
