package mvd

import (
	"io"

	"github.com/ivlev/imo2vmd/internal/binio"
)

// Block markers and record strides of the sections written here.
const (
	cameraBlockType     = 96
	cameraBlockMinor    = 3
	cameraRecordSize    = 64
	propertyBlockType   = 104
	propertyBlockMinor  = 2
	propertyRecordSize  = 32
	encodingUTF8        = 1
	formatVersion       = 1.0
	cameraTrackCount    = 4
	endOfFileMarker     = 0xFF
	dynamicFovRate      = 0.1
	dynamicFovCoeff     = 1.0
	unrelatedID         = -1
	cameraObjectID      = 0
	cameraPropertyCount = 1
)

// Encode writes m to w.
func Encode(w io.Writer, m *Motion) error {
	bw := binio.NewWriter(w)
	name := []byte(m.Name)

	magic := make([]byte, magicSize)
	copy(magic, Magic)
	bw.Bytes(magic)
	bw.F32(formatVersion)
	bw.U8(encodingUTF8)

	// object header: name, English name, frame rate, empty extension fields
	bw.Prefixed(name)
	bw.Prefixed(name)
	bw.F32(m.FPS)
	bw.U32(0)
	bw.Bool(false)
	bw.Bool(false)
	bw.U32(0)
	bw.U32(0)
	bw.U64(1)

	// name list
	bw.U32(cameraObjectID)
	bw.Prefixed(name)

	// camera track
	bw.U8(cameraBlockType)
	bw.U8(cameraBlockMinor)
	bw.U32(0)
	bw.U32(cameraRecordSize)
	bw.U32(uint32(len(m.Cameras)))
	bw.U32(cameraTrackCount)
	bw.U32(1)
	for i := range m.Cameras {
		writeCameraFrame(bw, &m.Cameras[i])
	}

	// camera property track
	bw.U8(propertyBlockType)
	bw.U8(propertyBlockMinor)
	bw.U32(1)
	bw.U32(propertyRecordSize)
	bw.U32(cameraPropertyCount)
	bw.U64(0)

	bw.U32(0)
	bw.Bool(true) // enabled
	bw.Bool(true) // perspective
	bw.F32(1)     // alpha
	bw.Bool(true) // effect enabled
	bw.Bool(false)
	bw.F32(dynamicFovRate)
	bw.F32(dynamicFovCoeff)
	bw.I32(unrelatedID) // related bone
	bw.I32(unrelatedID) // related model

	bw.U8(endOfFileMarker)
	bw.U8(0)
	return bw.Err()
}

func writeCameraFrame(bw *binio.Writer, f *CameraFrame) {
	bw.U32(0)
	bw.U64(f.Frame)
	bw.F32(f.Distance)
	for _, v := range f.Position {
		bw.F32(v)
	}
	for _, v := range f.Rotation {
		bw.F32(v)
	}
	bw.F32(f.FOV)
	bw.Bool(f.Spline)
	bw.Zeros(3)
	bw.Bytes(f.Translation[:])
	bw.Bytes(f.RotationCurve[:])
	bw.Bytes(f.DistanceCurve[:])
	bw.Bytes(f.FOVCurve[:])
}
