package vmd

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ivlev/imo2vmd/internal/geom"
	"github.com/ivlev/imo2vmd/internal/sampler"
	"github.com/ivlev/imo2vmd/internal/transform"
)

func sampleMotion() *Motion {
	m := &Motion{ModelName: "初音ミク"}
	m.Bones = []BoneFrame{
		{Name: "センター", Frame: 0, Position: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}, Interpolation: LinearBoneInterpolation()},
		{Name: "右腕", Frame: 15, Position: [3]float32{-0.5, 0, 0.25}, Rotation: [4]float32{0.1, 0.2, 0.3, 0.927}, Interpolation: LinearBoneInterpolation()},
	}
	m.Morphs = []MorphFrame{
		{Name: "まばたき", Frame: 3, Weight: 0.75},
	}
	m.Cameras = []CameraFrame{
		{Frame: 0, Distance: 4.5, Position: [3]float32{0, 10, 0}, Rotation: [3]float32{0.1, 3.14, 0}, Interpolation: LinearCameraInterpolation(), FOV: 30},
		{Frame: 60, Distance: 6.25, Position: [3]float32{1, 11, -2}, Rotation: [3]float32{0, 0, 0}, Interpolation: LinearCameraInterpolation(), FOV: 45, Perspective: 1},
	}
	m.Lights = []LightFrame{
		{Frame: 0, Color: [3]float32{0.6, 0.6, 0.6}, Position: [3]float32{-0.5, -1, 0.5}},
	}
	m.SelfShadows = []SelfShadowFrame{
		{Frame: 0, Mode: 1, Distance: 0.0875},
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	want := sampleMotion()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))

	got, err := Decode(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripEmptyTracks(t *testing.T) {
	want := NewCameraMotion()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))
	assert.Equal(t, magicSize+modelNameSize+5*4, buf.Len())

	got, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewCameraMotion()))
	b := buf.Bytes()

	assert.Equal(t, "Vocaloid Motion Data 0002\x00\x00\x00\x00\x00", string(b[:30]))
	name := []byte{0x83, 0x4a, 0x83, 0x81, 0x83, 0x89, 0x81, 0x45, 0x8f, 0xc6, 0x96, 0xbe}
	assert.Equal(t, name, b[30:42])
	assert.Equal(t, make([]byte, 8), b[42:50])
	// five empty track counts
	assert.Equal(t, make([]byte, 20), b[50:])
}

// The camera track of a converted pose: source position (1,0,0) looking at
// (1,0,-5) becomes (-12.5,0,0) looking at (-12.5,0,62.5).
func TestCameraRecordBytes(t *testing.T) {
	cam, err := transform.New().ToDestination(sampler.CameraPose{
		Frame:       9,
		FocalLength: 22,
		Position:    r3.Vec{X: 1},
		Target:      r3.Vec{X: 1, Z: -5},
	})
	require.NoError(t, err)

	m := NewCameraMotion()
	m.Cameras = append(m.Cameras, NewCameraFrame(cam))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))

	rec := buf.Bytes()[magicSize+modelNameSize+4+4+4:]
	le := binary.LittleEndian
	assert.Equal(t, uint32(9), le.Uint32(rec[0:]))
	assert.Equal(t, math.Float32bits(6.25), le.Uint32(rec[4:]), "distance is 62.5 / 10")
	assert.Equal(t, math.Float32bits(-12.5), le.Uint32(rec[8:]))
	assert.Equal(t, math.Float32bits(0), le.Uint32(rec[12:]))
	assert.Equal(t, uint32(0), le.Uint32(rec[16:])&0x7fffffff, "z is zero")
	assert.Equal(t, math.Float32bits(float32(math.Pi)), le.Uint32(rec[20:]))
	interp := LinearCameraInterpolation()
	assert.Equal(t, interp[:], rec[32:56])
	assert.Equal(t, uint32(geom.Degrees(2*math.Atan(0.5))), le.Uint32(rec[56:]))
	assert.Equal(t, byte(0), rec[60])
	assert.Len(t, rec, 61+8, "record plus the light and self-shadow counts")
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestDecodeMalformedHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleMotion()))
	b := buf.Bytes()
	copy(b, "Vocaloid Motion Data file")

	cr := &countingReader{r: bytes.NewReader(b)}
	m, err := Decode(cr)
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.Nil(t, m)
	assert.Equal(t, magicSize, cr.n, "nothing past the magic is read")
}

func TestDecodeShortHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("Vocaloid")))
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeWithoutTrailer(t *testing.T) {
	var buf bytes.Buffer
	m := sampleMotion()
	m.Lights, m.SelfShadows = nil, nil
	require.NoError(t, Encode(&buf, m))

	// drop the light and self-shadow counts
	b := buf.Bytes()[:buf.Len()-8]
	got, err := Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Len(t, got.Cameras, 2)
	assert.Empty(t, got.Lights)
}

func TestDecodeTruncatedTrack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleMotion()))
	b := buf.Bytes()[:magicSize+modelNameSize+4+50]

	m, err := Decode(bytes.NewReader(b))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Nil(t, m)
}

func TestReencodeCutMorphName(t *testing.T) {
	var buf bytes.Buffer
	m := NewCameraMotion()
	m.Morphs = []MorphFrame{{Name: "x", Frame: 2, Weight: 0.5}}
	require.NoError(t, Encode(&buf, m))

	// overwrite the morph name with seven kana and a dangling lead byte
	b := buf.Bytes()
	name := b[magicSize+modelNameSize+8 : magicSize+modelNameSize+8+frameNameSize]
	copy(name, []byte{0x82, 0xa0, 0x82, 0xa2, 0x82, 0xa4, 0x82, 0xa6, 0x82, 0xa8, 0x82, 0xa9, 0x82, 0xab, 0x82})

	got, err := Decode(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, got.Morphs, 1)
	assert.Equal(t, "あいうえおかき", got.Morphs[0].Name)

	var again bytes.Buffer
	require.NoError(t, Encode(&again, got))
	back, err := Decode(&again)
	require.NoError(t, err)
	assert.Equal(t, got.Morphs, back.Morphs)
}

func TestEncodeRejectsUnencodableName(t *testing.T) {
	m := NewCameraMotion()
	m.Morphs = []MorphFrame{{Name: "🙂"}}
	assert.Error(t, Encode(io.Discard, m))
}

func TestLinearInterpolationIsACopy(t *testing.T) {
	a := LinearCameraInterpolation()
	a[0] = 0
	assert.Equal(t, byte(20), LinearCameraInterpolation()[0])

	b := LinearBoneInterpolation()
	assert.Equal(t, byte(20), b[0])
	assert.Equal(t, byte(107), b[8])
	assert.Equal(t, byte(20), b[16])
	assert.Equal(t, byte(0), b[63])
}
