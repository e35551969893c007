package vmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ivlev/imo2vmd/internal/binio"
)

// ErrMalformedHeader is returned when the input does not start with the
// format magic.
var ErrMalformedHeader = errors.New("malformed vmd header")

// maxPrealloc bounds slice preallocation from untrusted counts.
const maxPrealloc = 1 << 16

func magicField() []byte {
	b := make([]byte, magicSize)
	copy(b, Magic)
	return b
}

// Encode writes m to w in the legacy layout.
func Encode(w io.Writer, m *Motion) error {
	bw := binio.NewWriter(w)
	bw.Bytes(magicField())
	if err := writeName(bw, m.ModelName, modelNameSize); err != nil {
		return fmt.Errorf("model name: %w", err)
	}

	bw.U32(uint32(len(m.Bones)))
	for i := range m.Bones {
		f := &m.Bones[i]
		if err := writeName(bw, f.Name, frameNameSize); err != nil {
			return fmt.Errorf("bone frame %d: %w", i, err)
		}
		bw.U32(f.Frame)
		for _, v := range f.Position {
			bw.F32(v)
		}
		for _, v := range f.Rotation {
			bw.F32(v)
		}
		bw.Bytes(f.Interpolation[:])
	}

	bw.U32(uint32(len(m.Morphs)))
	for i := range m.Morphs {
		f := &m.Morphs[i]
		if err := writeName(bw, f.Name, frameNameSize); err != nil {
			return fmt.Errorf("morph frame %d: %w", i, err)
		}
		bw.U32(f.Frame)
		bw.F32(f.Weight)
	}

	bw.U32(uint32(len(m.Cameras)))
	for i := range m.Cameras {
		f := &m.Cameras[i]
		bw.U32(f.Frame)
		bw.F32(f.Distance)
		for _, v := range f.Position {
			bw.F32(v)
		}
		for _, v := range f.Rotation {
			bw.F32(v)
		}
		bw.Bytes(f.Interpolation[:])
		bw.U32(f.FOV)
		bw.U8(f.Perspective)
	}

	bw.U32(uint32(len(m.Lights)))
	for _, f := range m.Lights {
		bw.U32(f.Frame)
		for _, v := range f.Color {
			bw.F32(v)
		}
		for _, v := range f.Position {
			bw.F32(v)
		}
	}

	bw.U32(uint32(len(m.SelfShadows)))
	for _, f := range m.SelfShadows {
		bw.U32(f.Frame)
		bw.U8(f.Mode)
		bw.F32(f.Distance)
	}

	return bw.Err()
}

func writeName(bw *binio.Writer, name string, width int) error {
	b, err := binio.EncodeFixed(binio.ShiftJIS, name, width)
	if err != nil {
		return err
	}
	bw.Fixed(b, width)
	return nil
}

// Decode reads a legacy-format motion. On a magic mismatch it returns
// ErrMalformedHeader without reading further. Files that end right after the
// camera track (no light or self-shadow sections) are accepted.
func Decode(r io.Reader) (*Motion, error) {
	br := binio.NewReader(r)

	magic := br.Bytes(magicSize)
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if !bytes.Equal(magic, magicField()) {
		return nil, fmt.Errorf("%w: got %q", ErrMalformedHeader, bytes.TrimRight(magic, "\x00"))
	}

	m := &Motion{}
	var err error
	if m.ModelName, err = readName(br, modelNameSize); err != nil {
		return nil, fmt.Errorf("model name: %w", err)
	}

	n := br.U32()
	m.Bones = make([]BoneFrame, 0, min(n, maxPrealloc))
	for i := uint32(0); i < n && br.Err() == nil; i++ {
		var f BoneFrame
		if f.Name, err = readName(br, frameNameSize); err != nil {
			return nil, fmt.Errorf("bone frame %d: %w", i, err)
		}
		f.Frame = br.U32()
		for j := range f.Position {
			f.Position[j] = br.F32()
		}
		for j := range f.Rotation {
			f.Rotation[j] = br.F32()
		}
		br.Into(f.Interpolation[:])
		m.Bones = append(m.Bones, f)
	}

	n = br.U32()
	m.Morphs = make([]MorphFrame, 0, min(n, maxPrealloc))
	for i := uint32(0); i < n && br.Err() == nil; i++ {
		var f MorphFrame
		if f.Name, err = readName(br, frameNameSize); err != nil {
			return nil, fmt.Errorf("morph frame %d: %w", i, err)
		}
		f.Frame = br.U32()
		f.Weight = br.F32()
		m.Morphs = append(m.Morphs, f)
	}

	n = br.U32()
	m.Cameras = make([]CameraFrame, 0, min(n, maxPrealloc))
	for i := uint32(0); i < n && br.Err() == nil; i++ {
		var f CameraFrame
		f.Frame = br.U32()
		f.Distance = br.F32()
		for j := range f.Position {
			f.Position[j] = br.F32()
		}
		for j := range f.Rotation {
			f.Rotation[j] = br.F32()
		}
		br.Into(f.Interpolation[:])
		f.FOV = br.U32()
		f.Perspective = br.U8()
		m.Cameras = append(m.Cameras, f)
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("read tracks: %w", err)
	}

	if n, ok := br.Count(); ok {
		m.Lights = make([]LightFrame, 0, min(n, maxPrealloc))
		for i := uint32(0); i < n && br.Err() == nil; i++ {
			var f LightFrame
			f.Frame = br.U32()
			for j := range f.Color {
				f.Color[j] = br.F32()
			}
			for j := range f.Position {
				f.Position[j] = br.F32()
			}
			m.Lights = append(m.Lights, f)
		}
		if n, ok := br.Count(); ok {
			m.SelfShadows = make([]SelfShadowFrame, 0, min(n, maxPrealloc))
			for i := uint32(0); i < n && br.Err() == nil; i++ {
				var f SelfShadowFrame
				f.Frame = br.U32()
				f.Mode = br.U8()
				f.Distance = br.F32()
				m.SelfShadows = append(m.SelfShadows, f)
			}
		}
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("read trailer: %w", err)
	}
	return m, nil
}

func readName(br *binio.Reader, width int) (string, error) {
	b := br.Bytes(width)
	if err := br.Err(); err != nil {
		return "", err
	}
	return binio.DecodeFixed(binio.ShiftJIS, b)
}
