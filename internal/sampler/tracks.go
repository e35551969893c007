package sampler

import (
	"fmt"

	"github.com/ivlev/imo2vmd/internal/curve"
	"github.com/ivlev/imo2vmd/internal/source"
)

// Track identifies one of the camera channels.
type Track int

const (
	FocalLength Track = iota
	Cut
	AngleX
	AngleY
	AngleZ
	PositionX
	PositionY
	PositionZ
	TargetX
	TargetY
	TargetZ

	NumTracks
)

var trackNames = [NumTracks]string{
	"focalLength", "camCut",
	"angleX", "angleY", "angleZ",
	"positionX", "positionY", "positionZ",
	"targetX", "targetY", "targetZ",
}

func (t Track) String() string {
	if t < 0 || t >= NumTracks {
		return fmt.Sprintf("Track(%d)", int(t))
	}
	return trackNames[t]
}

// binding maps an object path and attribute tag to a track.
type binding struct {
	path   string
	attrib string
	track  Track
}

var bindings = []binding{
	{"CamBase", "property_name focalLength", FocalLength},
	{"CamBase", "property_name camCut", Cut},
	{"CamBaseS", "property_type AngleX", AngleX},
	{"CamBaseS", "property_type AngleY", AngleY},
	{"CamBaseS", "property_type AngleZ", AngleZ},
	{"CamBaseS", "property_type PositionX", PositionX},
	{"CamBaseS", "property_type PositionY", PositionY},
	{"CamBaseS", "property_type PositionZ", PositionZ},
	{"CamTgtS", "property_type PositionX", TargetX},
	{"CamTgtS", "property_type PositionY", TargetY},
	{"CamTgtS", "property_type PositionZ", TargetZ},
}

// TrackOf returns the track a source curve drives, if any.
func TrackOf(c source.Curve) (Track, bool) {
	for _, b := range bindings {
		if c.Path == b.path && c.HasAttrib(b.attrib) {
			return b.track, true
		}
	}
	return 0, false
}

// CurveSet holds one curve per track.
type CurveSet [NumTracks]*curve.Curve

// NewCurveSet returns a set where every track is constant zero.
func NewCurveSet() CurveSet {
	var set CurveSet
	for i := range set {
		set[i] = curve.Constant(0)
	}
	return set
}

// Bind routes source curves onto tracks. Curves that drive no camera track are
// returned in skipped. Missing tracks stay constant zero; a later curve for
// the same track replaces an earlier one.
func Bind(curves []source.Curve) (set CurveSet, skipped []source.Curve, err error) {
	set = NewCurveSet()
	for _, sc := range curves {
		track, ok := TrackOf(sc)
		if !ok {
			skipped = append(skipped, sc)
			continue
		}
		c, err := curve.FromFlat(sc.Floats())
		if err != nil {
			return CurveSet{}, nil, fmt.Errorf("track %s (%s): %w", track, sc.Path, err)
		}
		set[track] = c
	}
	return set, skipped, nil
}

// Duration is the latest keyframe time across all tracks.
func (s CurveSet) Duration() float64 {
	d := 0.0
	for _, c := range s {
		if c != nil && c.End() > d {
			d = c.End()
		}
	}
	return d
}
