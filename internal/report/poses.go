// Package report writes diagnostics for a conversion run: a per-frame pose
// dump, a trajectory plot and run statistics.
package report

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/imo2vmd/internal/geom"
	"github.com/ivlev/imo2vmd/internal/sampler"
	"github.com/ivlev/imo2vmd/internal/transform"
)

const dumpVersion = "1.0"

// PoseDump pairs every sampled source pose with the converted camera.
type PoseDump struct {
	Version string       `yaml:"version"`
	Rate    float64      `yaml:"rate"`
	Frames  []PoseRecord `yaml:"frames"`
}

// PoseRecord is one frame of the dump. Angles are in degrees.
type PoseRecord struct {
	Frame       uint64     `yaml:"frame"`
	Time        float64    `yaml:"time"`
	FocalLength float64    `yaml:"focal_length"`
	Cut         int32      `yaml:"cut"`
	Angle       [3]float64 `yaml:"angle,flow"`
	Position    [3]float64 `yaml:"position,flow"`
	Target      [3]float64 `yaml:"target,flow"`

	OutPosition [3]float64 `yaml:"out_position,flow"`
	Distance    float64    `yaml:"distance"`
	Rotation    [3]float64 `yaml:"rotation,flow"`
	FOV         float64    `yaml:"fov"`
}

func vec(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// NewPoseDump builds the dump for a sampled sequence and its conversion.
func NewPoseDump(seq sampler.Sequence, cams []transform.Camera) (*PoseDump, error) {
	if seq.Len() != len(cams) {
		return nil, fmt.Errorf("pose dump: %d poses but %d cameras", seq.Len(), len(cams))
	}
	d := &PoseDump{
		Version: dumpVersion,
		Rate:    seq.Rate(),
		Frames:  make([]PoseRecord, 0, len(cams)),
	}
	for i, p := range seq.All() {
		c := cams[i]
		d.Frames = append(d.Frames, PoseRecord{
			Frame:       p.Frame,
			Time:        p.Time,
			FocalLength: p.FocalLength,
			Cut:         p.Cut,
			Angle:       vec(p.Angle),
			Position:    vec(p.Position),
			Target:      vec(p.Target),
			OutPosition: vec(c.Position),
			Distance:    c.Distance,
			Rotation: [3]float64{
				geom.Degrees(c.Rotation.Roll),
				geom.Degrees(c.Rotation.Pitch),
				geom.Degrees(c.Rotation.Yaw),
			},
			FOV: geom.Degrees(c.FOV),
		})
	}
	return d, nil
}

// WritePoses writes a dump to a YAML file.
func WritePoses(dump *PoseDump, path string) error {
	data, err := yaml.Marshal(dump)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadPoses reads a dump from a YAML file.
func ReadPoses(path string) (*PoseDump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dump PoseDump
	if err := yaml.Unmarshal(data, &dump); err != nil {
		return nil, err
	}

	return &dump, nil
}
