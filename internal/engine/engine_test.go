package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/imo2vmd/internal/config"
	"github.com/ivlev/imo2vmd/internal/motion"
	"github.com/ivlev/imo2vmd/internal/patch"
	"github.com/ivlev/imo2vmd/internal/report"
	"github.com/ivlev/imo2vmd/internal/source"
	"github.com/ivlev/imo2vmd/internal/transform"
	"github.com/ivlev/imo2vmd/internal/vmd"
)

var inf = math.Inf(1)

func samples(v ...float64) []source.Sample {
	out := make([]source.Sample, len(v))
	for i, f := range v {
		out[i] = source.Sample(f)
	}
	return out
}

// staticCamera holds still for one second, 50 units from its target.
func staticCamera() source.Static {
	return source.Static{
		{Path: "CamBase", Attribs: []string{"property_name focalLength"}, Values: samples(0, 22, inf, inf, 1, 22, inf, inf)},
		{Path: "CamTgtS", Attribs: []string{"property_type PositionZ"}, Values: samples(0, 4, inf, inf)},
		{Path: "Light", Attribs: []string{"property_type PositionX"}, Values: samples(0, 1, inf, inf)},
	}
}

// crossingCamera passes through its target at frame 30.
func crossingCamera() source.Static {
	return source.Static{
		{Path: "CamBase", Attribs: []string{"property_name focalLength"}, Values: samples(0, 22, inf, inf)},
		{Path: "CamBaseS", Attribs: []string{"property_type PositionX"}, Values: samples(0, 1, inf, inf, 1, -1, inf, inf)},
	}
}

type logRecorder struct{ lines []string }

func (l *logRecorder) Logf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func newProject(t *testing.T, src source.Source, format string) (*Project, *logRecorder) {
	t.Helper()
	rec := &logRecorder{}
	original := Logf
	SetLogger(rec.Logf)
	t.Cleanup(func() { Logf = original })

	cfg := config.Default()
	cfg.Format = format
	cfg.Workers = 2
	cfg.OutputPath = filepath.Join(t.TempDir(), "out", "camera."+format)

	enc, err := motion.ForFormat(format, motion.Options{})
	require.NoError(t, err)

	p := NewProject(cfg, src, enc)
	p.Stdout = io.Discard
	return p, rec
}

func decodeVMD(t *testing.T, path string) *vmd.Motion {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	m, err := vmd.Decode(f)
	require.NoError(t, err)
	return m
}

func TestRunVMD(t *testing.T) {
	p, rec := newProject(t, staticCamera(), "vmd")
	require.NoError(t, p.Run(context.Background()))

	m := decodeVMD(t, p.Config.OutputPath)
	require.Len(t, m.Cameras, 60)
	for i, c := range m.Cameras {
		assert.Equal(t, uint32(i), c.Frame)
		assert.InDelta(t, 5, c.Distance, 1e-6)
		assert.Equal(t, uint32(53), c.FOV)
	}

	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], "Light")

	stats := p.Stats()
	assert.Equal(t, 60, stats.Frames)
	assert.Equal(t, "vmd", stats.Format)
}

func TestRunMVD(t *testing.T) {
	p, _ := newProject(t, staticCamera(), "mvd")
	require.NoError(t, p.Run(context.Background()))

	data, err := os.ReadFile(p.Config.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Motion Vector Data file", string(data[:23]))
	assert.Equal(t, []byte{0xFF, 0x00}, data[len(data)-2:])
}

func TestRunAppliesPatches(t *testing.T) {
	p, _ := newProject(t, staticCamera(), "vmd")
	p.Config.Patches = patch.Set{{From: 10, To: 20, Offset: 10}}
	require.NoError(t, p.Run(context.Background()))

	m := decodeVMD(t, p.Config.OutputPath)
	assert.InDelta(t, 5, m.Cameras[10].Distance, 1e-6)
	assert.InDelta(t, 4, m.Cameras[11].Distance, 1e-6)
	assert.InDelta(t, 4, m.Cameras[19].Distance, 1e-6)
	assert.InDelta(t, 5, m.Cameras[20].Distance, 1e-6)
}

func assertNoLeftovers(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "camera.vmd", e.Name(), "unexpected file left behind")
	}
}

func TestRunDegenerateFrameWritesNothing(t *testing.T) {
	p, _ := newProject(t, crossingCamera(), "vmd")

	err := p.Run(context.Background())
	require.ErrorIs(t, err, transform.ErrDegenerateGeometry)
	assert.Contains(t, err.Error(), "frame 30")

	_, statErr := os.Stat(p.Config.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
	assertNoLeftovers(t, filepath.Dir(p.Config.OutputPath))
}

func TestRunKeepsExistingOutputOnError(t *testing.T) {
	p, _ := newProject(t, crossingCamera(), "vmd")
	out := p.Config.OutputPath
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

	require.Error(t, p.Run(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assertNoLeftovers(t, filepath.Dir(out))
}

func TestRunEmptyAnimation(t *testing.T) {
	p, _ := newProject(t, source.Static{}, "vmd")
	assert.ErrorIs(t, p.Run(context.Background()), ErrEmptyAnimation)
}

func TestRunCancelled(t *testing.T) {
	p, _ := newProject(t, staticCamera(), "vmd")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
	_, err := os.Stat(p.Config.OutputPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunDiagnostics(t *testing.T) {
	p, rec := newProject(t, staticCamera(), "vmd")
	dir := t.TempDir()
	p.Config.DumpPoses = filepath.Join(dir, "poses.yaml")
	p.Config.PlotPath = filepath.Join(dir, "trajectory.png")
	require.NoError(t, p.Run(context.Background()))

	dump, err := report.ReadPoses(p.Config.DumpPoses)
	require.NoError(t, err)
	assert.Len(t, dump.Frames, 60)

	_, err = os.Stat(p.Config.PlotPath)
	assert.NoError(t, err)
	assert.Len(t, rec.lines, 1, "only the skipped curve is logged")
}

func TestRunDiagnosticsFailureIsNotFatal(t *testing.T) {
	p, rec := newProject(t, staticCamera(), "vmd")
	p.Config.DumpPoses = filepath.Join(t.TempDir(), "missing", "poses.yaml")
	require.NoError(t, p.Run(context.Background()))

	_, err := os.Stat(p.Config.OutputPath)
	assert.NoError(t, err)
	assert.Len(t, rec.lines, 2)
}

func TestRunWarnsWithoutFocalLength(t *testing.T) {
	src := source.Static{
		{Path: "CamTgtS", Attribs: []string{"property_type PositionZ"}, Values: samples(0, 4, inf, inf, 1, 4, inf, inf)},
	}
	p, rec := newProject(t, src, "vmd")
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], "Фокусное расстояние")
	assert.Contains(t, rec.lines[0], "60 из 60")

	m := decodeVMD(t, p.Config.OutputPath)
	require.Len(t, m.Cameras, 60)
	assert.Equal(t, uint32(180), m.Cameras[0].FOV)
}

func TestRunWarnsOnZeroFocalLength(t *testing.T) {
	src := source.Static{
		{Path: "CamBase", Attribs: []string{"property_name focalLength"}, Values: samples(0, 22, inf, inf, 0.5, 0, inf, inf, 1, 0, inf, inf)},
		{Path: "CamTgtS", Attribs: []string{"property_type PositionZ"}, Values: samples(0, 4, inf, inf)},
	}
	p, rec := newProject(t, src, "vmd")
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], "30 из 60")
}

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(string, ...interface{}) { called = true })
	Logf("test")
	assert.True(t, called)

	called = false
	SetLogger(nil)
	Logf("test")
	assert.False(t, called)
}
