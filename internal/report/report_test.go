package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/imo2vmd/internal/curve"
	"github.com/ivlev/imo2vmd/internal/sampler"
	"github.com/ivlev/imo2vmd/internal/system"
	"github.com/ivlev/imo2vmd/internal/transform"
)

func sampled(t *testing.T) (sampler.Sequence, []transform.Camera) {
	t.Helper()
	move, err := curve.New([]curve.Keyframe{{Time: 0, Value: 0}, {Time: 0.5, Value: 2}})
	require.NoError(t, err)

	set := sampler.NewCurveSet()
	set[sampler.PositionX] = move
	set[sampler.TargetZ] = curve.Constant(4)
	set[sampler.FocalLength] = curve.Constant(22)

	seq := sampler.New().Sample(set)
	cams, err := transform.New().ToDestinationAll(context.Background(), seq, 2)
	require.NoError(t, err)
	return seq, cams
}

func TestPoseDumpRoundTrip(t *testing.T) {
	seq, cams := sampled(t)
	dump, err := NewPoseDump(seq, cams)
	require.NoError(t, err)
	require.Len(t, dump.Frames, 30)

	path := filepath.Join(t.TempDir(), "poses.yaml")
	require.NoError(t, WritePoses(dump, path))

	got, err := ReadPoses(path)
	require.NoError(t, err)
	assert.Equal(t, dump, got)

	f := got.Frames[15]
	assert.Equal(t, uint64(15), f.Frame)
	assert.InDelta(t, 0.25, f.Time, 1e-12)
	assert.InDelta(t, 1.0, f.Position[0], 1e-12)
	assert.InDelta(t, -12.5, f.OutPosition[0], 1e-9)
	assert.InDelta(t, 53.13, f.FOV, 0.01)
}

func TestPoseDumpLengthMismatch(t *testing.T) {
	seq, cams := sampled(t)
	_, err := NewPoseDump(seq, cams[:3])
	assert.Error(t, err)
}

func TestPlotTrajectory(t *testing.T) {
	_, cams := sampled(t)
	path := filepath.Join(t.TempDir(), "trajectory.png")
	require.NoError(t, PlotTrajectory(cams, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.ErrorIs(t, PlotTrajectory(nil, path), ErrNoFrames)
}

func TestStats(t *testing.T) {
	s := Stats{
		Build:     "dev",
		Input:     "input/cam_01.imo.json",
		Format:    "vmd",
		Frames:    600,
		Total:     2 * time.Second,
		Transform: time.Second,
		Usage:     system.Usage{RSS: 32 << 20, Threads: 8},
	}
	assert.Equal(t, 300.0, s.FramesPerSecond())
	assert.Zero(t, Stats{Frames: 10}.FramesPerSecond())

	out := s.String()
	assert.Contains(t, out, "Frames: 600")
	assert.Contains(t, out, "RSS: 32.0 MiB")

	now := time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC)
	line := s.LogLine(now)
	assert.True(t, strings.HasPrefix(line, "[2026-02-12 10:00:00] Build: dev | Input: cam_01.imo.json"))
	assert.True(t, strings.HasSuffix(line, "FPS: 300\n"))

	path := filepath.Join(t.TempDir(), "benchmark.log")
	require.NoError(t, AppendLog(path, s, now))
	require.NoError(t, AppendLog(path, s, now))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, line+line, string(data))
}
