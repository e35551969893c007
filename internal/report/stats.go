package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/imo2vmd/internal/system"
)

// Stats summarizes a conversion run.
type Stats struct {
	Build  string
	Input  string
	Format string
	Frames int

	Total     time.Duration
	Load      time.Duration
	Transform time.Duration // sampling included
	Encode    time.Duration
	Write     time.Duration

	Usage system.Usage
}

// FramesPerSecond is the overall conversion throughput.
func (s Stats) FramesPerSecond() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Format: %s | Frames: %d\n"+
			"Total Time: %.3fs\n"+
			"Loading: %.3fs\n"+
			"Sampling + Transform: %.3fs\n"+
			"Encoding: %.3fs\n"+
			"Writing: %.3fs\n"+
			"Effective FPS: %.0f\n"+
			"RSS: %.1f MiB | CPU: %.1f%% | Threads: %d\n"+
			"----------------------------\n",
		s.Build, s.Format, s.Frames,
		s.Total.Seconds(), s.Load.Seconds(), s.Transform.Seconds(), s.Encode.Seconds(), s.Write.Seconds(),
		s.FramesPerSecond(),
		float64(s.Usage.RSS)/(1<<20), s.Usage.CPUPercent, s.Usage.Threads,
	)
}

// LogLine formats s as one benchmark log entry.
func (s Stats) LogLine(now time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Format: %s | Frames: %d | Total: %.3fs | Transform: %.3fs | Encode: %.3fs | FPS: %.0f\n",
		now.Format("2006-01-02 15:04:05"),
		s.Build,
		filepath.Base(s.Input),
		s.Format,
		s.Frames,
		s.Total.Seconds(),
		s.Transform.Seconds(),
		s.Encode.Seconds(),
		s.FramesPerSecond(),
	)
}

// AppendLog appends s to the benchmark log at path.
func AppendLog(path string, s Stats, now time.Time) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(s.LogLine(now)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
