package report

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ivlev/imo2vmd/internal/transform"
)

var ErrNoFrames = errors.New("no frames to plot")

var seriesColors = []color.Color{
	color.RGBA{R: 220, G: 50, B: 47, A: 255},
	color.RGBA{R: 133, G: 153, B: 0, A: 255},
	color.RGBA{R: 38, G: 139, B: 210, A: 255},
	color.RGBA{R: 88, G: 88, B: 88, A: 255},
}

// PlotTrajectory renders camera position and distance per frame to an image
// file. The format follows the file extension (png, svg, pdf, ...).
func PlotTrajectory(cams []transform.Camera, path string) error {
	if len(cams) == 0 {
		return ErrNoFrames
	}

	p := plot.New()
	p.Title.Text = "Camera trajectory"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Position / distance"

	series := []struct {
		label string
		value func(transform.Camera) float64
	}{
		{"x", func(c transform.Camera) float64 { return c.Position.X }},
		{"y", func(c transform.Camera) float64 { return c.Position.Y }},
		{"z", func(c transform.Camera) float64 { return c.Position.Z }},
		{"distance", func(c transform.Camera) float64 { return c.Distance }},
	}

	for i, s := range series {
		pts := make(plotter.XYs, len(cams))
		for j, c := range cams {
			pts[j] = plotter.XY{X: float64(c.Frame), Y: s.value(c)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = seriesColors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}
