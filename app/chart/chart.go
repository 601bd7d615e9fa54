// Package chart renders a count series as a PNG bar chart: one bar of width
// 1 centered on each bucket value, "result" on the x axis, "num events" on
// the y axis, opaque white background.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/RobinMarchart/roll-bot/app/hist"
)

const (
	xLabel = "result"
	yLabel = "num events"

	width  = 6.4 * vg.Inch
	height = 4.8 * vg.Inch
	dpi    = 100
)

// barFill matches the blue the original plots used for bars.
var barFill = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// Render draws the series as a bar chart and writes the PNG encoding to w.
// An empty series renders as a valid chart with axes and no bars. Rendering
// is deterministic: the same series always produces the same bytes.
func Render(s *hist.Series, w io.Writer) error {
	p := hplot.New()
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	if s.Empty() {
		// nothing to draw, pin the axes so the empty frame still renders
		p.X.Min, p.X.Max = s.Offset-0.5, s.Offset+0.5
		p.Y.Min, p.Y.Max = 0, 1
	} else {
		n := len(s.Counts)
		h := hbook.NewH1D(n, s.Offset-0.5, s.Offset+float64(n)-0.5)
		for i, c := range s.Counts {
			h.Fill(s.Offset+float64(i), c)
		}
		hh := hplot.NewH1D(h)
		hh.FillColor = barFill
		hh.LineStyle.Width = 0
		p.Add(hh)
		// bars always rise from the axis
		p.Y.Min = 0
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(width, height),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(color.White),
	)
	png := vgimg.PngCanvas{Canvas: canvas}
	p.Draw(draw.New(png))
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// RenderFile renders the series to a PNG file, creating or overwriting it.
// The output is PNG regardless of the path's extension.
func RenderFile(s *hist.Series, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Render(s, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
