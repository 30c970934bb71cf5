package render

import (
	"errors"
	"fmt"

	"github.com/soypat/livecad"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveProfilePlot plots radius r against axial position z and saves the
// figure at path. The file extension selects the image format.
func SaveProfilePlot(path, title string, z, r []float64) error {
	if len(z) != len(r) || len(z) < 2 {
		return errors.New("profile needs two or more (z, r) samples")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "z [mm]"
	p.Y.Label.Text = "radius [mm]"
	pts := make(plotter.XYs, len(z))
	for i := range z {
		pts[i].X = z[i]
		pts[i].Y = r[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(plotter.NewGrid(), line)
	if err := p.Save(8*vg.Inch, 3*vg.Inch, path); err != nil {
		return fmt.Errorf("%w: %w", livecad.ErrIO, err)
	}
	return nil
}
