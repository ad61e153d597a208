package evaluation

import (
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// PlotSize is the width and height of saved ROC plots.
const PlotSize = 5 * vg.Inch

// NewROCPlot draws one line per named curve, in ascending name order, over
// the chance diagonal.
func NewROCPlot(title string, curves map[string]Curve) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	chance := plotter.NewFunction(func(x float64) float64 { return x })
	chance.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	chance.Color = plotutil.Color(7)
	p.Add(chance)

	names := make([]string, 0, len(curves))
	for name := range curves {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		c := curves[name]
		if len(c.FPR) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(c.FPR))
		for j := range c.FPR {
			pts[j].X = c.FPR[j]
			pts[j].Y = c.TPR[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, lserrors.Wrapf(err, "roc curve %q", name)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Left = false
	p.Legend.Top = false
	return p, nil
}

// SaveROCPlot writes the curves to path. The image format follows the file
// extension (.png, .svg, .pdf, ...).
func SaveROCPlot(path, title string, curves map[string]Curve) error {
	p, err := NewROCPlot(title, curves)
	if err != nil {
		return err
	}
	if err := p.Save(PlotSize, PlotSize, path); err != nil {
		return lserrors.Wrapf(err, "save roc plot %s", path)
	}
	return nil
}

// Curves returns the one-vs-rest ROC curve of every category.
func (m *Multiclass) Curves() map[string]Curve {
	out := make(map[string]Curve, len(m.categories))
	for _, c := range m.categories {
		out[c] = m.perClass[c].ROC()
	}
	return out
}
