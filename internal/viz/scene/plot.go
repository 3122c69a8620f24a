package scene

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotTopDown renders the XY projection of actors as a PNG. Geometry is
// drawn as points in per-vertex colour when available, leaders as lines and
// billboards as labels. Non-finite positions are skipped.
func PlotTopDown(w io.Writer, title string, actors []*Actor) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	var labels plotter.XYLabels
	for _, a := range actors {
		switch a.Kind {
		case KindGeometry:
			if err := addGeometry(p, a); err != nil {
				return err
			}
		case KindLeader:
			l := a.Leader
			xys := plotter.XYs{{X: l.From.X, Y: l.From.Y}, {X: l.To.X, Y: l.To.Y}}
			if !finiteXYs(xys) {
				continue
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("leader line: %w", err)
			}
			line.Color = rgba(a.Props.Color)
			line.Width = vg.Points(1)
			p.Add(line)
		case KindFollower:
			b := a.Billboard
			xy := plotter.XY{X: b.Position.X, Y: b.Position.Y}
			if !finiteXYs(plotter.XYs{xy}) {
				continue
			}
			labels.XYs = append(labels.XYs, xy)
			labels.Labels = append(labels.Labels, b.Text)
		}
	}
	if len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return fmt.Errorf("text labels: %w", err)
		}
		p.Add(l)
	}

	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

func addGeometry(p *plot.Plot, a *Actor) error {
	pd := a.Geometry
	n := pd.NumPoints()
	xys := make(plotter.XYs, 0, n)
	src := make([]int, 0, n)
	for i := 0; i < n; i++ {
		x, y := float64(pd.Points[3*i]), float64(pd.Points[3*i+1])
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
		src = append(src, i)
	}
	if len(xys) == 0 {
		return nil
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("geometry scatter: %w", err)
	}
	base := draw.GlyphStyle{Color: rgba(a.Props.Color), Radius: vg.Points(1), Shape: draw.CircleGlyph{}}
	s.GlyphStyle = base
	if a.Props.ScalarVisibility && pd.HasColors() {
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			g := base
			o := 3 * src[i]
			g.Color = color.RGBA{R: pd.Colors[o], G: pd.Colors[o+1], B: pd.Colors[o+2], A: 255}
			return g
		}
	}
	p.Add(s)
	return nil
}

func finiteXYs(xys plotter.XYs) bool {
	for _, xy := range xys {
		if math.IsNaN(xy.X) || math.IsNaN(xy.Y) || math.IsInf(xy.X, 0) || math.IsInf(xy.Y, 0) {
			return false
		}
	}
	return true
}

func rgba(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
