// Package charts renders dashboard charts as PNG images with gonum/plot.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmpty is returned when a chart has nothing to draw.
var ErrEmpty = errors.New("chart has no data")

// Kind selects how the series of a chart are drawn.
type Kind string

const (
	KindLine    Kind = "line"
	KindArea    Kind = "area"
	KindBand    Kind = "band"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	KindBox     Kind = "box"
)

// Series is one data set of a chart. Line, area and scatter charts use X/Y;
// a band uses Y as the upper and Lower as the lower edge; bar and box charts
// use Values.
type Series struct {
	Name   string
	X      []float64
	Y      []float64
	Lower  []float64
	Values []float64
	Labels []string
	Dashed bool
}

// Chart describes one figure.
type Chart struct {
	Kind       Kind
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series
	// MarkerX draws a dashed vertical line at this x when set.
	MarkerX *float64
	// MarkerLabel names the marker in the legend.
	MarkerLabel string
}

// Renderer draws charts at a fixed size.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer for 8x4 inch images.
func NewRenderer() *Renderer {
	return &Renderer{Width: 8 * vg.Inch, Height: 4 * vg.Inch}
}

// Render draws the chart and returns PNG bytes.
func (r *Renderer) Render(c Chart) ([]byte, error) {
	if !c.HasData() {
		return nil, ErrEmpty
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var err error
	switch c.Kind {
	case KindLine, KindArea:
		err = addLines(p, c.Series, c.Kind == KindArea)
	case KindBand:
		err = addBands(p, c.Series)
	case KindBar:
		err = addBars(p, c)
	case KindScatter:
		err = addScatter(p, c.Series)
	case KindBox:
		err = addBoxes(p, c)
	default:
		err = fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}

	if c.MarkerX != nil {
		if err := addMarker(p, c, *c.MarkerX); err != nil {
			return nil, err
		}
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create chart writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// HasData reports whether any series has a drawable point.
func (c Chart) HasData() bool {
	for _, s := range c.Series {
		switch c.Kind {
		case KindBar, KindBox:
			if len(finite(s.Values)) > 0 {
				return true
			}
		default:
			if len(points(s.X, s.Y)) > 0 {
				return true
			}
		}
	}
	return false
}

// points pairs x and y, dropping pairs with a non-finite coordinate.
func points(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if i >= len(ys) || !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return out
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func addLines(p *plot.Plot, series []Series, fill bool) error {
	for i, s := range series {
		xys := points(s.X, s.Y)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		if s.Dashed {
			line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}
		if fill {
			c := color.RGBAModel.Convert(plotutil.Color(i)).(color.RGBA)
			c.A = 80
			line.FillColor = c
		}
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}
	return nil
}

func addBands(p *plot.Plot, series []Series) error {
	for i, s := range series {
		upper := points(s.X, s.Y)
		lower := points(s.X, s.Lower)
		if len(upper) == 0 || len(lower) == 0 {
			continue
		}

		ring := make(plotter.XYs, 0, len(upper)+len(lower))
		ring = append(ring, upper...)
		for j := len(lower) - 1; j >= 0; j-- {
			ring = append(ring, lower[j])
		}
		poly, err := plotter.NewPolygon(ring)
		if err != nil {
			return err
		}
		c := color.RGBAModel.Convert(plotutil.Color(i)).(color.RGBA)
		c.A = 60
		poly.Color = c
		poly.LineStyle.Width = 0
		p.Add(poly)

		hi, err := plotter.NewLine(upper)
		if err != nil {
			return err
		}
		hi.Color = plotutil.Color(i)
		lo, err := plotter.NewLine(lower)
		if err != nil {
			return err
		}
		lo.Color = plotutil.Color(i)
		lo.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(hi, lo)
		if s.Name != "" {
			p.Legend.Add(s.Name, poly)
		}
	}
	return nil
}

func addBars(p *plot.Plot, c Chart) error {
	n := len(c.Series)
	width := vg.Points(20)
	for i, s := range c.Series {
		values := make(plotter.Values, len(s.Values))
		for j, v := range s.Values {
			if isFinite(v) {
				values[j] = v
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bars)
		if s.Name != "" {
			p.Legend.Add(s.Name, bars)
		}
	}
	if len(c.Categories) > 0 {
		p.NominalX(c.Categories...)
		if len(c.Categories) > 6 {
			p.X.Tick.Label.Rotation = math.Pi / 4
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}
	return nil
}

func addScatter(p *plot.Plot, series []Series) error {
	for i, s := range series {
		xys := points(s.X, s.Y)
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Radius = vg.Points(6)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		if s.Name != "" {
			p.Legend.Add(s.Name, sc)
		}

		if len(s.Labels) == len(s.X) && len(xys) == len(s.X) {
			labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: s.Labels})
			if err != nil {
				return err
			}
			p.Add(labels)
		}
	}
	return nil
}

func addBoxes(p *plot.Plot, c Chart) error {
	names := make([]string, 0, len(c.Series))
	for i, s := range c.Series {
		values := finite(s.Values)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(len(names)), plotter.Values(values))
		if err != nil {
			return err
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		names = append(names, s.Name)
	}
	p.NominalX(names...)
	return nil
}

func addMarker(p *plot.Plot, c Chart, x float64) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, v := range append(finite(s.Y), finite(s.Lower)...) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return nil
	}
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}})
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 220, A: 255}
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(line)
	if c.MarkerLabel != "" {
		p.Legend.Add(c.MarkerLabel, line)
	}
	return nil
}
