package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ironsheep/floorplan-walls/internal/apperr"
	"github.com/ironsheep/floorplan-walls/internal/detection"
	"github.com/ironsheep/floorplan-walls/internal/walls"
)

var legendOrder = []walls.Source{walls.SourceDualConfirmed, walls.SourceRidge, walls.SourceParallel}

// Plot draws the walls in percentage space, y growing downward like the
// scan, with one legend entry per source present.
func Plot(title string, ws []walls.WallSegment, symbols []detection.Symbol) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (% of width)"
	p.Y.Label.Text = "y (% of height)"
	p.X.Min, p.X.Max = 0, 100
	p.Y.Min, p.Y.Max = 0, 100
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Y.Tick.Marker = plot.DefaultTicks{}
	p.Add(plotter.NewGrid())

	legend := make(map[walls.Source]*plotter.Line)
	for i, w := range ws {
		if len(w.Coords) < 2 {
			continue
		}
		xys := make(plotter.XYs, len(w.Coords))
		for j, c := range w.Coords {
			xys[j] = plotter.XY{X: c[0], Y: c[1]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindRender, err, "failed to plot wall %d", i)
		}
		line.Color = SourceColor(w.Source)
		line.Width = vg.Points(1.5)
		p.Add(line)
		if _, ok := legend[w.Source]; !ok {
			legend[w.Source] = line
		}
	}
	for _, src := range legendOrder {
		if line, ok := legend[src]; ok {
			p.Legend.Add(string(src), line)
		}
	}

	if len(symbols) > 0 {
		xys := make(plotter.XYs, len(symbols))
		for i, s := range symbols {
			xys[i] = plotter.XY{X: s.X, Y: s.Y}
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindRender, err, "failed to plot symbols")
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = SymbolColor()
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("lights (%d)", len(symbols)), scatter)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePlot writes the wall plot to path as an 8x8 inch image; the format
// follows the file extension.
func SavePlot(path, title string, ws []walls.WallSegment, symbols []detection.Symbol) error {
	p, err := Plot(title, ws, symbols)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return apperr.Wrap(apperr.KindRender, err, "failed to save plot %s", path)
	}
	return nil
}
