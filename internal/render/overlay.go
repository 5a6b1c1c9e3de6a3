package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"math"

	dimaging "github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/floorplan-walls/internal/apperr"
	"github.com/ironsheep/floorplan-walls/internal/detection"
	"github.com/ironsheep/floorplan-walls/internal/walls"
)

// Hues in the HCL space, one per wall source, plus one for symbols.
var sourceHue = map[walls.Source]float64{
	walls.SourceRidge:         30,  // orange
	walls.SourceParallel:      250, // blue
	walls.SourceDualConfirmed: 140, // green
}

const symbolHue = 320

// SourceColor returns the drawing colour of a wall source. Unknown sources
// are drawn in gray.
func SourceColor(src walls.Source) color.NRGBA {
	hue, ok := sourceHue[src]
	if !ok {
		return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	}
	return hclColor(hue)
}

// SymbolColor is the colour detected fixtures are drawn in.
func SymbolColor() color.NRGBA {
	return hclColor(symbolHue)
}

func hclColor(hue float64) color.NRGBA {
	r, g, b := colorful.Hcl(hue, 0.9, 0.55).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// OverlayOptions control Overlay.
type OverlayOptions struct {
	// Fade brightens the scan by this percentage so the drawing stands out.
	Fade float64
	// LineWidth is the stroke width in pixels. Zero draws each wall at its
	// measured thickness.
	LineWidth float64
}

// DefaultOverlayOptions fades the scan by 40% and strokes walls 3 px wide.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{Fade: 40, LineWidth: 3}
}

// Overlay draws the walls, coloured by source, and the light fixtures on
// top of the scan. Wall coordinates are in percent of the scan size.
func Overlay(scan image.Image, ws []walls.WallSegment, symbols []detection.Symbol, opts OverlayOptions) (*image.NRGBA, error) {
	if scan == nil || scan.Bounds().Empty() {
		return nil, apperr.New(apperr.KindRender, "scan has no pixels")
	}
	b := scan.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	base := dimaging.AdjustBrightness(scan, opts.Fade)

	// The vg canvas has its origin at the bottom left; at 72 dpi one point
	// is one pixel.
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width), vg.Length(height)),
		vgimg.UseDPI(72),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	toCanvas := func(p walls.Point) vg.Point {
		return vg.Point{X: vg.Length(p[0] / 100 * width), Y: vg.Length(height - p[1]/100*height)}
	}

	for _, w := range ws {
		if len(w.Coords) < 2 {
			continue
		}
		var path vg.Path
		path.Move(toCanvas(w.Coords[0]))
		for _, p := range w.Coords[1:] {
			path.Line(toCanvas(p))
		}
		lw := opts.LineWidth
		if lw <= 0 {
			lw = math.Max(1, w.ThicknessPx)
		}
		c.SetLineWidth(vg.Length(lw))
		c.SetColor(SourceColor(w.Source))
		c.Stroke(path)
	}

	c.SetLineWidth(2)
	c.SetColor(SymbolColor())
	for _, s := range symbols {
		center := toCanvas(walls.Point{s.X, s.Y})
		var ring vg.Path
		ring.Move(vg.Point{X: center.X + vg.Length(s.Radius), Y: center.Y})
		ring.Arc(center, vg.Length(s.Radius), 0, 2*math.Pi)
		ring.Close()
		c.Stroke(ring)
	}

	draw.Draw(base, base.Bounds(), c.Image(), image.Point{}, draw.Over)
	return base, nil
}

// SaveOverlay renders the overlay and writes it to path; the format follows
// the file extension.
func SaveOverlay(path string, scan image.Image, ws []walls.WallSegment, symbols []detection.Symbol, opts OverlayOptions) error {
	img, err := Overlay(scan, ws, symbols, opts)
	if err != nil {
		return err
	}
	if err := dimaging.Save(img, path); err != nil {
		return apperr.Wrap(apperr.KindRender, err, "failed to save overlay %s", path)
	}
	return nil
}

// EncodePNGBase64 encodes img as a base64 PNG.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := dimaging.Encode(&buf, img, dimaging.PNG); err != nil {
		return "", apperr.Wrap(apperr.KindRender, err, "failed to encode image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
