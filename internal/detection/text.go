package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
)

// TextRegion is a window of the scan whose edge texture looks like a line
// of printed labels.
type TextRegion struct {
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// textWindows are the label heights a plan usually carries, smallest last.
var textWindows = []image.Point{
	{100, 30},
	{150, 40},
	{200, 50},
	{80, 25},
}

// DetectTextRegions finds label-like areas from edge statistics alone. It
// needs no OCR engine and serves as the text mask source when Tesseract is
// not available.
//
// A window qualifies when its edge density falls inside [0.05, 0.4] and most
// of its edge runs lie along rows. A long horizontal wall edge fails the run
// test: it is a single run along its row but crosses every column it spans.
// Overlapping windows are merged and the result is sorted by
// confidence, highest first.
func DetectTextRegions(gray *image.Gray, minConfidence float64) ([]TextRegion, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}
	src := imaging.MaskFromGray(gray)
	width, height := src.Width, src.Height
	edges := imaging.Canny(imaging.BlurMask(src, 1), width, height, 25, 50)
	integral := edgeIntegral(edges)

	candidates := make([]TextRegion, 0)
	for _, ws := range textWindows {
		stepX, stepY := ws.X/2, ws.Y/2
		area := float64(ws.X * ws.Y)
		for y := 0; y+ws.Y <= height; y += stepY {
			for x := 0; x+ws.X <= width; x += stepX {
				r := image.Rect(x, y, x+ws.X, y+ws.Y)
				density := float64(integral.sum(r)) / area
				if density < 0.05 || density > 0.4 {
					continue
				}
				confidence := horizontalScore(edges, r) * (1 - math.Abs(density-0.2)/0.2)
				if confidence < minConfidence {
					continue
				}
				candidates = append(candidates, TextRegion{
					Bounds:     r.Add(gray.Bounds().Min),
					Confidence: math.Round(confidence*1000) / 1000,
				})
			}
		}
	}

	merged := mergeRegions(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged, nil
}

// TextMask builds a keep-mask from DetectTextRegions: Foreground everywhere
// except the detected regions grown by pad pixels.
func TextMask(gray *image.Gray, minConfidence float64, pad int) (*imaging.Mask, error) {
	regions, err := DetectTextRegions(gray, minConfidence)
	if err != nil {
		return nil, err
	}
	b := gray.Bounds()
	mask := imaging.NewFilledMask(b.Dx(), b.Dy(), imaging.Foreground)
	for _, r := range regions {
		mask.FillRect(r.Bounds.Sub(b.Min).Inset(-pad), imaging.Background)
	}
	return mask, nil
}

// summedArea is an integral image of edge pixels with a zero first row and
// column.
type summedArea struct {
	stride int
	v      []int
}

func edgeIntegral(edges *imaging.Mask) summedArea {
	s := summedArea{stride: edges.Width + 1, v: make([]int, (edges.Width+1)*(edges.Height+1))}
	for y := 0; y < edges.Height; y++ {
		row := 0
		for x := 0; x < edges.Width; x++ {
			if edges.Pix[y*edges.Width+x] != 0 {
				row++
			}
			s.v[(y+1)*s.stride+x+1] = s.v[y*s.stride+x+1] + row
		}
	}
	return s
}

func (s summedArea) sum(r image.Rectangle) int {
	return s.v[r.Max.Y*s.stride+r.Max.X] - s.v[r.Min.Y*s.stride+r.Max.X] -
		s.v[r.Max.Y*s.stride+r.Min.X] + s.v[r.Min.Y*s.stride+r.Min.X]
}

// horizontalScore is the share of edge runs inside r that run along rows.
func horizontalScore(edges *imaging.Mask, r image.Rectangle) float64 {
	var horizontal, vertical int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		inRun := false
		for x := r.Min.X; x < r.Max.X; x++ {
			on := edges.Pix[y*edges.Width+x] != 0
			if on && !inRun {
				horizontal++
			}
			inRun = on
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		inRun := false
		for y := r.Min.Y; y < r.Max.Y; y++ {
			on := edges.Pix[y*edges.Width+x] != 0
			if on && !inRun {
				vertical++
			}
			inRun = on
		}
	}
	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeRegions folds each region into the first merged region it overlaps.
func mergeRegions(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		folded := false
		for i := range merged {
			if r.Bounds.Overlaps(merged[i].Bounds) {
				merged[i].Bounds = merged[i].Bounds.Union(r.Bounds)
				merged[i].Confidence = math.Max(merged[i].Confidence, r.Confidence)
				folded = true
				break
			}
		}
		if !folded {
			merged = append(merged, r)
		}
	}
	return merged
}
