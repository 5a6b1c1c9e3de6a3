package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
)

// SymbolLight is the Symbol.Type of a circular light fixture.
const SymbolLight = "LIGHT"

// Symbol is a detected plan symbol. X and Y are in percent of the image
// width and height; Radius stays in pixels.
type Symbol struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius int     `json:"radius"`
	Notes  string  `json:"notes"`
}

// LightOptions configures DetectLights.
type LightOptions struct {
	MinRadius int // smallest fixture radius in pixels
	MaxRadius int // largest fixture radius in pixels
	// MinDist is the minimum distance between two detected centers.
	MinDist float64
	// CannyHigh is the upper Canny threshold; the lower one is half of it.
	CannyHigh float64
	// Votes is the accumulator count a center needs to become a candidate.
	Votes int
	// MinSupport is the share of the circumference that must be edge
	// pixels at the chosen radius.
	MinSupport float64
}

// DefaultLightOptions returns the fixture detector defaults.
func DefaultLightOptions() LightOptions {
	return LightOptions{
		MinRadius:  5,
		MaxRadius:  40,
		MinDist:    20,
		CannyHigh:  50,
		Votes:      25,
		MinSupport: 0.5,
	}
}

type circle struct {
	x, y   int
	radius int
	votes  int
}

// DetectLights finds circular light fixtures with a gradient Hough
// transform.
//
// # Algorithm
//
//  1. Edge Detection: Canny on the lightly smoothed scan
//  2. Center Voting: every edge pixel votes along its gradient line, in both
//     directions, for centers MinRadius..MaxRadius away
//  3. Candidates: accumulator local maxima (11x11) with at least Votes
//     votes, strongest first
//  4. Spacing: candidates closer than MinDist to an accepted center are
//     skipped
//  5. Radius: the radius whose ring has the best edge support is chosen;
//     centers without MinSupport at any radius are dropped
//
// Symbols are returned strongest first.
func DetectLights(gray *image.Gray, opts LightOptions) ([]Symbol, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}
	if opts.MinRadius < 1 || opts.MaxRadius < opts.MinRadius {
		return nil, fmt.Errorf("invalid radius range [%d, %d]", opts.MinRadius, opts.MaxRadius)
	}

	src := imaging.MaskFromGray(gray)
	width, height := src.Width, src.Height
	smoothed := imaging.BlurMask(src, 1)
	edges := imaging.Canny(smoothed, width, height, opts.CannyHigh/2, opts.CannyHigh)
	gx, gy := imaging.Sobel(smoothed, width, height)

	accumulator := make([]int32, width*height)
	var edgePoints []image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if edges.Pix[i] == 0 {
				continue
			}
			edgePoints = append(edgePoints, image.Pt(x, y))
			mag := math.Hypot(gx[i], gy[i])
			if mag == 0 {
				continue
			}
			nx, ny := gx[i]/mag, gy[i]/mag
			for _, sign := range [2]float64{1, -1} {
				for r := opts.MinRadius; r <= opts.MaxRadius; r++ {
					cx := int(math.Round(float64(x) + sign*float64(r)*nx))
					cy := int(math.Round(float64(y) + sign*float64(r)*ny))
					if cx < 0 || cy < 0 || cx >= width || cy >= height {
						break
					}
					accumulator[cy*width+cx]++
				}
			}
		}
	}

	candidates := make([]circle, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := accumulator[y*width+x]
			if int(v) < opts.Votes {
				continue
			}
			// Check if local maximum
			isMax := true
			for dy := -5; dy <= 5 && isMax; dy++ {
				for dx := -5; dx <= 5 && isMax; dx++ {
					if dy == 0 && dx == 0 {
						continue
					}
					ny, nx := y+dy, x+dx
					if ny >= 0 && ny < height && nx >= 0 && nx < width {
						if accumulator[ny*width+nx] > v {
							isMax = false
						}
					}
				}
			}
			if isMax {
				candidates = append(candidates, circle{x: x, y: y, votes: int(v)})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].votes > candidates[j].votes
	})

	accepted := make([]circle, 0)
	for _, c := range candidates {
		if tooClose(c, accepted, opts.MinDist) {
			continue
		}
		r, ok := bestRadius(c, edgePoints, opts)
		if !ok {
			continue
		}
		c.radius = r
		accepted = append(accepted, c)
	}

	symbols := make([]Symbol, 0, len(accepted))
	for _, c := range accepted {
		symbols = append(symbols, Symbol{
			Type:   SymbolLight,
			X:      math.Round(float64(c.x)/float64(width)*100*100) / 100,
			Y:      math.Round(float64(c.y)/float64(height)*100*100) / 100,
			Radius: c.radius,
			Notes:  fmt.Sprintf("Detected Light (r=%d)", c.radius),
		})
	}
	return symbols, nil
}

func tooClose(c circle, accepted []circle, minDist float64) bool {
	for _, a := range accepted {
		dx := float64(c.x - a.x)
		dy := float64(c.y - a.y)
		if math.Sqrt(dx*dx+dy*dy) < minDist {
			return true
		}
	}
	return false
}

// bestRadius scores each radius by the edge pixels within one pixel of its
// ring, relative to the ring's circumference, and returns the mean edge
// distance inside the best ring.
func bestRadius(c circle, edgePoints []image.Point, opts LightOptions) (int, bool) {
	limit := float64(opts.MaxRadius) + 1
	var dists []float64
	for _, p := range edgePoints {
		dx := float64(p.X - c.x)
		dy := float64(p.Y - c.y)
		if math.Abs(dx) > limit || math.Abs(dy) > limit {
			continue
		}
		if d := math.Sqrt(dx*dx + dy*dy); d <= limit {
			dists = append(dists, d)
		}
	}

	best, bestSupport := 0, 0.0
	for r := opts.MinRadius; r <= opts.MaxRadius; r++ {
		n := 0
		for _, d := range dists {
			if math.Abs(d-float64(r)) < 1 {
				n++
			}
		}
		support := float64(n) / (2 * math.Pi * float64(r))
		if support > bestSupport {
			best, bestSupport = r, support
		}
	}
	if bestSupport < opts.MinSupport {
		return 0, false
	}

	var sum float64
	var n int
	for _, d := range dists {
		if math.Abs(d-float64(best)) < 1 {
			sum += d
			n++
		}
	}
	return int(math.Round(sum / float64(n))), true
}
