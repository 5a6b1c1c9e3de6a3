package imaging

import (
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG, white edges
// on black.
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	EdgePixels  int    `json:"edge_pixels"`
}

// BlurMask applies bild's Gaussian blur to a mask and returns the smoothed
// intensities on the 0-255 scale. A non-positive radius returns the mask
// values unchanged.
func BlurMask(m *Mask, radius float64) []float64 {
	out := make([]float64, len(m.Pix))
	if radius <= 0 {
		for i, v := range m.Pix {
			out[i] = float64(v)
		}
		return out
	}
	blurred := blur.Gaussian(m.Gray(), radius)
	for y := 0; y < m.Height; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < m.Width; x++ {
			out[y*m.Width+x] = float64(row[x*4])
		}
	}
	return out
}

// Canny runs Canny edge detection on an already smoothed intensity raster
// (row-major, width x height, values on the 0-255 scale).
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients,
//     magnitude = sqrt(Gx² + Gy²)
//  2. Non-maximum suppression: keep only local maxima along the gradient
//     direction (quantized to 4 directions)
//  3. Hysteresis: pixels above high are strong edges; pixels between low and
//     high are kept when 8-connected (transitively) to a strong edge
//
// Smoothing is left to the caller so each detector can pick its own blur.
// The result is a binary mask with Foreground on edge pixels.
func Canny(smoothed []float64, width, height int, low, high float64) *Mask {
	n := width * height
	edges := NewMask(width, height)
	if width == 0 || height == 0 {
		return edges
	}
	gxs, gys := Sobel(smoothed, width, height)
	magnitude := make([]float64, n)
	for i := range magnitude {
		magnitude[i] = math.Hypot(gxs[i], gys[i])
	}

	mag := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// Non-maximum suppression
	suppressed := make([]float64, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			if m == 0 {
				continue
			}
			angle := math.Atan2(gys[i], gxs[i])

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = mag(x-1, y), mag(x+1, y)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = mag(x-1, y-1), mag(x+1, y+1)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = mag(x, y-1), mag(x, y+1)
			default:
				n1, n2 = mag(x+1, y-1), mag(x-1, y+1)
			}

			// Ties on one side only, so a plateau two pixels wide keeps one.
			if m > n1 && m >= n2 {
				suppressed[i] = m
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	stack := make([]int, 0, 256)
	for i, v := range suppressed {
		if v >= high && edges.Pix[i] == 0 {
			edges.Pix[i] = Foreground
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if edges.Pix[j] == 0 && suppressed[j] >= low {
					edges.Pix[j] = Foreground
					stack = append(stack, j)
				}
			}
		}
	}

	return edges
}

// Sobel returns the 3x3 Sobel derivatives of a row-major raster. Samples
// outside the raster repeat the nearest border value.
func Sobel(v []float64, width, height int) (gx, gy []float64) {
	gx = make([]float64, width*height)
	gy = make([]float64, width*height)
	sample := func(x, y int) float64 {
		return v[clamp(y, 0, height-1)*width+clamp(x, 0, width-1)]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			gx[i] = -sample(x-1, y-1) + sample(x+1, y-1) -
				2*sample(x-1, y) + 2*sample(x+1, y) -
				sample(x-1, y+1) + sample(x+1, y+1)
			gy[i] = -sample(x-1, y-1) - 2*sample(x, y-1) - sample(x+1, y-1) +
				sample(x-1, y+1) + 2*sample(x, y+1) + sample(x+1, y+1)
		}
	}
	return gx, gy
}

// EdgeDetect blurs a binary mask with the given Gaussian radius, runs
// Canny, and returns the edge map as a base64 PNG.
func EdgeDetect(m *Mask, blurRadius, low, high float64) (*EdgeDetectResult, error) {
	edges := Canny(BlurMask(m, blurRadius), m.Width, m.Height, low, high)
	encoded, err := edges.EncodePNGBase64()
	if err != nil {
		return nil, err
	}
	return &EdgeDetectResult{
		Width:       m.Width,
		Height:      m.Height,
		ImageBase64: encoded,
		MimeType:    "image/png",
		EdgePixels:  edges.Count(),
	}, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
