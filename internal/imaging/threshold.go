package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// AdaptiveThresholdInv binarizes a grayscale scan against a Gaussian-weighted
// local mean and inverts the result, so dark ink becomes Foreground.
//
// A pixel is Foreground when its value is at most localMean - offset, where
// localMean is taken over a window of roughly window x window pixels. The
// offset keeps flat paper regions (where value == localMean) in the
// background regardless of scan brightness.
func AdaptiveThresholdInv(gray *image.Gray, window int, offset float64) *Mask {
	src := MaskFromGray(gray)
	if src.Width == 0 || src.Height == 0 {
		return src
	}
	if window < 3 {
		window = 3
	}

	// bild's kernel spans ceil(2r+1) taps, so r = window/2 covers the window.
	local := blur.Gaussian(gray, float64(window/2))

	out := NewMask(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		row := local.Pix[y*local.Stride:]
		for x := 0; x < src.Width; x++ {
			mean := float64(row[x*4])
			if float64(src.Pix[y*src.Width+x]) <= mean-offset {
				out.Pix[y*src.Width+x] = Foreground
			}
		}
	}
	return out
}
