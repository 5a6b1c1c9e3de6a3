package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// PercentRect converts a region given in percent of a width x height image
// into pixels, rounding outward and clipping to the image.
func PercentRect(width, height int, x1, y1, x2, y2 float64) (image.Rectangle, error) {
	if x1 >= x2 || y1 >= y2 {
		return image.Rectangle{}, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	r := image.Rect(
		int(math.Floor(x1/100*float64(width))),
		int(math.Floor(y1/100*float64(height))),
		int(math.Ceil(x2/100*float64(width))),
		int(math.Ceil(y2/100*float64(height))),
	).Intersect(image.Rect(0, 0, width, height))
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("region (%.2f,%.2f)-(%.2f,%.2f)%% lies outside the image", x1, y1, x2, y2)
	}
	return r, nil
}

// QuadrantRect returns the pixel rectangle of a named part of a width x
// height image: top-left, top-right, bottom-left, bottom-right, top-half,
// bottom-half, left-half, right-half, or center (the middle 50%).
func QuadrantRect(width, height int, region string) (image.Rectangle, error) {
	midX, midY := width/2, height/2
	switch region {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, width, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, height), nil
	case "bottom-right":
		return image.Rect(midX, midY, width, height), nil
	case "top-half":
		return image.Rect(0, 0, width, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, width, height), nil
	case "left-half":
		return image.Rect(0, 0, midX, height), nil
	case "right-half":
		return image.Rect(midX, 0, width, height), nil
	case "center":
		return image.Rect(width/4, height/4, width-width/4, height-height/4), nil
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", region)
	}
}

// Crop cuts r out of img, relative to img's origin, and optionally rescales
// it. A scale of 1 or less than or equal to 0 keeps the size.
func Crop(img image.Image, r image.Rectangle, scale float64) (*image.NRGBA, error) {
	b := img.Bounds()
	r = r.Add(b.Min)
	if !r.In(b) || r.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, b)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		w := int(math.Round(float64(cropped.Bounds().Dx()) * scale))
		h := int(math.Round(float64(cropped.Bounds().Dy()) * scale))
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.3f leaves no pixels", scale)
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return cropped, nil
}
