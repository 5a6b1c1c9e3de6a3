package walls

import (
	"image"

	"github.com/ironsheep/floorplan-walls/internal/apperr"
	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/sirupsen/logrus"
)

// Preprocess isolates candidate wall pixels in a grayscale scan.
//
// textMask marks pixels to keep (non-zero) and pixels under detected text
// (zero); nil keeps everything. The steps are:
//
//  1. inverted adaptive threshold, so ink becomes Foreground
//  2. intersection with textMask, so text pixels become Background
//  3. square opening to drop specks and dot symbols
//  4. 8-connected component filtering
//
// The component filter only drops tiny noise, symbol-sized blobs and extreme
// hairlines. Long thin wall strokes pass through.
func Preprocess(gray *image.Gray, textMask *imaging.Mask, cfg Config) (*imaging.Mask, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, apperr.New(apperr.KindInput, "image has no pixels")
	}
	b := gray.Bounds()
	if textMask == nil {
		textMask = imaging.NewFilledMask(b.Dx(), b.Dy(), imaging.Foreground)
	}
	if textMask.Width != b.Dx() || textMask.Height != b.Dy() {
		return nil, apperr.New(apperr.KindInput, "text mask is %dx%d, image is %dx%d",
			textMask.Width, textMask.Height, b.Dx(), b.Dy())
	}

	thresh := imaging.AdaptiveThresholdInv(gray, cfg.ThresholdWindow, cfg.ThresholdOffset)
	kept, err := thresh.And(textMask)
	if err != nil {
		return nil, apperr.Input("failed to apply text mask", err)
	}
	opened := imaging.Open(kept, cfg.OpenSize, cfg.OpenIterations)

	lab := imaging.ConnectedComponents(opened)
	retained := 0
	cleaned := lab.Keep(func(c imaging.Component) bool {
		if !keepComponent(c, cfg) {
			return false
		}
		retained++
		return true
	})

	logger.WithFields(logrus.Fields{
		"stage":      "preprocess",
		"components": len(lab.Components),
		"kept":       retained,
	}).Info("preprocessing complete")

	return cleaned, nil
}

// keepComponent applies the noise, symbol-size and elongation floors.
func keepComponent(c imaging.Component, cfg Config) bool {
	if c.Area < cfg.MinComponentArea {
		return false
	}
	w, h := c.Width(), c.Height()
	if w < cfg.MinComponentSize && h < cfg.MinComponentSize {
		return false
	}
	long, short := float64(w), float64(h)
	if short > long {
		long, short = short, long
	}
	return long/(short+1e-6) <= cfg.MaxElongation
}
