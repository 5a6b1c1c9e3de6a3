package walls

import (
	"image"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// RidgeMask returns the distance map of cleaned and the skeleton of its
// thick regions, the two rasters Path A works from.
func RidgeMask(cleaned *imaging.Mask, cfg Config) (*imaging.DistanceMap, *imaging.Mask) {
	dist := imaging.DistanceTransform(cleaned)
	return dist, imaging.Skeletonize(dist.Threshold(cfg.RidgeRadius))
}

// DetectRidgeWalls finds filled walls as ridges of the distance transform.
//
// Regions thinner than 2*RidgeRadius are discarded, the remainder is
// thinned to centerlines, and every traced centerline with a consistent
// thickness inside [MinThickness, MaxThickness] becomes a ridge segment.
// Segments follow the contour order of the skeleton (raster order of each
// centerline's first pixel).
func DetectRidgeWalls(cleaned *imaging.Mask, cfg Config) []WallSegment {
	width, height := cleaned.Width, cleaned.Height
	if width == 0 || height == 0 {
		return nil
	}

	dist, skeleton := RidgeMask(cleaned, cfg)
	contours := imaging.TraceContours(skeleton)

	var out []WallSegment
	rejected := 0
	for _, contour := range contours {
		if len(contour) < cfg.MinContourPoints {
			continue
		}

		mean, ok := ridgeThickness(contour, dist, cfg)
		if !ok {
			rejected++
			continue
		}

		pts := simplifyPixels(contour, cfg.SimplifyTolerance)
		coords := make([]Point, len(pts))
		for i, p := range pts {
			coords[i] = normalize(p[0], p[1], width, height)
		}
		if len(coords) < 2 {
			continue
		}

		out = append(out, WallSegment{
			Coords:           coords,
			Source:           SourceRidge,
			ThicknessPx:      round(mean, 2),
			LengthNormalized: round(PathLength(coords), 2),
			Confidence:       ConfidenceSingle,
		})
	}

	logger.WithFields(logrus.Fields{
		"stage":    "ridge",
		"contours": len(contours),
		"rejected": rejected,
		"segments": len(out),
	}).Info("ridge detection complete")

	return out
}

// ridgeThickness samples 2*distance every ThicknessStride points and reports
// the mean when it lies in the admissible band with a low enough
// coefficient of variation.
func ridgeThickness(contour []image.Point, dist *imaging.DistanceMap, cfg Config) (float64, bool) {
	samples := make([]float64, 0, len(contour)/cfg.ThicknessStride+1)
	for i := 0; i < len(contour); i += cfg.ThicknessStride {
		p := contour[i]
		samples = append(samples, 2*dist.At(p.X, p.Y))
	}
	if len(samples) == 0 {
		return 0, false
	}

	mean, std := stat.PopMeanStdDev(samples, nil)
	if mean < cfg.MinThickness || mean > cfg.MaxThickness {
		return mean, false
	}
	if std > cfg.MaxThicknessCV*mean {
		return mean, false
	}
	return mean, true
}

// simplifyPixels runs Douglas-Peucker over a pixel contour. Contours with
// fewer than three points are returned as they are.
func simplifyPixels(contour []image.Point, tolerance float64) orb.LineString {
	ls := make(orb.LineString, len(contour))
	for i, p := range contour {
		ls[i] = orb.Point{float64(p.X), float64(p.Y)}
	}
	if len(ls) < 3 || tolerance <= 0 {
		return ls
	}
	if s, ok := simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString); ok && len(s) > 0 {
		return s
	}
	return ls
}
