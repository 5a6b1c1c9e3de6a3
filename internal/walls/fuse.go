package walls

import (
	"math"

	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/sirupsen/logrus"
)

// Duplicate records a ridge/parallel pair closer than the fusion threshold.
type Duplicate struct {
	Ridge    int
	Parallel int
	Distance float64
}

// Hausdorff is the symmetric Hausdorff distance between two coordinate
// sequences. Sequences with fewer than two points are infinitely far from
// everything.
func Hausdorff(a, b []Point) float64 {
	if len(a) < 2 || len(b) < 2 {
		return math.Inf(1)
	}
	return math.Max(directedHausdorff(a, b), directedHausdorff(b, a))
}

func directedHausdorff(a, b []Point) float64 {
	var worst float64
	for _, p := range a {
		nearest := math.Inf(1)
		for _, q := range b {
			if d := math.Hypot(p[0]-q[0], p[1]-q[1]); d < nearest {
				nearest = d
			}
		}
		worst = math.Max(worst, nearest)
	}
	return worst
}

// FindDuplicates enumerates every ridge/parallel pair whose Hausdorff
// distance is below threshold, ridge-major then parallel order. A segment
// may appear in several tuples.
func FindDuplicates(ridge, parallel []WallSegment, threshold float64) []Duplicate {
	var dups []Duplicate
	for i, r := range ridge {
		for j, p := range parallel {
			if d := Hausdorff(r.Coords, p.Coords); d < threshold {
				dups = append(dups, Duplicate{Ridge: i, Parallel: j, Distance: d})
			}
		}
	}
	return dups
}

// Fuse merges the two detector outputs.
//
// Duplicate tuples are consumed in FindDuplicates order and the first tuple
// to reach a segment claims it: a tuple whose ridge or parallel side is
// already used is skipped, so every input contributes to at most one
// merged segment. A merged segment keeps the coordinates of the side with
// more points (ridge on ties), averages the thicknesses, keeps the longer
// length and is dual confirmed. The output is the merged segments, then
// the unclaimed ridge segments, then the unclaimed parallel segments, each
// in input order.
func Fuse(ridge, parallel []WallSegment, cfg Config) []WallSegment {
	dups := FindDuplicates(ridge, parallel, cfg.FusionThreshold)

	usedRidge := make([]bool, len(ridge))
	usedParallel := make([]bool, len(parallel))
	out := make([]WallSegment, 0, len(ridge)+len(parallel))

	merged := 0
	for _, d := range dups {
		if usedRidge[d.Ridge] || usedParallel[d.Parallel] {
			continue
		}
		out = append(out, merge(ridge[d.Ridge], parallel[d.Parallel]))
		usedRidge[d.Ridge] = true
		usedParallel[d.Parallel] = true
		merged++
	}

	for i, w := range ridge {
		if !usedRidge[i] {
			out = append(out, w)
		}
	}
	for i, w := range parallel {
		if !usedParallel[i] {
			out = append(out, w)
		}
	}

	logger.WithFields(logrus.Fields{
		"stage":         "fuse",
		"candidates":    len(dups),
		"dual":          merged,
		"ridge_only":    len(ridge) - merged,
		"parallel_only": len(parallel) - merged,
		"total":         len(out),
	}).Info("fusion complete")

	return out
}

func merge(r, p WallSegment) WallSegment {
	base := r.Coords
	if len(p.Coords) > len(r.Coords) {
		base = p.Coords
	}
	coords := make([]Point, len(base))
	copy(coords, base)

	return WallSegment{
		Coords:           coords,
		Source:           SourceDualConfirmed,
		ThicknessPx:      round((r.ThicknessPx+p.ThicknessPx)/2, 2),
		LengthNormalized: math.Max(r.LengthNormalized, p.LengthNormalized),
		Confidence:       ConfidenceDual,
	}
}
