package walls

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Source identifies which detector produced a WallSegment.
type Source string

const (
	SourceRidge         Source = "ridge"
	SourceParallel      Source = "parallel"
	SourceDualConfirmed Source = "dual_confirmed"
)

// Confidence takes exactly one of these two values.
const (
	ConfidenceSingle = 0.7
	ConfidenceDual   = 0.95
)

// Point is an (x, y) position in percent of the image width and height.
type Point [2]float64

// WallSegment is one detected wall centerline.
//
// Coords are always in percentage space; detectors convert from pixels
// before emitting. Segments are values: later stages replace them, they
// never modify them.
type WallSegment struct {
	Coords           []Point `json:"coords"`
	Source           Source  `json:"source"`
	ThicknessPx      float64 `json:"thickness_px"`
	LengthNormalized float64 `json:"length_normalized"`
	Confidence       float64 `json:"confidence"`
}

// Stats tallies a run. PathARidge and PathBParallel are detector output
// sizes; the remaining fields are counted over the final list.
type Stats struct {
	PathARidge    int `json:"path_a_ridge"`
	PathBParallel int `json:"path_b_parallel"`
	DualConfirmed int `json:"dual_confirmed"`
	RidgeOnly     int `json:"ridge_only"`
	ParallelOnly  int `json:"parallel_only"`
	TotalWalls    int `json:"total_walls"`
}

// Tally builds Stats from the two detector outputs and the final list.
func Tally(ridge, parallel, final []WallSegment) Stats {
	s := Stats{
		PathARidge:    len(ridge),
		PathBParallel: len(parallel),
		TotalWalls:    len(final),
	}
	for _, w := range final {
		switch w.Source {
		case SourceDualConfirmed:
			s.DualConfirmed++
		case SourceRidge:
			s.RidgeOnly++
		case SourceParallel:
			s.ParallelOnly++
		}
	}
	return s
}

// PathLength is the polyline length of coords in percentage units.
func PathLength(coords []Point) float64 {
	if len(coords) < 2 {
		return 0
	}
	return planar.Length(toLineString(coords))
}

func toLineString(coords []Point) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, p := range coords {
		ls[i] = orb.Point(p)
	}
	return ls
}

// normalize converts a pixel position to percentage space rounded to 3
// decimals.
func normalize(x, y float64, width, height int) Point {
	return Point{
		round(clampPercent(x/float64(width)*100), 3),
		round(clampPercent(y/float64(height)*100), 3),
	}
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// round rounds half away from zero to the given number of decimals.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
