package walls

import (
	"math"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"
)

// ParallelPair is two segments judged to be the two faces of one hollow
// wall.
type ParallelPair struct {
	First    RawLineSegment
	Second   RawLineSegment
	Distance float64 // perpendicular separation in pixels
	Overlap  float64 // fraction of First covered by Second, in [0, 1]
}

// Centerline joins the midpoints of corresponding endpoints (start with
// start, end with end). Endpoint correspondence is taken as given.
func (p ParallelPair) Centerline() (r2.Vec, r2.Vec) {
	a := r2.Scale(0.5, r2.Add(p.First.Start(), p.Second.Start()))
	b := r2.Scale(0.5, r2.Add(p.First.End(), p.Second.End()))
	return a, b
}

// EdgeMap blurs cleaned and runs Canny with the Path B settings.
func EdgeMap(cleaned *imaging.Mask, cfg Config) *imaging.Mask {
	smoothed := imaging.BlurMask(cleaned, cfg.EdgeBlurRadius)
	return imaging.Canny(smoothed, cleaned.Width, cleaned.Height, cfg.CannyLow, cfg.CannyHigh)
}

// DetectParallelWalls finds hollow walls drawn as two parallel lines and
// emits one centerline segment per accepted pair, in pairing order.
func DetectParallelWalls(cleaned *imaging.Mask, cfg Config) []WallSegment {
	width, height := cleaned.Width, cleaned.Height
	if width == 0 || height == 0 {
		return nil
	}

	lines := DetectLineSegments(EdgeMap(cleaned, cfg))
	pairs := PairParallelLines(lines, cfg)

	out := make([]WallSegment, 0, len(pairs))
	for _, p := range pairs {
		a, b := p.Centerline()
		out = append(out, WallSegment{
			Coords: []Point{
				normalize(a.X, a.Y, width, height),
				normalize(b.X, b.Y, width, height),
			},
			Source:      SourceParallel,
			ThicknessPx: round(p.Distance, 2),
			// Pixel length over image width, as the downstream consumers expect.
			LengthNormalized: round(r2.Norm(r2.Sub(b, a))/float64(width)*100, 2),
			Confidence:       ConfidenceSingle,
		})
	}

	logger.WithFields(logrus.Fields{
		"stage":    "parallel",
		"lines":    len(lines),
		"pairs":    len(pairs),
		"segments": len(out),
	}).Info("parallel line detection complete")

	return out
}

// PairParallelLines pairs segments greedily in index order.
//
// For each unused segment i at least MinLineLength long, every later unused
// segment j is scored and the best candidate (strictly highest score, first
// wins on ties) is paired with i; both are then used. A candidate must
// point within MaxAngleDiff degrees of i's direction, sit MinGap..MaxGap
// pixels away along i's normal, and cover at least MinOverlap of i.
// Segments of opposite orientation never pair.
func PairParallelLines(lines []RawLineSegment, cfg Config) []ParallelPair {
	used := make([]bool, len(lines))
	var pairs []ParallelPair

	for i, l1 := range lines {
		if used[i] {
			continue
		}
		len1 := l1.Length()
		if len1 < cfg.MinLineLength {
			continue
		}
		angle1 := l1.Angle()

		best := -1
		var bestScore float64
		var bestPair ParallelPair
		for j := i + 1; j < len(lines); j++ {
			if used[j] {
				continue
			}
			l2 := lines[j]
			len2 := l2.Length()
			if len2 < cfg.MinLineLength {
				continue
			}
			if angleDiff(angle1, l2.Angle()) > cfg.MaxAngleDiff {
				continue
			}
			dist := perpendicularDistance(l1, l2)
			if dist < cfg.MinGap || dist > cfg.MaxGap {
				continue
			}
			overlap := parallelOverlap(l1, l2)
			if overlap < cfg.MinOverlap {
				continue
			}

			score := overlap * math.Min(len1, len2) / (1 + math.Abs(dist-cfg.PreferredGap))
			if score > bestScore {
				best, bestScore = j, score
				bestPair = ParallelPair{First: l1, Second: l2, Distance: dist, Overlap: overlap}
			}
		}

		if best >= 0 {
			pairs = append(pairs, bestPair)
			used[i] = true
			used[best] = true
		}
	}
	return pairs
}

// angleDiff is the absolute difference of two directions in degrees,
// folded into [0, 180].
func angleDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// perpendicularDistance projects the offset between the two midpoints onto
// l1's unit normal. A degenerate l1 gives +Inf.
func perpendicularDistance(l1, l2 RawLineSegment) float64 {
	d := r2.Sub(l1.End(), l1.Start())
	length := r2.Norm(d)
	if length < 1e-6 {
		return math.Inf(1)
	}
	normal := r2.Vec{X: -d.Y / length, Y: d.X / length}
	return math.Abs(r2.Dot(r2.Sub(l2.Midpoint(), l1.Midpoint()), normal))
}

// parallelOverlap is the share of l1's parameter range [0, 1] covered by
// the projection of l2's endpoints.
func parallelOverlap(l1, l2 RawLineSegment) float64 {
	d := r2.Sub(l1.End(), l1.Start())
	lengthSq := r2.Dot(d, d)
	if lengthSq < 1e-6 {
		return 0
	}
	t3 := r2.Dot(r2.Sub(l2.Start(), l1.Start()), d) / lengthSq
	t4 := r2.Dot(r2.Sub(l2.End(), l1.Start()), d) / lengthSq

	start := math.Max(0, math.Min(t3, t4))
	end := math.Min(1, math.Max(t3, t4))
	return math.Max(0, end-start)
}
