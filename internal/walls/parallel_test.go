package walls

import (
	"math"
	"testing"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(x1, y1, x2, y2 float64) RawLineSegment {
	return RawLineSegment{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestRawLineSegment_Geometry(t *testing.T) {
	l := seg(0, 0, 3, 4)
	assert.InDelta(t, 5, l.Length(), 1e-12)
	assert.InDelta(t, math.Atan2(4, 3)*180/math.Pi, l.Angle(), 1e-12)
	assert.InDelta(t, 1.5, l.Midpoint().X, 1e-12)
	assert.InDelta(t, 180, seg(10, 0, 0, 0).Angle(), 1e-12)
}

func TestAngleDiff_WrapsAround(t *testing.T) {
	assert.InDelta(t, 2, angleDiff(179, -179), 1e-12)
	assert.InDelta(t, 180, angleDiff(0, 180), 1e-12)
	assert.InDelta(t, 3, angleDiff(-1, 2), 1e-12)
}

func TestPerpendicularDistanceAndOverlap(t *testing.T) {
	l1 := seg(0, 0, 100, 0)

	assert.InDelta(t, 8, perpendicularDistance(l1, seg(0, 8, 100, 8)), 1e-12)
	assert.InDelta(t, 8, perpendicularDistance(l1, seg(0, -8, 100, -8)), 1e-12)
	assert.True(t, math.IsInf(perpendicularDistance(seg(5, 5, 5, 5), l1), 1))

	assert.InDelta(t, 1, parallelOverlap(l1, seg(-20, 8, 120, 8)), 1e-12)
	assert.InDelta(t, 0.5, parallelOverlap(l1, seg(50, 8, 150, 8)), 1e-12)
	assert.InDelta(t, 0.3, parallelOverlap(l1, seg(100, 8, 70, 8)), 1e-12)
	assert.InDelta(t, 0, parallelOverlap(l1, seg(120, 8, 200, 8)), 1e-12)
	assert.InDelta(t, 0, parallelOverlap(seg(5, 5, 5, 5), l1), 1e-12)
}

func TestPairParallelLines_PrefersGapNearEight(t *testing.T) {
	lines := []RawLineSegment{
		seg(0, 0, 100, 0),
		seg(0, 12, 100, 12), // gap 12
		seg(0, 8, 100, 8),   // gap 8, best for line 0
	}

	pairs := PairParallelLines(lines, DefaultConfig())

	require.Len(t, pairs, 1)
	assert.Equal(t, lines[0], pairs[0].First)
	assert.Equal(t, lines[2], pairs[0].Second)
	assert.InDelta(t, 8, pairs[0].Distance, 1e-12)
	assert.InDelta(t, 1, pairs[0].Overlap, 1e-12)
}

func TestPairParallelLines_Rejections(t *testing.T) {
	cfg := DefaultConfig()
	base := seg(0, 0, 100, 0)

	tests := []struct {
		name  string
		other RawLineSegment
	}{
		{"opposite orientation", seg(100, 8, 0, 8)},
		{"angle beyond tolerance", seg(0, 8, 100, 8+100*math.Tan(6*math.Pi/180))},
		{"gap too small", seg(0, 3, 100, 3)},
		{"gap too large", seg(0, 16, 100, 16)},
		{"too short", seg(0, 8, 19, 8)},
		{"little overlap", seg(60, 8, 160, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, PairParallelLines([]RawLineSegment{base, tt.other}, cfg))
		})
	}

	t.Run("short first line", func(t *testing.T) {
		assert.Empty(t, PairParallelLines([]RawLineSegment{seg(0, 0, 15, 0), seg(0, 8, 15, 8)}, cfg))
	})
}

func TestPairParallelLines_EachSegmentPairsOnce(t *testing.T) {
	// A ladder of same-direction lines 8 px apart: every line is a valid
	// partner for its neighbours.
	var lines []RawLineSegment
	for i := 0; i < 6; i++ {
		y := float64(i * 8)
		lines = append(lines, seg(0, y, 100, y))
	}

	pairs := PairParallelLines(lines, DefaultConfig())

	require.Len(t, pairs, 3)
	seen := map[RawLineSegment]int{}
	for _, p := range pairs {
		seen[p.First]++
		seen[p.Second]++
	}
	for l, n := range seen {
		assert.Equal(t, 1, n, "segment %+v used %d times", l, n)
	}
	// Greedy in index order: 0-1, 2-3, 4-5.
	assert.Equal(t, lines[1], pairs[0].Second)
	assert.Equal(t, lines[3], pairs[1].Second)
	assert.Equal(t, lines[5], pairs[2].Second)
}

func TestParallelPair_Centerline(t *testing.T) {
	p := ParallelPair{First: seg(0, 0, 100, 0), Second: seg(0, 8, 100, 8), Distance: 8, Overlap: 1}
	a, b := p.Centerline()
	assert.InDelta(t, 0, a.X, 1e-12)
	assert.InDelta(t, 4, a.Y, 1e-12)
	assert.InDelta(t, 100, b.X, 1e-12)
	assert.InDelta(t, 4, b.Y, 1e-12)
}

func TestDetectLineSegments_SingleEdge(t *testing.T) {
	edges := imaging.NewMask(120, 40)
	for x := 10; x < 110; x++ {
		edges.Set(x, 20, imaging.Foreground)
	}

	lines := DetectLineSegments(edges)

	var long []RawLineSegment
	for _, l := range lines {
		if l.Length() >= 50 {
			long = append(long, l)
		}
	}
	require.Len(t, long, 2, "one segment per side of the edge")

	for _, l := range long {
		assert.InDelta(t, 20.5, (l.Y1+l.Y2)/2, 1.5)
		assert.InDelta(t, 0, math.Abs(l.Y2-l.Y1), 0.5)
	}
	// The two sides straddle the stroke center.
	mid := (long[0].Y1 + long[0].Y2 + long[1].Y1 + long[1].Y2) / 4
	assert.InDelta(t, 20.5, mid, 0.25)
	assert.InDelta(t, 180, angleDiff(long[0].Angle(), long[1].Angle()), 1, "sides have opposite orientation")
}

func TestDetectLineSegments_Empty(t *testing.T) {
	assert.Empty(t, DetectLineSegments(imaging.NewMask(50, 50)))
	assert.Empty(t, DetectLineSegments(imaging.NewMask(1, 1)))
}

func TestDetectParallelWalls_FilledBar(t *testing.T) {
	cleaned := imaging.NewMask(200, 100)
	for y := 45; y < 55; y++ {
		for x := 20; x < 180; x++ {
			cleaned.Set(x, y, imaging.Foreground)
		}
	}

	walls := DetectParallelWalls(cleaned, DefaultConfig())

	require.NotEmpty(t, walls)
	for _, w := range walls {
		assert.Equal(t, SourceParallel, w.Source)
		assert.Equal(t, ConfidenceSingle, w.Confidence)
		assert.Len(t, w.Coords, 2)
		assert.GreaterOrEqual(t, w.ThicknessPx, 4.0)
		assert.LessOrEqual(t, w.ThicknessPx, 15.0)
		for _, p := range w.Coords {
			assert.InDelta(t, 50, p[1], 5, "centerline should run along the bar")
		}
		assert.Greater(t, w.LengthNormalized, 40.0)
	}
}

func TestDetectParallelWalls_NoLines(t *testing.T) {
	assert.Empty(t, DetectParallelWalls(imaging.NewMask(80, 80), DefaultConfig()))
}
