package walls

import (
	"math"
	"sort"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// Line-segment detector parameters. The gradient floor is q/sin(tau) for a
// quantization error q = 2 and tau = 22.5 degrees.
const (
	lsdSmoothing      = 0.8
	lsdGradientMin    = 5.2
	lsdAngleTolerance = math.Pi / 8
	lsdMinRegion      = 8
	lsdMinDensity     = 0.7
)

// RawLineSegment is an oriented line in pixel coordinates. Start and end
// follow the level-line direction of the gradient that produced it, so the
// dark side of the edge is consistently on the same side of the segment.
type RawLineSegment struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Angle is the direction from start to end in degrees, in (-180, 180].
func (l RawLineSegment) Angle() float64 {
	return math.Atan2(l.Y2-l.Y1, l.X2-l.X1) * 180 / math.Pi
}

// Length is the Euclidean length in pixels.
func (l RawLineSegment) Length() float64 {
	return math.Hypot(l.X2-l.X1, l.Y2-l.Y1)
}

// Start is the first endpoint.
func (l RawLineSegment) Start() r2.Vec { return r2.Vec{X: l.X1, Y: l.Y1} }

// End is the second endpoint.
func (l RawLineSegment) End() r2.Vec { return r2.Vec{X: l.X2, Y: l.Y2} }

// Midpoint is the center of the segment.
func (l RawLineSegment) Midpoint() r2.Vec {
	return r2.Scale(0.5, r2.Add(l.Start(), l.End()))
}

// DetectLineSegments finds straight segments in a binary edge map.
//
// It follows the region-growing scheme of LSD: the edge map is lightly
// smoothed, a 2x2 gradient gives every pixel a level-line angle, and pixels
// are grouped (strongest gradient first) into 8-connected regions whose
// angles stay within 22.5 degrees of the running region angle. Each region
// is fitted with its principal inertia axis; regions too small or too
// sparse for a line are dropped.
//
// A 1-pixel edge has gradients of opposite sign on either side, so each
// edge line yields two segments of opposite orientation about a pixel
// apart. Output order is the seed order: descending gradient magnitude,
// ties in raster order.
func DetectLineSegments(edges *imaging.Mask) []RawLineSegment {
	w, h := edges.Width, edges.Height
	if w < 2 || h < 2 {
		return nil
	}

	v := imaging.BlurMask(edges, lsdSmoothing)
	n := w * h
	mag := make([]float64, n)
	ang := make([]float64, n)
	seeds := make([]int, 0, n/8)

	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			i := y*w + x
			a, b, c, d := v[i], v[i+1], v[i+w], v[i+w+1]
			gx := (b + d - a - c) / 2
			gy := (c + d - a - b) / 2
			m := math.Hypot(gx, gy)
			if m <= lsdGradientMin {
				continue
			}
			mag[i] = m
			ang[i] = math.Atan2(gx, -gy)
			seeds = append(seeds, i)
		}
	}

	sort.SliceStable(seeds, func(a, b int) bool {
		return mag[seeds[a]] > mag[seeds[b]]
	})

	used := make([]bool, n)
	var out []RawLineSegment
	for _, s := range seeds {
		if used[s] {
			continue
		}
		region, theta := growRegion(s, w, h, mag, ang, used)
		if len(region) < lsdMinRegion {
			continue
		}
		if seg, ok := fitRegion(region, w, mag, theta); ok {
			out = append(out, seg)
		}
	}
	return out
}

// growRegion collects the 8-connected pixels around seed whose level-line
// angle is within tolerance of the region angle, and returns them with the
// final region angle.
func growRegion(seed, w, h int, mag, ang []float64, used []bool) ([]int, float64) {
	region := []int{seed}
	used[seed] = true
	theta := ang[seed]
	sumCos, sumSin := math.Cos(theta), math.Sin(theta)

	for k := 0; k < len(region); k++ {
		x, y := region[k]%w, region[k]/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w-1 || ny >= h-1 {
					continue
				}
				j := ny*w + nx
				if used[j] || mag[j] == 0 {
					continue
				}
				if angleDistance(ang[j], theta) > lsdAngleTolerance {
					continue
				}
				used[j] = true
				region = append(region, j)
				sumCos += math.Cos(ang[j])
				sumSin += math.Sin(ang[j])
				theta = math.Atan2(sumSin, sumCos)
			}
		}
	}
	return region, theta
}

// fitRegion fits a segment to a region along its magnitude-weighted
// principal axis. The gradient stored at (x, y) is taken over the 2x2
// block x..x+1, y..y+1, so it sits at pixel coordinate (x+1, y+1).
func fitRegion(region []int, w int, mag []float64, theta float64) (RawLineSegment, bool) {
	var sum float64
	var c r2.Vec
	for _, i := range region {
		p := r2.Vec{X: float64(i%w) + 1, Y: float64(i/w) + 1}
		c = r2.Add(c, r2.Scale(mag[i], p))
		sum += mag[i]
	}
	c = r2.Scale(1/sum, c)

	var ixx, iyy, ixy float64
	for _, i := range region {
		d := r2.Sub(r2.Vec{X: float64(i%w) + 1, Y: float64(i/w) + 1}, c)
		ixx += mag[i] * d.X * d.X
		iyy += mag[i] * d.Y * d.Y
		ixy += mag[i] * d.X * d.Y
	}

	level := r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
	dir := level
	var eig mat.EigenSym
	if eig.Factorize(mat.NewSymDense(2, []float64{ixx, ixy, ixy, iyy}), true) {
		var vecs mat.Dense
		eig.VectorsTo(&vecs)
		// Values are ascending; the last column is the major axis.
		dir = r2.Vec{X: vecs.At(0, 1), Y: vecs.At(1, 1)}
	}
	if r2.Dot(dir, level) < 0 {
		dir = r2.Scale(-1, dir)
	}
	normal := r2.Vec{X: -dir.Y, Y: dir.X}

	tmin, tmax := math.Inf(1), math.Inf(-1)
	umin, umax := math.Inf(1), math.Inf(-1)
	for _, i := range region {
		d := r2.Sub(r2.Vec{X: float64(i%w) + 1, Y: float64(i/w) + 1}, c)
		t, u := r2.Dot(d, dir), r2.Dot(d, normal)
		tmin, tmax = math.Min(tmin, t), math.Max(tmax, t)
		umin, umax = math.Min(umin, u), math.Max(umax, u)
	}

	density := float64(len(region)) / ((tmax - tmin + 1) * (umax - umin + 1))
	if density < lsdMinDensity {
		return RawLineSegment{}, false
	}

	p1 := r2.Add(c, r2.Scale(tmin, dir))
	p2 := r2.Add(c, r2.Scale(tmax, dir))
	return RawLineSegment{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}, true
}

// angleDistance is the absolute difference of two angles in radians,
// folded into [0, pi].
func angleDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	for d > 2*math.Pi {
		d -= 2 * math.Pi
	}
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
