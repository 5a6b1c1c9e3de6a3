package imaging

import "image"

// mooreRing lists the 8 neighbour offsets in clockwise order (y grows
// downward), starting at west.
var mooreRing = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func ringIndex(d image.Point) int {
	for i, o := range mooreRing {
		if o == d {
			return i
		}
	}
	return 0
}

// TraceContours follows the outer border of every 8-connected foreground
// region of m with Moore-neighbour tracing and returns one ordered point
// sequence per region, without the closing duplicate of the start point.
//
// Regions are visited in raster order of their first pixel. On a 1-pixel
// wide skeleton the border walk runs along the line and back again, so an
// open centerline of n pixels yields roughly 2n-2 contour points; a closed
// loop yields each pixel once.
func TraceContours(m *Mask) [][]image.Point {
	lab := ConnectedComponents(m)
	contours := make([][]image.Point, 0, len(lab.Components))

	for _, comp := range lab.Components {
		start := firstPixel(lab, comp)
		contours = append(contours, traceBorder(m, start, 4*comp.Area+16))
	}
	return contours
}

// firstPixel returns the top-most, left-most pixel of a component.
func firstPixel(lab *Labeling, comp Component) image.Point {
	label := int32(comp.Label)
	for y := comp.Bounds.Min.Y; y < comp.Bounds.Max.Y; y++ {
		for x := comp.Bounds.Min.X; x < comp.Bounds.Max.X; x++ {
			if lab.Labels[y*lab.Width+x] == label {
				return image.Pt(x, y)
			}
		}
	}
	return comp.Bounds.Min
}

// traceBorder walks the border clockwise from start, whose west neighbour
// must be background. Tracing stops when the walk re-enters its first move
// with the same backtrack (Jacob's stopping criterion) or after limit steps.
func traceBorder(m *Mask, start image.Point, limit int) []image.Point {
	contour := []image.Point{start}

	p := start
	back := 0
	var firstP image.Point
	firstBack := -1

	for step := 0; step < limit; step++ {
		found := false
		for i := 1; i <= 8; i++ {
			k := (back + i) % 8
			q := p.Add(mooreRing[k])
			if !m.On(q.X, q.Y) {
				continue
			}
			prev := p.Add(mooreRing[(k+7)%8])
			p = q
			back = ringIndex(prev.Sub(q))
			found = true
			break
		}
		if !found {
			// Isolated pixel.
			break
		}

		if firstBack < 0 {
			firstP, firstBack = p, back
		} else if p == firstP && back == firstBack {
			break
		}
		contour = append(contour, p)
	}

	if n := len(contour); n > 1 && contour[n-1] == start {
		contour = contour[:n-1]
	}
	return contour
}
