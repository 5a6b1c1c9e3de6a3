package imaging

import "math"

// DistanceMap holds, for every pixel, the Euclidean distance to the nearest
// Background pixel of the mask it was computed from. Background pixels are 0.
type DistanceMap struct {
	Width  int
	Height int
	D      []float64
}

// At returns the distance at (x, y), or 0 outside the map.
func (d *DistanceMap) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0
	}
	return d.D[y*d.Width+x]
}

// Threshold returns a binary mask of the pixels whose distance is strictly
// greater than min.
func (d *DistanceMap) Threshold(min float64) *Mask {
	out := NewMask(d.Width, d.Height)
	for i, v := range d.D {
		if v > min {
			out.Pix[i] = Foreground
		}
	}
	return out
}

// DistanceTransform computes the exact Euclidean distance transform of m
// using the separable lower-envelope algorithm of Felzenszwalb and
// Huttenlocher (columns first, then rows).
//
// Only real Background pixels act as sources; the area outside the image
// does not. A mask with no background at all yields the image diagonal
// everywhere, which is larger than any in-image distance.
func DistanceTransform(m *Mask) *DistanceMap {
	w, h := m.Width, m.Height
	dm := &DistanceMap{Width: w, Height: h, D: make([]float64, w*h)}
	if w == 0 || h == 0 {
		return dm
	}

	inf := float64(w*w + h*h + 1)
	sq := make([]float64, w*h)
	for i, v := range m.Pix {
		if v != 0 {
			sq[i] = inf
		}
	}

	n := w
	if h > n {
		n = h
	}
	f := make([]float64, n)
	out := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = sq[y*w+x]
		}
		edt1D(f[:h], out[:h], v, z)
		for y := 0; y < h; y++ {
			sq[y*w+x] = out[y]
		}
	}
	for y := 0; y < h; y++ {
		copy(f[:w], sq[y*w:(y+1)*w])
		edt1D(f[:w], out[:w], v, z)
		copy(sq[y*w:(y+1)*w], out[:w])
	}

	diag := math.Sqrt(float64(w*w + h*h))
	for i, s := range sq {
		if s >= inf {
			dm.D[i] = diag
			continue
		}
		dm.D[i] = math.Sqrt(s)
	}
	return dm
}

// edt1D computes the squared distance transform of the sampled function f
// into d. v and z are scratch buffers of length >= len(f) and len(f)+1.
func edt1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	if n == 0 {
		return
	}
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := ((f[q] + float64(q*q)) - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		for s <= z[k] {
			k--
			s = ((f[q] + float64(q*q)) - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}
