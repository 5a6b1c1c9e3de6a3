package imaging

// Erode applies a size x size square minimum filter.
//
// Pixels outside the mask do not take part, so foreground touching the
// image border is not eaten away from that side.
func Erode(m *Mask, size int) *Mask {
	return rankFilter(m, size, func(a, b uint8) uint8 {
		if a < b {
			return a
		}
		return b
	})
}

// Dilate applies a size x size square maximum filter.
func Dilate(m *Mask, size int) *Mask {
	return rankFilter(m, size, func(a, b uint8) uint8 {
		if a > b {
			return a
		}
		return b
	})
}

// Open performs a morphological opening (erosion followed by dilation) with
// a size x size square element, repeated iterations times per operation as
// OpenCV's morphologyEx does: all erosions first, then all dilations.
//
// Opening removes foreground features smaller than the element (isolated
// specks, dot symbols, hairlines) while leaving thicker strokes in place.
func Open(m *Mask, size, iterations int) *Mask {
	if iterations < 1 {
		return m.Clone()
	}
	out := m
	for i := 0; i < iterations; i++ {
		out = Erode(out, size)
	}
	for i := 0; i < iterations; i++ {
		out = Dilate(out, size)
	}
	return out
}

// rankFilter runs a separable square min/max filter: one horizontal pass,
// then one vertical pass over the intermediate result.
func rankFilter(m *Mask, size int, pick func(a, b uint8) uint8) *Mask {
	if size <= 1 {
		return m.Clone()
	}
	before := (size - 1) / 2
	after := size - 1 - before

	tmp := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := 0; x < m.Width; x++ {
			v := row[x]
			for k := x - before; k <= x+after; k++ {
				if k < 0 || k >= m.Width || k == x {
					continue
				}
				v = pick(v, row[k])
			}
			tmp.Pix[y*m.Width+x] = v
		}
	}

	out := NewMask(m.Width, m.Height)
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			v := tmp.Pix[y*m.Width+x]
			for k := y - before; k <= y+after; k++ {
				if k < 0 || k >= m.Height || k == y {
					continue
				}
				v = pick(v, tmp.Pix[k*m.Width+x])
			}
			out.Pix[y*m.Width+x] = v
		}
	}
	return out
}
