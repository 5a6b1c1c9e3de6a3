package imaging

// Skeletonize thins the foreground of m to 1-pixel-wide centerlines using
// the Zhang-Suen two-subiteration algorithm. Connectivity of each region is
// preserved; isolated pixels survive as single-pixel skeletons.
func Skeletonize(m *Mask) *Mask {
	w, h := m.Width, m.Height
	img := make([]uint8, len(m.Pix))
	for i, v := range m.Pix {
		if v != 0 {
			img[i] = 1
		}
	}

	at := func(x, y int) uint8 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return img[y*w+x]
	}

	var marked []int
	for changed := true; changed; {
		changed = false
		for pass := 0; pass < 2; pass++ {
			marked = marked[:0]
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if img[y*w+x] == 0 {
						continue
					}
					// Neighbours P2..P9, clockwise from north.
					p2 := at(x, y-1)
					p3 := at(x+1, y-1)
					p4 := at(x+1, y)
					p5 := at(x+1, y+1)
					p6 := at(x, y+1)
					p7 := at(x-1, y+1)
					p8 := at(x-1, y)
					p9 := at(x-1, y-1)

					b := int(p2 + p3 + p4 + p5 + p6 + p7 + p8 + p9)
					if b < 2 || b > 6 {
						continue
					}

					ring := [9]uint8{p2, p3, p4, p5, p6, p7, p8, p9, p2}
					a := 0
					for i := 0; i < 8; i++ {
						if ring[i] == 0 && ring[i+1] == 1 {
							a++
						}
					}
					if a != 1 {
						continue
					}

					if pass == 0 {
						if p2*p4*p6 != 0 || p4*p6*p8 != 0 {
							continue
						}
					} else {
						if p2*p4*p8 != 0 || p2*p6*p8 != 0 {
							continue
						}
					}
					marked = append(marked, y*w+x)
				}
			}
			for _, idx := range marked {
				img[idx] = 0
			}
			if len(marked) > 0 {
				changed = true
			}
		}
	}

	out := NewMask(w, h)
	for i, v := range img {
		if v != 0 {
			out.Pix[i] = Foreground
		}
	}
	return out
}
