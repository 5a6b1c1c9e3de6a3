package imaging

import "image"

// Component describes one 8-connected foreground region.
type Component struct {
	// Label is the 1-based label stored in the label grid.
	Label int
	// Area is the number of pixels in the component.
	Area int
	// Bounds is the bounding box (Max exclusive).
	Bounds image.Rectangle
}

// Width is the horizontal extent of the bounding box.
func (c Component) Width() int { return c.Bounds.Dx() }

// Height is the vertical extent of the bounding box.
func (c Component) Height() int { return c.Bounds.Dy() }

// Labeling is the result of ConnectedComponents.
type Labeling struct {
	Width      int
	Height     int
	Labels     []int32 // 0 = background, otherwise Component.Label
	Components []Component
}

// ConnectedComponents labels the 8-connected foreground regions of m.
//
// Labels are assigned in raster order of each component's first pixel
// (top-to-bottom, left-to-right), so the labeling is deterministic.
// Flood filling uses an explicit stack to avoid deep recursion on large
// regions.
func ConnectedComponents(m *Mask) *Labeling {
	lab := &Labeling{
		Width:  m.Width,
		Height: m.Height,
		Labels: make([]int32, len(m.Pix)),
	}

	stack := make([]int, 0, 256)
	for start, v := range m.Pix {
		if v == 0 || lab.Labels[start] != 0 {
			continue
		}

		label := int32(len(lab.Components) + 1)
		sx, sy := start%m.Width, start/m.Width
		comp := Component{Label: int(label), Bounds: image.Rect(sx, sy, sx+1, sy+1)}

		lab.Labels[start] = label
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%m.Width, idx/m.Width
			comp.Area++
			if x < comp.Bounds.Min.X {
				comp.Bounds.Min.X = x
			}
			if x >= comp.Bounds.Max.X {
				comp.Bounds.Max.X = x + 1
			}
			if y < comp.Bounds.Min.Y {
				comp.Bounds.Min.Y = y
			}
			if y >= comp.Bounds.Max.Y {
				comp.Bounds.Max.Y = y + 1
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if !m.InBounds(nx, ny) {
						continue
					}
					n := ny*m.Width + nx
					if m.Pix[n] != 0 && lab.Labels[n] == 0 {
						lab.Labels[n] = label
						stack = append(stack, n)
					}
				}
			}
		}

		lab.Components = append(lab.Components, comp)
	}

	return lab
}

// Keep returns a binary mask containing only the components for which keep
// returns true.
func (l *Labeling) Keep(keep func(Component) bool) *Mask {
	kept := make([]bool, len(l.Components)+1)
	for _, c := range l.Components {
		kept[c.Label] = keep(c)
	}

	out := NewMask(l.Width, l.Height)
	for i, label := range l.Labels {
		if label != 0 && kept[label] {
			out.Pix[i] = Foreground
		}
	}
	return out
}
