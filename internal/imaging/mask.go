package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// Foreground and Background are the two values a binary Mask holds.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

// Mask is a row-major grid of 8-bit values, one per source pixel.
//
// Binary masks use Foreground (255) and Background (0). The same type also
// carries 8-bit intermediate rasters (for example edge maps before
// hysteresis) where any non-zero value counts as set.
//
// A Mask is owned by the stage that produced it and is treated as immutable
// once handed to the next stage: every operation in this package returns a
// new Mask rather than modifying its input.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an all-background mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// NewFilledMask allocates a mask with every pixel set to v.
func NewFilledMask(width, height int, v uint8) *Mask {
	m := NewMask(width, height)
	if v != 0 {
		for i := range m.Pix {
			m.Pix[i] = v
		}
	}
	return m
}

// InBounds reports whether (x, y) lies inside the mask.
func (m *Mask) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At returns the value at (x, y), or Background outside the mask.
func (m *Mask) At(x, y int) uint8 {
	if !m.InBounds(x, y) {
		return Background
	}
	return m.Pix[y*m.Width+x]
}

// On reports whether (x, y) is a set (non-zero) pixel.
func (m *Mask) On(x, y int) bool {
	return m.At(x, y) != 0
}

// Set writes v at (x, y). Out-of-range writes are ignored.
func (m *Mask) Set(x, y int, v uint8) {
	if !m.InBounds(x, y) {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// SameSize reports whether two masks have identical dimensions.
func (m *Mask) SameSize(o *Mask) bool {
	return o != nil && m.Width == o.Width && m.Height == o.Height
}

// And returns the pixel-wise minimum of two equally sized masks. With a
// binary keep mask this behaves like a bitwise AND: pixels under a zero
// keep value become Background.
func (m *Mask) And(o *Mask) (*Mask, error) {
	if !m.SameSize(o) {
		return nil, fmt.Errorf("mask size mismatch: %dx%d vs %dx%d", m.Width, m.Height, o.Width, o.Height)
	}
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		out.Pix[i] = v & o.Pix[i]
	}
	return out, nil
}

// Bounds returns the mask rectangle anchored at the origin.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// FillRect sets every pixel of r (clipped to the mask) to v.
func (m *Mask) FillRect(r image.Rectangle, v uint8) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = v
		}
	}
}

// MaskFromGray copies an 8-bit grayscale image into a Mask. The image
// origin is shifted to (0, 0).
func MaskFromGray(img *image.Gray) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+m.Width]
		copy(m.Pix[y*m.Width:(y+1)*m.Width], src)
	}
	return m
}

// Gray returns the mask as an *image.Gray anchored at (0, 0).
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+m.Width], m.Pix[y*m.Width:(y+1)*m.Width])
	}
	return img
}

// EncodePNGBase64 encodes the mask as a grayscale PNG in base64 form, the
// shape every image-returning tool of the server uses.
func (m *Mask) EncodePNGBase64() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.Gray()); err != nil {
		return "", fmt.Errorf("failed to encode mask: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
