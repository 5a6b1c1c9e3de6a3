package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded grayscale scans so that
// repeated tool calls against the same floor plan skip disk I/O and decoding.
//
// Cached images remain in memory until Evict or Clear is called. The cache
// hands out the same *image.Gray to every caller; callers must not modify it.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*image.Gray
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*image.Gray),
	}
}

// Load returns the grayscale scan at path, decoding it on first use.
//
// The image is cached under the exact path string provided.
func (c *ImageCache) Load(path string) (*image.Gray, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := LoadGray(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*image.Gray)
	c.mu.Unlock()
}

// Evict removes a single path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// LoadGray decodes the image file at path and converts it to 8-bit
// grayscale. EXIF orientation is applied so that phone photos of paper plans
// come out upright.
//
// Supported formats are those registered with the image package plus the
// formats disintegration/imaging understands (PNG, JPEG, GIF, TIFF, BMP).
func LoadGray(path string) (*image.Gray, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	gray := ToGray(img)
	if gray.Bounds().Empty() {
		return nil, fmt.Errorf("image %s has no pixels", path)
	}
	return gray, nil
}

// ToGray converts any image to an *image.Gray anchored at (0, 0).
//
// Luminance follows imaging.Grayscale (ITU-R BT.601 weights). An input that
// is already *image.Gray at the origin is returned as is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			// Channels are equal after Grayscale; composite over white so
			// transparent regions of a scan read as paper, not ink.
			v := uint32(src[x*4])
			a := uint32(src[x*4+3])
			dst[x] = uint8((v*a + 255*(255-a)) / 255)
		}
	}
	return gray
}

// DimensionsResult contains the width and height of a scan.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the pixel dimensions of the scan at path, loading it
// into the cache if needed.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}
