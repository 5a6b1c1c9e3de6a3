package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
)

// createTestImage creates a solid gray test image
func createTestImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// fillRect inks r black.
func fillRect(img *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
}

// createLabelImage draws rows of short strokes that read like printed text.
func createLabelImage(width, height int) *image.Gray {
	img := createTestImage(width, height, 255)
	for y := 20; y < height-20; y += 10 {
		for x := 20; x < width-20; x++ {
			if x%15 < 5 {
				img.SetGray(x, y, color.Gray{Y: 0})
				img.SetGray(x, y+1, color.Gray{Y: 0})
				img.SetGray(x, y+5, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func TestDetectTextRegions_BlankPaper(t *testing.T) {
	regions, err := DetectTextRegions(createTestImage(200, 150, 255), 0.3)
	if err != nil {
		t.Fatalf("DetectTextRegions failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("Expected 0 text regions on blank paper, got %d", len(regions))
	}
}

func TestDetectTextRegions_WallIsNotText(t *testing.T) {
	img := createTestImage(200, 150, 255)
	fillRect(img, image.Rect(20, 40, 180, 52))

	regions, err := DetectTextRegions(img, 0.3)
	if err != nil {
		t.Fatalf("DetectTextRegions failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("A horizontal wall should not read as text, got %d regions", len(regions))
	}
}

func TestDetectTextRegions_MinConfidence(t *testing.T) {
	img := createLabelImage(200, 150)

	low, err := DetectTextRegions(img, 0.1)
	if err != nil {
		t.Fatalf("DetectTextRegions failed: %v", err)
	}
	high, err := DetectTextRegions(img, 0.8)
	if err != nil {
		t.Fatalf("DetectTextRegions failed: %v", err)
	}

	area := func(rs []TextRegion) int {
		n := 0
		for _, r := range rs {
			n += r.Bounds.Dx() * r.Bounds.Dy()
		}
		return n
	}
	if area(high) > area(low) {
		t.Errorf("Higher minConfidence should cover less: low=%d, high=%d", area(low), area(high))
	}
}

func TestDetectTextRegions_SortedByConfidence(t *testing.T) {
	regions, err := DetectTextRegions(createLabelImage(300, 200), 0.2)
	if err != nil {
		t.Fatalf("DetectTextRegions failed: %v", err)
	}
	for i := 1; i < len(regions); i++ {
		if regions[i-1].Confidence < regions[i].Confidence {
			t.Fatal("Text regions should be sorted by confidence (highest first)")
		}
	}
	for _, r := range regions {
		if !r.Bounds.In(image.Rect(0, 0, 300, 200)) {
			t.Errorf("Region %v lies outside the image", r.Bounds)
		}
	}
}

func TestDetectTextRegions_SmallImage(t *testing.T) {
	// Smaller than every window.
	regions, err := DetectTextRegions(createTestImage(50, 20, 255), 0.3)
	if err != nil {
		t.Fatalf("DetectTextRegions failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("Expected no regions, got %d", len(regions))
	}
}

func TestDetectTextRegions_NoPixels(t *testing.T) {
	if _, err := DetectTextRegions(nil, 0.3); err == nil {
		t.Error("Expected error for nil image")
	}
	if _, err := DetectTextRegions(image.NewGray(image.Rect(0, 0, 0, 0)), 0.3); err == nil {
		t.Error("Expected error for empty image")
	}
}

func TestTextMask_BlankPaperKeepsEverything(t *testing.T) {
	mask, err := TextMask(createTestImage(120, 80, 255), 0.3, 8)
	if err != nil {
		t.Fatalf("TextMask failed: %v", err)
	}
	if mask.Width != 120 || mask.Height != 80 {
		t.Fatalf("Mask size %dx%d, want 120x80", mask.Width, mask.Height)
	}
	if mask.Count() != 120*80 {
		t.Errorf("Expected every pixel kept, got %d of %d", mask.Count(), 120*80)
	}
}

func TestHorizontalScore(t *testing.T) {
	r := image.Rect(0, 0, 50, 50)

	// Two long horizontal edges: 2 row runs against 2 runs in each of 40 columns.
	wall := imaging.NewMask(50, 50)
	for x := 5; x < 45; x++ {
		wall.Set(x, 10, imaging.Foreground)
		wall.Set(x, 20, imaging.Foreground)
	}
	if got, want := horizontalScore(wall, r), 2.0/82.0; got != want {
		t.Errorf("horizontal edges: got %.4f, want %.4f", got, want)
	}

	// Short vertical strokes, like letters: many row runs, one run per stroke column.
	strokes := imaging.NewMask(50, 50)
	for x := 10; x < 40; x += 5 {
		for y := 5; y < 45; y++ {
			strokes.Set(x, y, imaging.Foreground)
		}
	}
	if got, want := horizontalScore(strokes, r), 240.0/246.0; got != want {
		t.Errorf("vertical strokes: got %.4f, want %.4f", got, want)
	}

	if got := horizontalScore(imaging.NewMask(50, 50), r); got != 0 {
		t.Errorf("Empty edges should have score 0, got %.2f", got)
	}
}

func TestSummedArea(t *testing.T) {
	m := imaging.NewMask(10, 10)
	m.FillRect(image.Rect(2, 3, 6, 5), imaging.Foreground)
	s := edgeIntegral(m)

	tests := []struct {
		r    image.Rectangle
		want int
	}{
		{image.Rect(0, 0, 10, 10), 8},
		{image.Rect(2, 3, 6, 5), 8},
		{image.Rect(4, 0, 10, 4), 2},
		{image.Rect(6, 5, 10, 10), 0},
	}
	for _, tt := range tests {
		if got := s.sum(tt.r); got != tt.want {
			t.Errorf("sum(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestMergeRegions(t *testing.T) {
	regions := []TextRegion{
		{Bounds: image.Rect(10, 10, 50, 30), Confidence: 0.7},
		{Bounds: image.Rect(30, 10, 70, 30), Confidence: 0.8}, // overlaps
		{Bounds: image.Rect(100, 100, 150, 130), Confidence: 0.6},
		{Bounds: image.Rect(150, 100, 160, 130), Confidence: 0.9}, // touches only
	}

	merged := mergeRegions(regions)

	if len(merged) != 3 {
		t.Fatalf("Expected 3 merged regions, got %d", len(merged))
	}
	if merged[0].Bounds != image.Rect(10, 10, 70, 30) {
		t.Errorf("Union bounds: got %v", merged[0].Bounds)
	}
	if merged[0].Confidence != 0.8 {
		t.Errorf("Merged confidence should be the max, got %.2f", merged[0].Confidence)
	}
	if len(mergeRegions(nil)) != 0 {
		t.Error("Expected no regions from nil input")
	}
}
