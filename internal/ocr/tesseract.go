package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	dimaging "github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/floorplan-walls/internal/imaging"
)

// Word is one word Tesseract recognized, with its box in scan pixels.
type Word struct {
	Text string `json:"text"`

	// Confidence is Tesseract's word confidence, 0 to 100.
	Confidence float64 `json:"confidence"`

	Bounds image.Rectangle `json:"bounds"`
}

// Masker turns Tesseract word boxes into a text mask for the wall pipeline.
//
// The mask is Foreground where ink may be kept and Background over every
// word whose confidence exceeds MinConfidence, grown by Pad pixels and
// clipped to the image.
type Masker struct {
	Language      string
	MinConfidence float64
	Pad           int
}

// NewMasker returns a Masker with the floor-plan defaults: words above 10%
// confidence, padded by 8 px.
func NewMasker(language string) *Masker {
	if language == "" {
		language = "eng"
	}
	return &Masker{Language: language, MinConfidence: 10, Pad: 8}
}

// Words runs Tesseract over the whole scan at word level.
//
// Tesseract cannot be interrupted once started; ctx is only checked before
// the engine runs.
func (m *Masker) Words(ctx context.Context, gray *image.Gray) ([]Word, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dimaging.Encode(&buf, gray, dimaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode scan for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(m.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract word boxes failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{Text: text, Confidence: box.Confidence, Bounds: box.Box})
	}
	return words, nil
}

// TextMask runs OCR on the scan and returns the keep-mask built from the
// recognized words.
func (m *Masker) TextMask(ctx context.Context, gray *image.Gray) (*imaging.Mask, error) {
	words, err := m.Words(ctx, gray)
	if err != nil {
		return nil, err
	}
	b := gray.Bounds()
	return MaskFromWords(b.Dx(), b.Dy(), words, m.MinConfidence, m.Pad), nil
}

// MaskFromWords builds a width x height keep-mask with the boxes of words
// above minConfidence cleared.
func MaskFromWords(width, height int, words []Word, minConfidence float64, pad int) *imaging.Mask {
	mask := imaging.NewFilledMask(width, height, imaging.Foreground)
	for _, w := range words {
		if w.Confidence <= minConfidence {
			continue
		}
		// FillRect clips to the mask.
		mask.FillRect(w.Bounds.Inset(-pad), imaging.Background)
	}
	return mask
}

// Info describes the OCR engine linked into the binary.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
}

// GetInfo reports the Tesseract version, or Available false when the
// engine returns none.
func GetInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return Info{
		Available: version != "",
		Version:   version,
		Backend:   "gosseract",
	}
}
