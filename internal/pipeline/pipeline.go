package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/floorplan-walls/internal/apperr"
	"github.com/ironsheep/floorplan-walls/internal/detection"
	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/ironsheep/floorplan-walls/internal/metrics"
	"github.com/ironsheep/floorplan-walls/internal/walls"
)

const (
	Method  = "hybrid_ridge_parallel"
	Version = "2.0"

	// DegradedTextMask is reported when the text masker failed and the run
	// continued with every pixel kept.
	DegradedTextMask = "text_mask_unavailable"
)

// TextMasker produces the keep-mask for a scan: Foreground where ink may be
// kept, Background over detected text. The mask must match the scan size.
type TextMasker interface {
	TextMask(ctx context.Context, gray *image.Gray) (*imaging.Mask, error)
}

// TextMaskerFunc adapts a function to TextMasker.
type TextMaskerFunc func(ctx context.Context, gray *image.Gray) (*imaging.Mask, error)

func (f TextMaskerFunc) TextMask(ctx context.Context, gray *image.Gray) (*imaging.Mask, error) {
	return f(ctx, gray)
}

// HeuristicMasker masks label-like regions found from edge statistics. It
// stands in for OCR where Tesseract is not installed.
func HeuristicMasker() TextMasker {
	return TextMaskerFunc(func(ctx context.Context, gray *image.Gray) (*imaging.Mask, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return detection.TextMask(gray, 0.5, 8)
	})
}

// Options configures one Run.
type Options struct {
	Walls walls.Config

	// TextMasker may be nil, in which case every pixel is kept and the run
	// is not considered degraded.
	TextMasker TextMasker

	DetectSymbols bool
	Lights        detection.LightOptions

	// KeepArtifacts attaches the intermediate rasters to the Result.
	KeepArtifacts bool
}

// DefaultOptions returns the production configuration without a text
// masker.
func DefaultOptions() Options {
	return Options{
		Walls:         walls.DefaultConfig(),
		DetectSymbols: true,
		Lights:        detection.DefaultLightOptions(),
	}
}

type Processing struct {
	Method  string `json:"method"`
	Version string `json:"version"`
}

type Metadata struct {
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	RunID          string      `json:"run_id"`
	Processing     Processing  `json:"processing"`
	DetectionStats walls.Stats `json:"detection_stats"`
	Degraded       []string    `json:"degraded,omitempty"`
}

// Artifacts are the intermediate rasters of a run, for debugging.
type Artifacts struct {
	Cleaned *imaging.Mask // preprocessed binary image
	Ridges  *imaging.Mask // Path A skeleton of the thick regions
	Edges   *imaging.Mask // Path B Canny edge map
}

// Result is the document a run produces.
type Result struct {
	Metadata        Metadata            `json:"metadata"`
	Walls           []walls.WallSegment `json:"walls"`
	DetectedSymbols []detection.Symbol  `json:"detected_symbols"`

	Artifacts *Artifacts `json:"-"`
}

// Run detects the walls (and, if enabled, the light fixtures) of a
// grayscale floor plan scan.
//
// Stages run in order: text mask, preprocess, then Path A, Path B and
// symbol detection concurrently on the cleaned image, then fusion and
// validation. A failing text masker does not fail the run; the scan is
// processed unmasked and the result is flagged as degraded.
func Run(ctx context.Context, gray *image.Gray, opts Options) (res *Result, err error) {
	defer func() { metrics.RecordRun(err) }()

	if err := opts.Walls.Validate(); err != nil {
		return nil, err
	}
	if gray == nil || gray.Bounds().Empty() {
		return nil, apperr.Input("scan has no pixels", nil)
	}

	b := gray.Bounds()
	runID := uuid.NewString()
	log := logger.WithFields(logrus.Fields{
		"run_id": runID,
		"width":  b.Dx(),
		"height": b.Dy(),
	})
	log.Info("Wall detection started")
	start := time.Now()

	res = &Result{
		Metadata: Metadata{
			Width:      b.Dx(),
			Height:     b.Dy(),
			RunID:      runID,
			Processing: Processing{Method: Method, Version: Version},
		},
		DetectedSymbols: make([]detection.Symbol, 0),
	}

	cleaned, degraded, err := clean(ctx, gray, opts, log)
	if err != nil {
		return nil, err
	}
	res.Metadata.Degraded = degraded

	var ridge, parallel []walls.WallSegment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer metrics.Since("ridge", time.Now())
		ridge = walls.DetectRidgeWalls(cleaned, opts.Walls)
		return nil
	})
	g.Go(func() error {
		defer metrics.Since("parallel", time.Now())
		parallel = walls.DetectParallelWalls(cleaned, opts.Walls)
		return nil
	})
	if opts.DetectSymbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer metrics.Since("symbols", time.Now())
			symbols, err := detection.DetectLights(gray, opts.Lights)
			if err != nil {
				return fmt.Errorf("failed to detect light fixtures: %w", err)
			}
			res.DetectedSymbols = symbols
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart := time.Now()
	fused := walls.Fuse(ridge, parallel, opts.Walls)
	final := walls.Validate(fused, opts.Walls)
	metrics.Since("fuse", stageStart)

	res.Walls = final
	res.Metadata.DetectionStats = walls.Tally(ridge, parallel, final)
	for _, w := range final {
		metrics.RecordSegments(string(w.Source), 1)
	}

	if opts.KeepArtifacts {
		_, ridges := walls.RidgeMask(cleaned, opts.Walls)
		res.Artifacts = &Artifacts{
			Cleaned: cleaned,
			Ridges:  ridges,
			Edges:   walls.EdgeMap(cleaned, opts.Walls),
		}
	}

	log.WithFields(logrus.Fields{
		"walls":    len(final),
		"symbols":  len(res.DetectedSymbols),
		"degraded": res.Metadata.Degraded,
		"elapsed":  time.Since(start).String(),
	}).Info("Wall detection finished")
	return res, nil
}

// Clean applies the text mask and preprocessing to a scan and returns the
// binary image both wall detectors work on, together with any degraded
// conditions met on the way.
func Clean(ctx context.Context, gray *image.Gray, opts Options) (*imaging.Mask, []string, error) {
	if err := opts.Walls.Validate(); err != nil {
		return nil, nil, err
	}
	if gray == nil || gray.Bounds().Empty() {
		return nil, nil, apperr.Input("scan has no pixels", nil)
	}
	return clean(ctx, gray, opts, logger.WithField("stage", "clean"))
}

func clean(ctx context.Context, gray *image.Gray, opts Options, log *logrus.Entry) (*imaging.Mask, []string, error) {
	var degraded []string
	textMask, err := buildTextMask(ctx, gray, opts.TextMasker)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		log.WithError(err).Warn("Text mask unavailable, continuing without it")
		metrics.RecordDegraded(DegradedTextMask)
		degraded = append(degraded, DegradedTextMask)
	}

	defer metrics.Since("preprocess", time.Now())
	cleaned, err := walls.Preprocess(gray, textMask, opts.Walls)
	if err != nil {
		return nil, nil, err
	}
	return cleaned, degraded, nil
}

// RunFile loads the scan at path through cache and runs the pipeline on
// it. A nil cache loads the file directly.
func RunFile(ctx context.Context, cache *imaging.ImageCache, path string, opts Options) (*Result, error) {
	var (
		gray *image.Gray
		err  error
	)
	if cache != nil {
		gray, err = cache.Load(path)
	} else {
		gray, err = imaging.LoadGray(path)
	}
	if err != nil {
		metrics.RecordRun(err)
		return nil, apperr.Input(fmt.Sprintf("failed to load scan %s", path), err)
	}
	return Run(ctx, gray, opts)
}

func buildTextMask(ctx context.Context, gray *image.Gray, masker TextMasker) (*imaging.Mask, error) {
	if masker == nil {
		return nil, nil
	}
	defer metrics.Since("text_mask", time.Now())

	mask, err := masker.TextMask(ctx, gray)
	if err != nil {
		return nil, apperr.Collaborator("text detection failed", err)
	}
	b := gray.Bounds()
	if mask == nil || mask.Width != b.Dx() || mask.Height != b.Dy() {
		return nil, apperr.New(apperr.KindCollaborator, "text mask does not match the %dx%d scan", b.Dx(), b.Dy())
	}
	return mask, nil
}
