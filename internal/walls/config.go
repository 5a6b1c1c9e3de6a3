package walls

import "github.com/ironsheep/floorplan-walls/internal/apperr"

// Config holds every tunable of the pipeline stages. Pixel quantities are
// in source-image pixels; FusionThreshold and MinLength are in percentage
// units.
type Config struct {
	// Preprocess
	ThresholdWindow  int     // adaptive threshold window (px)
	ThresholdOffset  float64 // subtracted from the local mean
	OpenSize         int     // square structuring element edge
	OpenIterations   int
	MinComponentArea int     // components below this area are noise
	MinComponentSize int     // components with both extents below this are symbols
	MaxElongation    float64 // max(w,h)/min(w,h) above this is a hairline

	// Path A (ridge)
	RidgeRadius       float64 // distance-transform threshold
	MinContourPoints  int
	ThicknessStride   int
	MinThickness      float64
	MaxThickness      float64
	MaxThicknessCV    float64 // std/mean ceiling
	SimplifyTolerance float64 // Douglas-Peucker tolerance (px)

	// Path B (parallel)
	EdgeBlurRadius float64
	CannyLow       float64
	CannyHigh      float64
	MinLineLength  float64
	MaxAngleDiff   float64 // degrees
	MinGap         float64
	MaxGap         float64
	PreferredGap   float64
	MinOverlap     float64

	// Fuser
	FusionThreshold float64

	// Validator
	MinLength float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		ThresholdWindow:  25,
		ThresholdOffset:  15,
		OpenSize:         5,
		OpenIterations:   1,
		MinComponentArea: 20,
		MinComponentSize: 8,
		MaxElongation:    50,

		RidgeRadius:       3.0,
		MinContourPoints:  10,
		ThicknessStride:   5,
		MinThickness:      6,
		MaxThickness:      25,
		MaxThicknessCV:    0.4,
		SimplifyTolerance: 2.0,

		EdgeBlurRadius: 1.0,
		CannyLow:       40,
		CannyHigh:      120,
		MinLineLength:  20,
		MaxAngleDiff:   5,
		MinGap:         4,
		MaxGap:         15,
		PreferredGap:   8,
		MinOverlap:     0.5,

		FusionThreshold: 5.0,

		MinLength: 0.5,
	}
}

// Validate rejects values no stage can work with.
func (c Config) Validate() error {
	switch {
	case c.ThresholdWindow < 3:
		return apperr.New(apperr.KindConfig, "threshold window must be >= 3 (got %d)", c.ThresholdWindow)
	case c.OpenSize < 1 || c.OpenIterations < 0:
		return apperr.New(apperr.KindConfig, "invalid opening %dx%d x%d", c.OpenSize, c.OpenSize, c.OpenIterations)
	case c.MinComponentArea < 0 || c.MinComponentSize < 0:
		return apperr.New(apperr.KindConfig, "component floors must be >= 0")
	case c.MaxElongation <= 1:
		return apperr.New(apperr.KindConfig, "max elongation must be > 1 (got %g)", c.MaxElongation)
	case c.RidgeRadius < 0:
		return apperr.New(apperr.KindConfig, "ridge radius must be >= 0 (got %g)", c.RidgeRadius)
	case c.ThicknessStride < 1:
		return apperr.New(apperr.KindConfig, "thickness stride must be >= 1 (got %d)", c.ThicknessStride)
	case c.MinThickness <= 0 || c.MaxThickness < c.MinThickness:
		return apperr.New(apperr.KindConfig, "invalid thickness band [%g, %g]", c.MinThickness, c.MaxThickness)
	case c.MaxThicknessCV <= 0:
		return apperr.New(apperr.KindConfig, "thickness CV ceiling must be > 0 (got %g)", c.MaxThicknessCV)
	case c.SimplifyTolerance < 0:
		return apperr.New(apperr.KindConfig, "simplify tolerance must be >= 0 (got %g)", c.SimplifyTolerance)
	case c.CannyLow < 0 || c.CannyHigh < c.CannyLow:
		return apperr.New(apperr.KindConfig, "invalid Canny thresholds %g/%g", c.CannyLow, c.CannyHigh)
	case c.MaxAngleDiff < 0 || c.MaxAngleDiff > 180:
		return apperr.New(apperr.KindConfig, "angle tolerance must be in [0, 180] (got %g)", c.MaxAngleDiff)
	case c.MinGap <= 0 || c.MaxGap < c.MinGap:
		return apperr.New(apperr.KindConfig, "invalid gap band [%g, %g]", c.MinGap, c.MaxGap)
	case c.MinOverlap < 0 || c.MinOverlap > 1:
		return apperr.New(apperr.KindConfig, "min overlap must be in [0, 1] (got %g)", c.MinOverlap)
	case c.FusionThreshold <= 0:
		return apperr.New(apperr.KindConfig, "fusion threshold must be > 0 (got %g)", c.FusionThreshold)
	case c.MinLength < 0:
		return apperr.New(apperr.KindConfig, "min length must be >= 0 (got %g)", c.MinLength)
	}
	return nil
}
