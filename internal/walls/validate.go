package walls

import (
	"github.com/ironsheep/floorplan-walls/internal/logger"
	"github.com/sirupsen/logrus"
)

// Validate drops segments with fewer than two points or a path length
// (recomputed from Coords) below MinLength. Kept segments are returned
// unchanged and in order.
func Validate(segments []WallSegment, cfg Config) []WallSegment {
	out := make([]WallSegment, 0, len(segments))
	for _, w := range segments {
		if len(w.Coords) < 2 {
			continue
		}
		if PathLength(w.Coords) < cfg.MinLength {
			continue
		}
		out = append(out, w)
	}

	logger.WithFields(logrus.Fields{
		"stage": "validate",
		"in":    len(segments),
		"kept":  len(out),
	}).Info("validation complete")

	return out
}
