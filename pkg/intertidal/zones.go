package intertidal

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/raster"
	"github.com/beetlebugorg/intertidal/internal/zonation"
)

// ZoneResult describes the zones produced by RecomputeZones.
type ZoneResult struct {
	TideHeight float64
	Generation string
	Submerged  *Region
	Exposed    *Region
	Intertidal *Region // nil when the intertidal zone comes from the store

	// Cell counts by class; Unclassified counts NODATA and out-of-range cells.
	SubmergedCells    int
	ExposedCells      int
	UnclassifiedCells int
}

// RecomputeZones classifies the elevation surface at the current tide
// height and replaces the submerged and exposed zones.
//
// Both zones are replaced together; on failure the previous zones stay
// in place and the session is unchanged.
func (s *Session) RecomputeZones(ctx context.Context) (*ZoneResult, error) {
	const op = "recompute zones"

	res, err := s.engine.Recompute(ctx, s.tideHeight)
	switch {
	case err == nil:
	case errors.Is(err, zonation.ErrTideOutOfRange):
		return nil, opError(op, ErrInvalidParameter, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		s.logger.Error("zonation failed", zap.Float64("tide", s.tideHeight), zap.Error(err))
		return nil, opError(op, ErrDataSourceUnavailable, err)
	}

	s.ready[SubmergedExtent] = true
	s.ready[ExposedExtent] = true
	if res.Intertidal != nil {
		s.ready[IntertidalZoneExtent] = true
	}

	return &ZoneResult{
		TideHeight:        res.TideHeight,
		Generation:        res.Generation,
		Submerged:         res.Submerged,
		Exposed:           res.Exposed,
		Intertidal:        res.Intertidal,
		SubmergedCells:    res.Counts[raster.Submerged],
		ExposedCells:      res.Counts[raster.Exposed],
		UnclassifiedCells: res.Counts[raster.Unclassified],
	}, nil
}
