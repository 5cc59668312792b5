package intertidal

import (
	"context"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

// StudyAreaName is the region a drawn study area is stored as.
const StudyAreaName = "survey_area"

// KindStudyArea tags drawn study areas.
const KindStudyArea = "study_area"

// DrawStudyArea stores corners as a closed polygon named StudyAreaName,
// replacing any previous study area. At least three distinct corners are
// required.
func (s *Session) DrawStudyArea(ctx context.Context, corners [][]float64) (*Region, error) {
	const op = "draw study area"

	ring, err := geom.NewRing(corners)
	if err != nil {
		return nil, opError(op, ErrDegenerateGeometry, err)
	}

	region := geom.NewRegion(StudyAreaName, KindStudyArea, []geom.Ring{ring})
	region.Generation = s.id.String()
	if err := s.regions.ReplaceRegions(ctx, region); err != nil {
		return nil, opError(op, ErrDataSourceUnavailable, err)
	}

	s.logger.Info("study area drawn",
		zap.String("region", StudyAreaName),
		zap.Int("vertices", len(ring)))
	return region, nil
}

// RectangleCorners returns the corners of b clockwise from the upper left:
// upper left, upper right, lower right, lower left.
func RectangleCorners(b Bounds) [][]float64 {
	ring := geom.RectangleRing(b)
	return ring[:len(ring)-1]
}
