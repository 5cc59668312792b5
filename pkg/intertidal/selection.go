package intertidal

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/store"
)

// Collections returns the selectable collections.
func (s *Session) Collections() []string {
	out := make([]string, len(s.opts.Collections))
	copy(out, s.opts.Collections)
	return out
}

// ChooseCollection makes c the active collection.
//
// Selections on every non-reserved collection are cleared and the field
// list and candidate values are invalidated. The selected field is kept
// and revalidated when next used.
func (s *Session) ChooseCollection(c string) error {
	const op = "choose collection"

	if !contains(s.opts.Collections, c) || !s.hasCollection(c) {
		return opError(op, ErrInvalidParameter, "unknown collection "+c)
	}
	if err := s.clearUnreserved(); err != nil {
		return opError(op, ErrDataSourceUnavailable, err)
	}

	s.collection = c
	s.fields = nil
	s.values = nil
	s.stage = StageCollectionChosen
	s.regionFilter = ""

	s.logger.Info("collection chosen", zap.String("collection", c))
	return nil
}

// Fields returns the fields of the active collection, deriving them from
// the store after a collection change.
func (s *Session) Fields() ([]string, error) {
	if s.fields == nil {
		fields, err := s.features.Fields(s.collection)
		if err != nil {
			return nil, opError("list fields", ErrDataSourceUnavailable, err)
		}
		if fields == nil {
			fields = []string{}
		}
		s.fields = fields
	}
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out, nil
}

// ChooseField makes f the active field and reloads the candidate values.
// A field not on the active collection is rejected and the selected field
// kept.
func (s *Session) ChooseField(f string) error {
	const op = "choose field"

	fields, err := s.Fields()
	if err != nil {
		return err
	}
	if !contains(fields, f) {
		s.logger.Warn("field rejected",
			zap.String("collection", s.collection),
			zap.String("field", f))
		return opError(op, ErrInvalidField, f+" is not a field of "+s.collection)
	}

	values, err := s.features.DistinctValues(s.collection, f)
	if err != nil {
		return opError(op, ErrDataSourceUnavailable, err)
	}

	s.field = f
	s.values = values
	s.stage = StageFieldChosen

	s.logger.Info("field chosen",
		zap.String("collection", s.collection),
		zap.String("field", f),
		zap.Int("values", len(values)))
	return nil
}

// ChooseValue selects the features of the active collection whose field
// equals v, replacing any previous selection. v must be one of the
// candidate values, compared on their text form.
func (s *Session) ChooseValue(v string) (int, error) {
	const op = "choose value"

	if s.stage < StageFieldChosen || !s.isCandidate(v) {
		return 0, opError(op, ErrInvalidValue, v+" is not a value of "+s.collection+"."+s.field)
	}

	n, err := s.features.SelectWhere(s.collection, s.field, v)
	if err != nil {
		return 0, opError(op, ErrDataSourceUnavailable, err)
	}

	s.stage = StageValueChosen
	s.regionFilter = ""

	s.logger.Info("value chosen",
		zap.String("collection", s.collection),
		zap.String("field", s.field),
		zap.String("value", v),
		zap.Int("count", n))
	return n, nil
}

func (s *Session) isCandidate(v string) bool {
	for _, c := range s.values {
		if store.FormatValue(c) == v {
			return true
		}
	}
	return false
}

// ApplyRegionFilter selects the features of the active collection that
// intersect region, replacing any previous selection. The region must have
// been produced in this session.
func (s *Session) ApplyRegionFilter(ctx context.Context, region ExtentRegion) (int, error) {
	const op = "apply region filter"

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch region {
	case SubmergedExtent, ExposedExtent, IntertidalZoneExtent:
	default:
		return 0, opError(op, ErrInvalidParameter, "unknown extent region "+string(region))
	}
	if !s.Ready(region) {
		return 0, opError(op, ErrRegionNotReady, string(region))
	}

	n, err := s.features.SelectIntersecting(s.collection, s.regionName(region))
	if err != nil {
		return 0, opError(op, ErrDataSourceUnavailable, err)
	}
	s.regionFilter = region

	s.logger.Info("region filter applied",
		zap.String("collection", s.collection),
		zap.String("region", string(region)),
		zap.Int("count", n))
	return n, nil
}

// ClearSelection clears the selection on every collection outside the
// reserved namespace. Clearing with nothing selected is a no-op.
func (s *Session) ClearSelection() error {
	if err := s.clearUnreserved(); err != nil {
		return opError("clear selection", ErrDataSourceUnavailable, err)
	}
	s.regionFilter = ""
	s.logger.Info("selection cleared")
	return nil
}

func (s *Session) clearUnreserved() error {
	for _, c := range s.features.Collections() {
		if s.opts.ReservedPrefix != "" && strings.HasPrefix(c, s.opts.ReservedPrefix) {
			continue
		}
		if err := s.features.ClearSelection(c); err != nil {
			return err
		}
	}
	return nil
}

// SelectedIDs returns the selected feature ids of collection.
func (s *Session) SelectedIDs(collection string) ([]int64, error) {
	ids, err := s.features.Selected(collection)
	if err != nil {
		return nil, opError("selected ids", ErrInvalidParameter, err)
	}
	return ids, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
