package intertidal

import (
	"errors"

	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/frequency"
	"github.com/beetlebugorg/intertidal/internal/store"
)

// FrequencyTable is the result of ComputeFrequencyStatistics.
type FrequencyTable = frequency.Table

// ComputeFrequencyStatistics counts each distinct value of field over
// collection and computes its percentage of the total. When the collection
// has an active selection only selected features are counted.
//
// Rows are ordered by descending count, then ascending value. The table is
// also written to Options.OutputTable, replacing any previous table.
func (s *Session) ComputeFrequencyStatistics(collection, field string) (*FrequencyTable, error) {
	const op = "frequency statistics"

	if !s.hasCollection(collection) {
		return nil, opError(op, ErrInvalidParameter, "unknown collection "+collection)
	}
	values, err := s.features.FieldValues(collection, field)
	switch {
	case errors.Is(err, store.ErrUnknownField):
		return nil, opError(op, ErrInvalidField, err)
	case err != nil:
		return nil, opError(op, ErrDataSourceUnavailable, err)
	}

	table, err := frequency.Compute(field, values)
	if errors.Is(err, frequency.ErrEmpty) {
		return nil, opError(op, ErrEmptyCollection, collection)
	}
	if err != nil {
		return nil, opError(op, ErrDataSourceUnavailable, err)
	}

	if s.opts.OutputTable != "" {
		if err := table.WriteFile(s.opts.OutputTable); err != nil {
			s.logger.Error("frequency table not written",
				zap.String("path", s.opts.OutputTable),
				zap.Error(err))
			return nil, opError(op, ErrDataSourceUnavailable, err)
		}
	}

	s.logger.Info("frequency statistics computed",
		zap.String("collection", collection),
		zap.String("field", field),
		zap.Int("count", table.Total),
		zap.Int("values", len(table.Rows)))
	return table, nil
}
