package intertidal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for out-of-range or unparseable input,
	// such as a tide height outside the surface range or an unknown collection.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidField is returned when a field is not defined on the
	// selected collection.
	ErrInvalidField = errors.New("invalid field")

	// ErrInvalidValue is returned when a value is not among the candidate
	// values of the selected field.
	ErrInvalidValue = errors.New("invalid value")

	// ErrDataSourceUnavailable is returned when the elevation surface, the
	// feature store or the region store cannot be read or written.
	ErrDataSourceUnavailable = errors.New("data source unavailable")

	// ErrRegionNotReady is returned when a zone filter names a zone that has
	// not been produced in this session.
	ErrRegionNotReady = errors.New("region not ready")

	// ErrDegenerateGeometry is returned for a study area with fewer than
	// three distinct corners.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrEmptyCollection is returned when statistics have no rows to count.
	ErrEmptyCollection = errors.New("empty collection")
)

// opError wraps sentinel with the operation name and a detail.
func opError(op string, sentinel error, detail interface{}) error {
	if err, ok := detail.(error); ok {
		return fmt.Errorf("%s: %w: %w", op, sentinel, err)
	}
	return fmt.Errorf("%s: %w: %v", op, sentinel, detail)
}
