package geom

import (
	"fmt"
)

// ErrInvalidGeometry indicates geometry that cannot be used as a region or feature shape.
type ErrInvalidGeometry struct {
	Type   GeometryType
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("invalid geometry (%v): %s", e.Type, e.Reason)
}

// ErrInvalidCoordinate indicates a coordinate that is not a finite [x, y] pair.
type ErrInvalidCoordinate struct {
	Index int
	Coord []float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate %d: %v (need 2 or 3 finite values)", e.Index, e.Coord)
}
