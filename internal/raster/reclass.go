package raster

import (
	"fmt"
)

// Class is the zone a cell is assigned to by Reclassify.
type Class int8

const (
	// Unclassified marks NODATA cells and cells outside the declared range.
	Unclassified Class = -1

	// Submerged cells lie at or below the threshold.
	Submerged Class = 0

	// Exposed cells lie above the threshold.
	Exposed Class = 1
)

// String returns the zone name.
func (c Class) String() string {
	switch c {
	case Submerged:
		return "submerged"
	case Exposed:
		return "exposed"
	default:
		return "unclassified"
	}
}

// Breaks is a two-class remap table: [Min, Threshold] -> Submerged,
// (Threshold, Max] -> Exposed.
type Breaks struct {
	Min       float64
	Threshold float64
	Max       float64
}

// Validate checks that the threshold lies within the declared range.
func (b Breaks) Validate() error {
	if b.Min > b.Max {
		return fmt.Errorf("breaks: min %v above max %v", b.Min, b.Max)
	}
	if b.Threshold < b.Min || b.Threshold > b.Max {
		return fmt.Errorf("breaks: threshold %v outside [%v, %v]", b.Threshold, b.Min, b.Max)
	}
	return nil
}

// Classify maps a single elevation to its class.
func (b Breaks) Classify(v float64) Class {
	switch {
	case v < b.Min || v > b.Max:
		return Unclassified
	case v <= b.Threshold:
		return Submerged
	default:
		return Exposed
	}
}

// ClassGrid is a reclassified surface.
type ClassGrid struct {
	Surface *Surface
	Breaks  Breaks
	classes []Class
}

// At returns the class of the cell at (row, col).
func (g *ClassGrid) At(row, col int) Class {
	return g.classes[row*g.Surface.Cols+col]
}

// Counts returns the number of cells in each class, including Unclassified.
func (g *ClassGrid) Counts() map[Class]int {
	counts := make(map[Class]int, 3)
	for _, c := range g.classes {
		counts[c]++
	}
	return counts
}

// Reclassify splits the surface into two classes at breaks.Threshold.
//
// The boundary value belongs to Submerged so the two ranges cover
// [Min, Max] with no gap or overlap.
func Reclassify(s *Surface, breaks Breaks) (*ClassGrid, error) {
	if s == nil {
		return nil, ErrEmptySurface
	}
	if err := breaks.Validate(); err != nil {
		return nil, err
	}

	classes := make([]Class, len(s.values))
	for i, v := range s.values {
		if s.IsNoData(v) {
			classes[i] = Unclassified
			continue
		}
		classes[i] = breaks.Classify(v)
	}

	return &ClassGrid{
		Surface: s,
		Breaks:  breaks,
		classes: classes,
	}, nil
}
