package raster

import (
	"sort"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

// Polygon is one vectorized block of same-class cells.
type Polygon struct {
	Class Class
	Ring  geom.Ring
	Cells int
}

// span is a horizontal run of same-class cells, possibly grown downward.
type span struct {
	class    Class
	colStart int
	colEnd   int // inclusive
	rowStart int
	rowEnd   int // inclusive
}

func (s span) cells() int {
	return (s.colEnd - s.colStart + 1) * (s.rowEnd - s.rowStart + 1)
}

// Vectorize converts a classified grid into rectangular polygons.
//
// Each row is scanned for runs of equal class; a run identical in columns
// and class to one directly above it extends that rectangle downward.
// Unclassified cells produce no polygons. No simplification is applied, so
// every polygon edge follows cell edges exactly. Output is ordered by class,
// then top row, then first column.
func Vectorize(g *ClassGrid) []Polygon {
	s := g.Surface
	open := map[[3]int]*span{}
	var closed []span

	for row := 0; row < s.Rows; row++ {
		next := map[[3]int]*span{}

		col := 0
		for col < s.Cols {
			class := g.At(row, col)
			end := col
			for end+1 < s.Cols && g.At(row, end+1) == class {
				end++
			}
			if class != Unclassified {
				key := [3]int{int(class), col, end}
				if sp, ok := open[key]; ok {
					sp.rowEnd = row
					next[key] = sp
					delete(open, key)
				} else {
					next[key] = &span{class: class, colStart: col, colEnd: end, rowStart: row, rowEnd: row}
				}
			}
			col = end + 1
		}

		for _, sp := range open {
			closed = append(closed, *sp)
		}
		open = next
	}
	for _, sp := range open {
		closed = append(closed, *sp)
	}

	sort.Slice(closed, func(i, j int) bool {
		a, b := closed[i], closed[j]
		if a.class != b.class {
			return a.class < b.class
		}
		if a.rowStart != b.rowStart {
			return a.rowStart < b.rowStart
		}
		return a.colStart < b.colStart
	})

	polygons := make([]Polygon, 0, len(closed))
	for _, sp := range closed {
		nw := s.CellBounds(sp.rowStart, sp.colStart)
		se := s.CellBounds(sp.rowEnd, sp.colEnd)
		polygons = append(polygons, Polygon{
			Class: sp.class,
			Ring:  geom.RectangleRing(nw.Union(se)),
			Cells: sp.cells(),
		})
	}
	return polygons
}

// SplitByClass groups polygons by their class.
func SplitByClass(polygons []Polygon) map[Class][]Polygon {
	out := make(map[Class][]Polygon, 2)
	for _, p := range polygons {
		out[p.Class] = append(out[p.Class], p)
	}
	return out
}
