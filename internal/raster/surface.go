// Package raster reads elevation grids and turns them into classified polygons.
package raster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

// ErrEmptySurface is returned for a grid with no rows or columns.
var ErrEmptySurface = errors.New("raster: empty surface")

// DefaultNoData is the NODATA value assumed when the header omits one.
const DefaultNoData = -9999

// Surface is an immutable elevation grid.
//
// Values are stored row-major from the northern row to the southern row,
// the order ESRI ASCII grids are written in.
type Surface struct {
	Cols, Rows int
	XLL, YLL   float64 // lower-left corner of the lower-left cell
	CellSize   float64
	NoData     float64
	values     []float64
}

// NewSurface builds a surface from row-major values (north row first).
func NewSurface(cols, rows int, xll, yll, cellSize float64, values []float64) (*Surface, error) {
	if cols <= 0 || rows <= 0 {
		return nil, ErrEmptySurface
	}
	if len(values) != cols*rows {
		return nil, fmt.Errorf("raster: %d values for %dx%d grid", len(values), cols, rows)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("raster: cell size must be positive, got %v", cellSize)
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &Surface{
		Cols:     cols,
		Rows:     rows,
		XLL:      xll,
		YLL:      yll,
		CellSize: cellSize,
		NoData:   DefaultNoData,
		values:   v,
	}, nil
}

// At returns the value of the cell at (row, col). Row 0 is the northern row.
func (s *Surface) At(row, col int) float64 {
	return s.values[row*s.Cols+col]
}

// IsNoData reports whether v is the grid's NODATA marker.
func (s *Surface) IsNoData(v float64) bool {
	return v == s.NoData || math.IsNaN(v)
}

// CellBounds returns the footprint of the cell at (row, col).
func (s *Surface) CellBounds(row, col int) geom.Bounds {
	minLon := s.XLL + float64(col)*s.CellSize
	maxLat := s.YLL + float64(s.Rows-row)*s.CellSize
	return geom.Bounds{
		MinLon: minLon,
		MaxLon: minLon + s.CellSize,
		MinLat: maxLat - s.CellSize,
		MaxLat: maxLat,
	}
}

// Bounds returns the footprint of the whole grid.
func (s *Surface) Bounds() geom.Bounds {
	return geom.Bounds{
		MinLon: s.XLL,
		MaxLon: s.XLL + float64(s.Cols)*s.CellSize,
		MinLat: s.YLL,
		MaxLat: s.YLL + float64(s.Rows)*s.CellSize,
	}
}

// Range returns the minimum and maximum data values, ignoring NODATA.
// ok is false if every cell is NODATA.
func (s *Surface) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range s.values {
		if s.IsNoData(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// LoadASCIIGrid reads an ESRI ASCII grid file.
func LoadASCIIGrid(path string) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open surface: %w", err)
	}
	defer f.Close()

	s, err := ReadASCIIGrid(f)
	if err != nil {
		return nil, fmt.Errorf("read surface %s: %w", path, err)
	}
	return s, nil
}

// ReadASCIIGrid parses an ESRI ASCII grid.
//
// The header holds ncols, nrows, xllcorner|xllcenter, yllcorner|yllcenter,
// cellsize and an optional NODATA_value, in any order and case.
func ReadASCIIGrid(r io.Reader) (*Surface, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if !isHeaderKey(key) {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("header %s has no value", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", key, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	cols, rows := int(header["ncols"]), int(header["nrows"])
	if cols <= 0 || rows <= 0 {
		return nil, ErrEmptySurface
	}
	cellSize, ok := header["cellsize"]
	if !ok {
		return nil, fmt.Errorf("header missing cellsize")
	}

	xll, xok := header["xllcorner"]
	if c, ok := header["xllcenter"]; ok {
		xll, xok = c-cellSize/2, true
	}
	yll, yok := header["yllcorner"]
	if c, ok := header["yllcenter"]; ok {
		yll, yok = c-cellSize/2, true
	}
	if !xok || !yok {
		return nil, fmt.Errorf("header missing lower-left corner")
	}

	values := make([]float64, 0, cols*rows)
	parse := func(tok string) error {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("cell %d: %w", len(values), err)
		}
		values = append(values, v)
		return nil
	}
	if first != "" {
		if err := parse(first); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := parse(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	s, err := NewSurface(cols, rows, xll, yll, cellSize, values)
	if err != nil {
		return nil, err
	}
	if nd, ok := header["nodata_value"]; ok {
		s.NoData = nd
	}
	return s, nil
}

func isHeaderKey(k string) bool {
	switch k {
	case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}
