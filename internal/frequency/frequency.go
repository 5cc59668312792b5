// Package frequency counts the occurrences of each value of a field and
// writes the result as a CSV table.
package frequency

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/beetlebugorg/intertidal/internal/store"
)

// ErrEmpty is returned when there are no rows to count.
var ErrEmpty = errors.New("no rows to count")

// Row is the count of one distinct value.
type Row struct {
	Value   interface{}
	Count   int
	Percent float64
}

// Text renders the row's value.
func (r Row) Text() string {
	return store.FormatValue(r.Value)
}

// Table is a frequency table over one field.
type Table struct {
	Field string
	Total int
	Rows  []Row
}

// Compute groups values, counts them and computes each group's share of
// the total. Rows are ordered by descending count, then ascending value.
// A nil value is counted as its own group.
func Compute(field string, values []interface{}) (*Table, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}

	index := make(map[string]int)
	var rows []Row
	for _, v := range values {
		key := "null"
		if v != nil {
			key = store.ValueKey(v)
		}
		if i, ok := index[key]; ok {
			rows[i].Count++
			continue
		}
		index[key] = len(rows)
		rows = append(rows, Row{Value: v, Count: 1})
	}

	total := len(values)
	for i := range rows {
		rows[i].Percent = float64(rows[i].Count) / float64(total) * 100
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return compareNullable(rows[i].Value, rows[j].Value) < 0
	})

	return &Table{Field: field, Total: total, Rows: rows}, nil
}

// compareNullable orders nil before any value.
func compareNullable(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return store.CompareValues(a, b)
}

// Header is the CSV header row.
var Header = []string{"value", "count", "percent"}

// WriteCSV writes the table to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		record := []string{
			r.Text(),
			strconv.Itoa(r.Count),
			strconv.FormatFloat(r.Percent, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile replaces the file at path with the table. The table is written
// to a temporary file in the same directory and renamed into place, so
// readers never see a partial table.
func (t *Table) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if err := t.WriteCSV(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteReport prints the occurrences of each value, the total and each
// value's percentage to 2 decimals.
func (t *Table) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Occurrences of each value for the field (%s) are as follows:\n", t.Field); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if _, err := fmt.Fprintf(w, "The value %s occurs %d times\n", r.Text(), r.Count); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Total features are: %d\n", t.Total); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if _, err := fmt.Fprintf(w, "The value %s is a %.2f percentage of the total occurrences\n", r.Text(), r.Percent); err != nil {
			return err
		}
	}
	return nil
}
