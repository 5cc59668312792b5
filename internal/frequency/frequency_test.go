package frequency

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCountsAndPercentages(t *testing.T) {
	table, err := Compute("type", []interface{}{"A", "A", "B"})
	require.NoError(t, err)

	assert.Equal(t, 3, table.Total)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "A", table.Rows[0].Value)
	assert.Equal(t, 2, table.Rows[0].Count)
	assert.InDelta(t, 66.67, table.Rows[0].Percent, 0.005)
	assert.Equal(t, "B", table.Rows[1].Value)
	assert.Equal(t, 1, table.Rows[1].Count)
	assert.InDelta(t, 33.33, table.Rows[1].Percent, 0.005)
}

func TestComputeOrdering(t *testing.T) {
	table, err := Compute("width", []interface{}{3, "x", 1, 3, 1.0, nil, "x", 2})
	require.NoError(t, err)

	var got []string
	for _, r := range table.Rows {
		got = append(got, r.Text())
	}
	// count desc, then value asc; 1 and 1.0 group together
	assert.Equal(t, []string{"1", "3", "x", "", "2"}, got)
}

func TestComputeEmpty(t *testing.T) {
	table, err := Compute("type", nil)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Nil(t, table)
}

func TestWriteFileReplacesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "output_table.csv")

	first, err := Compute("type", []interface{}{"A", "B", "C"})
	require.NoError(t, err)
	require.NoError(t, first.WriteFile(path))

	second, err := Compute("type", []interface{}{"A", "A", "B"})
	require.NoError(t, err)
	require.NoError(t, second.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "value,count,percent\nA,2,66.67\nB,1,33.33\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestWriteReport(t *testing.T) {
	table, err := Compute("type", []interface{}{"A", "A", "B"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteReport(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Occurrences of each value for the field (type) are as follows:",
		"The value A occurs 2 times",
		"The value B occurs 1 times",
		"Total features are: 3",
		"The value A is a 66.67 percentage of the total occurrences",
		"The value B is a 33.33 percentage of the total occurrences",
	}, lines)
}
