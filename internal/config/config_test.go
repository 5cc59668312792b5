package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INTERTIDAL_CONFIG", "")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, -2.601, c.Surface.Min)
	assert.Equal(t, 2.772, c.Surface.Max)
	assert.Equal(t, []string{"known_tracks", "user_tracks"}, c.Selection.Collections)
	assert.Equal(t, "type", c.Selection.DefaultField)
	assert.Equal(t, "NIDEM", c.Selection.ReservedPrefix)
	assert.Equal(t, SourceUnion, c.Zonation.IntertidalSource)
	assert.Equal(t, "output_table.csv", c.Output.Table)
	assert.Equal(t, "workspace.yaml", c.Workspace.Manifest)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intertidal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workspace:
  root: /data/biziat
surface:
  path: dem/nidem.asc
  min: -3
zonation:
  intertidal_source: stored
selection:
  collections: [tracks_a, tracks_b, tracks_c]
log:
  level: debug
`), 0o644))

	t.Setenv("INTERTIDAL_SURFACE_MAX", "3.5")
	t.Setenv("INTERTIDAL_OUTPUT_TABLE", "/tmp/freq.csv")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/biziat/dem/nidem.asc", c.Surface.Path)
	assert.Equal(t, -3.0, c.Surface.Min)
	assert.Equal(t, 3.5, c.Surface.Max)
	assert.Equal(t, "/tmp/freq.csv", c.Output.Table)
	assert.Equal(t, "/data/biziat/workspace.yaml", c.Workspace.Manifest)
	assert.Equal(t, SourceStored, c.Zonation.IntertidalSource)
	assert.Equal(t, []string{"tracks_a", "tracks_b", "tracks_c"}, c.Selection.Collections)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad source", "zonation:\n  intertidal_source: guess\n", "intertidal_source"},
		{"inverted range", "surface:\n  min: 3\n  max: 1\n", "surface.min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}
