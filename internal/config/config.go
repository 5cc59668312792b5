// Package config loads intertidal settings from defaults, an optional YAML
// file and INTERTIDAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Surface   SurfaceConfig   `mapstructure:"surface"`
	Output    OutputConfig    `mapstructure:"output"`
	Help      HelpConfig      `mapstructure:"help"`
	Selection SelectionConfig `mapstructure:"selection"`
	Zonation  ZonationConfig  `mapstructure:"zonation"`
	Log       LogConfig       `mapstructure:"log"`
}

// WorkspaceConfig locates the feature manifest and the region database.
type WorkspaceConfig struct {
	Root     string `mapstructure:"root"`
	Manifest string `mapstructure:"manifest"`
	Database string `mapstructure:"database"`
}

// SurfaceConfig describes the elevation surface.
type SurfaceConfig struct {
	Path       string  `mapstructure:"path"`
	Min        float64 `mapstructure:"min"`
	Max        float64 `mapstructure:"max"`
	CacheBytes int64   `mapstructure:"cache_bytes"`
}

// OutputConfig holds the frequency table destination.
type OutputConfig struct {
	Table string `mapstructure:"table"`
}

// HelpConfig locates the help document.
type HelpConfig struct {
	Path string `mapstructure:"path"`
}

// SelectionConfig holds the selectable collections and the reserved namespace.
type SelectionConfig struct {
	ReservedPrefix string   `mapstructure:"reserved_prefix"`
	Collections    []string `mapstructure:"collections"`
	DefaultField   string   `mapstructure:"default_field"`
}

// ZonationConfig selects where the intertidal region comes from.
type ZonationConfig struct {
	IntertidalSource string `mapstructure:"intertidal_source"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Intertidal region sources.
const (
	SourceUnion  = "union"
	SourceStored = "stored"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "INTERTIDAL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("workspace.root", ".")
	v.SetDefault("workspace.manifest", "workspace.yaml")
	v.SetDefault("workspace.database", "intertidal.db")
	v.SetDefault("surface.path", "nidem.asc")
	v.SetDefault("surface.min", -2.601)
	v.SetDefault("surface.max", 2.772)
	v.SetDefault("surface.cache_bytes", 256*1024*1024)
	v.SetDefault("output.table", "output_table.csv")
	v.SetDefault("help.path", "help/index.html")
	v.SetDefault("selection.reserved_prefix", "NIDEM")
	v.SetDefault("selection.collections", []string{"known_tracks", "user_tracks"})
	v.SetDefault("selection.default_field", "type")
	v.SetDefault("zonation.intertidal_source", SourceUnion)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration. path names a config file; when empty,
// INTERTIDAL_CONFIG is used, then intertidal.yaml in the working directory
// if present. Env var overrides use prefix INTERTIDAL_.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("intertidal")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	c.resolvePaths()
	return c, nil
}

// Validate checks values that have a fixed domain.
func (c *Config) Validate() error {
	switch c.Zonation.IntertidalSource {
	case SourceUnion, SourceStored:
	default:
		return fmt.Errorf("zonation.intertidal_source must be %q or %q, got %q",
			SourceUnion, SourceStored, c.Zonation.IntertidalSource)
	}
	if c.Surface.Min >= c.Surface.Max {
		return fmt.Errorf("surface.min (%g) must be below surface.max (%g)", c.Surface.Min, c.Surface.Max)
	}
	if len(c.Selection.Collections) == 0 {
		return fmt.Errorf("selection.collections must name at least one collection")
	}
	return nil
}

// resolvePaths makes relative paths relative to the workspace root.
func (c *Config) resolvePaths() {
	for _, p := range []*string{
		&c.Workspace.Manifest,
		&c.Workspace.Database,
		&c.Surface.Path,
		&c.Output.Table,
		&c.Help.Path,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.Workspace.Root, *p)
		}
	}
}
