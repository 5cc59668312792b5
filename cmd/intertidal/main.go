// Command intertidal classifies an elevation surface into tide zones and
// selects track features by attribute or by zone.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/config"
	"github.com/beetlebugorg/intertidal/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "intertidal",
	Short: "Tide-driven zonation and track selection",
	Long: `intertidal classifies an elevation surface into submerged and exposed
zones for a tide height, and selects track features by attribute value or by
intersection with a zone.

Settings come from intertidal.yaml (or --config), overridden by INTERTIDAL_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		// Tests install their own logger.
		if logger != nil {
			return nil
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./intertidal.yaml or $INTERTIDAL_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(valuesCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(studyAreaCmd)
	rootCmd.AddCommand(extentCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(shellCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
