package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrRejected is returned by validate when at least one object was rejected.
var ErrRejected = errors.New("import rejected by program rules")

var (
	// Global flags
	format   string
	logLevel string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trackerrules",
	Short: "Apply program rule effects to tracker import bundles",
	Long: `trackerrules applies evaluated program rule effects to a tracker import
bundle. Effects assign values or raise issues; objects with errors are
rejected before commit.

Examples:
  trackerrules validate bundle.yaml
  trackerrules validate bundle.yaml --format json --allow-overwrite
  trackerrules config`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides LOG_LEVEL")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Shorthand for --log-level debug")
}
