package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/TimurManjosov/trackerrules/internal/config"
)

// Setting is one effective configuration value.
type Setting struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Settings lists the effective configuration with the database DSN masked.
func Settings(cfg *config.Config) []Setting {
	return []Setting{
		{"APP_ENV", cfg.AppEnv},
		{"LOG_LEVEL", cfg.LogLevel},
		{"LOG_FORMAT", cfg.LogFormat},
		{"STORE_TYPE", cfg.StoreType},
		{"DB_DSN", maskDSN(cfg.DatabaseDSN)},
		{"RULE_ENGINE_ASSIGN_OVERWRITE", strconv.FormatBool(cfg.RuleEngineAssignOverwrite)},
		{"ENGINE_WORKERS", strconv.Itoa(cfg.EngineWorkers)},
		{"METRICS_ENABLED", strconv.FormatBool(cfg.MetricsEnabled)},
	}
}

// PrintConfig writes the effective configuration to w.
func PrintConfig(w io.Writer, cfg *config.Config, format OutputFormat) error {
	settings := Settings(cfg)
	switch format {
	case FormatJSON:
		return printJSON(w, settings)
	case FormatYAML:
		return printYAML(w, settings)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Key", "Value")
		for _, s := range settings {
			if err := table.Append(s.Key, s.Value); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// maskDSN hides everything but the scheme of a connection string.
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "****"
	}
	return "****"
}
