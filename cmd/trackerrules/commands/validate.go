package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/trackerrules/internal/bundlefile"
	"github.com/TimurManjosov/trackerrules/internal/cli"
	"github.com/TimurManjosov/trackerrules/internal/config"
	"github.com/TimurManjosov/trackerrules/internal/importer"
	"github.com/TimurManjosov/trackerrules/internal/logging"
	"github.com/TimurManjosov/trackerrules/internal/metadata"
	"github.com/TimurManjosov/trackerrules/internal/programrule"
	"github.com/TimurManjosov/trackerrules/internal/settings"
	"github.com/TimurManjosov/trackerrules/internal/telemetry"
)

var allowOverwrite bool

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a bundle file against its rule effects",
	Long: `Load a bundle file, apply its rule effects and print the resulting issues.

The command exits with a non-zero status when any enrollment or event is
rejected.

Examples:
  trackerrules validate bundle.yaml
  trackerrules validate bundle.yaml --allow-overwrite
  trackerrules validate bundle.yaml --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := cli.ParseFormat(format)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("allow-overwrite") {
			cfg.RuleEngineAssignOverwrite = allowOverwrite
		}

		logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}

		file, err := bundlefile.Read(args[0])
		if err != nil {
			return err
		}

		report, reg, err := runValidation(cmd.Context(), cfg, logger, file)
		if err != nil {
			return err
		}
		if reg != nil {
			logMetrics(logger, reg)
		}

		if err := cli.PrintReport(cmd.OutOrStdout(), report, outFormat); err != nil {
			return err
		}
		if report.Status() == importer.StatusError {
			return ErrRejected
		}
		return nil
	},
}

func runValidation(ctx context.Context, cfg *config.Config, logger zerolog.Logger, file *bundlefile.File) (*importer.Report, *prometheus.Registry, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := metadata.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata store: %w", err)
	}
	defer st.Close()

	if err := file.Seed(ctx, st); err != nil {
		return nil, nil, err
	}
	preheat, err := metadata.LoadPreheat(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	stages, elements, attrs, optionSets := preheat.Counts()
	logger.Debug().
		Str("etag", preheat.ETag).
		Int("program_stages", stages).
		Int("data_elements", elements).
		Int("attributes", attrs).
		Int("option_sets", optionSets).
		Msg("metadata preheated")

	opts := []programrule.Option{
		programrule.WithWorkers(cfg.EngineWorkers),
		programrule.WithLogger(logger),
	}
	var reg *prometheus.Registry
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		m, err := telemetry.NewMetrics(reg)
		if err != nil {
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, programrule.WithMetrics(m))
	}

	engine := programrule.New(settings.Static{AssignOverwrite: cfg.RuleEngineAssignOverwrite}, opts...)
	enrollmentEffects, eventEffects := file.Effects()
	report, err := importer.New(engine, logger).Validate(ctx, file.Bundle(preheat), enrollmentEffects, eventEffects)
	if err != nil {
		return nil, nil, err
	}
	return report, reg, nil
}

// logMetrics writes one debug line per collected series.
func logMetrics(logger zerolog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev := logger.Debug().Str("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				ev = ev.Float64("value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				ev = ev.Uint64("count", m.GetHistogram().GetSampleCount()).Float64("sum", m.GetHistogram().GetSampleSum())
			}
			ev.Msg("metric")
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case logLevel != "":
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&allowOverwrite, "allow-overwrite", false, "Let assignments replace differing values (overrides RULE_ENGINE_ASSIGN_OVERWRITE)")
}
