package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/app"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/config"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
)

// cli carries the state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "trafficctl",
		Short:         "Inspect and export the NYC traffic volume dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return c.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "YAML config file overriding environment settings")
	flags.String("data", "", "input CSV path (default DATA_PATH)")
	flags.Int("year-min", 0, "first year kept (default YEAR_MIN)")
	flags.Int("year-max", 0, "last year kept (default YEAR_MAX)")
	flags.String("log-level", "", "debug, info, warn or error (default LOG_LEVEL)")
	cobra.CheckErr(c.v.BindPFlags(flags))

	root.AddCommand(
		newSummaryCmd(c),
		newCellsCmd(c),
		newExportCmd(c),
	)
	return root
}

func (c *cli) initConfig() error {
	c.v.SetEnvPrefix("TRAFFICCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if c.cfgFile == "" {
		return nil
	}
	c.v.SetConfigFile(c.cfgFile)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", c.cfgFile, err)
	}
	return nil
}

// loadConfig starts from the service environment and layers the CLI's
// config file, TRAFFICCTL_* variables and flags on top.
func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, c.v)
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("data path must not be empty")
	}
	if cfg.YearMin > cfg.YearMax {
		return nil, fmt.Errorf("year-min %d is after year-max %d", cfg.YearMin, cfg.YearMax)
	}
	return cfg, nil
}

// applyOverrides copies every key set by a flag, the config file or the
// environment. Zero is a valid override.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("data") {
		cfg.DataPath = v.GetString("data")
	}
	if v.IsSet("year-min") {
		cfg.YearMin = v.GetInt("year-min")
	}
	if v.IsSet("year-max") {
		cfg.YearMax = v.GetInt("year-max")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
}

// build runs the pipeline once and returns the dataset with the registry
// holding its build counters.
func (c *cli) build(ctx context.Context, cmd *cobra.Command) (*domain.Dataset, *prometheus.Registry, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, "auto")
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsWith(reg)

	p, err := app.NewPipeline(cfg, logger, metrics)
	if err != nil {
		return nil, nil, err
	}
	ds, err := p.Build(ctx)
	if err != nil {
		logger.Error("build failed", slog.String("data_path", cfg.DataPath), slog.Any("error", err))
		return nil, nil, err
	}
	return ds, reg, nil
}
