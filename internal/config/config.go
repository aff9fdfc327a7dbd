package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath string
	YearMin  int
	YearMax  int

	// Column names in the input file, matched case-insensitively.
	YearColumn     string
	HourColumn     string
	GeometryColumn string
	VolumeColumn   string

	SourceCRS           string
	TargetCRS           string
	TransformWorkers    int
	ProjectionCacheSize int

	BusMapPath     string
	CommuteMapPath string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional one-shot export of the aggregated cells.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaCellsTopic string
	BatchSize       int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	yearMin, err := parseInt("YEAR_MIN", 2017)
	if err != nil {
		return nil, err
	}
	yearMax, err := parseInt("YEAR_MAX", 2022)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("TRANSFORM_WORKERS", runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("PROJECTION_CACHE_SIZE", 10000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:            sharedcfg.EnvOrDefault("DATA_PATH", "Automated_Traffic_Volume_Counts.csv"),
		YearMin:             yearMin,
		YearMax:             yearMax,
		YearColumn:          sharedcfg.EnvOrDefault("COL_YEAR", "Yr"),
		HourColumn:          sharedcfg.EnvOrDefault("COL_HOUR", "HH"),
		GeometryColumn:      sharedcfg.EnvOrDefault("COL_GEOMETRY", "WktGeom"),
		VolumeColumn:        sharedcfg.EnvOrDefault("COL_VOLUME", "Vol"),
		SourceCRS:           sharedcfg.EnvOrDefault("SOURCE_CRS", "EPSG:2263"),
		TargetCRS:           sharedcfg.EnvOrDefault("TARGET_CRS", "EPSG:4326"),
		TransformWorkers:    workers,
		ProjectionCacheSize: cacheSize,
		BusMapPath:          sharedcfg.EnvOrDefault("BUS_MAP_PATH", "bus_routes_map.html"),
		CommuteMapPath:      sharedcfg.EnvOrDefault("COMMUTE_MAP_PATH", "commute_map.html"),
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8055"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		KafkaEnabled:        strings.EqualFold(os.Getenv("KAFKA_ENABLED"), "true"),
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaCellsTopic:     sharedcfg.EnvOrDefault("KAFKA_CELLS_TOPIC", "traffic-volume-cells"),
		BatchSize:           batchSize,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.New("DATA_PATH is required")
	}
	if c.YearMin > c.YearMax {
		return fmt.Errorf("YEAR_MIN (%d) must not exceed YEAR_MAX (%d)", c.YearMin, c.YearMax)
	}
	if c.TransformWorkers <= 0 {
		return errors.New("TRANSFORM_WORKERS must be positive")
	}
	if c.ProjectionCacheSize <= 0 {
		return errors.New("PROJECTION_CACHE_SIZE must be positive")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaCellsTopic == "" {
			return errors.New("KAFKA_CELLS_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

func parseInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, s)
	}
	return n, nil
}
