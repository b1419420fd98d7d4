package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Defaults shared by the environment configuration and the library client.
const (
	DefaultProfileURL     = "http://localhost:5000/v1/profile"
	DefaultGridURL        = "https://ozavala.coaps.fsu.edu/nespreso_grid"
	DefaultConnectTimeout = 10 * time.Second
	DefaultProfileTimeout = 30 * time.Minute
	DefaultGridTimeout    = 10 * time.Minute
	DefaultBatchSize      = 1000
	DefaultGridOutputDir  = "uses/grid"
)

// Config holds all CLI settings, populated from environment variables.
type Config struct {
	ProfileURL string
	GridURL    string

	ConnectTimeout time.Duration
	ProfileTimeout time.Duration
	GridTimeout    time.Duration

	BatchSize        int
	BatchConcurrency int
	MergeOutput      bool
	GridOutputDir    string
	GridCacheSize    int

	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	ShutdownTimeout time.Duration

	// Optional run-summary publishing. Disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional upload of output files. Disabled when GCSBucket is empty.
	GCSBucket string
	GCSPrefix string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parseDuration("CONNECT_TIMEOUT", DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}
	profileTimeout, err := parseDuration("PROFILE_TIMEOUT", DefaultProfileTimeout)
	if err != nil {
		return nil, err
	}
	gridTimeout, err := parseDuration("GRID_TIMEOUT", DefaultGridTimeout)
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("BATCH_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("GRID_CACHE_SIZE", "0"))
	if err != nil || cacheSize < 0 {
		return nil, errors.New("invalid GRID_CACHE_SIZE")
	}

	merge, err := strconv.ParseBool(sharedcfg.EnvOrDefault("MERGE_OUTPUT", "true"))
	if err != nil {
		return nil, errors.New("invalid MERGE_OUTPUT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		ProfileURL:       sharedcfg.EnvOrDefault("NESPRESO_PROFILE_URL", DefaultProfileURL),
		GridURL:          sharedcfg.EnvOrDefault("NESPRESO_GRID_URL", DefaultGridURL),
		ConnectTimeout:   connectTimeout,
		ProfileTimeout:   profileTimeout,
		GridTimeout:      gridTimeout,
		BatchSize:        batchSize,
		BatchConcurrency: concurrency,
		MergeOutput:      merge,
		GridOutputDir:    sharedcfg.EnvOrDefault("GRID_OUTPUT_DIR", DefaultGridOutputDir),
		GridCacheSize:    cacheSize,
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		ShutdownTimeout:  shutdownTimeout,
		KafkaBrokers:     brokers,
		KafkaTopic:       sharedcfg.EnvOrDefault("KAFKA_TOPIC", "nespreso-runs"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSPrefix:        os.Getenv("GCS_PREFIX"),
	}

	if cfg.ProfileURL == "" {
		return nil, errors.New("NESPRESO_PROFILE_URL is required")
	}
	if cfg.GridURL == "" {
		return nil, errors.New("NESPRESO_GRID_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// KafkaEnabled reports whether run summaries should be published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// GCSEnabled reports whether output files should be uploaded.
func (c *Config) GCSEnabled() bool { return c.GCSBucket != "" }

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def.String()))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
