package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/v1/profile", cfg.ProfileURL)
	assert.Equal(t, "https://ozavala.coaps.fsu.edu/nespreso_grid", cfg.GridURL)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Minute, cfg.ProfileTimeout)
	assert.Equal(t, 10*time.Minute, cfg.GridTimeout)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 1, cfg.BatchConcurrency)
	assert.True(t, cfg.MergeOutput)
	assert.Equal(t, "uses/grid", cfg.GridOutputDir)
	assert.Zero(t, cfg.GridCacheSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "nespreso-runs", cfg.KafkaTopic)
	assert.False(t, cfg.GCSEnabled())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("NESPRESO_PROFILE_URL", "http://predict.local/v1/profile")
	t.Setenv("NESPRESO_GRID_URL", "http://predict.local/grid")
	t.Setenv("CONNECT_TIMEOUT", "3s")
	t.Setenv("PROFILE_TIMEOUT", "5m")
	t.Setenv("GRID_TIMEOUT", "90s")
	t.Setenv("BATCH_SIZE", "250")
	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("MERGE_OUTPUT", "false")
	t.Setenv("GRID_OUTPUT_DIR", "/tmp/grids")
	t.Setenv("GRID_CACHE_SIZE", "16")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "runs")
	t.Setenv("GCS_BUCKET", "nespreso-out")
	t.Setenv("GCS_PREFIX", "gulf")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://predict.local/v1/profile", cfg.ProfileURL)
	assert.Equal(t, "http://predict.local/grid", cfg.GridURL)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ProfileTimeout)
	assert.Equal(t, 90*time.Second, cfg.GridTimeout)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.False(t, cfg.MergeOutput)
	assert.Equal(t, "/tmp/grids", cfg.GridOutputDir)
	assert.Equal(t, 16, cfg.GridCacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "runs", cfg.KafkaTopic)
	assert.True(t, cfg.GCSEnabled())
	assert.Equal(t, "gulf", cfg.GCSPrefix)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidTimeouts(t *testing.T) {
	for _, key := range []string{"CONNECT_TIMEOUT", "PROFILE_TIMEOUT", "GRID_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchConcurrency(t *testing.T) {
	t.Setenv("BATCH_CONCURRENCY", "many")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_CONCURRENCY")
}

func TestLoad_InvalidMergeOutput(t *testing.T) {
	t.Setenv("MERGE_OUTPUT", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MERGE_OUTPUT")
}

func TestLoad_InvalidGridCacheSize(t *testing.T) {
	t.Setenv("GRID_CACHE_SIZE", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRID_CACHE_SIZE")
}
