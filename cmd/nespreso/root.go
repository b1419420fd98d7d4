package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	nespreso "github.com/couchcryptid/nespreso-client"
	"github.com/couchcryptid/nespreso-client/internal/adapter/gcs"
	httpadapter "github.com/couchcryptid/nespreso-client/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/nespreso-client/internal/adapter/kafka"
	"github.com/couchcryptid/nespreso-client/internal/adapter/netcdf"
	"github.com/couchcryptid/nespreso-client/internal/config"
	"github.com/couchcryptid/nespreso-client/internal/observability"
	"github.com/couchcryptid/nespreso-client/internal/pipeline"
)

// app holds the wiring shared by every subcommand for a single invocation.
type app struct {
	reg prometheus.Registerer

	cfg      *config.Config
	logger   *slog.Logger
	client   *nespreso.Client
	server   *httpadapter.Server
	uploader *gcs.Uploader
	closers  []io.Closer
}

func newRootCmd(reg prometheus.Registerer) *cobra.Command {
	a := &app{reg: reg}
	root := &cobra.Command{
		Use:   "nespreso",
		Short: "Client for the NeSPReSO ocean profile prediction service.",
		Long: `nespreso requests synthetic temperature and salinity profiles for
latitude/longitude/date points, and gridded fields for whole days, from a
NeSPReSO service. Results are written as NetCDF files.

Settings are read from environment variables (NESPRESO_PROFILE_URL,
NESPRESO_GRID_URL, BATCH_SIZE, GRID_OUTPUT_DIR, LOG_LEVEL, METRICS_ADDR,
KAFKA_BROKERS, GCS_BUCKET, ...). Flags override them where both exist.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}
	root.AddCommand(newProfileCmd(a), newGridCmd(a), newRegionsCmd(), newInspectCmd())
	return root
}

// run wires the client from the environment, calls fn, and releases
// everything fn may have used.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	defer a.shutdown()
	if err := a.setup(ctx); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		a.logger.Error("command failed", "error", err)
		return err
	}
	return nil
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)

	runLog := httpadapter.NewRunLog(0)
	publishers := pipeline.Publishers{runLog}
	if cfg.KafkaEnabled() {
		pub := kafkaadapter.NewPublisher(cfg, a.logger)
		publishers = append(publishers, pub)
		a.closers = append(a.closers, pub)
		a.logger.Info("kafka run summaries enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.GCSEnabled() {
		u, err := gcs.NewUploader(ctx, cfg, a.logger)
		if err != nil {
			return err
		}
		a.uploader = u
		a.closers = append(a.closers, u)
		a.logger.Info("gcs upload enabled", "bucket", cfg.GCSBucket, "prefix", cfg.GCSPrefix)
	}

	a.client = nespreso.New(nespreso.Options{
		ProfileURL:     cfg.ProfileURL,
		GridURL:        cfg.GridURL,
		ConnectTimeout: cfg.ConnectTimeout,
		ProfileTimeout: cfg.ProfileTimeout,
		GridTimeout:    cfg.GridTimeout,
		GridOutputDir:  cfg.GridOutputDir,
		GridCacheSize:  cfg.GridCacheSize,
		Merger:         netcdf.NewMerger(a.logger),
		Publisher:      publishers,
		Logger:         a.logger,
		Registerer:     a.reg,
	})

	if cfg.MetricsAddr != "" {
		a.server = httpadapter.NewServer(cfg.MetricsAddr, a.client, runLog, a.logger)
		go func() {
			if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http server error", "error", err)
			}
		}()
	}
	return nil
}

func (a *app) shutdown() {
	if a.cfg == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", "error", err)
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("close error", "error", err)
		}
	}
	a.logger.Debug("shutdown complete")
}

// upload copies files to Cloud Storage when a bucket is configured.
func (a *app) upload(ctx context.Context, w io.Writer, files []string) error {
	if a.uploader == nil || len(files) == 0 {
		return nil
	}
	uris, err := a.uploader.Upload(ctx, files)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		fmt.Fprintf(w, "uploaded %s\n", uri)
	}
	return nil
}
