package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/nespreso-client/internal/domain"
	"github.com/couchcryptid/nespreso-client/internal/observability"
)

// GridFetcher requests a gridded field.
type GridFetcher interface {
	FetchGrid(ctx context.Context, url string, req domain.GridRequest) ([]byte, error)
}

// GridRunner validates grid queries, sends them, and stores each response
// under its own file in the output directory.
type GridRunner struct {
	fetcher   GridFetcher
	publisher SummaryPublisher
	url       string
	outputDir string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGridRunner creates a GridRunner writing into outputDir.
func NewGridRunner(f GridFetcher, url, outputDir string, logger *slog.Logger, metrics *observability.Metrics) *GridRunner {
	return &GridRunner{
		fetcher:   f,
		url:       url,
		outputDir: outputDir,
		logger:    logger,
		metrics:   metrics,
	}
}

// SetPublisher registers a publisher for multi-date run summaries.
func (r *GridRunner) SetPublisher(p SummaryPublisher) {
	r.publisher = p
}

// Query runs a single grid query. Invalid requests fail without a network call.
func (r *GridRunner) Query(ctx context.Context, req domain.GridRequest) domain.GridResult {
	res := domain.GridResult{Date: req.Date}
	if err := req.Validate(); err != nil {
		r.logger.Warn("invalid grid query", "date", req.Date, "error", err)
		r.metrics.GridQueries.WithLabelValues("invalid").Inc()
		res.Err = err
		return res
	}

	r.logger.Info("querying grid", "query", req.String(), "url", r.url)
	body, err := r.fetch(ctx, req)
	if err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) {
			res.StatusCode = statusErr.StatusCode
		}
		r.logger.Error("grid query failed", "date", req.Date, "status", res.StatusCode, "error", err)
		r.metrics.GridQueries.WithLabelValues("failure").Inc()
		res.Err = err
		return res
	}

	path := filepath.Join(r.outputDir, req.Filename())
	if err := os.WriteFile(path, body, 0o644); err != nil {
		r.metrics.GridQueries.WithLabelValues("failure").Inc()
		res.StatusCode = http.StatusOK
		res.Err = fmt.Errorf("write %s: %w", path, err)
		return res
	}

	r.logger.Info("grid query successful", "file", path, "size_bytes", len(body))
	r.metrics.GridQueries.WithLabelValues("success").Inc()
	res.Success = true
	res.Filename = path
	res.SizeBytes = len(body)
	res.StatusCode = http.StatusOK
	return res
}

func (r *GridRunner) fetch(ctx context.Context, req domain.GridRequest) ([]byte, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return r.fetcher.FetchGrid(ctx, r.url, req)
}

// QueryDates runs one grid query per date, in order, and tallies the results.
func (r *GridRunner) QueryDates(ctx context.Context, dates []string, bbox *domain.BBox, resolution *float64) domain.GridSummary {
	start := domain.Now()
	r.metrics.RunsInProgress.Inc()
	defer r.metrics.RunsInProgress.Dec()

	r.logger.Info("querying grid for multiple dates", "dates", len(dates))
	summary := domain.GridSummary{Total: len(dates)}
	var files []string
	for i, date := range dates {
		r.logger.Info("processing date", "index", i+1, "of", len(dates), "date", date)
		res := r.Query(ctx, domain.GridRequest{Date: date, BBox: bbox, Resolution: resolution})
		summary.Results = append(summary.Results, res)
		if res.Success {
			summary.Successful++
			files = append(files, res.Filename)
		} else {
			summary.Failed++
		}
	}
	r.logger.Info("grid summary",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"duration", domain.Since(start),
	)

	if r.publisher != nil {
		s := domain.RunSummary{
			Kind:       domain.RunKindGrid,
			Name:       dateSpan(dates),
			Total:      summary.Total,
			Succeeded:  summary.Successful,
			Failed:     summary.Failed,
			Files:      files,
			StartedAt:  start,
			FinishedAt: domain.Now(),
		}
		if err := r.publisher.PublishSummary(ctx, s); err != nil {
			r.logger.Warn("publish run summary failed", "kind", s.Kind, "name", s.Name, "error", err)
		}
	}
	return summary
}

func dateSpan(dates []string) string {
	switch len(dates) {
	case 0:
		return ""
	case 1:
		return dates[0]
	}
	return strings.Join([]string{dates[0], dates[len(dates)-1]}, "..")
}
