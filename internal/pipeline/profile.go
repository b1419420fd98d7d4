package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/nespreso-client/internal/domain"
	"github.com/couchcryptid/nespreso-client/internal/observability"
)

// ProfileFetcher requests profile predictions for a point set.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, url string, pts domain.PointSet) ([]byte, error)
}

// Merger combines per-batch NetCDF files into output, in the order given.
type Merger interface {
	Merge(ctx context.Context, files []string, output string, attrs map[string]string) error
}

// SummaryPublisher announces finished runs.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, s domain.RunSummary) error
}

// DefaultPrefix is used when BatchOptions.Prefix is empty.
const DefaultPrefix = "output"

// BatchOptions controls a batched profile run.
type BatchOptions struct {
	BatchSize int
	// Prefix names batch files ({prefix}_batch_NNN.nc) and the merged output.
	Prefix string
	Merge  bool
	// Concurrency bounds in-flight batch requests. Values below 2 run batches
	// strictly one after another.
	Concurrency int
	// Attributes override or extend the global attributes of the merged file.
	Attributes map[string]string
}

// ProfileResult reports a batched profile run.
type ProfileResult struct {
	// Outcomes has one entry per batch, in batch order.
	Outcomes []domain.BatchOutcome
	// Files lists successful batch files in batch order.
	Files []string
	// Output is the merged file, or the only batch file when exactly one batch
	// succeeded. Empty otherwise.
	Output   string
	Merged   bool
	MergeErr error
}

// Succeeded returns the number of batches that produced a file.
func (r *ProfileResult) Succeeded() int { return len(r.Files) }

// Failed returns the number of batches that did not produce a file.
func (r *ProfileResult) Failed() int { return len(r.Outcomes) - len(r.Files) }

// Paths returns the single output file when there is one, otherwise the
// successful batch files.
func (r *ProfileResult) Paths() []string {
	if r.Output != "" {
		return []string{r.Output}
	}
	return r.Files
}

// ProfileRunner splits point sets into batches, requests each batch, and
// merges the results.
type ProfileRunner struct {
	fetcher   ProfileFetcher
	merger    Merger
	publisher SummaryPublisher
	url       string
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewProfileRunner creates a ProfileRunner. A nil merger leaves multi-batch
// results unmerged and reports domain.ErrMergeUnavailable.
func NewProfileRunner(f ProfileFetcher, m Merger, url string, logger *slog.Logger, metrics *observability.Metrics) *ProfileRunner {
	return &ProfileRunner{
		fetcher: f,
		merger:  m,
		url:     url,
		logger:  logger,
		metrics: metrics,
	}
}

// SetPublisher registers a publisher for run summaries.
func (r *ProfileRunner) SetPublisher(p SummaryPublisher) {
	r.publisher = p
}

// CheckReadiness returns nil once at least one batch has succeeded.
func (r *ProfileRunner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no profile batch has completed yet")
	}
	return nil
}

// Fetch requests predictions for pts in a single call and writes the payload
// to filename.
func (r *ProfileRunner) Fetch(ctx context.Context, pts domain.PointSet, filename string) (string, error) {
	body, err := r.fetcher.FetchProfile(ctx, r.url, pts)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filename, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	r.ready.Store(true)
	return filename, nil
}

// Run processes pts in batches. Per-batch failures are recorded in the result
// and never abort the run; the returned error is reserved for invalid options.
func (r *ProfileRunner) Run(ctx context.Context, pts domain.PointSet, opts BatchOptions) (*ProfileResult, error) {
	batches, err := domain.SplitBatches(pts.Len(), opts.BatchSize)
	if err != nil {
		return nil, err
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	start := domain.Now()
	r.metrics.RunsInProgress.Inc()
	defer r.metrics.RunsInProgress.Dec()

	r.logger.Info("processing points in batches",
		"points", pts.Len(),
		"batch_size", opts.BatchSize,
		"batches", len(batches),
	)

	outcomes := make([]domain.BatchOutcome, len(batches))
	var g errgroup.Group
	g.SetLimit(max(1, opts.Concurrency))
	for i, b := range batches {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					r.logger.Error("batch panicked", "batch", b.Index, "panic", p)
					r.metrics.Batches.WithLabelValues("failure").Inc()
					outcomes[i] = domain.BatchOutcome{Batch: b, Err: fmt.Errorf("batch %d panicked: %v", b.Index, p)}
				}
			}()
			outcomes[i] = r.runBatch(ctx, pts, b, prefix)
			return nil
		})
	}
	_ = g.Wait()

	res := &ProfileResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK() {
			res.Files = append(res.Files, o.Path)
		}
	}
	r.logger.Info("batches completed", "succeeded", res.Succeeded(), "total", len(batches), "duration", domain.Since(start))

	switch {
	case opts.Merge && len(res.Files) > 1:
		r.merge(ctx, res, domain.MergedFilename(prefix), opts.Attributes)
	case len(res.Files) == 1:
		res.Output = res.Files[0]
	}

	r.publish(ctx, domain.RunSummary{
		Kind:       domain.RunKindProfile,
		Name:       prefix,
		Total:      len(batches),
		Succeeded:  res.Succeeded(),
		Failed:     res.Failed(),
		Output:     res.Output,
		Files:      res.Files,
		StartedAt:  start,
		FinishedAt: domain.Now(),
	})
	return res, nil
}

func (r *ProfileRunner) runBatch(ctx context.Context, pts domain.PointSet, b domain.Batch, prefix string) domain.BatchOutcome {
	r.logger.Info("processing batch",
		"batch", b.Index,
		"first", b.Start+1,
		"last", b.End,
		"of", pts.Len(),
	)
	r.metrics.BatchPoints.Observe(float64(b.Size()))

	path, err := r.Fetch(ctx, pts.Slice(b), domain.BatchFilename(prefix, b.Index))
	if err != nil {
		r.logger.Warn("batch failed", "batch", b.Index, "error", err)
		r.metrics.Batches.WithLabelValues("failure").Inc()
		return domain.BatchOutcome{Batch: b, Err: err}
	}
	r.logger.Info("batch completed", "batch", b.Index, "file", path)
	r.metrics.Batches.WithLabelValues("success").Inc()
	return domain.BatchOutcome{Batch: b, Path: path}
}

func (r *ProfileRunner) merge(ctx context.Context, res *ProfileResult, output string, attrs map[string]string) {
	if r.merger == nil {
		res.MergeErr = domain.ErrMergeUnavailable
		r.metrics.Merges.WithLabelValues("unavailable").Inc()
		r.logger.Warn("merge requested but unavailable, returning batch files", "files", len(res.Files))
		return
	}

	r.logger.Info("merging batch files", "files", len(res.Files), "output", output)
	if err := r.merger.Merge(ctx, res.Files, output, attrs); err != nil {
		res.MergeErr = err
		r.metrics.Merges.WithLabelValues("failure").Inc()
		r.logger.Error("merge failed, returning batch files", "error", err)
		return
	}
	r.metrics.Merges.WithLabelValues("success").Inc()
	res.Output = output
	res.Merged = true
}

func (r *ProfileRunner) publish(ctx context.Context, s domain.RunSummary) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishSummary(ctx, s); err != nil {
		r.logger.Warn("publish run summary failed", "kind", s.Kind, "name", s.Name, "error", err)
	}
}
