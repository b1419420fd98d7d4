package nespreso

import (
	"context"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// ProfileFetch is the single value delivered by FetchPredictions.
type ProfileFetch struct {
	Path string
	Err  error
}

// DefaultBatchOptions returns the options used by the command line tool:
// batches of DefaultBatchSize points, named after DefaultPrefix, merged.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		BatchSize: DefaultBatchSize,
		Prefix:    DefaultPrefix,
		Merge:     true,
	}
}

// GetPredictions requests profiles for every point in a single call and writes
// the NetCDF response to filename (DefaultFilename when empty). It blocks until
// the request completes or its timeout expires.
//
// lat and lon accept a number, a slice, or nested slices of numbers. date
// accepts the same shapes holding strings, time.Time, civil.Date,
// civil.DateTime, or numeric datenums.
func (c *Client) GetPredictions(lat, lon, date any, filename string) (string, error) {
	return c.fetchPredictions(context.Background(), lat, lon, date, filename)
}

// FetchPredictions is the asynchronous form of GetPredictions. The request
// runs on its own goroutine and delivers exactly one ProfileFetch before the
// channel is closed. Cancelling ctx aborts the request.
func (c *Client) FetchPredictions(ctx context.Context, lat, lon, date any, filename string) <-chan ProfileFetch {
	ch := make(chan ProfileFetch, 1)
	go func() {
		defer close(ch)
		path, err := c.fetchPredictions(ctx, lat, lon, date, filename)
		ch <- ProfileFetch{Path: path, Err: err}
	}()
	return ch
}

func (c *Client) fetchPredictions(ctx context.Context, lat, lon, date any, filename string) (string, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	pts, err := c.normalize(lat, lon, date)
	if err != nil {
		return "", err
	}
	return c.profile.Fetch(ctx, pts, filename)
}

// GetPredictionsBatch splits the points into batches, requests each one in
// order, and merges the successful batch files when opts.Merge is set. A
// failed batch does not stop the run; see ProfileResult for the outcome of
// each batch. The error is reserved for invalid input.
func (c *Client) GetPredictionsBatch(ctx context.Context, lat, lon, date any, opts BatchOptions) (*ProfileResult, error) {
	pts, err := c.normalize(lat, lon, date)
	if err != nil {
		return nil, err
	}
	return c.profile.Run(ctx, pts, opts)
}

func (c *Client) normalize(lat, lon, date any) (PointSet, error) {
	pts, fallbacks, err := domain.Normalize(lat, lon, date)
	if err != nil {
		return PointSet{}, err
	}
	if len(fallbacks) > 0 {
		c.metrics.DateFallbacks.Add(float64(len(fallbacks)))
		c.logger.Warn("date values without a known encoding sent as-is",
			"count", len(fallbacks),
			"first_index", fallbacks[0],
			"first_value", pts.Date[fallbacks[0]],
		)
	}
	return pts, nil
}
