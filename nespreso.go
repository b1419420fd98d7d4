// Package nespreso is a client for the NeSPReSO ocean profile prediction
// service.
//
// It covers two request patterns. Profile predictions take parallel
// latitude, longitude, and date inputs and return a NetCDF file of
// synthetic temperature and salinity profiles; large inputs are split into
// batches and the per-batch files merged along the profile_number
// dimension. Grid queries return a gridded field for one date, optionally
// limited to a bounding box and resolution.
//
// Every operation reports failure through its return values; batch and
// multi-date operations keep going past individual failures and report a
// tally.
package nespreso

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/nespreso-client/internal/adapter/nespresoapi"
	"github.com/couchcryptid/nespreso-client/internal/config"
	"github.com/couchcryptid/nespreso-client/internal/domain"
	"github.com/couchcryptid/nespreso-client/internal/observability"
	"github.com/couchcryptid/nespreso-client/internal/pipeline"
)

type (
	PointSet         = domain.PointSet
	BBox             = domain.BBox
	GridResult       = domain.GridResult
	GridSummary      = domain.GridSummary
	RunSummary       = domain.RunSummary
	StatusError      = domain.StatusError
	BatchOutcome     = domain.BatchOutcome
	BatchOptions     = pipeline.BatchOptions
	ProfileResult    = pipeline.ProfileResult
	Merger           = pipeline.Merger
	SummaryPublisher = pipeline.SummaryPublisher
)

// Errors returned by the client. Match with errors.Is.
var (
	ErrInvalidDate           = domain.ErrInvalidDate
	ErrInvalidBBox           = domain.ErrInvalidBBox
	ErrBBoxOutOfRange        = domain.ErrBBoxOutOfRange
	ErrBBoxOrder             = domain.ErrBBoxOrder
	ErrInvalidResolution     = domain.ErrInvalidResolution
	ErrInvalidBatchSize      = domain.ErrInvalidBatchSize
	ErrLengthMismatch        = domain.ErrLengthMismatch
	ErrInvalidCoordinate     = domain.ErrInvalidCoordinate
	ErrTimeout               = domain.ErrTimeout
	ErrUnexpectedContentType = domain.ErrUnexpectedContentType
	ErrMergeUnavailable      = domain.ErrMergeUnavailable
)

// Defaults applied by New for zero-valued Options fields.
const (
	DefaultProfileURL     = config.DefaultProfileURL
	DefaultGridURL        = config.DefaultGridURL
	DefaultConnectTimeout = config.DefaultConnectTimeout
	DefaultProfileTimeout = config.DefaultProfileTimeout
	DefaultGridTimeout    = config.DefaultGridTimeout
	DefaultBatchSize      = config.DefaultBatchSize
	DefaultGridOutputDir  = config.DefaultGridOutputDir
	DefaultFilename       = "output.nc"
	DefaultPrefix         = pipeline.DefaultPrefix
)

// Options configures a Client. Zero values select the defaults above.
type Options struct {
	ProfileURL string
	GridURL    string

	// ConnectTimeout bounds connection establishment. ProfileTimeout and
	// GridTimeout bound each whole request, including reading the body.
	ConnectTimeout time.Duration
	ProfileTimeout time.Duration
	GridTimeout    time.Duration

	// GridOutputDir receives grid query files. It is created on first use.
	GridOutputDir string
	// GridCacheSize keeps up to this many grid payloads in memory so repeated
	// queries skip the network. Zero disables the cache.
	GridCacheSize int

	// Merger combines batch files. Without one, merged batch runs report
	// ErrMergeUnavailable and return the batch files.
	Merger Merger
	// Publisher, when set, receives a summary after every batch or
	// multi-date run.
	Publisher SummaryPublisher

	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
	// Registerer receives the client's Prometheus metrics. Metrics are kept
	// but not registered when nil.
	Registerer prometheus.Registerer
}

// Client sends profile and grid requests to a NeSPReSO service.
type Client struct {
	profile *pipeline.ProfileRunner
	grid    *pipeline.GridRunner
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Client.
func New(opts Options) *Client {
	opts = opts.withDefaults()
	metrics := observability.NewMetricsWith(opts.Registerer)
	return newClient(opts, metrics)
}

func newClient(opts Options, metrics *observability.Metrics) *Client {
	profileAPI := nespresoapi.NewClient(nespresoapi.EndpointProfile, opts.ConnectTimeout, opts.ProfileTimeout, opts.Logger, metrics)
	var gridAPI nespresoapi.GridFetcher = nespresoapi.NewClient(nespresoapi.EndpointGrid, opts.ConnectTimeout, opts.GridTimeout, opts.Logger, metrics)
	if opts.GridCacheSize > 0 {
		// Construction only fails for a non-positive size.
		if cached, err := nespresoapi.NewCachedGridFetcher(gridAPI, opts.GridCacheSize, metrics.GridCacheHits); err == nil {
			gridAPI = cached
		}
	}

	c := &Client{
		profile: pipeline.NewProfileRunner(profileAPI, opts.Merger, opts.ProfileURL, opts.Logger, metrics),
		grid:    pipeline.NewGridRunner(gridAPI, opts.GridURL, opts.GridOutputDir, opts.Logger, metrics),
		logger:  opts.Logger,
		metrics: metrics,
	}
	if opts.Publisher != nil {
		c.profile.SetPublisher(opts.Publisher)
		c.grid.SetPublisher(opts.Publisher)
	}
	return c
}

func (o Options) withDefaults() Options {
	if o.ProfileURL == "" {
		o.ProfileURL = DefaultProfileURL
	}
	if o.GridURL == "" {
		o.GridURL = DefaultGridURL
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ProfileTimeout <= 0 {
		o.ProfileTimeout = DefaultProfileTimeout
	}
	if o.GridTimeout <= 0 {
		o.GridTimeout = DefaultGridTimeout
	}
	if o.GridOutputDir == "" {
		o.GridOutputDir = DefaultGridOutputDir
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// CheckReadiness returns nil once at least one profile request has succeeded.
func (c *Client) CheckReadiness(ctx context.Context) error {
	return c.profile.CheckReadiness(ctx)
}
