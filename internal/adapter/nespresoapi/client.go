package nespresoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/nespreso-client/internal/domain"
	"github.com/couchcryptid/nespreso-client/internal/observability"
)

// NetCDFContentType is the media type prefix of a valid profile response.
const NetCDFContentType = "application/x-netcdf"

// Endpoint labels used in logs and metrics.
const (
	EndpointProfile = "profile"
	EndpointGrid    = "grid"
)

// Client posts JSON requests to the NeSPReSO service and returns NetCDF payloads.
// Redirects are never followed.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a client for one endpoint. connectTimeout bounds dialing and
// the TLS handshake; timeout bounds the whole request including the body read.
func NewClient(endpoint string, connectTimeout, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   connectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: connectTimeout,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		endpoint: endpoint,
		logger:   logger,
		metrics:  metrics,
	}
}

// FetchProfile requests profile predictions for pts. The response must be a
// 200 with a NetCDF content type.
func (c *Client) FetchProfile(ctx context.Context, url string, pts domain.PointSet) ([]byte, error) {
	if strings.HasSuffix(url, "/predict") {
		c.logger.Warn("using the deprecated /predict endpoint, use /v1/profile", "url", url)
	}
	return c.send(ctx, url, pts, true)
}

// FetchGrid requests a gridded field. Any 200 response is accepted.
func (c *Client) FetchGrid(ctx context.Context, url string, req domain.GridRequest) ([]byte, error) {
	return c.send(ctx, url, req.Payload(), false)
}

func (c *Client) send(ctx context.Context, url string, payload any, requireNetCDF bool) ([]byte, error) {
	start := time.Now()
	body, outcome, err := c.do(ctx, url, payload, requireNetCDF)
	c.metrics.Requests.WithLabelValues(c.endpoint, outcome).Inc()
	c.metrics.RequestDuration.WithLabelValues(c.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Debug("nespreso request failed", "endpoint", c.endpoint, "outcome", outcome, "error", err)
		return nil, err
	}
	c.metrics.ResponseBytes.WithLabelValues(c.endpoint).Observe(float64(len(body)))
	return body, nil
}

func (c *Client) do(ctx context.Context, url string, payload any, requireNetCDF bool) ([]byte, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "error", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, "error", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err), wrapTransportErr(c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err), wrapTransportErr(c.endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &domain.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		var detail any
		if json.Unmarshal(body, &detail) == nil {
			statusErr.Detail = detail
		}
		return nil, "status", statusErr
	}

	if ct := resp.Header.Get("Content-Type"); requireNetCDF && !strings.HasPrefix(ct, NetCDFContentType) {
		return nil, "content_type", fmt.Errorf("%w: %q", domain.ErrUnexpectedContentType, ct)
	}

	return body, "success", nil
}

func classify(err error) string {
	if isTimeout(err) {
		return "timeout"
	}
	return "error"
}

func wrapTransportErr(endpoint string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%s request: %w: %v", endpoint, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s request: %w", endpoint, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
