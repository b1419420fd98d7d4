package domain

import (
	"errors"
	"fmt"
)

// Input validation errors. These are reported before any network call is made.
var (
	ErrInvalidDate       = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidBBox       = errors.New("invalid bbox, use [lon_min, lat_min, lon_max, lat_max]")
	ErrBBoxOutOfRange    = errors.New("bbox out of range, lon in [-180,180], lat in [-90,90]")
	ErrBBoxOrder         = errors.New("bbox order invalid, require lon_min < lon_max and lat_min < lat_max")
	ErrInvalidResolution = errors.New("resolution must be a positive number (degrees)")
	ErrInvalidBatchSize  = errors.New("batch size must be positive")
	ErrLengthMismatch    = errors.New("lat, lon, and date must have the same length")
	ErrInvalidCoordinate = errors.New("coordinate is not numeric")
)

// Transport and merge errors.
var (
	ErrTimeout               = errors.New("request timed out")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrMergeUnavailable      = errors.New("no merge capability configured")
)

// StatusError reports a non-200 response from the prediction service.
type StatusError struct {
	StatusCode int
	// Body is the raw response text.
	Body string
	// Detail holds the decoded JSON body when the service returned one.
	Detail any
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("nespreso API error: status %d: %s", e.StatusCode, body)
}
