package nespreso

import (
	"context"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// QueryGrid requests the gridded field for date (YYYY-MM-DD), optionally
// limited to bbox ([lon_min, lat_min, lon_max, lat_max]) and resolution in
// degrees. Invalid arguments fail without contacting the service. The
// response is written under the grid output directory.
func (c *Client) QueryGrid(ctx context.Context, date string, bbox []float64, resolution *float64) GridResult {
	b, err := parseBBox(bbox)
	if err != nil {
		return c.rejectBBox(date, err)
	}
	return c.grid.Query(ctx, domain.GridRequest{Date: date, BBox: b, Resolution: resolution})
}

// QueryMultipleDates runs QueryGrid for each date in order and tallies the
// results. Each date keeps its own file; nothing is merged.
func (c *Client) QueryMultipleDates(ctx context.Context, dates []string, bbox []float64, resolution *float64) GridSummary {
	b, err := parseBBox(bbox)
	if err != nil {
		summary := GridSummary{Total: len(dates), Failed: len(dates)}
		for _, d := range dates {
			summary.Results = append(summary.Results, c.rejectBBox(d, err))
		}
		return summary
	}
	return c.grid.QueryDates(ctx, dates, b, resolution)
}

// rejectBBox fails a query whose bbox could not be parsed. An invalid date is
// reported ahead of the bbox.
func (c *Client) rejectBBox(date string, err error) GridResult {
	if dateErr := (domain.GridRequest{Date: date}).Validate(); dateErr != nil {
		err = dateErr
	}
	c.logger.Warn("invalid grid query", "date", date, "error", err)
	c.metrics.GridQueries.WithLabelValues("invalid").Inc()
	return GridResult{Date: date, Err: err}
}

func parseBBox(bbox []float64) (*BBox, error) {
	if bbox == nil {
		return nil, nil
	}
	b, err := domain.ParseBBox(bbox)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GenerateDateRange returns every date from start to end inclusive, as
// YYYY-MM-DD strings.
func GenerateDateRange(start, end string) ([]string, error) {
	return domain.GenerateDateRange(start, end)
}

// CommonBBoxRegions returns named Gulf of Mexico bounding boxes.
func CommonBBoxRegions() map[string]BBox {
	return domain.CommonBBoxRegions()
}
