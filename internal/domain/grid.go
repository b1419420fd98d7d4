package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// BBox is a lon/lat bounding box in degrees.
type BBox struct {
	LonMin float64
	LatMin float64
	LonMax float64
	LatMax float64
}

// ParseBBox coerces four numeric values in [lon_min, lat_min, lon_max, lat_max]
// order into a BBox. It does not check ranges; see [BBox.Validate].
func ParseBBox(v any) (BBox, error) {
	items := flatten(v)
	if len(items) != 4 {
		return BBox{}, ErrInvalidBBox
	}
	var vals [4]float64
	for i, item := range items {
		f, err := cast.ToFloat64E(item)
		if err != nil || item == nil {
			return BBox{}, fmt.Errorf("%w: values must be numeric", ErrInvalidBBox)
		}
		vals[i] = f
	}
	return BBox{LonMin: vals[0], LatMin: vals[1], LonMax: vals[2], LatMax: vals[3]}, nil
}

// Validate checks that longitudes lie in [-180,180], latitudes in [-90,90], and
// that each axis is strictly increasing.
func (b BBox) Validate() error {
	if !(inRange(b.LonMin, 180) && inRange(b.LonMax, 180) && inRange(b.LatMin, 90) && inRange(b.LatMax, 90)) {
		return ErrBBoxOutOfRange
	}
	if !(b.LonMin < b.LonMax && b.LatMin < b.LatMax) {
		return ErrBBoxOrder
	}
	return nil
}

// Values returns the box in wire order.
func (b BBox) Values() []float64 {
	return []float64{b.LonMin, b.LatMin, b.LonMax, b.LatMax}
}

func inRange(v, limit float64) bool {
	return -limit <= v && v <= limit
}

// ParseResolution coerces v to a strictly positive resolution in degrees.
func ParseResolution(v any) (float64, error) {
	if v == nil {
		return 0, ErrInvalidResolution
	}
	res, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, ErrInvalidResolution
	}
	if !(res > 0) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidResolution, res)
	}
	return res, nil
}

// GridRequest is a date-scoped grid query. BBox and Resolution are optional.
type GridRequest struct {
	Date       string
	BBox       *BBox
	Resolution *float64
}

// GridPayload is the JSON body sent to the grid endpoint.
type GridPayload struct {
	Date       string    `json:"date"`
	BBox       []float64 `json:"bbox,omitempty"`
	Resolution *float64  `json:"resolution,omitempty"`
}

// Validate checks every field without touching the network.
func (r GridRequest) Validate() error {
	if _, err := time.Parse(isoDay, r.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
	}
	if r.BBox != nil {
		if err := r.BBox.Validate(); err != nil {
			return err
		}
	}
	if r.Resolution != nil && !(*r.Resolution > 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidResolution, *r.Resolution)
	}
	return nil
}

// Payload returns the request body with only the provided fields set.
func (r GridRequest) Payload() GridPayload {
	p := GridPayload{Date: r.Date, Resolution: r.Resolution}
	if r.BBox != nil {
		p.BBox = r.BBox.Values()
	}
	return p
}

// Filename returns the output file name for the query, without directory.
func (r GridRequest) Filename() string {
	var sb strings.Builder
	sb.WriteString("nespreso_grid_")
	sb.WriteString(r.Date)
	if b := r.BBox; b != nil {
		fmt.Fprintf(&sb, "_bbox_%.2f_%.2f_%.2f_%.2f", b.LonMin, b.LatMin, b.LonMax, b.LatMax)
	}
	if r.Resolution != nil {
		fmt.Fprintf(&sb, "_res_%.3f", *r.Resolution)
	}
	sb.WriteString(".nc")
	return sb.String()
}

// String describes the query for logs.
func (r GridRequest) String() string {
	switch {
	case r.BBox != nil && r.Resolution != nil:
		return fmt.Sprintf("%s with bbox %v at resolution %v", r.Date, r.BBox.Values(), *r.Resolution)
	case r.BBox != nil:
		return fmt.Sprintf("%s with bbox %v", r.Date, r.BBox.Values())
	case r.Resolution != nil:
		return fmt.Sprintf("%s at resolution %v", r.Date, *r.Resolution)
	}
	return r.Date + " (full grid)"
}

// GridResult is the outcome of one grid query.
type GridResult struct {
	Date       string
	Success    bool
	Filename   string
	SizeBytes  int
	StatusCode int // zero when no response was received
	Err        error
}

// GridSummary tallies a multi-date grid run.
type GridSummary struct {
	Total      int
	Successful int
	Failed     int
	Results    []GridResult
}

// GenerateDateRange lists every day from start to end inclusive as YYYY-MM-DD.
// An end before start yields an empty list.
func GenerateDateRange(start, end string) ([]string, error) {
	s, err := time.Parse(isoDay, start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
	}
	e, err := time.Parse(isoDay, end)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
	}
	var dates []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(isoDay))
	}
	return dates, nil
}

// CommonBBoxRegions returns frequently used Gulf of Mexico boxes keyed by name.
func CommonBBoxRegions() map[string]BBox {
	return map[string]BBox{
		"full_gulf":       {LonMin: -97, LatMin: 18, LonMax: -82, LatMax: 31},
		"western_gulf":    {LonMin: -97, LatMin: 20, LonMax: -90, LatMax: 29},
		"eastern_gulf":    {LonMin: -90, LatMin: 20, LonMax: -82, LatMax: 29},
		"northern_gulf":   {LonMin: -97, LatMin: 25, LonMax: -82, LatMax: 29},
		"southern_gulf":   {LonMin: -97, LatMin: 18, LonMax: -82, LatMax: 25},
		"florida_straits": {LonMin: -82, LatMin: 24, LonMax: -79, LatMax: 26},
		"yucatan_channel": {LonMin: -87, LatMin: 20, LonMax: -84, LatMax: 22},
	}
}
