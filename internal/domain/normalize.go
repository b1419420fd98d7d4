package domain

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cast"
)

const (
	isoDay = "2006-01-02"

	// datenumOffset is the day count of 0001-01-01 in the datenum numbering.
	datenumOffset = 366
	microsPerDay  = 86400e6
)

var datenumEpoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// Dates is the result of normalizing a date input.
type Dates struct {
	Values []string
	// Fallbacks lists the indices whose value had no known date encoding and was
	// stringified as-is. The service will most likely reject those points.
	Fallbacks []int
}

// NormalizeDates converts a scalar, sequence, or nested array of dates into
// YYYY-MM-DD strings. It never fails; unrecognized values are stringified and
// reported in Dates.Fallbacks.
func NormalizeDates(v any) Dates {
	items := flatten(v)
	out := Dates{Values: make([]string, len(items))}
	for i, item := range items {
		s, ok := dateString(item)
		if !ok {
			out.Fallbacks = append(out.Fallbacks, i)
		}
		out.Values[i] = s
	}
	return out
}

// NormalizeCoordinates flattens a scalar, sequence, or nested array into floats.
// Numeric strings are parsed.
func NormalizeCoordinates(v any) ([]float64, error) {
	items := flatten(v)
	out := make([]float64, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: index %d is nil", ErrInvalidCoordinate, i)
		}
		f, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, fmt.Errorf("%w: index %d: %v", ErrInvalidCoordinate, i, err)
		}
		out[i] = f
	}
	return out, nil
}

// Normalize converts heterogeneous lat/lon/date inputs into a PointSet. The
// returned indices are date fallbacks, see [Dates].
func Normalize(lat, lon, date any) (PointSet, []int, error) {
	lats, err := NormalizeCoordinates(lat)
	if err != nil {
		return PointSet{}, nil, fmt.Errorf("latitude: %w", err)
	}
	lons, err := NormalizeCoordinates(lon)
	if err != nil {
		return PointSet{}, nil, fmt.Errorf("longitude: %w", err)
	}
	dates := NormalizeDates(date)
	pts, err := NewPointSet(lats, lons, dates.Values)
	if err != nil {
		return PointSet{}, nil, err
	}
	return pts, dates.Fallbacks, nil
}

// DatenumToISO converts a datenum to YYYY-MM-DD. It reports false when the
// value is not finite or lands outside years 1 through 9999.
func DatenumToISO(v float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	days := v - datenumOffset
	// Beyond this the date is past year 9999 and the microsecond count would
	// overflow int64.
	if math.Abs(days) > 4e6 {
		return "", false
	}
	micros := int64(math.RoundToEven(days * microsPerDay))
	whole := micros / microsPerDay
	if micros%microsPerDay < 0 {
		whole--
	}
	t := datenumEpoch.AddDate(0, 0, int(whole))
	if t.Year() < 1 || t.Year() > 9999 {
		return "", false
	}
	return t.Format(isoDay), true
}

func dateString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case time.Time:
		return t.Format(isoDay), true
	case civil.Date:
		return t.String(), true
	case civil.DateTime:
		return t.Date.String(), true
	}
	if f, ok := numeric(v); ok {
		if s, ok := DatenumToISO(f); ok {
			return s, true
		}
	}
	return fmt.Sprint(v), false
}

func numeric(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// flatten unrolls slices and arrays of any depth in row-major order. Anything
// else, including strings and nil, is a single item.
func flatten(v any) []any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, 0, rv.Len())
		for i := range rv.Len() {
			out = append(out, flatten(rv.Index(i).Interface())...)
		}
		return out
	}
	return []any{v}
}
