package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

var (
	latColumns  = []string{"lat", "latitude"}
	lonColumns  = []string{"lon", "long", "longitude"}
	dateColumns = []string{"date", "time", "datenum"}
)

// points are raw inputs ready for the client's normalizer.
type points struct {
	lat  []float64
	lon  []float64
	date []any
}

// readPointsCSV reads a CSV file with a header naming latitude, longitude, and
// date columns. Other columns are ignored.
func readPointsCSV(r io.Reader) (points, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return points{}, fmt.Errorf("read header: %w", err)
	}
	latIdx, lonIdx, dateIdx := column(header, latColumns), column(header, lonColumns), column(header, dateColumns)
	if latIdx < 0 || lonIdx < 0 || dateIdx < 0 {
		return points{}, fmt.Errorf("header %v must name lat, lon, and date columns", header)
	}

	var p points
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return points{}, fmt.Errorf("line %d: %w", line, err)
		}
		lat, err := coordinate(rec[latIdx])
		if err != nil {
			return points{}, fmt.Errorf("line %d: latitude %q: %w", line, rec[latIdx], domain.ErrInvalidCoordinate)
		}
		lon, err := coordinate(rec[lonIdx])
		if err != nil {
			return points{}, fmt.Errorf("line %d: longitude %q: %w", line, rec[lonIdx], domain.ErrInvalidCoordinate)
		}
		p.lat = append(p.lat, lat)
		p.lon = append(p.lon, lon)
		p.date = append(p.date, dateValue(rec[dateIdx]))
	}
	return p, nil
}

func readPointsFile(path string) (points, error) {
	f, err := os.Open(path)
	if err != nil {
		return points{}, err
	}
	defer f.Close()
	return readPointsCSV(f)
}

// pointsFromFlags pairs up --lat, --lon, and --date values.
func pointsFromFlags(lat, lon []float64, dates []string) points {
	p := points{lat: lat, lon: lon, date: make([]any, len(dates))}
	for i, d := range dates {
		p.date[i] = dateValue(d)
	}
	return p
}

func coordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty")
	}
	return cast.ToFloat64E(s)
}

// dateValue passes numbers that decode as datenums through as float64 so the
// normalizer converts them. Everything else stays a string.
func dateValue(s string) any {
	s = strings.TrimSpace(s)
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return s
	}
	if _, ok := domain.DatenumToISO(f); !ok {
		return s
	}
	return f
}

func column(header, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}
