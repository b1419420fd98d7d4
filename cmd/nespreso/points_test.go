package main

import (
	"strings"
	"testing"

	"github.com/couchcryptid/nespreso-client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPointsCSV(t *testing.T) {
	in := `id, Latitude, Longitude, date
a, 25.5, -90, 2020-07-29
b, 26, -89.5, 737791
`
	pts, err := readPointsCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []float64{25.5, 26}, pts.lat)
	assert.Equal(t, []float64{-90, -89.5}, pts.lon)
	assert.Equal(t, []any{"2020-07-29", 737791.0}, pts.date)
}

func TestReadPointsCSV_MissingColumn(t *testing.T) {
	_, err := readPointsCSV(strings.NewReader("lat,lon\n25,-90\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
}

func TestReadPointsCSV_BadCoordinate(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"text", "lat,lon,date\nnorth,-90,2020-01-01\n"},
		{"empty", "lat,lon,date\n25,,2020-01-01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readPointsCSV(strings.NewReader(tt.in))
			require.ErrorIs(t, err, domain.ErrInvalidCoordinate)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestDateValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"2020-01-01", "2020-01-01"},
		{" 738000.5 ", 738000.5},
		{"20200101", "20200101"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, dateValue(tt.in))
		})
	}
}

func TestPointsFromFlags(t *testing.T) {
	pts := pointsFromFlags([]float64{25}, []float64{-90}, []string{"366"})
	assert.Equal(t, []any{366.0}, pts.date)
}
