package domain

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatenumToISO(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{366, "0001-01-01"},
		{367, "0001-01-02"},
		{730486, "2000-01-02"},
		{737791, "2020-01-02"},
		{738000, "2020-07-29"},
		{738000.5, "2020-07-29"},
		{738000.99999999999, "2020-07-30"},
	}
	for _, tt := range tests {
		got, ok := DatenumToISO(tt.in)
		require.True(t, ok, "datenum %v", tt.in)
		assert.Equal(t, tt.want, got, "datenum %v", tt.in)
	}
}

func TestDatenumToISO_MatchesDayOffset(t *testing.T) {
	base := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, v := range []int{366, 400, 1000, 500000, 693962, 739000} {
		got, ok := DatenumToISO(float64(v))
		require.True(t, ok)
		assert.Equal(t, base.AddDate(0, 0, v-366).Format(isoDay), got)
	}
}

func TestDatenumToISO_OutOfRange(t *testing.T) {
	for _, v := range []float64{365, -10, 1e12, math.NaN(), math.Inf(1)} {
		_, ok := DatenumToISO(v)
		assert.False(t, ok, "datenum %v", v)
	}
}

func TestNormalizeDates_Variants(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	got := NormalizeDates([]any{
		"2024-03-01",
		738000,
		float32(737791),
		time.Date(2021, time.May, 4, 23, 30, 0, 0, loc),
		civil.Date{Year: 2019, Month: time.February, Day: 3},
		civil.DateTime{Date: civil.Date{Year: 2018, Month: time.December, Day: 31}, Time: civil.Time{Hour: 22}},
	})

	assert.Equal(t, []string{
		"2024-03-01",
		"2020-07-29",
		"2020-01-02",
		"2021-05-04",
		"2019-02-03",
		"2018-12-31",
	}, got.Values)
	assert.Empty(t, got.Fallbacks)
}

func TestNormalizeDates_Scalar(t *testing.T) {
	got := NormalizeDates("2010-06-15")
	assert.Equal(t, []string{"2010-06-15"}, got.Values)

	got = NormalizeDates(730486)
	assert.Equal(t, []string{"2000-01-02"}, got.Values)
}

func TestNormalizeDates_FlagsFallbacks(t *testing.T) {
	got := NormalizeDates([]any{"2024-01-01", true, nil, 12})

	assert.Equal(t, []string{"2024-01-01", "true", "<nil>", "12"}, got.Values)
	assert.Equal(t, []int{1, 2, 3}, got.Fallbacks)
}

func TestNormalizeCoordinates(t *testing.T) {
	got, err := NormalizeCoordinates([][]float32{{25.5, 26}, {27, 28.25}})
	require.NoError(t, err)
	assert.Equal(t, []float64{25.5, 26, 27, 28.25}, got)

	got, err = NormalizeCoordinates(-87)
	require.NoError(t, err)
	assert.Equal(t, []float64{-87}, got)

	got, err = NormalizeCoordinates([]string{"24.1", "-88"})
	require.NoError(t, err)
	assert.Equal(t, []float64{24.1, -88}, got)
}

func TestNormalizeCoordinates_Invalid(t *testing.T) {
	_, err := NormalizeCoordinates([]any{1.0, "north"})
	require.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), "index 1")

	_, err = NormalizeCoordinates(nil)
	require.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestNormalize(t *testing.T) {
	pts, fallbacks, err := Normalize([]float64{25, 26}, []int{-90, -91}, []any{"2020-01-01", 738000})
	require.NoError(t, err)
	assert.Empty(t, fallbacks)
	assert.Equal(t, 2, pts.Len())
	assert.Equal(t, []float64{-90, -91}, pts.Lon)
	assert.Equal(t, []string{"2020-01-01", "2020-07-29"}, pts.Date)
}

func TestNormalize_LengthMismatch(t *testing.T) {
	_, _, err := Normalize([]float64{25, 26}, []float64{-90}, []string{"2020-01-01", "2020-01-02"})
	require.ErrorIs(t, err, ErrLengthMismatch)
}
