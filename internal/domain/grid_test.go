package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBBox_Validate(t *testing.T) {
	tests := []struct {
		name string
		bbox BBox
		want error
	}{
		{"valid", BBox{-100, 10, -90, 20}, nil},
		{"lon out of range", BBox{-200, 10, -90, 20}, ErrBBoxOutOfRange},
		{"lat out of range", BBox{-100, 10, -90, 95}, ErrBBoxOutOfRange},
		{"lon order", BBox{-90, 10, -100, 20}, ErrBBoxOrder},
		{"lat order", BBox{-100, 20, -90, 20}, ErrBBoxOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bbox.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseBBox(t *testing.T) {
	b, err := ParseBBox([]any{-97, "18", -82.0, float32(31)})
	require.NoError(t, err)
	assert.Equal(t, BBox{-97, 18, -82, 31}, b)

	_, err = ParseBBox([]float64{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidBBox)

	_, err = ParseBBox([]any{1, 2, "east", 4})
	require.ErrorIs(t, err, ErrInvalidBBox)
	assert.Contains(t, err.Error(), "numeric")
}

func TestParseResolution(t *testing.T) {
	res, err := ParseResolution("0.25")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res, 1e-12)

	for _, v := range []any{0, -1.5, "abc", nil} {
		_, err := ParseResolution(v)
		assert.ErrorIs(t, err, ErrInvalidResolution, "value %v", v)
	}
}

func TestGridRequest_Validate(t *testing.T) {
	assert.NoError(t, GridRequest{Date: "2024-03-01"}.Validate())
	assert.ErrorIs(t, GridRequest{Date: "03/01/2024"}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, GridRequest{Date: "2024-02-30"}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, GridRequest{Date: "2024-03-01", BBox: &BBox{-200, 10, -90, 20}}.Validate(), ErrBBoxOutOfRange)
	assert.ErrorIs(t, GridRequest{Date: "2024-03-01", Resolution: ptr(0.0)}.Validate(), ErrInvalidResolution)
}

func TestGridRequest_Filename(t *testing.T) {
	assert.Equal(t, "nespreso_grid_2024-03-01.nc", GridRequest{Date: "2024-03-01"}.Filename())

	full := GridRequest{Date: "2024-03-01", BBox: &BBox{-97, 18, -82, 31}, Resolution: ptr(0.1)}
	assert.Equal(t, "nespreso_grid_2024-03-01_bbox_-97.00_18.00_-82.00_31.00_res_0.100.nc", full.Filename())

	resOnly := GridRequest{Date: "2024-03-01", Resolution: ptr(0.25)}
	assert.Equal(t, "nespreso_grid_2024-03-01_res_0.250.nc", resOnly.Filename())
}

func TestGridRequest_Payload(t *testing.T) {
	data, err := json.Marshal(GridRequest{Date: "2024-03-01"}.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-01"}`, string(data))

	data, err = json.Marshal(GridRequest{Date: "2024-03-01", BBox: &BBox{-100, 10, -90, 20}, Resolution: ptr(0.5)}.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-01","bbox":[-100,10,-90,20],"resolution":0.5}`, string(data))
}

func TestGenerateDateRange(t *testing.T) {
	dates, err := GenerateDateRange("2024-02-27", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, dates)

	dates, err = GenerateDateRange("2024-03-02", "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, dates)

	_, err = GenerateDateRange("yesterday", "2024-03-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCommonBBoxRegions(t *testing.T) {
	regions := CommonBBoxRegions()
	assert.Len(t, regions, 7)
	assert.Equal(t, BBox{-97, 18, -82, 31}, regions["full_gulf"])
	for name, b := range regions {
		assert.NoError(t, b.Validate(), name)
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 422, Body: `{"error":"bad date"}`}
	assert.Equal(t, `nespreso API error: status 422: {"error":"bad date"}`, err.Error())
}
