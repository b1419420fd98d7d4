package domain

import "fmt"

// PointSet holds parallel latitude, longitude, and date sequences of equal length.
type PointSet struct {
	Lat  []float64 `json:"lat"`
	Lon  []float64 `json:"lon"`
	Date []string  `json:"date"`
}

// NewPointSet builds a PointSet, rejecting sequences of unequal length.
func NewPointSet(lat, lon []float64, date []string) (PointSet, error) {
	if len(lat) != len(lon) || len(lat) != len(date) {
		return PointSet{}, fmt.Errorf("%w: lat=%d lon=%d date=%d", ErrLengthMismatch, len(lat), len(lon), len(date))
	}
	return PointSet{Lat: lat, Lon: lon, Date: date}, nil
}

// Len returns the number of points.
func (p PointSet) Len() int { return len(p.Lat) }

// Slice returns the points covered by b. The returned sequences share storage
// with p and must not be mutated.
func (p PointSet) Slice(b Batch) PointSet {
	return PointSet{
		Lat:  p.Lat[b.Start:b.End],
		Lon:  p.Lon[b.Start:b.End],
		Date: p.Date[b.Start:b.End],
	}
}

// Batch is the half-open index range [Start, End) of a PointSet.
type Batch struct {
	Index int // 1-based sequence number
	Start int
	End   int
}

// Size returns the number of points in the batch.
func (b Batch) Size() int { return b.End - b.Start }

// SplitBatches partitions [0, total) into consecutive batches of size batchSize.
// The final batch holds the remainder.
func SplitBatches(total, batchSize int) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	batches := make([]Batch, 0, (total+batchSize-1)/batchSize)
	for start := 0; start < total; start += batchSize {
		batches = append(batches, Batch{
			Index: start/batchSize + 1,
			Start: start,
			End:   min(start+batchSize, total),
		})
	}
	return batches, nil
}

// BatchOutcome records how one batch request ended. Path is set on success,
// Err on failure.
type BatchOutcome struct {
	Batch Batch
	Path  string
	Err   error
}

// OK reports whether the batch produced an output file.
func (o BatchOutcome) OK() bool { return o.Err == nil && o.Path != "" }
