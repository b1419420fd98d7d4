// Package domain models requests to and results from the NeSPReSO
// (Neural Synthetic Profiles from Remote Sensing and Observations) prediction
// service operated by COAPS at Florida State University.
//
// # Request Patterns
//
// Profile predictions are point-wise: parallel latitude, longitude, and date
// sequences of equal length N form a [PointSet]. Large point sets are split into
// contiguous [Batch] ranges of at most batch_size points, one HTTP request each.
//
// Grid queries are date-scoped: a single YYYY-MM-DD date, optionally restricted by
// a bounding box and a resolution in degrees. See [GridRequest].
//
// # Date Conventions
//
// The service only accepts ISO-8601 day strings ("2024-03-01"). Callers hand over
// dates in several encodings and [NormalizeDates] folds them into that form:
//
//	numeric      MATLAB-style datenum. The value is shifted by 366 and added to
//	             0001-01-01 as a day count, so 366 -> "0001-01-01" and
//	             730486 -> "2000-01-02". Downstream consumers depend on this
//	             exact offset; do not "fix" it.
//	time.Time    formatted as YYYY-MM-DD in its own location.
//	civil.Date   day-precision values; civil.DateTime is truncated to its date.
//	string       passed through unchanged.
//	anything     stringified with fmt and flagged as a fallback (see [Dates]).
//
// Fractional datenums are resolved to the microsecond before truncation to the
// day, so 738000.99999999999 rounds up to the next date.
//
// # Output Naming
//
//	profile batches   {prefix}_batch_{NNN}.nc        (NNN is 1-based, zero padded)
//	merged profiles   {prefix}.nc                     (prefix kept if it ends in .nc)
//	grid queries      nespreso_grid_{date}[_bbox_{a}_{b}_{c}_{d}][_res_{r}].nc
//
// Bounding-box numbers use two decimals and resolution three decimals.
//
// # Record Dimension
//
// Profile files carry one record per requested point along the "profile_number"
// dimension. Merged datasets renumber that coordinate to 0..N-1 in batch order.
package domain
