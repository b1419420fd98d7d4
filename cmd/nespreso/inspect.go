package main

import (
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/nespreso-client/internal/adapter/netcdf"
	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// phase tracks pass/fail for one inspection check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newInspectCmd() *cobra.Command {
	var pointsFile string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Check a merged profile file for consistency",
		Long: `inspect loads a profile NetCDF file and checks that the profile_number
coordinate runs 0..n-1, that every per-profile variable has n records, and that
the descriptive global attributes are present. With --points, the record count
and any lat/lon variables are compared against the CSV the file was requested
from.`,
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := netcdf.ReadFile(args[0])
			if err != nil {
				return err
			}
			phases := []*phase{
				checkRecordNumbering(ds),
				checkRecordLengths(ds),
				checkGlobalAttributes(ds),
			}
			if pointsFile != "" {
				pts, err := readPointsFile(pointsFile)
				if err != nil {
					return err
				}
				phases = append(phases, checkAgainstPoints(ds, pts))
			}
			if !report(cmd.OutOrStdout(), args[0], ds.Records(domain.RecordDimension), phases) {
				return fmt.Errorf("%s failed inspection", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pointsFile, "points", "", "CSV file of the requested points to compare against")
	return cmd
}

func report(w io.Writer, file string, records int, phases []*phase) bool {
	fmt.Fprintf(w, "%s: %d profiles\n", file, records)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-24s %s\n", p.name, status)
	}
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for _, e := range p.errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return allPassed
}

func checkRecordNumbering(ds *netcdf.Dataset) *phase {
	p := &phase{name: "record numbering"}
	v, ok := ds.Variable(domain.RecordDimension)
	if !ok {
		p.errorf("no %s coordinate", domain.RecordDimension)
		return p
	}
	rv := reflect.ValueOf(v.Values)
	if rv.Kind() != reflect.Slice {
		p.errorf("%s has non-array values of type %T", domain.RecordDimension, v.Values)
		return p
	}
	for i := range rv.Len() {
		n, err := cast.ToInt64E(rv.Index(i).Interface())
		if err != nil || n != int64(i) {
			p.errorf("%s[%d] = %v, want %d", domain.RecordDimension, i, rv.Index(i).Interface(), i)
			if len(p.errors) >= 10 {
				p.errorf("further mismatches omitted")
				break
			}
		}
	}
	return p
}

func checkRecordLengths(ds *netcdf.Dataset) *phase {
	p := &phase{name: "record lengths"}
	n := ds.Records(domain.RecordDimension)
	if n == 0 {
		p.errorf("no variable uses %s as its leading dimension", domain.RecordDimension)
		return p
	}
	for _, v := range ds.Variables {
		if len(v.Dimensions) == 0 || v.Dimensions[0] != domain.RecordDimension {
			continue
		}
		rv := reflect.ValueOf(v.Values)
		if rv.Kind() != reflect.Slice || rv.Len() != n {
			p.errorf("%s: %d records, want %d", v.Name, lenOf(rv), n)
		}
	}
	return p
}

func checkGlobalAttributes(ds *netcdf.Dataset) *phase {
	p := &phase{name: "global attributes"}
	keys, want := domain.GlobalAttributes(nil)
	for _, k := range keys {
		got, ok := ds.Attribute(k)
		if !ok {
			p.errorf("missing %q", k)
			continue
		}
		if fmt.Sprint(got) != want[k] {
			p.errorf("%s = %q, want %q", k, got, want[k])
		}
	}
	return p
}

func checkAgainstPoints(ds *netcdf.Dataset, pts points) *phase {
	p := &phase{name: "requested points"}
	if n := ds.Records(domain.RecordDimension); n != len(pts.lat) {
		p.errorf("%d profiles for %d requested points", n, len(pts.lat))
		return p
	}
	compareCoordinates(p, ds, "lat", pts.lat)
	compareCoordinates(p, ds, "lon", pts.lon)
	return p
}

func compareCoordinates(p *phase, ds *netcdf.Dataset, name string, want []float64) {
	v, ok := ds.Variable(name)
	if !ok {
		return
	}
	rv := reflect.ValueOf(v.Values)
	if rv.Kind() != reflect.Slice || rv.Len() != len(want) {
		p.errorf("%s: %d values, want %d", name, lenOf(rv), len(want))
		return
	}
	for i := range want {
		got, err := cast.ToFloat64E(rv.Index(i).Interface())
		if err != nil || math.Abs(got-want[i]) > 1e-4 {
			p.errorf("%s[%d] = %v, want %v", name, i, rv.Index(i).Interface(), want[i])
		}
	}
}

func lenOf(rv reflect.Value) int {
	if rv.Kind() == reflect.Slice {
		return rv.Len()
	}
	return 0
}
