package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	nespreso "github.com/couchcryptid/nespreso-client"
)

func newGridCmd(a *app) *cobra.Command {
	var (
		date, start, end string
		region           string
		bbox             []float64
		resolution       float64
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Request gridded fields for one or more dates",
		Long: `grid requests the gridded temperature and salinity field for --date, or
for every date from --start to --end inclusive. The field can be limited to a
bounding box (--bbox lon_min,lat_min,lon_max,lat_max or a named --region) and
a resolution in degrees. Each date is written to its own file under
$GRID_OUTPUT_DIR.`,
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if region != "" {
				b, ok := nespreso.CommonBBoxRegions()[region]
				if !ok {
					return fmt.Errorf("unknown region %q, see 'nespreso regions'", region)
				}
				bbox = b.Values()
			}
			var res *float64
			if cmd.Flags().Changed("resolution") {
				res = &resolution
			}

			var dates []string
			switch {
			case date != "":
				dates = []string{date}
			case start != "":
				var err error
				if dates, err = nespreso.GenerateDateRange(start, end); err != nil {
					return err
				}
			default:
				return errors.New("either --date or --start and --end is required")
			}

			return a.run(cmd.Context(), func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				if len(dates) == 1 {
					r := a.client.QueryGrid(ctx, dates[0], bbox, res)
					printGridResult(out, r)
					if r.Err != nil {
						return r.Err
					}
					return a.upload(ctx, out, []string{r.Filename})
				}

				summary := a.client.QueryMultipleDates(ctx, dates, bbox, res)
				var files []string
				for _, r := range summary.Results {
					printGridResult(out, r)
					if r.Success {
						files = append(files, r.Filename)
					}
				}
				fmt.Fprintf(out, "%d of %d dates succeeded\n", summary.Successful, summary.Total)
				if summary.Successful == 0 {
					return errors.New("no grid query succeeded")
				}
				return a.upload(ctx, out, files)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&date, "date", "", "date to query, YYYY-MM-DD")
	f.StringVar(&start, "start", "", "first date of a range, YYYY-MM-DD")
	f.StringVar(&end, "end", "", "last date of a range, YYYY-MM-DD")
	f.Float64SliceVar(&bbox, "bbox", nil, "lon_min,lat_min,lon_max,lat_max")
	f.StringVar(&region, "region", "", "named bounding box, see 'nespreso regions'")
	f.Float64Var(&resolution, "resolution", 0, "grid resolution in degrees")
	cmd.MarkFlagsRequiredTogether("start", "end")
	cmd.MarkFlagsMutuallyExclusive("date", "start")
	cmd.MarkFlagsMutuallyExclusive("bbox", "region")
	return cmd
}

func printGridResult(w io.Writer, r nespreso.GridResult) {
	if r.Success {
		fmt.Fprintf(w, "%s  ok      %s (%d bytes)\n", r.Date, r.Filename, r.SizeBytes)
		return
	}
	if r.StatusCode != 0 {
		fmt.Fprintf(w, "%s  failed  status %d: %v\n", r.Date, r.StatusCode, r.Err)
		return
	}
	fmt.Fprintf(w, "%s  failed  %v\n", r.Date, r.Err)
}

func newRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "regions",
		Short:             "List named bounding boxes",
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, _ []string) {
			regions := nespreso.CommonBBoxRegions()
			names := make([]string, 0, len(regions))
			for name := range regions {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				vals := regions[name].Values()
				parts := make([]string, len(vals))
				for i, v := range vals {
					parts[i] = fmt.Sprint(v)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, strings.Join(parts, ","))
			}
		},
	}
}
