package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	nespreso "github.com/couchcryptid/nespreso-client"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		input       string
		lats, lons  []float64
		dates       []string
		output      string
		prefix      string
		batchSize   int
		concurrency int
		noMerge     bool
		attrs       map[string]string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Request profile predictions for points",
		Long: `profile requests temperature and salinity profiles for a set of
latitude/longitude/date points, read from a CSV file (--input) or given as
comma separated flags. Dates are YYYY-MM-DD or numeric datenums.

Points are sent in batches of --batch-size, written to {prefix}_batch_NNN.nc,
and merged into {prefix}.nc when more than one batch succeeds. With --output
all points are sent in a single request instead.`,
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pts points
			var err error
			if input != "" {
				pts, err = readPointsFile(input)
				if err != nil {
					return err
				}
			} else {
				pts = pointsFromFlags(lats, lons, dates)
			}
			if len(pts.lat) == 0 {
				return errors.New("no points given, use --input or --lat/--lon/--date")
			}

			return a.run(cmd.Context(), func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				if output != "" {
					return a.single(ctx, out, pts, output)
				}
				opts := nespreso.BatchOptions{
					BatchSize:   a.cfg.BatchSize,
					Prefix:      prefix,
					Merge:       a.cfg.MergeOutput && !noMerge,
					Concurrency: a.cfg.BatchConcurrency,
					Attributes:  attrs,
				}
				if batchSize != 0 {
					opts.BatchSize = batchSize
				}
				if concurrency != 0 {
					opts.Concurrency = concurrency
				}
				return a.batch(ctx, out, pts, opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "CSV file with lat, lon, and date columns")
	f.Float64SliceVar(&lats, "lat", nil, "latitudes, comma separated")
	f.Float64SliceVar(&lons, "lon", nil, "longitudes, comma separated")
	f.StringSliceVar(&dates, "date", nil, "dates (YYYY-MM-DD or datenum), comma separated")
	f.StringVarP(&output, "output", "o", "", "send all points in one request and write the result to this file")
	f.StringVar(&prefix, "prefix", nespreso.DefaultPrefix, "batch and merged file name prefix")
	f.IntVar(&batchSize, "batch-size", 0, "points per request (default $BATCH_SIZE)")
	f.IntVar(&concurrency, "concurrency", 0, "batch requests in flight (default $BATCH_CONCURRENCY)")
	f.BoolVar(&noMerge, "no-merge", false, "keep batch files instead of merging them")
	f.StringToStringVar(&attrs, "attr", nil, "extra global attribute for the merged file, key=value")
	cmd.MarkFlagsMutuallyExclusive("input", "lat")
	cmd.MarkFlagsMutuallyExclusive("input", "lon")
	cmd.MarkFlagsMutuallyExclusive("input", "date")
	cmd.MarkFlagsMutuallyExclusive("output", "prefix")
	return cmd
}

func (a *app) single(ctx context.Context, w io.Writer, pts points, output string) error {
	res := <-a.client.FetchPredictions(ctx, pts.lat, pts.lon, pts.date, output)
	if res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(w, "wrote %s (%d points)\n", res.Path, len(pts.lat))
	return a.upload(ctx, w, []string{res.Path})
}

func (a *app) batch(ctx context.Context, w io.Writer, pts points, opts nespreso.BatchOptions) error {
	res, err := a.client.GetPredictionsBatch(ctx, pts.lat, pts.lon, pts.date, opts)
	if err != nil {
		return err
	}

	for _, o := range res.Outcomes {
		if o.OK() {
			fmt.Fprintf(w, "batch %03d  points %d-%d  ok      %s\n", o.Batch.Index, o.Batch.Start+1, o.Batch.End, o.Path)
		} else {
			fmt.Fprintf(w, "batch %03d  points %d-%d  failed  %v\n", o.Batch.Index, o.Batch.Start+1, o.Batch.End, o.Err)
		}
	}
	fmt.Fprintf(w, "%d of %d batches succeeded\n", res.Succeeded(), len(res.Outcomes))
	if res.MergeErr != nil {
		fmt.Fprintf(w, "merge skipped: %v\n", res.MergeErr)
	}
	if res.Output != "" {
		fmt.Fprintf(w, "output %s\n", res.Output)
	}

	if res.Succeeded() == 0 {
		return errors.New("no batch succeeded")
	}
	return a.upload(ctx, w, res.Paths())
}
