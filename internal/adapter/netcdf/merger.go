// Package netcdf merges per-batch NetCDF profile files into one dataset.
package netcdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gonetcdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/nespreso-client/internal/domain"
)

// Merger concatenates profile files along the record dimension.
// It implements pipeline.Merger.
type Merger struct {
	dim    string
	logger *slog.Logger
}

// NewMerger creates a Merger using the profile record dimension.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{dim: domain.RecordDimension, logger: logger}
}

// Merge concatenates files in order, renumbers the record coordinate from 0,
// stamps the global attributes (extra overrides defaults), and writes output.
// Every opened input is closed before Merge returns.
func (m *Merger) Merge(ctx context.Context, files []string, output string, extra map[string]string) error {
	if len(files) == 0 {
		return errors.New("merge: no files")
	}

	groups := make([]api.Group, 0, len(files))
	defer func() {
		for _, g := range groups {
			g.Close()
		}
	}()

	datasets := make([]*Dataset, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.logger.Debug("loading batch file", "index", i+1, "of", len(files), "file", f)
		g, err := gonetcdf.Open(f)
		if err != nil {
			return fmt.Errorf("open %s: %w", f, err)
		}
		groups = append(groups, g)

		ds, err := readDataset(g)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		datasets = append(datasets, ds)
	}

	merged, err := Concat(datasets, m.dim)
	if err != nil {
		return err
	}
	merged.Renumber(m.dim)

	keys, vals := domain.GlobalAttributes(extra)
	for _, k := range keys {
		merged.SetAttribute(k, vals[k])
	}

	m.logger.Debug("writing merged dataset", "output", output, "records", merged.Records(m.dim))
	return merged.Write(output)
}
