// Command nespreso requests profile predictions and gridded fields from a
// NeSPReSO service and writes them as NetCDF files.
//
// Usage:
//
//	nespreso profile --input points.csv --prefix gulf
//	nespreso profile --lat 25.5,26 --lon -90,-89.5 --date 2020-07-29,2020-01-02 --output out.nc
//	nespreso grid --date 2024-03-01 --region eastern_gulf --resolution 0.25
//	nespreso grid --start 2024-03-01 --end 2024-03-07
//	nespreso regions
//	nespreso inspect gulf.nc --points points.csv
//
// Settings come from environment variables; see internal/config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(prometheus.DefaultRegisterer).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
