// Command mockserver serves synthetic NeSPReSO profile and grid responses for
// local development and smoke runs of the nespreso command. Values follow a
// simple analytic temperature/salinity model; they are plausible in shape,
// not in detail.
//
// Usage:
//
//	go run ./cmd/mockserver -addr :5000 -levels 20
//	NESPRESO_PROFILE_URL=http://localhost:5000/v1/profile \
//	NESPRESO_GRID_URL=http://localhost:5000/nespreso_grid \
//	  go run ./cmd/nespreso grid --date 2024-03-01 --region florida_straits
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", ":5000", "listen address")
	levels := flag.Int("levels", 20, "depth levels per profile")
	flag.Parse()

	if *levels <= 0 {
		flag.Usage()
		return fmt.Errorf("-levels must be positive, got %d", *levels)
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      newHandler(*levels),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("mock NeSPReSO service on %s (profile: /v1/profile, grid: /nespreso_grid, %d levels)", *addr, *levels)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
