package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/couchcryptid/nespreso-client/internal/adapter/netcdf"
	"github.com/couchcryptid/nespreso-client/internal/domain"
)

const (
	defaultResolution = 0.25
	maxGridCells      = 1_000_000
)

type handler struct {
	depths []float32
}

func newHandler(levels int) http.Handler {
	h := &handler{depths: depthLevels(levels)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/profile", h.profile)
	mux.HandleFunc("POST /nespreso_grid", h.grid)
	return mux
}

// depthLevels spaces levels quadratically from the surface to 1800 m.
func depthLevels(n int) []float32 {
	depths := make([]float32, n)
	for i := range depths {
		if n > 1 {
			f := float64(i) / float64(n-1)
			depths[i] = float32(math.Round(1800 * f * f))
		}
	}
	return depths
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	var pts domain.PointSet
	if err := json.NewDecoder(r.Body).Decode(&pts); err != nil {
		reject(w, "invalid JSON body: %v", err)
		return
	}
	if _, err := domain.NewPointSet(pts.Lat, pts.Lon, pts.Date); err != nil {
		reject(w, "%v", err)
		return
	}

	n := pts.Len()
	numbers := make([]int32, n)
	temp := make([][]float32, n)
	salt := make([][]float32, n)
	for i := range n {
		day, err := time.Parse(time.DateOnly, pts.Date[i])
		if err != nil {
			reject(w, "date %d: %q is not YYYY-MM-DD", i, pts.Date[i])
			return
		}
		numbers[i] = int32(i)
		temp[i] = make([]float32, len(h.depths))
		salt[i] = make([]float32, len(h.depths))
		for j, d := range h.depths {
			temp[i][j] = temperature(pts.Lat[i], d, day.YearDay())
			salt[i][j] = salinity(d)
		}
	}

	ds := netcdf.NewDataset()
	ds.Variables = []netcdf.Variable{
		{Name: "depth", Values: h.depths, Dimensions: []string{"depth"}},
		{Name: domain.RecordDimension, Values: numbers, Dimensions: []string{domain.RecordDimension}},
		{Name: "lat", Values: pts.Lat, Dimensions: []string{domain.RecordDimension}},
		{Name: "lon", Values: pts.Lon, Dimensions: []string{domain.RecordDimension}},
		{Name: "temperature", Values: temp, Dimensions: []string{domain.RecordDimension, "depth"}},
		{Name: "salinity", Values: salt, Dimensions: []string{domain.RecordDimension, "depth"}},
	}
	ds.SetAttribute("title", "Synthetic NeSPReSO profiles")
	log.Printf("profile: %d points", n)
	writeNetCDF(w, ds)
}

func (h *handler) grid(w http.ResponseWriter, r *http.Request) {
	// bbox and resolution are decoded loosely so numeric strings are coerced
	// the way the real service does.
	var p struct {
		Date       string `json:"date"`
		BBox       any    `json:"bbox"`
		Resolution any    `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		reject(w, "invalid JSON body: %v", err)
		return
	}
	req := domain.GridRequest{Date: p.Date}
	if p.BBox != nil {
		b, err := domain.ParseBBox(p.BBox)
		if err != nil {
			reject(w, "%v", err)
			return
		}
		req.BBox = &b
	}
	if p.Resolution != nil {
		res, err := domain.ParseResolution(p.Resolution)
		if err != nil {
			reject(w, "%v", err)
			return
		}
		req.Resolution = &res
	}
	if err := req.Validate(); err != nil {
		reject(w, "%v", err)
		return
	}

	box := domain.CommonBBoxRegions()["full_gulf"]
	if req.BBox != nil {
		box = *req.BBox
	}
	res := defaultResolution
	if req.Resolution != nil {
		res = *req.Resolution
	}
	lats, lons := axis(box.LatMin, box.LatMax, res), axis(box.LonMin, box.LonMax, res)
	if len(lats)*len(lons) > maxGridCells {
		reject(w, "grid of %dx%d cells is too large", len(lats), len(lons))
		return
	}

	day, _ := time.Parse(time.DateOnly, req.Date)
	sst := make([][]float32, len(lats))
	for i, lat := range lats {
		sst[i] = make([]float32, len(lons))
		for j := range lons {
			sst[i][j] = temperature(lat, 0, day.YearDay())
		}
	}

	ds := netcdf.NewDataset()
	ds.Variables = []netcdf.Variable{
		{Name: "lat", Values: lats, Dimensions: []string{"lat"}},
		{Name: "lon", Values: lons, Dimensions: []string{"lon"}},
		{Name: "temperature", Values: sst, Dimensions: []string{"lat", "lon"}},
	}
	ds.SetAttribute("title", "Synthetic NeSPReSO grid")
	ds.SetAttribute("date", req.Date)
	log.Printf("grid: %s", req)
	writeNetCDF(w, ds)
}

// temperature is a surface value falling off with latitude, warmed in late
// summer, relaxing toward 4 C at depth.
func temperature(lat float64, depth float32, yearDay int) float32 {
	surface := 30 - 0.4*(lat-18) + 2*math.Sin(2*math.Pi*float64(yearDay-120)/365)
	return float32(4 + (surface-4)*math.Exp(-float64(depth)/300))
}

func salinity(depth float32) float32 {
	return float32(34.9 + 1.3*math.Exp(-float64(depth)/150))
}

// axis returns points from lo to hi inclusive at step res.
func axis(lo, hi, res float64) []float64 {
	n := int(math.Floor((hi-lo)/res+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*res
	}
	return out
}

func writeNetCDF(w http.ResponseWriter, ds *netcdf.Dataset) {
	data, err := ds.Bytes()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-netcdf")
	_, _ = w.Write(data)
}

func reject(w http.ResponseWriter, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": fmt.Sprintf(format, args...)})
}
