package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/nespreso-client/internal/adapter/http"
	"github.com/couchcryptid/nespreso-client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error, runs *httpadapter.RunLog) *httpadapter.Server {
	if runs == nil {
		runs = httpadapter.NewRunLog(0)
	}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, runs, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("no profile batch has completed yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRunsEndpointEmpty(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/runs")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestRunsEndpointNewestFirst(t *testing.T) {
	runs := httpadapter.NewRunLog(2)
	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, runs.PublishSummary(ctx, domain.RunSummary{Kind: domain.RunKindProfile, Name: name}))
	}

	rec := serve(newTestServer(nil, runs), "/runs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Runs []domain.RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "third", body.Runs[0].Name)
	assert.Equal(t, "second", body.Runs[1].Name)
}
