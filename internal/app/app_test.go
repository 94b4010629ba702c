package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/config"
)

func testConfig(supabaseURL string) *config.Config {
	return &config.Config{
		Environment:    "test",
		LogLevel:       "error",
		HTTPPort:       8090,
		RequestTimeout: 5 * time.Second,
		CatalogBackend: config.BackendPostgREST,
		CatalogTimeout: time.Second,
		SupabaseURL:    supabaseURL,
		RateLimitRPS:   0,
		OTelSampleRate: 1,
	}
}

func TestNewApp_PostgRESTServesSearch(t *testing.T) {
	supabase := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/v1/rpc/search_products":
			_, _ = io.WriteString(w, `[{"id":"p1","name":"Boot","image":null,"total_count":1}]`)
		case "/rest/v1/rpc/facet_counts":
			_, _ = io.WriteString(w, `{"brands":[],"categories":[]}`)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	}))
	defer supabase.Close()

	a, err := NewApp(testConfig(supabase.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Nil(t, a.pool)

	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=boot", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":1`)

	rec = httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, a.Shutdown())
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.HTTPPort = 0

	a, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
