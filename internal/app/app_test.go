package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/internal/app"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/httpserver"
	"github.com/dmitrymomot/adaptive/pkg/ratelimiter"
	"github.com/dmitrymomot/adaptive/pkg/rewrite"
	"github.com/dmitrymomot/adaptive/pkg/telemetry"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	page      = `<!DOCTYPE html><html><head><title>t</title></head><body><img data-src="/a.jpg" alt="a"></body></html>`
	highEnd   = `{"device_memory":16,"hardware_concurrency":8,"connection":{"effective_type":"4g","downlink_mbps":10,"rtt_ms":50}}`
)

func baseConfig(t *testing.T) app.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o600))
	return app.Config{
		Env:        "development",
		Service:    "adaptived-test",
		StaticDir:  dir,
		MountPath:  "/_adaptive",
		MaxBody:    rewrite.DefaultMaxBody,
		Store:      app.StoreMemory,
		SQLitePath: filepath.Join(dir, "adaptive.db"),
		SessionTTL: time.Minute,
		Sessions:   100,
	}
}

func start(t *testing.T, cfg app.Config) (*app.App, *httptest.Server) {
	t.Helper()
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, a.Close(context.Background()))
	})
	return a, srv
}

func get(t *testing.T, url string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", desktopUA)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func report(t *testing.T, srv *httptest.Server, body string) *http.Cookie {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/_adaptive/report", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("User-Agent", desktopUA)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == telemetry.DefaultCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := app.Config{MountPath: "/_adaptive", Store: app.StoreMemory, Sessions: 1, MaxBody: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*app.Config)
		err    error
	}{
		{"root mount", func(c *app.Config) { c.MountPath = "/" }, app.ErrMountPath},
		{"relative mount", func(c *app.Config) { c.MountPath = "adaptive" }, app.ErrMountPath},
		{"redis without url", func(c *app.Config) { c.Store = app.StoreRedis }, app.ErrRedisRequired},
		{"bad log level", func(c *app.Config) { c.LogLevel = "loud" }, app.ErrLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}

	t.Run("unknown store", func(t *testing.T) {
		t.Parallel()
		cfg := valid
		cfg.Store = "etcd"
		assert.Error(t, cfg.Validate())
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := app.NewLogger(app.Config{Env: "production", Service: "svc", LogLevel: "warn"}, &buf)

	log.Info("dropped")
	log.Warn("kept")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "svc", rec["service"])
}

func TestStaticPagesAreAdapted(t *testing.T) {
	t.Parallel()
	_, srv := start(t, baseConfig(t))

	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(device.TierMidRange), resp.Header.Get(rewrite.HeaderTier))
	assert.Contains(t, body, `loading="lazy"`)
	assert.Contains(t, body, ` src="/a.jpg"`)
}

func TestSessionDrivesRewrite(t *testing.T) {
	t.Parallel()
	a, srv := start(t, baseConfig(t))

	cookie := report(t, srv, highEnd)
	assert.Equal(t, 1, a.Registry().Len())

	resp, body := get(t, srv.URL+"/", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(device.TierHighEnd), resp.Header.Get(rewrite.HeaderTier))
	assert.Contains(t, body, `data-src="/a.jpg"`)
	assert.NotContains(t, body, ` src="/a.jpg"`, "high-end sessions skip lazy loading")
}

func TestProfileFeedsSessions(t *testing.T) {
	t.Parallel()
	cfg := baseConfig(t)
	cfg.Profile = filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(cfg.Profile, []byte("images:\n  format: avif\n"), 0o600))

	a, srv := start(t, cfg)
	assert.Equal(t, "avif", a.Profile().Images.Format)

	cookie := report(t, srv, highEnd)
	resp, body := get(t, srv.URL+"/_adaptive/config", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got telemetry.ConfigResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "avif", got.Config.Images.Format)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	cfg := baseConfig(t)
	cfg.Store = app.StoreSQLite
	_, srv := start(t, cfg)

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, httpserver.StatusAlive)

	resp, body = get(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var report httpserver.HealthReport
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	assert.Equal(t, map[string]string{app.StoreSQLite: "ok"}, report.Checks)
}

func TestUpstreamProxy(t *testing.T) {
	t.Parallel()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "identity", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))
	t.Cleanup(upstream.Close)

	cfg := baseConfig(t)
	cfg.Upstream = upstream.URL
	cfg.Store = app.StoreNone
	_, srv := start(t, cfg)

	resp, body := get(t, srv.URL+"/anything")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(rewrite.HeaderTier))
	assert.Contains(t, body, "<title>t</title>")
}

func TestTelemetryRateLimit(t *testing.T) {
	t.Parallel()
	cfg := baseConfig(t)
	cfg.RateLimit = ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour}
	_, srv := start(t, cfg)

	resp, _ := get(t, srv.URL+"/_adaptive/schema/report")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))

	resp, _ = get(t, srv.URL+"/_adaptive/schema/report")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "pages are not limited")
}

func TestInvalidUpstream(t *testing.T) {
	t.Parallel()
	cfg := baseConfig(t)
	cfg.Upstream = "not a url"
	_, err := app.New(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, app.ErrUpstream)
}
