package telemetry_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/telemetry"
)

const highEndBody = `{"device_memory":16,"hardware_concurrency":8,"connection":{"effective_type":"4g","downlink_mbps":10,"rtt_ms":50}}`

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == telemetry.DefaultCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterReportAndConfig(t *testing.T) {
	t.Parallel()

	reg := telemetry.NewRegistry()
	t.Cleanup(reg.Close)
	router := telemetry.Router(reg)

	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(highEndBody))
	req.Header.Set("User-Agent", desktopUA)
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Accept-CH"))

	cookie := sessionCookie(t, rec.Result())
	assert.True(t, cookie.HttpOnly)

	var reported telemetry.ConfigResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reported))
	assert.Equal(t, cookie.Value, reported.SessionID)
	assert.Equal(t, device.TierHighEnd, reported.Tier)
	assert.Equal(t, 90, reported.Config.Images.Quality)
	assert.Equal(t, reported.Config.Images.Quality, reported.Signals.ImageQuality)

	req = httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("User-Agent", desktopUA)
	req.AddCookie(cookie)
	rec = serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	var current telemetry.ConfigResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&current))
	assert.Equal(t, reported.SessionID, current.SessionID)
	assert.Equal(t, device.TierHighEnd, current.Tier)

	page := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	page.AddCookie(cookie)
	info, ok := reg.RequestInfo(page)
	require.True(t, ok)
	assert.Equal(t, device.TierHighEnd, info.Tier())
	cfg, ok := reg.RequestConfig(page)
	require.True(t, ok)
	assert.Equal(t, 90, cfg.Images.Quality)

	_, ok = reg.RequestSession(httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.False(t, ok, "no cookie")
}

func TestRouterConfigFromHeaders(t *testing.T) {
	t.Parallel()

	reg := telemetry.NewRegistry()
	t.Cleanup(reg.Close)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("User-Agent", pixelUA)
	req.Header.Set("Sec-CH-Device-Memory", "1")
	rec := serve(telemetry.Router(reg), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp telemetry.ConfigResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, device.TierLowEnd, resp.Tier)
	assert.Equal(t, device.TypeMobile, resp.Device.Type)
	assert.Contains(t, resp.Signals.Classes, optimize.ClassNoShadows)
}

func TestRouterValidation(t *testing.T) {
	t.Parallel()

	reg := telemetry.NewRegistry()
	t.Cleanup(reg.Close)
	router := telemetry.Router(reg)

	type errorBody struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}

	tests := []struct {
		name  string
		path  string
		body  string
		field string
	}{
		{name: "report out of range", path: "/report", body: `{"device_memory":-1}`, field: "device_memory"},
		{name: "report malformed", path: "/report", body: `{`},
		{name: "samples descending", path: "/samples", body: `{"frames":[3,2,1]}`, field: "frames"},
		{name: "samples malformed", path: "/samples", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(router, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			if tt.field != "" {
				require.NotEmpty(t, body.Fields)
				assert.Equal(t, tt.field, body.Fields[0].Field)
			}
		})
	}
}

func TestRouterSamples(t *testing.T) {
	t.Parallel()

	reg := telemetry.NewRegistry()
	t.Cleanup(reg.Close)
	router := telemetry.Router(reg)

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/samples",
		strings.NewReader(`{"frames":[0,16,33],"connection":{"effective_type":"slow-2g"}}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp telemetry.SamplesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Queued)

	cookie := sessionCookie(t, rec.Result())
	s, ok := reg.Get(cookie.Value)
	require.True(t, ok)
	require.Eventually(t, func() bool { return s.Config().Images.Quality <= 50 }, time.Second, 5*time.Millisecond)
}

func TestRouterSchemas(t *testing.T) {
	t.Parallel()

	reg := telemetry.NewRegistry()
	t.Cleanup(reg.Close)
	router := telemetry.Router(reg)

	tests := []struct {
		path string
		id   string
		prop string
	}{
		{path: "/schema/report", id: telemetry.ReportSchemaID, prop: "device_memory"},
		{path: "/schema/samples", id: telemetry.SamplesSchemaID, prop: "frames"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			rec := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var schema map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&schema))
			assert.Equal(t, tt.id, schema["$id"])
			props, ok := schema["properties"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, props, tt.prop)
		})
	}
}

func TestRouterStream(t *testing.T) {
	t.Parallel()

	reg := telemetry.NewRegistry()
	t.Cleanup(reg.Close)
	srv := httptest.NewServer(telemetry.Router(reg))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/config/stream", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", desktopUA)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	cookie := sessionCookie(t, resp)

	events := make(chan string, 16)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data:") {
				events <- line
			}
		}
	}()

	next := func() string {
		t.Helper()
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream closed")
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("no event received")
			return ""
		}
	}

	first := next()
	assert.Contains(t, first, `"adaptive"`)
	assert.Contains(t, first, `"imageQuality"`)

	s, ok := reg.Get(cookie.Value)
	require.True(t, ok)
	s.Optimizer().UpdateConfig(func(c *optimize.Config) { c.Images.Quality = 33 })
	assert.Contains(t, next(), `"imageQuality":33`)

	// A report replaces the optimizer; the stream follows the new one.
	_, err = reg.Report(ctx, cookie.Value, s.Source(), highEndReport())
	require.NoError(t, err)
	assert.Contains(t, next(), `"imageQuality":90`)
}
