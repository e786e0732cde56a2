package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmdi-explainer/lmdi-go/internal/api"
	"github.com/lmdi-explainer/lmdi-go/internal/ratelimit"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
	"github.com/lmdi-explainer/lmdi-go/internal/testutil"
)

func newTestServer(t *testing.T, opts api.Options) *httptest.Server {
	t.Helper()
	if opts.Source == nil {
		opts.Source = scenario.Builtin()
	}
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}
	srv, err := api.New(context.Background(), opts)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := api.New(context.Background(), api.Options{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestLogMean(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := postJSON(t, ts.URL+"/api/v1/logmean", `{"a": 48, "b": 24}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.InDelta(t, 34.62468, body["value"], 1e-4)
}

func TestLogMean_InvalidDomain(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := postJSON(t, ts.URL+"/api/v1/logmean", `{"a": -1, "b": 2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLogMean_BadBody(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	for _, body := range []string{`{`, `{"a": 1, "c": 2}`} {
		resp := postJSON(t, ts.URL+"/api/v1/logmean", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestDecompose(t *testing.T) {
	ts := newTestServer(t, api.Options{Workers: 2})

	raw, err := json.Marshal(map[string]any{"entities": testutil.FourFactorBatch()})
	require.NoError(t, err)
	resp := postJSON(t, ts.URL+"/api/v1/decompose", string(raw))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Contributions []float64   `json:"contributions"`
		PerEntity     [][]float64 `json:"per_entity"`
		Before        float64     `json:"before"`
		After         float64     `json:"after"`
		Delta         float64     `json:"delta"`
		Residual      float64     `json:"residual"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Contributions, 4)
	assert.InDelta(t, 24, body.Contributions[0], 1e-9)
	assert.InDelta(t, 5, body.Contributions[3], 1e-9)
	assert.Equal(t, 29.0, body.Before)
	assert.Equal(t, 58.0, body.After)
	assert.Equal(t, 29.0, body.Delta)
	assert.InDelta(t, 0, body.Residual, 1e-9)
	assert.Len(t, body.PerEntity, 2)
}

func TestDecompose_Errors(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"factor count mismatch", `{"entities":[{"before":[1,2],"after":[1,2]},{"before":[1],"after":[1]}]}`, http.StatusBadRequest},
		{"vector length", `{"entities":[{"before":[1,2],"after":[1]}]}`, http.StatusBadRequest},
		{"strict domain error", `{"entities":[{"before":[1,0],"after":[2,3]}],"strict":true}`, http.StatusUnprocessableEntity},
		{"malformed", `{"entities":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/v1/decompose", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestDecompose_LenientReportsSkipped(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := postJSON(t, ts.URL+"/api/v1/decompose", `{"entities":[{"before":[2,0],"after":[3,4]}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Skipped []struct {
			Entity int `json:"entity"`
			Factor int `json:"factor"`
		} `json:"skipped"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Skipped, 1)
	assert.Equal(t, 1, body.Skipped[0].Factor)
}

func TestSimple(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := postJSON(t, ts.URL+"/api/v1/simple", `{"x0":1000,"y0":50,"x1":1200,"y1":60}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		DX        float64 `json:"dx"`
		DY        float64 `json:"dy"`
		Total     float64 `json:"total"`
		Laspeyres struct {
			DX       float64 `json:"dx"`
			DY       float64 `json:"dy"`
			Residual float64 `json:"residual"`
		} `json:"laspeyres"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 22000.0, body.Total)
	assert.InDelta(t, 22000, body.DX+body.DY, 1e-9)
	assert.Equal(t, 10000.0, body.Laspeyres.DX)
	assert.Equal(t, 10000.0, body.Laspeyres.DY)
	assert.Equal(t, 2000.0, body.Laspeyres.Residual)
}

func TestListScenarios(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "revenue", list[0]["name"])
}

func TestGetScenario(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios/users-price")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sc))
	assert.Equal(t, "users-price", sc["name"])

	resp = get(t, ts.URL+"/api/v1/scenarios/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReport(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios/revenue/report?view=percent")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		View       string         `json:"view"`
		Method     string         `json:"method"`
		Report     map[string]any `json:"report"`
		Comparison map[string]any `json:"comparison"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "percent", body.View)
	assert.Equal(t, "lmdi", body.Method)
	assert.Equal(t, "ipo", body.Report["top_factor"])
	assert.Nil(t, body.Comparison)
}

func TestReport_Laspeyres(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios/users-price/report?method=laspeyres")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Comparison struct {
			LaspeyresResidual float64 `json:"laspeyres_residual"`
		} `json:"comparison"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.InDelta(t, 2000, body.Comparison.LaspeyresResidual, 1e-9)
}

func TestReport_BadQuery(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	assert.Equal(t, http.StatusBadRequest, get(t, ts.URL+"/api/v1/scenarios/revenue/report?view=sideways").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, ts.URL+"/api/v1/scenarios/revenue/report?method=shapley").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, ts.URL+"/api/v1/scenarios/nope/report").StatusCode)
}

func TestUI(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios/revenue/ui?view=percent&method=laspeyres")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var schema map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	assert.Equal(t, "v1", schema["ui_schema_version"])
	assert.Equal(t, "percent", schema["view"])
	assert.Equal(t, "laspeyres", schema["method"])
	components, ok := schema["components"].([]any)
	require.True(t, ok)
	assert.Len(t, components, 5)
}

func TestWaterfall(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios/users-price/waterfall.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<svg")

	resp = get(t, ts.URL+"/api/v1/scenarios/users-price/waterfall.png?method=laspeyres")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	resp = get(t, ts.URL+"/api/v1/scenarios/users-price/waterfall.gif")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStream_ThroughMiddleware(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/scenarios/users-price/stream")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "event: RUN_STARTED\n"))
	assert.Equal(t, 1, strings.Count(string(body), "event: STATE_DELTA\n"))
	assert.Contains(t, string(body), "event: RUN_FINISHED\n")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	get(t, ts.URL+"/api/v1/scenarios")
	postJSON(t, ts.URL+"/api/v1/simple", `{"x0":1,"y0":1,"x1":2,"y1":2}`)

	resp := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lmdi_http_requests_total{method="GET",route="GET /api/v1/scenarios",status="200"} 1`)
	assert.Contains(t, string(body), `lmdi_decompositions_total{endpoint="simple"} 1`)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, api.Options{Limiter: ratelimit.NewClientLimiter(0.001, 1)})

	assert.Equal(t, http.StatusOK, get(t, ts.URL+"/api/v1/scenarios").StatusCode)
	resp := get(t, ts.URL+"/api/v1/scenarios")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	// Health is never limited.
	assert.Equal(t, http.StatusOK, get(t, ts.URL+"/api/v1/health").StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/health")
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-me")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "trace-me", resp2.Header.Get("X-Request-ID"))
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	resp := get(t, ts.URL+"/api/v1/health")
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/decompose", nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp2.StatusCode)
}
