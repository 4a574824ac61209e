// SPDX-License-Identifier: MIT

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mlmtest/config"
	"github.com/katalvlaran/mlmtest/model"
	"github.com/katalvlaran/mlmtest/pvalue"
	"github.com/katalvlaran/mlmtest/server"
)

func newServer(t *testing.T) *server.Server {
	t.Helper()

	s, err := server.New(config.Default(), zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)

	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func twoGroupRequest() server.AnalyzeRequest {
	return server.AnalyzeRequest{
		Response: [][]server.Cell{
			{0.1, 0.3}, {-0.4, 0.2}, {0.5, -0.1}, {0.0, -0.5}, {-0.2, 0.1},
			{2.6, 3.1}, {3.3, 2.7}, {2.9, 3.4}, {3.1, 2.5}, {2.8, 3.0},
		},
		Design: model.Spec{
			Variables: []model.VariableSpec{{Name: "group", Contrast: "sum"}},
		},
		Data: map[string][]string{
			"group": {"a", "a", "a", "a", "a", "b", "b", "b", "b", "b"},
		},
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newServer(t).Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(server.RequestIDHeader))
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	h := newServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/v1/analyze", twoGroupRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tbl struct {
		Scheme string `json:"scheme"`
		N      int    `json:"n"`
		Rows   []struct {
			Term string  `json:"term"`
			Df   int     `json:"df"`
			P    float64 `json:"p"`
		} `json:"rows"`
		Residuals struct {
			Df int `json:"df"`
		} `json:"residuals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tbl))
	assert.Equal(t, "II", tbl.Scheme)
	assert.Equal(t, 10, tbl.N)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "group", tbl.Rows[0].Term)
	assert.Equal(t, 1, tbl.Rows[0].Df)
	assert.Less(t, tbl.Rows[0].P, 0.05)
	assert.Equal(t, 8, tbl.Residuals.Df)

	metrics := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `mlmtest_analyses_total{outcome="ok"} 1`)
}

func TestAnalyze_SchemeAndSubset(t *testing.T) {
	t.Parallel()

	req := twoGroupRequest()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	m["scheme"] = "III"
	m["subset"] = []int{0, 1, 2, 5, 6, 7}

	rec := do(t, newServer(t).Handler(), http.MethodPost, "/v1/analyze", m)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"scheme":"III"`)
	assert.Contains(t, rec.Body.String(), `"n":6`)
	assert.Contains(t, rec.Body.String(), model.InterceptName)
}

func TestAnalyze_Errors(t *testing.T) {
	t.Parallel()

	h := newServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/v1/analyze", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/analyze", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := twoGroupRequest()
	req.Response[3] = []server.Cell{1}
	rec = do(t, h, http.MethodPost, "/v1/analyze", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = twoGroupRequest()
	req.Data["group"] = req.Data["group"][:9]
	rec = do(t, h, http.MethodPost, "/v1/analyze", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var e server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.NotEmpty(t, e.Error)
	assert.Equal(t, rec.Header().Get(server.RequestIDHeader), e.RequestID)

	star := server.AnalyzeRequest{
		Response: [][]server.Cell{{0, 1, 1, 1}, {1, 0, 2, 2}, {1, 2, 0, 2}, {1, 2, 2, 0}},
		Distance: true,
		Design:   model.Spec{Variables: []model.VariableSpec{{Name: "g"}}},
		Data:     map[string][]string{"g": {"a", "a", "b", "b"}},
	}
	rec = do(t, h, http.MethodPost, "/v1/analyze", star)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/analyze", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze_NullCellsExcludeRows(t *testing.T) {
	t.Parallel()

	h := newServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/v1/analyze",
		strings.Replace(mustJSON(t, twoGroupRequest()), "[0.5,-0.1]", "[null,-0.1]", 1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"n":9`)
	assert.Contains(t, rec.Body.String(), `"dropped":1`)

	req := twoGroupRequest()
	req.Data["group"][8] = "NA"
	rec = do(t, h, http.MethodPost, "/v1/analyze", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"dropped":1`)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := newServer(t).Handler()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/pvalue"},
		{http.MethodPut, "/v1/analyze"},
		{http.MethodPost, "/healthz"},
	} {
		rec := do(t, h, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)

		var e server.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
		assert.Equal(t, "method not allowed", e.Error)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)

	return string(b)
}

func TestPValue(t *testing.T) {
	t.Parallel()

	h := newServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/v1/pvalue", server.PValueRequest{F: 1, Lambda: []float64{1}, Df: 2, DfE: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pvalue.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 0.5, res.P, 10*res.Accuracy)

	rec = do(t, h, http.MethodPost, "/v1/pvalue", server.PValueRequest{F: -1, Lambda: []float64{1}, Df: 1, DfE: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPValue_ConvergenceFailure(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Analysis.PValue.Limit = 1
	cfg.Analysis.PValue.MaxSteps = 0
	s, err := server.New(cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)

	rec := do(t, s.Handler(), http.MethodPost, "/v1/pvalue", server.PValueRequest{F: 1, Lambda: []float64{1, 0.5}, Df: 2, DfE: 2})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	newServer(t).Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(server.RequestIDHeader))
}

func TestRun_Shutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- newServer(t).Run(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
