package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rollsim/config"
	"github.com/rustyeddy/rollsim/market"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer builds a server over weekdays 2024-01-02..2024-01-12 with flat
// 5000 settles. The final date (01-12) has an index bar but no contract
// bars, so a window reaching it fails with missing market data mid-run.
func testServer(t *testing.T) *Server {
	t.Helper()
	ix := market.NewIndex("000905.SH", "CSI 500")
	ch := market.NewChain("IC", ix)
	c1 := market.NewContract("IC2401.CFX", "IC", 200,
		market.MustDate(2023, 10, 1), market.MustDate(2024, 1, 19))
	c2 := market.NewContract("IC2402.CFX", "IC", 200,
		market.MustDate(2023, 11, 1), market.MustDate(2024, 2, 16))
	ch.Add(c1)
	ch.Add(c2)

	last := market.MustDate(2024, 1, 12)
	for d := market.MustDate(2024, 1, 2); !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		ix.AddBar(market.IndexBar{Date: d, Close: 5000})
		if d.Equal(last) {
			continue
		}
		c1.AddBar(market.FuturesBar{Date: d, Settle: 5000, Close: 5000, Volume: 80000})
		c2.AddBar(market.FuturesBar{Date: d, Settle: 5000, Close: 5000, Volume: 20000})
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(config.Default(), ch, log)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestHealthz(t *testing.T) {
	r := testServer(t).Router()
	w, out := doJSON(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "IC", out["fut_code"])
}

func TestListStrategies(t *testing.T) {
	r := testServer(t).Router()
	w, out := doJSON(t, r, http.MethodGet, "/api/v1/strategies", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out["strategies"], "baseline-roll")
	assert.Contains(t, out["strategies"], "basis-timing")
}

func TestRunBacktest(t *testing.T) {
	r := testServer(t).Router()
	w, out := doJSON(t, r, http.MethodPost, "/api/v1/backtest",
		`{"strategy":"baseline-roll","start":"2024-01-02","end":"2024-01-11"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := out["result"].(map[string]any)
	assert.NotEmpty(t, result["run_id"])
	assert.Len(t, result["nav"], 8, "weekdays 01-02 through 01-11")
	assert.NotEmpty(t, result["trades"])
	assert.Nil(t, out["error"])
}

func TestRunBacktestBadStrategy(t *testing.T) {
	r := testServer(t).Router()
	w, out := doJSON(t, r, http.MethodPost, "/api/v1/backtest",
		`{"strategy":"martingale","start":"2024-01-02","end":"2024-01-11"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := out["error"].(map[string]any)
	assert.Equal(t, "INVALID_CONFIG", detail["code"])
}

func TestRunBacktestMalformedBody(t *testing.T) {
	r := testServer(t).Router()
	w, out := doJSON(t, r, http.MethodPost, "/api/v1/backtest", `{"strategy":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := out["error"].(map[string]any)
	assert.Equal(t, "INVALID_REQUEST", detail["code"])
}

func TestRunBacktestPartialOnMissingData(t *testing.T) {
	r := testServer(t).Router()
	w, out := doJSON(t, r, http.MethodPost, "/api/v1/backtest",
		`{"strategy":"baseline-roll","start":"2024-01-02","end":"2024-01-12"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	detail := out["error"].(map[string]any)
	assert.Equal(t, "MISSING_MARKET_DATA", detail["code"])
	result := out["result"].(map[string]any)
	assert.Len(t, result["nav"], 8, "days before the gap are preserved")
}
