package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/simbot/internal/engine"
	"github.com/papertrader/simbot/internal/executor"
	"github.com/papertrader/simbot/internal/market"
	"github.com/papertrader/simbot/internal/strategy"
)

func newTestHandler() http.Handler {
	bot := engine.New(
		market.NewSimulator(rand.New(rand.NewSource(1))),
		strategy.NewRandom(rand.New(rand.NewSource(2))),
		executor.New(),
		nil,
	)
	return New(bot).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestHealth(t *testing.T) {
	h := newTestHandler()

	rec, body := doJSON(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLifecycleOverHTTP(t *testing.T) {
	h := newTestHandler()

	// Start before initialize fails in the envelope, not the transport.
	rec, body := doJSON(t, h, http.MethodPost, "/api/bot/start", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "not initialized")

	_, body = doJSON(t, h, http.MethodPost, "/api/bot/initialize", `{"ticker":"AAPL","check_interval":1}`)
	assert.Equal(t, true, body["success"])

	_, body = doJSON(t, h, http.MethodPost, "/api/bot/start", "")
	assert.Equal(t, true, body["success"])

	_, body = doJSON(t, h, http.MethodPost, "/api/bot/start", "")
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "already running")

	_, body = doJSON(t, h, http.MethodPost, "/api/bot/stop", "")
	assert.Equal(t, true, body["success"])

	_, body = doJSON(t, h, http.MethodGet, "/api/bot/status", "")
	assert.Equal(t, "stopped", body["status"])

	_, body = doJSON(t, h, http.MethodPost, "/api/bot/stop", "")
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "not running")
}

func TestStatusShape(t *testing.T) {
	h := newTestHandler()

	_, body := doJSON(t, h, http.MethodGet, "/api/bot/status", "")

	assert.Equal(t, "stopped", body["status"])
	assert.Equal(t, 10000.0, body["portfolio_value"])
	assert.Equal(t, 10000.0, body["cash"])
	assert.Equal(t, "HOLD", body["last_action"])
	assert.Equal(t, true, body["market_open"])
	assert.Nil(t, body["current_position"])
	assert.NotEmpty(t, body["next_market_open"])
}

func TestInitializeWithEmptyBodyUsesDefaults(t *testing.T) {
	h := newTestHandler()

	_, body := doJSON(t, h, http.MethodPost, "/api/bot/initialize", "")
	assert.Equal(t, true, body["success"])

	_, body = doJSON(t, h, http.MethodGet, "/api/bot/status", "")
	assert.Equal(t, "initialized", body["status"])
}

func TestTradesAndPerformanceEnvelopes(t *testing.T) {
	h := newTestHandler()

	_, body := doJSON(t, h, http.MethodGet, "/api/bot/trades?limit=10", "")
	assert.Equal(t, 0.0, body["count"])

	_, body = doJSON(t, h, http.MethodGet, "/api/bot/performance", "")
	assert.Equal(t, 0.0, body["count"])
}

func TestMarketStatus(t *testing.T) {
	h := newTestHandler()

	_, body := doJSON(t, h, http.MethodGet, "/api/market/status", "")
	assert.Equal(t, true, body["is_open"])
	assert.NotEmpty(t, body["next_open"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/bot/start", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/bot/trades", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodOptions, "/api/bot/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
