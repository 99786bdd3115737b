// Package server is the HTTP transport over the engine: routing, JSON
// encoding, and CORS for the dashboard. Lifecycle failures are reported in
// the response envelope with a success flag, never as transport errors.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/papertrader/simbot/internal/engine"
	"github.com/papertrader/simbot/internal/types"
)

type Server struct {
	bot *engine.Bot
}

func New(bot *engine.Bot) *Server {
	return &Server{bot: bot}
}

// Handler builds the route table wrapped in CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/bot/initialize", s.handleInitialize)
	mux.HandleFunc("/api/bot/start", s.handleStart)
	mux.HandleFunc("/api/bot/stop", s.handleStop)
	mux.HandleFunc("/api/bot/status", s.handleStatus)
	mux.HandleFunc("/api/bot/trades", s.handleTrades)
	mux.HandleFunc("/api/bot/performance", s.handlePerformance)
	mux.HandleFunc("/api/market/status", s.handleMarketStatus)
	return cors(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	opts := map[string]any{}
	if r.Body != nil {
		// An empty or malformed body just means defaults.
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			opts = map[string]any{}
		}
	}

	s.bot.Initialize(opts)
	writeJSON(w, map[string]any{"success": true, "message": "Bot initialized"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.bot.Start(); err != nil {
		writeJSON(w, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, map[string]any{"success": true, "message": "Bot started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.bot.Stop(); err != nil {
		writeJSON(w, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, map[string]any{"success": true, "message": "Bot stopped"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	state := s.bot.State()
	writeJSON(w, statusResponse{
		BotState:       state,
		NextMarketOpen: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	trades := s.bot.Trades(parseLimit(r))
	writeJSON(w, map[string]any{"trades": trades, "count": len(trades)})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	performance := s.bot.Performance(parseLimit(r))
	writeJSON(w, map[string]any{"performance": performance, "count": len(performance)})
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	now := time.Now().Format(time.RFC3339)
	writeJSON(w, map[string]any{
		"is_open":   true,
		"next_open": now,
		"timestamp": now,
	})
}

type statusResponse struct {
	types.BotState
	NextMarketOpen string `json:"next_market_open"`
}

// parseLimit reads the limit query parameter; 0 lets the engine apply its
// per-endpoint default.
func parseLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			return limit
		}
	}
	return 0
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
