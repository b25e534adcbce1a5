// Package api serves the board over HTTP.
// /player and /gm return the two views; /api/v1 carries grid metadata,
// hex detail, session state, GM unlock, and refresh.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexmapp/internal/hexgrid"
	"github.com/talgya/hexmapp/internal/hexmap"
	"github.com/talgya/hexmapp/internal/session"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "hexmapp_session"

// Server serves the board over HTTP.
type Server struct {
	Board       *hexmap.Service
	Sessions    *session.Store
	Port        int
	BasePath    string   // e.g. "/hexmapp"; empty serves from the root
	CORSOrigins []string // Allowed frontend origins besides localhost dev servers
	TrustProxy  bool     // Take client IPs from X-Forwarded-For

	// UnlockLimiter throttles GM key attempts. Defaults to 10 per hour per IP.
	UnlockLimiter *RateLimiter
}

// Handler builds the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	if s.UnlockLimiter == nil {
		s.UnlockLimiter = NewRateLimiter(10, time.Hour)
		s.UnlockLimiter.TrustProxy = s.TrustProxy
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/player", s.withSession(s.handlePlayer))
	mux.HandleFunc("/gm", s.withSession(s.handleGM))

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/hex/", s.withSession(s.handleHex))

	mux.HandleFunc("/api/v1/session", s.withSession(s.handleSession))
	mux.HandleFunc("/api/v1/session/select", s.withSession(s.handleSelect))
	mux.HandleFunc("/api/v1/session/fog", s.withSession(s.handleFog))

	mux.HandleFunc("/api/v1/gm/unlock", RateLimitMiddleware(s.UnlockLimiter, s.withSession(s.handleUnlock)))
	mux.HandleFunc("/api/v1/gm/reset", s.withSession(s.handleReset))
	mux.HandleFunc("/api/v1/refresh", s.withSession(s.gmOnly(s.handleRefresh)))

	var handler http.Handler = mux
	if s.BasePath != "" {
		stripped := http.StripPrefix(s.BasePath, mux)
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == s.BasePath {
				http.Redirect(w, r, s.BasePath+"/player", http.StatusFound)
				return
			}
			stripped.ServeHTTP(w, r)
		})
	}
	return corsMiddleware(s.CORSOrigins, handler)
}

// Start begins serving the HTTP API in a goroutine.
// The returned server can be shut down by the caller.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "base_path", s.BasePath, "gm_unlock", s.Sessions.UnlockEnabled())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, id string, st session.State)

// withSession resolves the session cookie, issuing a new one when needed.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cookieID string
		if c, err := r.Cookie(SessionCookie); err == nil {
			cookieID = c.Value
		}
		id, st := s.Sessions.Open(cookieID)
		if id != cookieID {
			path := s.BasePath
			if path == "" {
				path = "/"
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     path,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next(w, r, id, st)
	}
}

// gmOnly rejects sessions that have not unlocked GM mode.
func (s *Server) gmOnly(next sessionHandler) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, id string, st session.State) {
		if !st.IsGM {
			http.Error(w, "gm mode locked", http.StatusForbidden)
			return
		}
		next(w, r, id, st)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, s.BasePath+"/player", http.StatusFound)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, s.Board.Board().View(hexmap.PlayerView, true))
}

func (s *Server) handleGM(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !st.IsGM {
		http.Error(w, "gm mode locked", http.StatusForbidden)
		return
	}
	writeJSON(w, s.Board.Board().View(hexmap.GMView, st.ShowFog))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Board.Status()
	board := s.Board.Board()

	refreshed := "never"
	if !st.RefreshedAt.IsZero() {
		refreshed = humanize.Time(st.RefreshedAt)
	}

	terrainCounts := make(map[string]int)
	for t, n := range board.Counts() {
		terrainCounts[strings.ToLower(t.Name())] = n
	}

	writeJSON(w, map[string]any{
		"name":            "hexmapp",
		"source":          st.Source,
		"rows":            st.Rows,
		"overflow":        st.Overflow,
		"refreshed_at":    st.RefreshedAt,
		"refreshed":       refreshed,
		"last_error":      st.LastError,
		"max_radius":      s.Board.Table.Radius(),
		"total_hex_count": s.Board.Table.Len(),
		"terrain":         terrainCounts,
		"gm_unlock":       s.Sessions.UnlockEnabled(),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"max_radius":      s.Board.Table.Radius(),
		"hex_size":        s.Board.Layout.Size,
		"total_hex_count": s.Board.Table.Len(),
		"strict":          s.Board.Table.Strict(),
	})
}

// handleHex serves GET /api/v1/hex/:index and GET /api/v1/hex/:q/:r.
func (s *Server) handleHex(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/hex/"), "/"), "/")
	board := s.Board.Board()

	var (
		cell hexmap.Cell
		ok   bool
	)
	switch len(parts) {
	case 1:
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			http.Error(w, "invalid hex index", http.StatusBadRequest)
			return
		}
		cell, ok = board.Cell(index)
	case 2:
		q, err1 := strconv.Atoi(parts[0])
		rr, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			http.Error(w, "invalid coordinates", http.StatusBadRequest)
			return
		}
		cell, ok = board.CellAt(hexgrid.AxialCoord{Q: q, R: rr})
	default:
		http.Error(w, "usage: /api/v1/hex/:index or /api/v1/hex/:q/:r", http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	}

	mode := hexmap.PlayerView
	if st.IsGM {
		mode = hexmap.GMView
	}
	writeJSON(w, hexmap.ViewCell(cell, mode, st.ShowFog))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Index != nil {
		if _, ok := s.Board.Board().Cell(*req.Index); !ok {
			http.Error(w, "hex not found", http.StatusNotFound)
			return
		}
	}
	s.Sessions.SetSelectedHex(id, req.Index)
	updated, _ := s.Sessions.Get(id)
	writeJSON(w, updated)
}

func (s *Server) handleFog(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.Sessions.ToggleFog(id)
	updated, _ := s.Sessions.Get(id)
	writeJSON(w, updated)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !s.Sessions.UnlockEnabled() {
		http.Error(w, "gm unlock disabled (no HEXMAPP_GM_KEY set)", http.StatusForbidden)
		return
	}
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ok, err := s.Sessions.UnlockGM(id, req.Key)
	if err != nil {
		slog.Error("gm unlock failed", "session", id, "error", err)
		http.Error(w, "unlock failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		slog.Info("gm unlock rejected", "ip", clientIP(r, s.TrustProxy))
		http.Error(w, "wrong key", http.StatusUnauthorized)
		return
	}
	slog.Info("gm unlocked", "session", id)
	updated, _ := s.Sessions.Get(id)
	writeJSON(w, updated)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.Sessions.ResetGM(id); err != nil {
		slog.Error("gm reset failed", "session", id, "error", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	updated, _ := s.Sessions.Get(id)
	writeJSON(w, updated)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request, id string, st session.State) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	code := http.StatusOK
	if err := s.Board.Refresh(ctx); err != nil {
		code = http.StatusBadGateway
	}
	writeJSONStatus(w, code, s.Board.Status())
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
