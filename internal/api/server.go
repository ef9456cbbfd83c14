// Package api exposes the counter over HTTP: the JSON get/reset
// operations, a websocket stream of resets, the embedded web page, and
// the usual health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/sincelast/internal/brand"
	"grimm.is/sincelast/internal/clock"
	"grimm.is/sincelast/internal/counter"
	"grimm.is/sincelast/internal/elapsed"
	"grimm.is/sincelast/internal/i18n"
	"grimm.is/sincelast/internal/logging"
	"grimm.is/sincelast/internal/state"
)

// ServerConfig holds HTTP server hardening configuration.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration // Slowloris prevention
	ReadTimeout       time.Duration // Body read limit
	WriteTimeout      time.Duration // Response timeout
	IdleTimeout       time.Duration // Keep-alive timeout
	MaxHeaderBytes    int           // Header size limit
}

// DefaultServerConfig returns secure default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
}

// Server handles API requests.
type Server struct {
	counter   *counter.Store
	state     state.Store
	logger    *logging.Logger
	clock     clock.Clock
	wsManager *WSManager
	startTime time.Time
	tick      time.Duration

	mux *http.ServeMux
}

// ServerOptions holds dependencies for the API server.
type ServerOptions struct {
	Counter *counter.Store
	State   state.Store
	Logger  *logging.Logger
	Clock   clock.Clock   // Optional: defaults to RealClock
	Tick    time.Duration // Optional: page render interval, defaults to 1s
}

// NewServer creates a new API server with the provided options.
// The websocket manager is fed by the state store's change stream and
// lives until ctx is cancelled.
func NewServer(ctx context.Context, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = &clock.RealClock{}
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}

	s := &Server{
		counter:   opts.Counter,
		state:     opts.State,
		logger:    logger.WithComponent("api"),
		clock:     clk,
		startTime: clk.Now(),
		tick:      tick,
	}
	s.wsManager = NewWSManager(ctx, opts.State, logger)

	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/count", s.handleGetCount)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/ws", s.wsManager.HandleWS)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("/", s.handleNotFound)

	s.mux = mux
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return i18n.Middleware(s.logRequests(s.mux))
}

// NewHTTPServer wraps the handler in a hardened http.Server.
func (s *Server) NewHTTPServer(addr string, cfg *ServerConfig) *http.Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// logRequests is a minimal access log middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", s.clock.Since(start).String(),
		)
	})
}

// handleGetCount serves GET /api/count?fallback=<epoch>.
// A missing or unreadable stored epoch self-heals to the fallback; read
// problems are logged but never surfaced to the caller.
func (s *Server) handleGetCount(w http.ResponseWriter, r *http.Request) {
	fallback := s.clock.NowUnix()
	if raw := r.URL.Query().Get("fallback"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			WriteErrorCtx(w, r, http.StatusBadRequest, "invalid fallback epoch")
			return
		}
		fallback = parsed
	}

	epoch, err := s.counter.GetOrInit(fallback)
	if err != nil {
		// The fallback is still the agreed value; the failed heal write
		// only means the next reader will initialize again.
		s.logger.Error("epoch initialization write failed", "error", err)
	}

	metricCountFetches.Inc()
	metricResetEpoch.Set(float64(epoch))
	WriteJSON(w, http.StatusOK, CountResponse{Epoch: epoch})
}

// handleReset serves POST /api/reset with body {"epoch": <unix seconds>}.
// Write failures are surfaced: a failed reset must not be mistaken for a
// successful one.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorCtx(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Epoch <= 0 {
		WriteErrorCtx(w, r, http.StatusBadRequest, "epoch must be positive")
		return
	}

	epoch, err := s.counter.Reset(req.Epoch)
	if err != nil {
		s.logger.Error("reset failed", "error", err, "epoch", req.Epoch)
		metricResetFailures.Inc()
		WriteErrorCtx(w, r, http.StatusInternalServerError, "failed to persist reset")
		return
	}

	s.logger.Info("counter reset", "epoch", epoch)
	metricResets.Inc()
	metricResetEpoch.Set(float64(epoch))
	WriteJSON(w, http.StatusOK, CountResponse{Epoch: epoch})
}

// handleStatus serves GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := s.clock.NowUnix()
	epoch, err := s.counter.GetOrInit(now)
	if err != nil {
		s.logger.Error("epoch initialization write failed", "error", err)
	}

	var since uint64
	if now > epoch {
		since = uint64(now - epoch)
	}

	WriteJSON(w, http.StatusOK, ServerInfo{
		Status:       "online",
		Uptime:       s.clock.Since(s.startTime).Round(time.Second).String(),
		StartTime:    s.startTime.Format(time.RFC3339),
		Version:      brand.Version,
		Epoch:        epoch,
		Elapsed:      elapsed.Compute(since).String(),
		StateVersion: s.state.CurrentVersion(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex serves the counter page with all user-facing strings
// localized for the request.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := i18n.GetPrinter(r.Context())
	tag := i18n.MatchLanguage(r.Header.Get("Accept-Language"))

	data := pageData{
		Lang:       tag.String(),
		Title:      p.Sprintf("Time since the last reset"),
		Heading:    p.Sprintf("Time since the last reset"),
		Loading:    p.Sprintf("Loading value"),
		ResetLabel: p.Sprintf("Reset"),
		Strings:    renderStrings(p),
		TickMS:     s.tick.Milliseconds(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

// handleNotFound serves the localized not-found view for any
// unrecognized path.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	p := i18n.GetPrinter(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("<h1>" + p.Sprintf("Not Found") + "</h1>"))
}
