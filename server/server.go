// Package server exposes dashboard sessions over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

const shutdownTimeout = 5 * time.Second

// Server serves one shared REST session plus an independent session per
// WebSocket connection. Every session draws from the same ticker.
type Server struct {
	ticker  engine.Ticker
	opts    engine.SessionOptions
	metrics *engine.MetricsStore
	log     logrus.FieldLogger

	session *engine.Session
	sched   *engine.Scheduler

	mu      sync.Mutex
	clients map[string]*wsClient
}

// New creates a server. metrics may be nil, in which case /metrics is not
// routed.
func New(t engine.Ticker, metrics *engine.MetricsStore, opts engine.SessionOptions, log logrus.FieldLogger) *Server {
	s := &Server{
		ticker:  t,
		opts:    opts,
		metrics: metrics,
		log:     log,
		session: engine.NewSession(t, opts),
		clients: make(map[string]*wsClient),
	}
	s.sched = engine.NewScheduler(s.session, func(v engine.View) {
		s.log.WithFields(logrus.Fields{
			"session": "rest",
			"cells":   len(v.Readings),
			"alerts":  v.Alerts.Count(),
		}).Debug("refreshed")
	})
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/alerts", s.handleAlerts)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Run serves on addr until ctx is cancelled. The shared REST session is
// refreshed on its own schedule while the server runs.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.session.Refresh()
	go func() { _ = s.sched.Run(ctx) }()

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Sessions returns the number of open WebSocket sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ensureSnapshot generates the first REST snapshot on demand.
func (s *Server) ensureSnapshot() {
	if s.session.Current() == nil {
		s.session.Refresh()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.ensureSnapshot()
	raw := r.URL.Query()["process"]
	if len(raw) == 0 {
		writeJSON(w, http.StatusOK, s.session.View())
		return
	}
	procs, err := engine.ParseProcesses(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.ViewWith(engine.NewProcessFilter(procs...)))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Refresh())
}

// alertsResponse is the body of GET /api/v1/alerts.
type alertsResponse struct {
	AllNormal  bool          `json:"all_normal"`
	Banner     string        `json:"banner"`
	Alerts     []model.Alert `json:"alerts"`
	LastUpdate time.Time     `json:"last_update"`
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.ensureSnapshot()
	v := s.session.View()
	alerts := v.Banner
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, alertsResponse{
		AllNormal:  v.AllNormal,
		Banner:     v.Alerts.Banner(),
		Alerts:     alerts,
		LastUpdate: v.LastUpdate,
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).Round(time.Microsecond),
			"req_id":   middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
