package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/sessionlock/internal/logging"
	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/aretw0/sessionlock/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// Server translates HTTP requests into session provider calls.
type Server struct {
	Provider ports.Provider
	Health   HealthFunc
	Logger   *slog.Logger

	rateLimit  int
	rateWindow time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithHealth sets the check behind GET /healthz.
func WithHealth(fn HealthFunc) Option {
	return func(s *Server) { s.Health = fn }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithRateLimit caps session requests per client IP within window. A limit of 0 disables it.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = limit
		s.rateWindow = window
	}
}

// NewHandler creates the HTTP handler for a session provider.
func NewHandler(provider ports.Provider, opts ...Option) http.Handler {
	s := &Server{
		Provider: provider,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Route("/sessions/{id}", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(s.limiter())
		}
		r.Use(s.validateID)
		r.Put("/", s.CreateSession)
		r.Get("/", s.GetSession)
		r.Delete("/", s.RemoveSession)
		r.Post("/release", s.ReleaseSession)
		r.Put("/items", s.SetItems)
		r.Post("/touch", s.TouchSession)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TimeoutRequest is the body of create and touch requests.
type TimeoutRequest struct {
	Timeout int `json:"timeout"`
}

// ReleaseRequest is the body of POST /sessions/{id}/release.
type ReleaseRequest struct {
	LockID  int64 `json:"lock_id"`
	Timeout int   `json:"timeout,omitempty"`
}

// SetItemsRequest is the body of PUT /sessions/{id}/items.
type SetItemsRequest struct {
	LockID  int64          `json:"lock_id"`
	NewItem bool           `json:"new_item"`
	Items   map[string]any `json:"items"`
	Timeout int            `json:"timeout"`
}

// SessionResponse is returned by GET /sessions/{id}.
type SessionResponse struct {
	Items          map[string]any `json:"items,omitempty"`
	Timeout        int            `json:"timeout"`
	LockID         int64          `json:"lock_id"`
	Locked         bool           `json:"locked"`
	LockAgeSeconds float64        `json:"lock_age_seconds,omitempty"`
	Actions        string         `json:"actions"`
}

// CreateSession handles PUT /sessions/{id}.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body TimeoutRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Provider.CreateUninitialized(r.Context(), id, body.Timeout); err != nil {
		s.fail(w, "create", id, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetSession handles GET /sessions/{id}. With exclusive=1 it takes exclusive access.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exclusive, _ := strconv.ParseBool(r.URL.Query().Get("exclusive"))

	get := s.Provider.GetItem
	if exclusive {
		get = s.Provider.GetItemExclusive
	}
	res, err := get(r.Context(), id)
	if err != nil {
		s.fail(w, "get", id, err)
		return
	}
	if !res.Found {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	resp := SessionResponse{
		Timeout: res.Timeout,
		LockID:  res.LockID,
		Locked:  res.Locked,
		Actions: res.Actions.String(),
	}
	status := http.StatusOK
	if res.Locked {
		resp.LockAgeSeconds = res.LockAge.Seconds()
		status = http.StatusLocked
	} else {
		resp.Items = res.Items.Map()
	}
	s.respond(w, status, resp)
}

// ReleaseSession handles POST /sessions/{id}/release.
func (s *Server) ReleaseSession(w http.ResponseWriter, r *http.Request) {
	var body ReleaseRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Provider.ReleaseItemExclusive(r.Context(), id, body.LockID, body.Timeout); err != nil {
		s.fail(w, "release", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetItems handles PUT /sessions/{id}/items.
func (s *Server) SetItems(w http.ResponseWriter, r *http.Request) {
	var body SetItemsRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")

	items := domain.NewItems()
	for k, v := range body.Items {
		items.Set(k, v)
	}
	if err := s.Provider.SetAndReleaseItemExclusive(r.Context(), id, body.LockID, body.NewItem, items, body.Timeout); err != nil {
		s.fail(w, "set items", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveSession handles DELETE /sessions/{id}?lock_id=N.
func (s *Server) RemoveSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lockID, err := strconv.ParseInt(r.URL.Query().Get("lock_id"), 10, 64)
	if err != nil {
		http.Error(w, "lock_id query parameter is required", http.StatusBadRequest)
		return
	}
	if err := s.Provider.RemoveItem(r.Context(), id, lockID); err != nil {
		s.fail(w, "remove", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TouchSession handles POST /sessions/{id}/touch.
func (s *Server) TouchSession(w http.ResponseWriter, r *http.Request) {
	var body TimeoutRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Provider.ResetItemTimeout(r.Context(), id, body.Timeout); err != nil {
		s.fail(w, "touch", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.Health != nil {
		if err := s.Health(r.Context()); err != nil {
			s.Logger.Warn("Health check failed", "err", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	s.respond(w, code, map[string]string{"status": status})
}

// -- Helpers --

func (s *Server) validateID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ValidateSessionID(chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			s.Logger.Warn("Session id rejected", "err", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		s.rateLimit,
		s.rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(s.rateWindow.Seconds())))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}),
	)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, domain.ErrInvalidTimeout) || errors.Is(err, domain.ErrInvalidSessionID) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Logger.Error("Session operation failed", "op", op, "session_id", id, "err", err)
	http.Error(w, "session store unavailable", http.StatusInternalServerError)
}
