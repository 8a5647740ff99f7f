// Package httpapi exposes a registry of IsolatedPools over HTTP: health
// checks, Prometheus scraping, stats, and named-entry submission. It is
// an optional collaborator - nothing in the root taskpool package
// depends on it.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainlens/taskpool"
	"github.com/chainlens/taskpool/metrics"
)

// Server wires a set of named IsolatedPools to a chi router. Each
// pool's entry functions must be registered by name ahead of time -
// there is no way to ship arbitrary Go code over the wire, so /submit
// looks up the named entry in that pool's registry and calls it with
// the request body's argument.
type Server struct {
	router   chi.Router
	registry *prometheus.Registry
	pools    map[string]*poolBinding
}

type poolBinding struct {
	pool    *taskpool.IsolatedPool
	entries map[string]taskpool.EntryFunc
}

// New builds a Server with no registered pools. Use Register to attach
// one.
func New() *Server {
	s := &Server{
		router:   chi.NewRouter(),
		registry: prometheus.NewRegistry(),
		pools:    make(map[string]*poolBinding),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api/v1/pools/{name}", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Post("/submit", s.handleSubmit)
		r.Post("/cancel/{taskId}", s.handleCancel)
	})
}

// Register attaches pool under name, registering its metrics with the
// server's Prometheus registry. entries is the set of named,
// HTTP-reachable EntryFuncs that POST /submit may invoke.
func (s *Server) Register(name string, pool *taskpool.IsolatedPool, entries map[string]taskpool.EntryFunc) error {
	if err := metrics.Register(s.registry, name, pool); err != nil {
		return err
	}
	s.pools[name] = &poolBinding{pool: pool, entries: entries}
	return nil
}

// Router returns the underlying http.Handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) lookupPool(w http.ResponseWriter, r *http.Request) (*poolBinding, bool) {
	name := chi.URLParam(r, "name")
	binding, ok := s.pools[name]
	if !ok {
		http.Error(w, "unknown pool: "+name, http.StatusNotFound)
		return nil, false
	}
	return binding, true
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	binding, ok := s.lookupPool(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, binding.pool.Stats())
}

type submitRequest struct {
	Entry    string `json:"entry"`
	Argument any    `json:"argument"`
}

type submitResponse struct {
	TaskID taskpool.TaskID `json:"taskId"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	binding, ok := s.lookupPool(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	entry, ok := binding.entries[req.Entry]
	if !ok {
		http.Error(w, "unknown entry: "+req.Entry, http.StatusBadRequest)
		return
	}

	id, err := binding.pool.Submit(entry, req.Argument)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{TaskID: id})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	binding, ok := s.lookupPool(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "taskId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid taskId: "+raw, http.StatusBadRequest)
		return
	}

	cancelled := binding.pool.Cancel(taskpool.TaskID(id))
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
