package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/catalog"
)

// Server holds dependencies for API handlers.
type Server struct {
	store   *catalog.Store
	metrics *Metrics
}

// NewServer creates a server answering from the given catalog.
func NewServer(store *catalog.Store) *Server {
	return &Server{
		store:   store,
		metrics: newMetrics(),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/calculations", s.instrument("calculations", s.handleCalculation))
	mux.HandleFunc("POST /api/v1/concurrency", s.instrument("concurrency", s.handleConcurrency))
	mux.HandleFunc("GET /api/v1/hardware", s.instrument("hardware", s.handleListHardware))
	mux.HandleFunc("GET /api/v1/models", s.instrument("models", s.handleListModels))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *Server) handleCalculation(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hw, err := s.store.Hardware(req.HardwareID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	m, err := s.store.Model(req.ModelID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	res, err := calc.ComputeUtilization(req.Input, hw, m)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleConcurrency(w http.ResponseWriter, r *http.Request) {
	var req ConcurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hw, err := s.store.Hardware(req.HardwareID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	m, err := s.store.Model(req.ModelID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	res, err := calc.ComputeMaxConcurrency(req.Input, hw, m)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListHardware(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListHardware())
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListModels())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.observe(route, rec.status, time.Since(start))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
