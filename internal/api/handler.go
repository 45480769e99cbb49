// Package api serves the search pipeline over HTTP.
//
// Routes:
//
//	POST /search   run a job search, body is a SearchRequest
//	GET  /healthz  liveness
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

const maxBodyBytes = 1 << 20

// Searcher runs one search. *search.Service implements it.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.RankedResult, error)
}

// Handler holds the HTTP dependencies.
type Handler struct {
	searcher Searcher
	logger   *slog.Logger
}

func NewHandler(searcher Searcher, logger *slog.Logger) *Handler {
	return &Handler{searcher: searcher, logger: logger}
}

// Routes returns the mux with every route mounted and request logging applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", h.handleSearch)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return h.logRequests(mux)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: unexpected data after JSON object")
		return
	}

	res, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.logger.Error("search failed", "position", req.Position, "status", status, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAllSourcesFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the error envelope: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
