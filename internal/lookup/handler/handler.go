// Package handler exposes the lookup service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sectracker/internal/lookup"
	dErrors "sectracker/pkg/domain-errors"
	"sectracker/pkg/platform/httputil"
	"sectracker/pkg/requestcontext"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 25
)

// Service defines the lookup operations the handler needs.
type Service interface {
	Lookup(ctx context.Context, query string) (lookup.Result, error)
	Search(ctx context.Context, query string, limit int) ([]lookup.SearchEntry, error)
}

// Handler wires lookup endpoints to the lookup service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a lookup handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts lookup endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/lookup", h.HandleLookup)
	r.Get("/search", h.HandleSearch)
}

// HandleLookup handles GET /lookup?q= requests.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "query parameter 'q' is required"))
		return
	}

	result, err := h.service.Lookup(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup failed",
			"request_id", requestID,
			"query", query,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "lookup served",
		"request_id", requestID,
		"query", query,
		"method", result.Method,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// SearchResponse is the payload for GET /search.
type SearchResponse struct {
	Query   string               `json:"query"`
	Results []lookup.SearchEntry `json:"results"`
}

// HandleSearch handles GET /search?q=&limit= requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "query parameter 'q' is required"))
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}
	}

	results, err := h.service.Search(ctx, query, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"query", query,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if results == nil {
		results = []lookup.SearchEntry{}
	}

	httputil.WriteJSON(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}
