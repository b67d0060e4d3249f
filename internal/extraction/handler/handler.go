// Package handler exposes filing extractions over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sectracker/internal/extraction"
	"sectracker/internal/filings"
	dErrors "sectracker/pkg/domain-errors"
	id "sectracker/pkg/domain"
	"sectracker/pkg/platform/httputil"
	"sectracker/pkg/requestcontext"
)

// Service defines the extraction operations the handler needs.
type Service interface {
	Extract(ctx context.Context, ticker id.Ticker, section filings.Section) (extraction.Record, error)
	History(ctx context.Context, ticker id.Ticker, section filings.Section, years int) (extraction.History, error)
}

// Handler wires extraction endpoints to the extraction service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an extraction handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts extraction endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/extract/{ticker}/{section}", h.HandleExtract)
	r.Get("/extract/{ticker}/{section}/history", h.HandleHistory)
}

func params(r *http.Request) (id.Ticker, filings.Section, error) {
	ticker, err := id.ParseTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeBadRequest, "invalid ticker")
	}
	section, ok := filings.ParseSection(chi.URLParam(r, "section"))
	if !ok {
		return "", "", dErrors.New(dErrors.CodeBadRequest, "unknown section")
	}
	return ticker, section, nil
}

// HandleExtract handles GET /extract/{ticker}/{section} requests.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ticker, section, err := params(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Extract(ctx, ticker, section)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "extraction failed",
				"request_id", requestcontext.RequestID(ctx),
				"ticker", ticker,
				"section", section,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "extraction served",
		"request_id", requestcontext.RequestID(ctx),
		"ticker", ticker,
		"section", section,
		"fiscal_year", record.FiscalYear,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleHistory handles GET /extract/{ticker}/{section}/history?years= requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticker, section, err := params(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	years := 5
	if raw := r.URL.Query().Get("years"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "years must be a positive integer"))
			return
		}
		years = parsed
	}

	history, err := h.service.History(ctx, ticker, section, years)
	if err != nil {
		h.logger.ErrorContext(ctx, "historical extraction failed",
			"request_id", requestcontext.RequestID(ctx),
			"ticker", ticker,
			"section", section,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, history)
}
