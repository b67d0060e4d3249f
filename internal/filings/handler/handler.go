// Package handler exposes EDGAR company information over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sectracker/internal/filings"
	dErrors "sectracker/pkg/domain-errors"
	id "sectracker/pkg/domain"
	"sectracker/pkg/platform/httputil"
	"sectracker/pkg/requestcontext"
)

// Service defines the filings operations the handler needs.
type Service interface {
	CompanyInfo(ctx context.Context, ticker id.Ticker) (*filings.CompanyInfo, error)
}

// Handler wires company-info endpoints to the EDGAR client.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a filings handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts filings endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/company/{ticker}", h.HandleCompanyInfo)
}

// HandleCompanyInfo handles GET /company/{ticker} requests.
func (h *Handler) HandleCompanyInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticker, err := id.ParseTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ticker"))
		return
	}

	info, err := h.service.CompanyInfo(ctx, ticker)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "company info fetch failed",
				"request_id", requestcontext.RequestID(ctx),
				"ticker", ticker,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, info)
}
