// Package handler exposes model usage accounting over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sectracker/internal/llm"
	"sectracker/pkg/platform/httputil"
)

// Usage reports session-level model spend.
type Usage interface {
	Stats() llm.Stats
	Log() []llm.Response
}

// Handler wires usage endpoints to the model client.
type Handler struct {
	usage Usage
}

// New constructs a usage handler.
func New(usage Usage) *Handler {
	return &Handler{usage: usage}
}

// Register mounts usage endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/llm/stats", h.HandleStats)
	r.Get("/llm/log", h.HandleLog)
}

// HandleStats handles GET /llm/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.usage.Stats())
}

// HandleLog handles GET /llm/log requests.
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	log := h.usage.Log()
	if log == nil {
		log = []llm.Response{}
	}
	httputil.WriteJSON(w, http.StatusOK, log)
}
