// Package httpapi assembles the public HTTP surface: the /api routes from the
// per-module handlers, plus health and metrics.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sectracker/pkg/platform/httputil"
	"sectracker/pkg/platform/middleware/requestid"
	"sectracker/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter wires middleware, module handlers, health and metrics.
func NewRouter(handlers []Registrar, checks []HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Route("/api", func(api chi.Router) {
		for _, h := range handlers {
			h.Register(api)
		}
	})

	r.Get("/health", healthHandler(checks))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for _, check := range checks {
			if err := check.Check(r.Context()); err != nil {
				resp.Checks[check.Name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[check.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
