package handler

import (
	"context"
	"net/http"
	"time"

	"calendars/internal/health"
	"calendars/internal/logger"

	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	Ready func(ctx context.Context) error
	Probe *health.Probe
	Log   *logger.Logger
}

// Live always answers 200; the body carries the startup probe's last view.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.Probe != nil {
		body["startup"] = h.Probe.Last()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Ready(ctx); err != nil {
		h.Log.Warn("Readiness check failed", "error", err)
		WriteProblem(w, http.StatusServiceUnavailable, "not ready", "database not reachable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Index lists the routes mounted on router.
func Index(router chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "calendars",
			"endpoints": Endpoints(router),
		})
	}
}

func Endpoints(router chi.Routes) []Endpoint {
	var out []Endpoint
	_ = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, Endpoint{Method: method, Path: route})
		return nil
	})
	return out
}
