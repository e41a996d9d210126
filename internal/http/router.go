package http

import (
	"context"
	"net/http"

	"calendars/internal/calendar"
	"calendars/internal/config"
	"calendars/internal/health"
	"calendars/internal/http/handler"
	mw "calendars/internal/http/middleware"
	"calendars/internal/logger"
	"calendars/internal/metadata"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Deps struct {
	Cfg       config.Config
	Log       *logger.Logger
	Calendars *calendar.Service
	Metadata  *metadata.Service
	Ready     func(ctx context.Context) error
	Probe     *health.Probe
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLog(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(otelhttp.NewMiddleware("calendars",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))

	if len(d.Cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Cfg.CORSAllowedOrigins, d.Cfg.CORSAllowCredentials))
	}

	hh := &handler.HealthHandler{Ready: d.Ready, Probe: d.Probe, Log: d.Log}
	r.Get("/health", hh.Live)
	r.Get("/readyz", hh.Readyz)
	r.Get("/", handler.Index(r))

	calH := &handler.CalendarHandler{Svc: d.Calendars, Log: d.Log.With("handler", "calendars")}
	metaH := &handler.MetadataHandler{Svc: d.Metadata, Log: d.Log.With("handler", "metadata")}

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.BodyLimit(d.Cfg.MaxBodyBytes))

		r.Route("/calendars", func(r chi.Router) {
			r.Post("/", calH.Create)
			r.Get("/", calH.List)
			r.Delete("/", calH.DeleteAll)

			r.Get("/{id}", calH.Get)
			r.Put("/{id}", calH.Replace)
			r.Delete("/{id}", calH.Delete)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Post("/", metaH.Create)
			r.Get("/", metaH.List)

			r.Get("/{id}", metaH.Get)
			r.Delete("/{id}", metaH.Delete)
		})
	})

	return r
}
