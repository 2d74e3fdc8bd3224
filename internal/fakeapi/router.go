package fakeapi

import (
	"net/http"

	"github.com/RoGogDBD/salesitems/internal/config"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterOptions задает необязательные части роутера.
type RouterOptions struct {
	// MetricsHandler монтируется на MetricsPath, если не nil.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter собирает роутер: /healthz, метрики и /api/SalesItems.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	config.SetupMiddlewares(r)

	r.Get("/healthz", h.HealthHandler)
	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.MetricsHandler)
	}

	r.Route("/api/SalesItems", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Get("/{id}", h.GetItem)

		r.Group(func(r chi.Router) {
			if h.verifier != nil {
				r.Use(RequireCaller(h.verifier))
			}
			r.Post("/", h.CreateItem)
			r.Delete("/{id}", h.DeleteItem)
		})
	})

	return otelhttp.NewHandler(r, "fakeapi")
}
