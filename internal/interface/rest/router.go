package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GERNAVSBIZ/movimento/pkg/metrics"
)

// NewRouter assembles the middleware chain and routes. The rate limit
// only guards the upload route, reads stay unthrottled.
func NewRouter(h *Handlers, m *metrics.Metrics, rateRPS, rateBurst int) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(m))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Link", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(RateLimitMiddleware(rateRPS, rateBurst)).Post("/uploads", h.UploadMovements)
		r.Get("/uploads", h.ListUploads)
		r.Get("/uploads/{uploadID}", h.GetUpload)
		r.Get("/uploads/{uploadID}/movements", h.ListMovements)
	})

	return r
}
