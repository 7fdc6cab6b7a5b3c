package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Health and metrics are unauthenticated; everything else requires bearer auth.
// Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandlerFunc(db, redisClient, log))
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(token))

			r.Get("/geocode", handlers.Geocode)
			r.Get("/weather", handlers.Weather)

			r.Post("/venues", handlers.CreateVenue)
			r.Get("/venues/{id}", handlers.GetVenue)
			r.Put("/venues/{id}", handlers.UpdateVenue)

			r.Get("/matches/weather", handlers.ListMatchWeather)
			r.Put("/matches/{id}/weather", handlers.PutMatchWeather)
			r.Get("/matches/{id}/weather", handlers.GetMatchWeather)
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
