package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpmetrics "github.com/slok/go-http-metrics/metrics/prometheus"
	metricsmw "github.com/slok/go-http-metrics/middleware"
	metricsstd "github.com/slok/go-http-metrics/middleware/std"
)

func NewRouter(apiHandler *APIHandler, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	mw := metricsmw.New(metricsmw.Config{
		Recorder: httpmetrics.NewRecorder(httpmetrics.Config{Registry: registry}),
	})
	r.Use(func(next http.Handler) http.Handler {
		return metricsstd.Handler("", mw, next)
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", apiHandler.LoginHandler)
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/refresh", apiHandler.RefreshHandler)
		r.Post("/logout", apiHandler.LogoutHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Bearer-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.BearerAuthMiddleware)

			r.Post("/chat", apiHandler.ChatHandler)
			r.Post("/analytics", apiHandler.AnalyticsHandler)
			r.Get("/analytics", apiHandler.ListAnalyticsHandler)
			r.Post("/messages/{messageID}/feedback", apiHandler.FeedbackHandler)
		})
	})

	return r
}
