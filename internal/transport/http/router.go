package http

import (
	"net/http"

	"github.com/campuschat/notification-service/internal/config"
	"github.com/campuschat/notification-service/internal/transport/http/handler"
	appmiddleware "github.com/campuschat/notification-service/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all dependencies for the router.
type Deps struct {
	Dispatcher handler.Dispatcher
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if cfg.EventSecret != "" {
		authMw = appmiddleware.Auth(cfg.EventSecret)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 50 requests/second, burst of 100 — the event pusher batches deliveries.
	eventRL := appmiddleware.NewRateLimiter(rate.Limit(50), 100)

	healthH := handler.NewHealthHandler()
	eventsH := handler.NewEventsHandler(deps.Dispatcher)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(eventRL.Limit, authMw).Post("/events", eventsH.Receive)
	})

	return r
}
