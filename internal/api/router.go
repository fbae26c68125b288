package api

import (
	"net/http"
	"time"

	"contactdesk/internal/api/handler"
	"contactdesk/internal/api/middleware"
	"contactdesk/internal/api/session"
	"contactdesk/internal/api/view"
	"contactdesk/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	authService *service.AuthService,
	contactService *service.ContactService,
	sessions *session.Manager,
	v *view.View,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(middleware.Recoverer(v))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Every state-changing form submission is checked before handler logic.
	r.Use(middleware.VerifyCSRF(sessions))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		v.NotFound(w)
	})

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Login routes (public)
	authHandler := handler.NewAuthHandler(authService, sessions, v)
	authHandler.RegisterRoutes(r)

	// Everything else requires an authenticated session.
	contactHandler := handler.NewContactHandler(contactService, sessions, v)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireLogin(sessions))
		protected.Get("/logout", authHandler.Logout)
		contactHandler.RegisterRoutes(protected)
	})

	return r
}
