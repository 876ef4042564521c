package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	hrest "admin-notify-service/internal/handler/http"
	"admin-notify-service/internal/middleware"
)

// SetupRoutes configures the HTTP routes for the admin notification feed
func SetupRoutes(r chi.Router, h *hrest.FeedHandler, verifier *middleware.Verifier) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// ============================================================
	// Admin notification feed (all require an admin session)
	// ============================================================
	r.Route("/api/v1/admin/notifications", func(r chi.Router) {
		r.Use(verifier.Middleware)

		r.Get("/", h.ListNotifications)
		r.Get("/unread/count", h.CountUnread)
		r.Get("/status", h.ConnectionStatus)
		r.Patch("/{id}/read", h.MarkAsRead)
		r.Post("/read-all", h.MarkAllRead)
		r.Delete("/", h.ClearNotifications)
	})
	return r
}
