package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskhub/taskhub-api/internal/api"
	apimiddleware "github.com/taskhub/taskhub-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.Trace)

	authHandler := api.NewAuthHandler(app.userService)
	taskHandler := api.NewTaskHandler(app.taskService)
	categoryHandler := api.NewCategoryHandler(app.categoryService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task endpoints. Fixed segments are registered before the
			// {id} routes so "stats" and "bulk" never parse as ids.
			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/stats", taskHandler.Stats)
			r.Patch("/tasks/bulk", taskHandler.BulkUpdate)
			r.Delete("/tasks/bulk", taskHandler.BulkDelete)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
			r.Post("/tasks/{id}/complete", taskHandler.Complete)

			// Category endpoints
			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Create)
			r.Delete("/categories/{id}", categoryHandler.Delete)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
