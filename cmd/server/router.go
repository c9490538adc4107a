package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lingotale/lingotale-api/internal/api"
	apiMiddleware "github.com/lingotale/lingotale-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	storyHandler := api.NewStoryHandler(app.storyService, app.logger)
	wordHandler := api.NewWordHandler(app.wordService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Story generation endpoints
			r.Post("/stories", storyHandler.GenerateStory)
			r.Get("/stories/{id}", storyHandler.GetStory)
			r.Get("/jobs/{id}", storyHandler.GetJobStatus)

			// Vocabulary endpoints
			r.Get("/words", wordHandler.ListWords)
			r.Post("/words/{id}/status", wordHandler.UpdateStatus)
		})
	})

	// Generated audio artifacts
	fileServer := http.StripPrefix("/audio/", http.FileServer(http.Dir(app.config.Audio.StorageDir)))
	r.Get("/audio/*", fileServer.ServeHTTP)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
