package gallery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the gallery API routes.
func NewRouter(handlers *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/images", handlers.ListImages)
		r.Patch("/images/{imageID}/caption", handlers.UpdateCaption)
		r.Get("/users/{userID}", handlers.GetUser)
		r.Get("/users/{userID}/images", handlers.ListUserImages)
	})

	return r
}
