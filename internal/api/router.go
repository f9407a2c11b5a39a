package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hyprtext/internal/controller"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(exec controller.Executor, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(exec)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.ListDocuments)
		r.Post("/", h.OpenDocument)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Delete("/", h.CloseDocument)
			r.Put("/text", h.EditDocument)
			r.Post("/sort", h.SortDocument)
			r.Post("/save", h.SaveDocument)
			r.Post("/activate", h.ActivateDocument)
			r.Put("/title", h.RenameDocument)
			r.Get("/preview", h.PreviewDocument)
		})
	})

	r.Get("/session", h.GetSession)
	r.Put("/session/font-size", h.SetFontSize)
	r.Post("/session/persist", h.PersistSession)
	r.Get("/recent", h.Recent)
	r.Delete("/recent", h.ForgetRecent)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
