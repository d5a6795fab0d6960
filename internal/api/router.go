package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/generate"
)

// NewRouter creates the Chi router with all routes and middleware.
// reader, when non-nil, serves the HTML manuscript pages and their assets.
func NewRouter(database *sqlx.DB, gen *generate.Generator, logger *slog.Logger, reader http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	h := NewHandler(database, gen, logger)

	// Unauthenticated routes
	r.Get("/health", h.Health)

	if reader != nil {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/manuscript", http.StatusFound)
		})
		r.Handle("/manuscript", reader)
		r.Handle("/echoes", reader)
		r.Handle("/static/*", reader)
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(database))

		r.Post("/api/ai/generate", h.Generate)

		r.Get("/api/profile", h.GetProfile)
		r.Patch("/api/profile", h.UpdateProfile)

		r.Get("/api/emotions", h.ListEmotions)
		r.Post("/api/emotions", h.AddEmotion)

		r.Route("/api/memories", func(r chi.Router) {
			r.Get("/", h.ListMemories)
			r.Post("/", h.AddMemory)
			r.Post("/{id}/narrate", h.NarrateMemory)
		})

		r.Get("/api/stars", h.ListStars)

		r.Route("/api/letters", func(r chi.Router) {
			r.Get("/", h.ListLetters)
			r.Post("/", h.WriteLetter)
			r.Post("/{id}/unlock", h.UnlockLetter)
		})

		r.Get("/api/chapters", h.ListChapters)
		r.Post("/api/chapters", h.AddChapter)

		r.Get("/api/manuscript", h.Manuscript)
	})

	return r
}
