package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/generate"
	"github.com/chronos-mythica/mythica/internal/ops"
)

// generateFailureMessage is the only text a client sees when generation
// fails for reasons other than an invalid type.
const generateFailureMessage = "Failed to generate content"

// Handler serves the JSON API for authenticated users.
type Handler struct {
	db     *sqlx.DB
	gen    *generate.Generator
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(database *sqlx.DB, gen *generate.Generator, logger *slog.Logger) *Handler {
	return &Handler{db: database, gen: gen, logger: logger}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, dbStatus, code := "ok", "ok", http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		status, dbStatus, code = "degraded", "error", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status, "db": dbStatus})
}

// Generate handles POST /api/ai/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input ops.GenerateInput
	if err := decodeJSON(r, &input); err != nil {
		h.failGenerate(w, r, err)
		return
	}

	out, err := ops.Generate(r.Context(), h.db, h.gen, UserID(r.Context()), input)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidKind) {
			writeError(w, err)
			return
		}
		h.failGenerate(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{out.Kind.ResultKey(): out.Text})
}

func (h *Handler) failGenerate(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("generation request failed",
		"request_id", RequestIDFrom(r.Context()),
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
		Code:    errors.ErrInternal,
		Message: generateFailureMessage,
		Status:  http.StatusInternalServerError,
	}})
}

// GetProfile handles GET /api/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	view, err := ops.GetProfile(r.Context(), h.db, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateProfile handles PATCH /api/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input ops.UpdateProfileInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, errors.NewInvalidRequest(err.Error()))
		return
	}
	view, err := ops.UpdateProfile(r.Context(), h.db, UserID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListEmotions handles GET /api/emotions
func (h *Handler) ListEmotions(w http.ResponseWriter, r *http.Request) {
	items, err := ops.ListEmotions(r.Context(), h.db, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// AddEmotion handles POST /api/emotions
func (h *Handler) AddEmotion(w http.ResponseWriter, r *http.Request) {
	var input ops.AddEmotionInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, errors.NewInvalidRequest(err.Error()))
		return
	}
	e, err := ops.AddEmotion(r.Context(), h.db, UserID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ListMemories handles GET /api/memories
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListMemories(r.Context(), h.db, UserID(r.Context()), ops.ListMemoriesInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AddMemory handles POST /api/memories
func (h *Handler) AddMemory(w http.ResponseWriter, r *http.Request) {
	var input ops.AddMemoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, errors.NewInvalidRequest(err.Error()))
		return
	}
	m, err := ops.AddMemory(r.Context(), h.db, h.gen, UserID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// NarrateMemory handles POST /api/memories/{id}/narrate
func (h *Handler) NarrateMemory(w http.ResponseWriter, r *http.Request) {
	m, err := ops.NarrateMemory(r.Context(), h.db, h.gen, UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListStars handles GET /api/stars
func (h *Handler) ListStars(w http.ResponseWriter, r *http.Request) {
	stars, err := ops.ListStars(r.Context(), h.db, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": stars})
}

// ListLetters handles GET /api/letters
func (h *Handler) ListLetters(w http.ResponseWriter, r *http.Request) {
	letters, err := ops.ListLetters(r.Context(), h.db, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": letters})
}

// WriteLetter handles POST /api/letters
func (h *Handler) WriteLetter(w http.ResponseWriter, r *http.Request) {
	var input ops.WriteLetterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, errors.NewInvalidRequest(err.Error()))
		return
	}
	l, err := ops.WriteLetter(r.Context(), h.db, UserID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// UnlockLetter handles POST /api/letters/{id}/unlock
func (h *Handler) UnlockLetter(w http.ResponseWriter, r *http.Request) {
	l, err := ops.UnlockLetter(r.Context(), h.db, h.gen, UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// ListChapters handles GET /api/chapters
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := ops.ListChapters(r.Context(), h.db, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": chapters})
}

// AddChapter handles POST /api/chapters
func (h *Handler) AddChapter(w http.ResponseWriter, r *http.Request) {
	var input ops.AddChapterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, errors.NewInvalidRequest(err.Error()))
		return
	}
	c, err := ops.AddChapter(r.Context(), h.db, UserID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Manuscript handles GET /api/manuscript
func (h *Handler) Manuscript(w http.ResponseWriter, r *http.Request) {
	pages, err := ops.Manuscript(r.Context(), h.db, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}
