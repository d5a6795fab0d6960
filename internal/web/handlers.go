package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/ops"
)

// Handlers contains HTTP route handlers for the manuscript reader.
type Handlers struct {
	db       *sqlx.DB
	renderer *Renderer
}

// HandleManuscript handles GET /manuscript, one leaf of the user's book.
func (h *Handlers) HandleManuscript(w http.ResponseWriter, r *http.Request) {
	userID, token, err := h.authenticate(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	pages, err := ops.Manuscript(r.Context(), h.db, userID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := ManuscriptPageData{
		PageData: PageData{
			Title:   "Manuscript",
			Version: h.renderer.version,
			Nav:     "manuscript",
			Token:   token,
		},
		Total: len(pages),
		Empty: len(pages) == 0,
	}

	if !data.Empty {
		n := parseIntParam(r, "page", 1)
		n = max(1, min(n, len(pages)))

		words := 0
		for _, p := range pages {
			words += len(strings.Fields(p.Content))
		}

		data.Number = n
		data.Page = pages[n-1]
		data.Body = renderMarkdown(pages[n-1].Content)
		data.TotalWords = words
	}

	h.renderer.renderPage(w, "manuscript", data)
}

// HandleEchoes handles GET /echoes, the letters to the future self.
func (h *Handlers) HandleEchoes(w http.ResponseWriter, r *http.Request) {
	userID, token, err := h.authenticate(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	letters, err := ops.ListLetters(r.Context(), h.db, userID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	items := make([]EchoItem, 0, len(letters))
	for _, l := range letters {
		item := EchoItem{LetterView: l}
		if l.IsUnlocked && l.Response != nil {
			item.ResponseHTML = renderMarkdown(*l.Response)
		}
		items = append(items, item)
	}

	h.renderer.renderPage(w, "echoes", EchoesPageData{
		PageData: PageData{
			Title:   "Echoes",
			Version: h.renderer.version,
			Nav:     "echoes",
			Token:   token,
		},
		Letters: items,
	})
}

// authenticate accepts a bearer header or a ?token= query parameter so the
// reader can be opened from a plain link. The query token is echoed back for
// navigation links; a header token is not.
func (h *Handlers) authenticate(r *http.Request) (userID, linkToken string, err error) {
	token := bearerToken(r)
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
		linkToken = token
	}
	userID, err = ops.Authenticate(r.Context(), h.db, token)
	if err != nil {
		return "", "", err
	}
	return userID, linkToken, nil
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
