package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/db"
	"github.com/chronos-mythica/mythica/internal/logutil"
	"github.com/chronos-mythica/mythica/internal/ops"
)

func stringPtr(s string) *string { return &s }

type fixture struct {
	db      *sqlx.DB
	handler http.Handler
	userID  string
	token   string
}

func setupTest(t *testing.T) *fixture {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	handler, err := NewReader(database, logutil.Discard(), "test")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	out, err := ops.CreateUser(context.Background(), database, ops.CreateUserInput{
		Email:       "reader@example.com",
		DisplayName: "Reader",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	return &fixture{db: database, handler: handler, userID: out.User.ID, token: out.Token}
}

func (f *fixture) get(t *testing.T, target string, header bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	if header {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func seedMemory(t *testing.T, f *fixture, title, prose, date string) {
	t.Helper()
	_, err := ops.AddMemory(context.Background(), f.db, nil, f.userID, ops.AddMemoryInput{
		Title:       title,
		MemoryDate:  date,
		MythicProse: stringPtr(prose),
	})
	if err != nil {
		t.Fatalf("seed memory %q: %v", title, err)
	}
}

// --- HandleManuscript ---

func TestHandleManuscript_RequiresAuth(t *testing.T) {
	f := setupTest(t)

	rec := f.get(t, "/manuscript", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("expected full error page")
	}
}

func TestHandleManuscript_JSONError(t *testing.T) {
	f := setupTest(t)

	req := httptest.NewRequest("GET", "/manuscript?token=myth_bogus", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"]["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %v, want UNAUTHORIZED", body["error"]["code"])
	}
}

func TestHandleManuscript_Empty(t *testing.T) {
	f := setupTest(t)

	rec := f.get(t, "/manuscript", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Your manuscript awaits its first words.") {
		t.Error("expected empty state message")
	}
}

func TestHandleManuscript_PagesFromMemories(t *testing.T) {
	f := setupTest(t)
	seedMemory(t, f, "Older", "The **first** dawn.", "2026-01-01")
	seedMemory(t, f, "Newer", "The second dawn.", "2026-02-01")

	rec := f.get(t, "/manuscript", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Newer") {
		t.Error("expected newest memory on first page")
	}
	if !strings.Contains(body, "Page 1 of 2") {
		t.Error("expected page position")
	}
	if strings.Contains(body, "Previous") {
		t.Error("first page should not link backwards")
	}

	rec = f.get(t, "/manuscript?page=2", true)
	body = rec.Body.String()
	if !strings.Contains(body, "<strong>first</strong>") {
		t.Error("expected markdown rendered in page body")
	}
	if strings.Contains(body, "Next &rarr;") {
		t.Error("last page should not link forwards")
	}
}

func TestHandleManuscript_ClampsPage(t *testing.T) {
	f := setupTest(t)
	seedMemory(t, f, "Only", "A single leaf.", "2026-03-03")

	for _, page := range []string{"0", "99", "-2", "abc"} {
		rec := f.get(t, "/manuscript?page="+page, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("page=%s: status = %d, want 200", page, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Page 1 of 1") {
			t.Errorf("page=%s: expected clamp to page 1", page)
		}
	}
}

func TestHandleManuscript_QueryTokenCarriedOnLinks(t *testing.T) {
	f := setupTest(t)
	seedMemory(t, f, "One", "a", "2026-01-01")
	seedMemory(t, f, "Two", "b", "2026-01-02")

	rec := f.get(t, "/manuscript?token="+f.token, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token="+f.token) {
		t.Error("expected query token on navigation links")
	}

	rec = f.get(t, "/manuscript", true)
	if strings.Contains(rec.Body.String(), f.token) {
		t.Error("header token must not be written into the page")
	}
}

func TestHandleManuscript_EscapesRawHTML(t *testing.T) {
	f := setupTest(t)
	seedMemory(t, f, "<script>alert(1)</script>", "<script>alert(2)</script>", "2026-01-01")

	body := f.get(t, "/manuscript", true).Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("raw script tag reached the page")
	}
}

// --- HandleEchoes ---

func TestHandleEchoes_Lists(t *testing.T) {
	f := setupTest(t)

	_, err := ops.WriteLetter(context.Background(), f.db, f.userID, ops.WriteLetterInput{
		Content:    "Dear future me",
		UnlockDate: "2999-06-01",
	})
	if err != nil {
		t.Fatalf("WriteLetter: %v", err)
	}

	rec := f.get(t, "/echoes", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2999-06-01") {
		t.Error("expected unlock date")
	}
	if !strings.Contains(body, "Sealed.") {
		t.Error("expected sealed letter")
	}
	if strings.Contains(body, "Dear future me") {
		t.Error("sealed letter content must not be shown")
	}
}

func TestHandleEchoes_OpenLetterShowsResponse(t *testing.T) {
	f := setupTest(t)

	_, err := f.db.Exec(`INSERT INTO future_letters (id, user_id, content, unlock_date, response, is_unlocked, created_at, unlocked_at)
		VALUES ('01OPEN', ?, 'Remember me', '2020-01-01', 'You *did* remember.', 1, 1, 1700000000)`, f.userID)
	if err != nil {
		t.Fatalf("insert letter: %v", err)
	}

	body := f.get(t, "/echoes", true).Body.String()
	if !strings.Contains(body, "<em>did</em>") {
		t.Error("expected rendered response")
	}
	if !strings.Contains(body, "Opened 2023-11-14") {
		t.Error("expected opened timestamp")
	}
}

func TestHandleEchoes_Empty(t *testing.T) {
	f := setupTest(t)

	body := f.get(t, "/echoes", true).Body.String()
	if !strings.Contains(body, "No letters have been sent forward yet.") {
		t.Error("expected empty state message")
	}
}

// --- Static & headers ---

func TestStaticAndSecurityHeaders(t *testing.T) {
	f := setupTest(t)

	rec := f.get(t, "/static/style.css", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header")
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(0); got != "1970-01-01 00:00" {
		t.Errorf("formatTime(0) = %q", got)
	}
}

func TestDerefAndHasValue(t *testing.T) {
	var nilStr *string
	if deref(nilStr) != "" {
		t.Error("deref(nil *string) should be empty string")
	}
	if deref(stringPtr("x")) != "x" {
		t.Error("deref should return pointed-to value")
	}
	if hasValue(nilStr) {
		t.Error("hasValue(nil) should be false")
	}
	if !hasValue(stringPtr("")) {
		t.Error("hasValue(non-nil) should be true")
	}
}
