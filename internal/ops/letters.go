package ops

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/db"
	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/generate"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// MaxLetterChars bounds a letter's content (runes).
const MaxLetterChars = 20000

// WriteLetterInput contains parameters for the WriteLetter operation.
type WriteLetterInput struct {
	Content    string `json:"content"`
	UnlockDate string `json:"unlock_date"`
}

// WriteLetter seals a letter until its unlock date, which may not be in the past.
func WriteLetter(ctx context.Context, database *sqlx.DB, userID string, input WriteLetterInput) (*journal.FutureLetter, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	if len([]rune(content)) > MaxLetterChars {
		return nil, errors.NewInvalidRequest("content is too long")
	}

	date, err := parseDateField("unlock_date", input.UnlockDate, false)
	if err != nil {
		return nil, err
	}
	if date < journal.Today(now()) {
		return nil, errors.NewInvalidRequest("unlock_date must not be in the past")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	l := &journal.FutureLetter{
		ID:         id,
		UserID:     userID,
		Content:    content,
		UnlockDate: date,
		CreatedAt:  now().Unix(),
	}
	if err := db.InsertLetter(ctx, database, l); err != nil {
		return nil, err
	}
	return l, nil
}

// LetterView adds the reader-facing unlock state to a letter.
type LetterView struct {
	journal.FutureLetter
	Unlockable bool   `json:"is_unlockable"`
	TimeLabel  string `json:"time_label"`
}

// ListLetters returns userID's letters, soonest unlock first.
func ListLetters(ctx context.Context, database *sqlx.DB, userID string) ([]LetterView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	letters, err := db.ListLetters(ctx, database, userID)
	if err != nil {
		return nil, err
	}

	t := now()
	out := make([]LetterView, 0, len(letters))
	for i := range letters {
		out = append(out, LetterView{
			FutureLetter: letters[i],
			Unlockable:   journal.Unlockable(&letters[i], t),
			TimeLabel:    journal.UnlockLabel(&letters[i], t),
		})
	}
	return out, nil
}

// UnlockLetter opens a letter whose date has come and stores the future
// self's response. Opening an already open letter returns it unchanged.
func UnlockLetter(ctx context.Context, database *sqlx.DB, gen *generate.Generator, userID, id string) (*journal.FutureLetter, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	l, err := db.GetLetter(ctx, database, userID, id)
	if err != nil {
		return nil, err
	}
	if l.IsUnlocked {
		return l, nil
	}
	if !journal.Unlockable(l, now()) {
		return nil, errors.NewLetterLocked(l.ID, l.UnlockDate)
	}

	cred, err := CredentialFor(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	out, err := run(ctx, gen, generate.FutureResponse{
		LetterContent: l.Content,
		UnlockDate:    l.UnlockDate,
	}, cred)
	if err != nil {
		return nil, err
	}

	// A concurrent unlock may have won; either way the stored row is the answer.
	if _, err := db.MarkLetterUnlocked(ctx, database, userID, l.ID, out.Text, now().Unix()); err != nil {
		return nil, err
	}
	return db.GetLetter(ctx, database, userID, l.ID)
}
