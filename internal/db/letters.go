package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

const letterColumns = `id, user_id, content, unlock_date, response, is_unlocked, created_at, unlocked_at`

// InsertLetter stores a new sealed letter.
func InsertLetter(ctx context.Context, db *sqlx.DB, l *journal.FutureLetter) error {
	_, err := db.NamedExecContext(ctx, `
		INSERT INTO future_letters (id, user_id, content, unlock_date, response, is_unlocked, created_at, unlocked_at)
		VALUES (:id, :user_id, :content, :unlock_date, :response, :is_unlocked, :created_at, :unlocked_at)
	`, l)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetLetter retrieves one of userID's letters.
func GetLetter(ctx context.Context, db *sqlx.DB, userID, id string) (*journal.FutureLetter, error) {
	var l journal.FutureLetter
	err := db.GetContext(ctx, &l, `
		SELECT `+letterColumns+` FROM future_letters WHERE id = ? AND user_id = ?
	`, id, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("letter", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &l, nil
}

// ListLetters returns userID's letters by unlock date, soonest first.
func ListLetters(ctx context.Context, db *sqlx.DB, userID string) ([]journal.FutureLetter, error) {
	var out []journal.FutureLetter
	err := db.SelectContext(ctx, &out, `
		SELECT `+letterColumns+` FROM future_letters WHERE user_id = ?
		ORDER BY unlock_date ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// MarkLetterUnlocked stores the response and flips the letter open. It
// reports false when the letter was already open, in which case nothing
// is written.
func MarkLetterUnlocked(ctx context.Context, db *sqlx.DB, userID, id, response string, at int64) (bool, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE future_letters
		SET response = ?, is_unlocked = 1, unlocked_at = ?
		WHERE id = ? AND user_id = ? AND is_unlocked = 0
	`, response, at, id, userID)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return rowsAffected > 0, nil
}

const chapterColumns = `id, user_id, chapter_number, title, content, created_at, updated_at`

// InsertChapter stores a chapter. Chapter numbers are unique per user.
func InsertChapter(ctx context.Context, db *sqlx.DB, c *journal.Chapter) error {
	_, err := db.NamedExecContext(ctx, `
		INSERT INTO manuscript_chapters (id, user_id, chapter_number, title, content, created_at, updated_at)
		VALUES (:id, :user_id, :chapter_number, :title, :content, :created_at, :updated_at)
	`, c)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("chapter number already used")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// NextChapterNumber returns one past the user's highest chapter number.
func NextChapterNumber(ctx context.Context, db *sqlx.DB, userID string) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, `
		SELECT COALESCE(MAX(chapter_number), 0) + 1 FROM manuscript_chapters WHERE user_id = ?
	`, userID)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// ListChapters returns userID's chapters in chapter order.
func ListChapters(ctx context.Context, db *sqlx.DB, userID string) ([]journal.Chapter, error) {
	var out []journal.Chapter
	err := db.SelectContext(ctx, &out, `
		SELECT `+chapterColumns+` FROM manuscript_chapters WHERE user_id = ?
		ORDER BY chapter_number ASC
	`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}
