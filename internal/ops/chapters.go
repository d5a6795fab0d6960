package ops

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/db"
	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// AddChapterInput contains parameters for the AddChapter operation.
type AddChapterInput struct {
	Number  *int    `json:"chapter_number"` // default: next free number
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// AddChapter appends a manuscript chapter.
func AddChapter(ctx context.Context, database *sqlx.DB, userID string, input AddChapterInput) (*journal.Chapter, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var number int
	if input.Number != nil {
		number = *input.Number
		if number < 1 {
			return nil, errors.NewInvalidRequest("chapter_number must be positive")
		}
	} else {
		next, err := db.NextChapterNumber(ctx, database, userID)
		if err != nil {
			return nil, err
		}
		number = next
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	ts := now().Unix()

	c := &journal.Chapter{
		ID:        id,
		UserID:    userID,
		Number:    number,
		Title:     journal.CleanOptional(input.Title),
		Content:   journal.CleanOptional(input.Content),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := db.InsertChapter(ctx, database, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListChapters returns userID's chapters in order.
func ListChapters(ctx context.Context, database *sqlx.DB, userID string) ([]journal.Chapter, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	out, err := db.ListChapters(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []journal.Chapter{}
	}
	return out, nil
}

// Manuscript builds userID's pages: chapters if any exist, else the most
// recent memories.
func Manuscript(ctx context.Context, database *sqlx.DB, userID string) ([]journal.Page, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	chapters, err := db.ListChapters(ctx, database, userID)
	if err != nil {
		return nil, err
	}

	var memories []journal.Memory
	if len(chapters) == 0 {
		memories, _, err = db.ListMemories(ctx, database, userID, journal.MaxMemoryPages, 0)
		if err != nil {
			return nil, err
		}
	}
	return journal.Pages(chapters, memories), nil
}
