package ops

import (
	"context"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/db"
	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

const maxEmotionNameChars = 40

var colorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ListEmotions returns the built-in emotions and userID's custom ones.
func ListEmotions(ctx context.Context, database *sqlx.DB, userID string) ([]journal.Emotion, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	out, err := db.ListEmotions(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []journal.Emotion{}
	}
	return out, nil
}

// AddEmotionInput contains parameters for the AddEmotion operation.
type AddEmotionInput struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"` // default: journal.DefaultCustomColor
	Symbol *string `json:"symbol"`
}

// AddEmotion creates a custom emotion visible only to userID.
func AddEmotion(ctx context.Context, database *sqlx.DB, userID string, input AddEmotionInput) (*journal.Emotion, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	name := whitespaceCollapse(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if len([]rune(name)) > maxEmotionNameChars {
		return nil, errors.NewInvalidRequest("name is too long")
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = journal.DefaultCustomColor
	}
	if !colorRegex.MatchString(color) {
		return nil, errors.NewInvalidRequest("color must be a hex value like #8b5cf6")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	owner := userID
	e := &journal.Emotion{
		ID:        id,
		Name:      name,
		Color:     color,
		Symbol:    journal.CleanOptional(input.Symbol),
		IsCustom:  true,
		UserID:    &owner,
		CreatedAt: now().Unix(),
	}
	if err := db.InsertEmotion(ctx, database, e); err != nil {
		return nil, err
	}
	return e, nil
}

func whitespaceCollapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
