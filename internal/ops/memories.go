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

// Title and description limits (runes)
const (
	MaxTitleChars       = 200
	MaxDescriptionChars = 10000
)

// starSource positions constellation stars. nil means the global generator.
var starSource journal.Float64Source

// AddMemoryInput contains parameters for the AddMemory operation.
type AddMemoryInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	MemoryDate  string   `json:"memory_date"` // default: today
	MythicProse *string  `json:"mythic_prose"`
	EmotionIDs  []string `json:"emotion_ids"`

	// Generate narrates the memory when no prose is supplied.
	Generate bool `json:"generate"`
}

// AddMemory stores a memory and places one constellation star per emotion.
func AddMemory(ctx context.Context, database *sqlx.DB, gen *generate.Generator, userID string, input AddMemoryInput) (*journal.Memory, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if len([]rune(title)) > MaxTitleChars {
		return nil, errors.NewInvalidRequest("title is too long")
	}
	description := journal.CleanOptional(input.Description)
	if description != nil && len([]rune(*description)) > MaxDescriptionChars {
		return nil, errors.NewInvalidRequest("description is too long")
	}
	date, err := parseDateField("memory_date", input.MemoryDate, true)
	if err != nil {
		return nil, err
	}

	emotions, err := resolveEmotions(ctx, database, userID, input.EmotionIDs)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	ts := now().Unix()

	m := &journal.Memory{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		MemoryDate:  date,
		MythicProse: journal.CleanOptional(input.MythicProse),
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Emotions:    emotions,
	}

	if m.MythicProse == nil && input.Generate {
		out, err := narrate(ctx, database, gen, userID, m)
		if err != nil {
			return nil, err
		}
		m.MythicProse = &out.Text
	}

	emotionIDs := make([]string, len(emotions))
	for i, e := range emotions {
		emotionIDs[i] = e.ID
	}
	stars := journal.PlaceStars(starSource, userID, id, emotionIDs)
	for i := range stars {
		sid, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		stars[i].ID = sid
		stars[i].CreatedAt = ts
	}

	if err := db.CreateMemory(ctx, database, m, stars); err != nil {
		return nil, err
	}
	return m, nil
}

// NarrateMemory regenerates and stores the mythic prose of an existing memory.
func NarrateMemory(ctx context.Context, database *sqlx.DB, gen *generate.Generator, userID, memoryID string) (*journal.Memory, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	m, err := db.GetMemory(ctx, database, userID, strings.TrimSpace(memoryID))
	if err != nil {
		return nil, err
	}

	out, err := narrate(ctx, database, gen, userID, m)
	if err != nil {
		return nil, err
	}

	ts := now().Unix()
	if err := db.SetMemoryProse(ctx, database, userID, m.ID, out.Text, ts); err != nil {
		return nil, err
	}
	m.MythicProse = &out.Text
	m.UpdatedAt = ts
	return m, nil
}

func narrate(ctx context.Context, database *sqlx.DB, gen *generate.Generator, userID string, m *journal.Memory) (*GenerateOutput, error) {
	cred, err := CredentialFor(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	description := ""
	if m.Description != nil {
		description = *m.Description
	}
	return run(ctx, gen, generate.MemoryNarration{
		Title:       m.Title,
		Description: description,
		Emotions:    m.EmotionNames(),
		Date:        m.MemoryDate,
	}, cred)
}

// resolveEmotions maps IDs to visible emotions, keeping first-seen order
// and dropping duplicates. Any unknown ID fails the request.
func resolveEmotions(ctx context.Context, database *sqlx.DB, userID string, ids []string) ([]journal.Emotion, error) {
	seen := make(map[string]bool, len(ids))
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, id)
	}

	found, err := db.EmotionsByID(ctx, database, userID, ordered)
	if err != nil {
		return nil, err
	}

	out := make([]journal.Emotion, 0, len(ordered))
	for _, id := range ordered {
		e, ok := found[id]
		if !ok {
			return nil, errors.NewInvalidRequest("unknown emotion: " + id)
		}
		out = append(out, e)
	}
	return out, nil
}

// ListMemoriesInput contains parameters for the ListMemories operation.
type ListMemoriesInput struct {
	Limit  int // default: 20, max: 100
	Offset int
}

// ListMemoriesOutput contains the result of the ListMemories operation.
type ListMemoriesOutput struct {
	Items      []journal.Memory `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// ListMemories returns userID's memories, newest memory date first.
func ListMemories(ctx context.Context, database *sqlx.DB, userID string, input ListMemoriesInput) (*ListMemoriesOutput, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	limit, offset := clampLimit(input.Limit, input.Offset)

	items, total, err := db.ListMemories(ctx, database, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []journal.Memory{}
	}

	return &ListMemoriesOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

// ListStars returns the user's constellation.
func ListStars(ctx context.Context, database *sqlx.DB, userID string) ([]journal.Star, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	stars, err := db.ListStars(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	if stars == nil {
		stars = []journal.Star{}
	}
	return stars, nil
}
