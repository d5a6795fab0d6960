package ops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chronos-mythica/mythica/internal/errors"
)

func TestAddMemory_HappyPath(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	userID := setupUser(t, database)

	m, err := AddMemory(ctx, database, nil, userID, AddMemoryInput{
		Title:       "  Beach walk ",
		Description: stringPtr("Walked along the shore."),
		MemoryDate:  "2024-06-01",
		EmotionIDs:  []string{"emo-joy", "emo-peace", "emo-joy", " "},
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	require.Equal(t, "Beach walk", m.Title)
	require.Equal(t, []string{"Joy", "Peace"}, m.EmotionNames())
	require.Nil(t, m.MythicProse, "no prose without the generate flag")

	stars, err := ListStars(ctx, database, userID)
	require.NoError(t, err)
	require.Len(t, stars, 2, "one star per distinct emotion")
	for _, s := range stars {
		require.Equal(t, m.ID, *s.MemoryID)
		require.GreaterOrEqual(t, s.Brightness, 0.7)
	}
}

func TestAddMemory_GeneratesProse(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	userID := setupUser(t, database)
	freezeClock(t, time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC))

	m, err := AddMemory(ctx, database, newGenerator(nil), userID, AddMemoryInput{
		Title:      "First snow",
		EmotionIDs: []string{"emo-wonder"},
		Generate:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, m.MythicProse)
	require.Contains(t, *m.MythicProse, "This moment was inscribed in the eternal ledger of your becoming.")
	require.Equal(t, "2026-10-14", m.MemoryDate, "date defaults to today")

	// Supplied prose wins over generation.
	m, err = AddMemory(ctx, database, newGenerator(nil), userID, AddMemoryInput{
		Title:       "Given",
		MythicProse: stringPtr("Already mythic."),
		Generate:    true,
	})
	require.NoError(t, err)
	require.Equal(t, "Already mythic.", *m.MythicProse)
}

func TestAddMemory_Validation(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	userID := setupUser(t, database)

	tests := []struct {
		name  string
		input AddMemoryInput
	}{
		{"missing title", AddMemoryInput{Title: "  "}},
		{"bad date", AddMemoryInput{Title: "x", MemoryDate: "June 1"}},
		{"unknown emotion", AddMemoryInput{Title: "x", EmotionIDs: []string{"emo-nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddMemory(ctx, database, nil, userID, tt.input)
			require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}

	_, err := AddMemory(ctx, database, nil, "", AddMemoryInput{Title: "x"})
	require.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestAddMemory_CustomEmotionVisibility(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	owner := setupUser(t, database)
	other, err := CreateUser(ctx, database, CreateUserInput{Email: "other@example.com"})
	require.NoError(t, err)

	e, err := AddEmotion(ctx, database, owner, AddEmotionInput{Name: "Nostalgia"})
	require.NoError(t, err)

	_, err = AddMemory(ctx, database, nil, other.User.ID, AddMemoryInput{Title: "x", EmotionIDs: []string{e.ID}})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	m, err := AddMemory(ctx, database, newGenerator(nil), owner, AddMemoryInput{Title: "Old photos", EmotionIDs: []string{e.ID}, Generate: true})
	require.NoError(t, err)
	require.Contains(t, *m.MythicProse, "nostalgia stirred within you")
}

func TestNarrateMemory_Regenerates(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	userID := setupUser(t, database)

	m, err := AddMemory(ctx, database, nil, userID, AddMemoryInput{Title: "Quiet night", EmotionIDs: []string{"emo-peace"}})
	require.NoError(t, err)

	got, err := NarrateMemory(ctx, database, newGenerator(nil), userID, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MythicProse)

	listed, err := ListMemories(ctx, database, userID, ListMemoriesInput{})
	require.NoError(t, err)
	require.Equal(t, *got.MythicProse, *listed.Items[0].MythicProse)

	_, err = NarrateMemory(ctx, database, nil, userID, "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListMemories_Pagination(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	userID := setupUser(t, database)

	for i := 1; i <= 5; i++ {
		_, err := AddMemory(ctx, database, nil, userID, AddMemoryInput{
			Title:      fmt.Sprintf("m%d", i),
			MemoryDate: fmt.Sprintf("2024-01-0%d", i),
		})
		require.NoError(t, err)
	}

	out, err := ListMemories(ctx, database, userID, ListMemoriesInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.Equal(t, "m5", out.Items[0].Title)
	require.True(t, out.Pagination.HasMore)
	require.Equal(t, 5, out.Pagination.Total)

	out, err = ListMemories(ctx, database, userID, ListMemoriesInput{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.False(t, out.Pagination.HasMore)
}

func TestListMemories_EmptyIsNotNil(t *testing.T) {
	database := setupDB(t)
	userID := setupUser(t, database)

	out, err := ListMemories(context.Background(), database, userID, ListMemoriesInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Empty(t, out.Items)

	stars, err := ListStars(context.Background(), database, userID)
	require.NoError(t, err)
	require.NotNil(t, stars)
}

func TestEmotions_AddAndList(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	userID := setupUser(t, database)

	e, err := AddEmotion(ctx, database, userID, AddEmotionInput{Name: "  Quiet   Awe ", Color: "#123abc", Symbol: stringPtr("✶")})
	require.NoError(t, err)
	require.Equal(t, "Quiet Awe", e.Name)
	require.True(t, e.IsCustom)

	all, err := ListEmotions(ctx, database, userID)
	require.NoError(t, err)
	require.Len(t, all, 13)

	_, err = AddEmotion(ctx, database, userID, AddEmotionInput{Name: "Joy"})
	require.True(t, errors.Is(err, errors.ErrConflict))

	_, err = AddEmotion(ctx, database, userID, AddEmotionInput{Name: "Tint", Color: "purple"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = AddEmotion(ctx, database, userID, AddEmotionInput{Name: " "})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	d, err := AddEmotion(ctx, database, userID, AddEmotionInput{Name: "Defaulted"})
	require.NoError(t, err)
	require.Equal(t, "#8b5cf6", d.Color)
}
