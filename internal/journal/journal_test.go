package journal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-mythica/mythica/internal/prose"
)

func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Joy  ", "joy"},
		{"Deep\t\tCalm", "deep calm"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestCleanOptional(t *testing.T) {
	require.Nil(t, CleanOptional(nil))
	require.Nil(t, CleanOptional(strPtr("  \n")))
	require.Equal(t, "sea", *CleanOptional(strPtr(" sea ")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("29/02/2024")
	require.Error(t, err)
}

func TestProfile_APIKeyNeverSerialized(t *testing.T) {
	p := &Profile{UserID: "u1", OpenRouterAPIKey: strPtr("sk-or-secret")}
	require.True(t, p.HasAPIKey())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NotContains(t, string(data), "sk-or-secret")

	require.False(t, (&Profile{OpenRouterAPIKey: strPtr("")}).HasAPIKey())
	var nilProfile *Profile
	require.False(t, nilProfile.HasAPIKey())
}

func TestBuiltins_MatchProseCatalog(t *testing.T) {
	labels := prose.EmotionLabels()
	require.Len(t, Builtins, len(labels))

	seen := make(map[string]bool)
	for i, b := range Builtins {
		require.Equal(t, labels[i], b.Name)
		require.NotEmpty(t, b.Color)
		require.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
}

func TestPages_ChaptersWin(t *testing.T) {
	chapters := []Chapter{
		{Number: 1, Title: strPtr("The Departure"), Content: strPtr("It began."), CreatedAt: 1717200000},
		{Number: 2},
	}
	memories := []Memory{{Title: "ignored"}}

	pages := Pages(chapters, memories)
	require.Len(t, pages, 2)
	require.Equal(t, "The Departure", pages[0].Title)
	require.Equal(t, "It began.", pages[0].Content)
	require.Equal(t, "2024-06-01", pages[0].Date)
	require.Equal(t, "Chapter 2", pages[1].Title)
	require.Equal(t, "", pages[1].Content)
}

func TestPages_FromMemories(t *testing.T) {
	var memories []Memory
	for i := 0; i < 12; i++ {
		memories = append(memories, Memory{Title: "m", MemoryDate: "2024-01-01"})
	}
	memories[0].MythicProse = strPtr("You beheld the sea.")
	memories[1].Description = strPtr("Saw the sea.")
	memories[2].MythicProse = strPtr("")
	memories[2].Description = strPtr("Fallback text")

	pages := Pages(nil, memories)
	require.Len(t, pages, MaxMemoryPages)
	require.Equal(t, "You beheld the sea.", pages[0].Content)
	require.Equal(t, "Saw the sea.", pages[1].Content)
	require.Equal(t, "Fallback text", pages[2].Content)
	require.Equal(t, PlaceholderContent, pages[3].Content)
	require.Equal(t, "2024-01-01", pages[3].Date)
}

func TestPages_Empty(t *testing.T) {
	require.Empty(t, Pages(nil, nil))
}

type fixedFloats []float64

func (f *fixedFloats) Float64() float64 {
	v := (*f)[0]
	*f = append((*f)[1:], v)
	return v
}

func TestPlaceStars_Bounds(t *testing.T) {
	stars := PlaceStars(nil, "u1", "m1", []string{"emo-joy", "emo-hope"})
	require.Len(t, stars, 2)

	for i := 0; i < 500; i++ {
		for _, s := range PlaceStars(nil, "u1", "m1", []string{"e"}) {
			require.GreaterOrEqual(t, s.X, -10.0)
			require.Less(t, s.X, 10.0)
			require.GreaterOrEqual(t, s.Y, -10.0)
			require.Less(t, s.Y, 10.0)
			require.GreaterOrEqual(t, s.Z, -5.0)
			require.Less(t, s.Z, 5.0)
			require.GreaterOrEqual(t, s.Brightness, 0.7)
			require.Less(t, s.Brightness, 1.0)
		}
	}
}

func TestPlaceStars_Extremes(t *testing.T) {
	src := &fixedFloats{0, 0, 0, 0}
	s := PlaceStars(src, "u1", "m1", []string{"emo-fear"})[0]
	require.Equal(t, -10.0, s.X)
	require.Equal(t, -10.0, s.Y)
	require.Equal(t, -5.0, s.Z)
	require.Equal(t, 0.7, s.Brightness)
	require.Equal(t, "emo-fear", *s.EmotionID)
	require.Equal(t, "m1", *s.MemoryID)
	require.Equal(t, "u1", s.UserID)
}

func TestPlaceStars_DistinctPointers(t *testing.T) {
	stars := PlaceStars(nil, "u1", "m1", []string{"a", "b"})
	require.Equal(t, "a", *stars[0].EmotionID)
	require.Equal(t, "b", *stars[1].EmotionID)
}

func TestUnlockable(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		letter FutureLetter
		want   bool
	}{
		{"past", FutureLetter{UnlockDate: "2026-10-01"}, true},
		{"today", FutureLetter{UnlockDate: "2026-10-14"}, true},
		{"tomorrow", FutureLetter{UnlockDate: "2026-10-15"}, false},
		{"already unlocked", FutureLetter{UnlockDate: "2099-01-01", IsUnlocked: true}, true},
		{"garbage date", FutureLetter{UnlockDate: "someday"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Unlockable(&tt.letter, now))
		})
	}
}

func TestUnlockLabel(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "Unlocks today", UnlockLabel(&FutureLetter{UnlockDate: "2026-10-14"}, now))
	require.Equal(t, "Unlocks in 5 days", UnlockLabel(&FutureLetter{UnlockDate: "2026-10-20"}, now))
	require.Equal(t, "Unlocked 4 days ago", UnlockLabel(&FutureLetter{UnlockDate: "2026-10-10"}, now))
	require.Equal(t, "Unlock date unknown", UnlockLabel(&FutureLetter{UnlockDate: ""}, now))
}

func TestMemory_EmotionNames(t *testing.T) {
	m := Memory{Emotions: []Emotion{{Name: "Joy"}, {Name: "Peace"}}}
	require.Equal(t, []string{"Joy", "Peace"}, m.EmotionNames())
	require.Empty(t, (&Memory{}).EmotionNames())
}
