// Package journal defines the persisted entities of a Mythica journal and the
// pure rules that shape them: normalization, star placement, letter gating,
// and manuscript pagination.
package journal

// User is an account that owns journal data.
type User struct {
	ID          string `json:"id" db:"id"`
	Email       string `json:"email" db:"email"`
	DisplayName string `json:"display_name" db:"display_name"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

// Profile carries the user's provider settings.
type Profile struct {
	UserID      string  `json:"user_id" db:"user_id"`
	DisplayName *string `json:"display_name,omitempty" db:"display_name"`

	// OpenRouterAPIKey is write-only from the outside. It is never serialized.
	OpenRouterAPIKey *string `json:"-" db:"openrouter_api_key"`

	// PreferredModel is empty when the server default applies.
	PreferredModel string `json:"preferred_model" db:"preferred_model"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// HasAPIKey reports whether a non-blank provider key is stored.
func (p *Profile) HasAPIKey() bool {
	return p != nil && p.OpenRouterAPIKey != nil && *p.OpenRouterAPIKey != ""
}

// Emotion is a built-in or user-defined feeling a memory can carry.
type Emotion struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Color     string  `json:"color" db:"color"`
	Symbol    *string `json:"symbol,omitempty" db:"symbol"`
	IsCustom  bool    `json:"is_custom" db:"is_custom"`
	UserID    *string `json:"user_id,omitempty" db:"user_id"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// Memory is a dated life event, optionally rewritten as mythic prose.
type Memory struct {
	ID          string  `json:"id" db:"id"`
	UserID      string  `json:"user_id" db:"user_id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description,omitempty" db:"description"`
	MemoryDate  string  `json:"memory_date" db:"memory_date"`
	MythicProse *string `json:"mythic_prose,omitempty" db:"mythic_prose"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
	UpdatedAt   int64   `json:"updated_at" db:"updated_at"`

	Emotions []Emotion `json:"emotions" db:"-"`
}

// EmotionNames returns the names of the attached emotions in order.
func (m *Memory) EmotionNames() []string {
	names := make([]string, 0, len(m.Emotions))
	for _, e := range m.Emotions {
		names = append(names, e.Name)
	}
	return names
}

// Star is one point of the user's constellation, born from a memory's emotion.
type Star struct {
	ID         string  `json:"id" db:"id"`
	UserID     string  `json:"user_id" db:"user_id"`
	EmotionID  *string `json:"emotion_id,omitempty" db:"emotion_id"`
	MemoryID   *string `json:"memory_id,omitempty" db:"memory_id"`
	X          float64 `json:"x_pos" db:"x_pos"`
	Y          float64 `json:"y_pos" db:"y_pos"`
	Z          float64 `json:"z_pos" db:"z_pos"`
	Brightness float64 `json:"brightness" db:"brightness"`
	CreatedAt  int64   `json:"created_at" db:"created_at"`
}

// FutureLetter is sealed until UnlockDate, then answered once by the future self.
type FutureLetter struct {
	ID         string  `json:"id" db:"id"`
	UserID     string  `json:"user_id" db:"user_id"`
	Content    string  `json:"content" db:"content"`
	UnlockDate string  `json:"unlock_date" db:"unlock_date"`
	Response   *string `json:"response,omitempty" db:"response"`
	IsUnlocked bool    `json:"is_unlocked" db:"is_unlocked"`
	CreatedAt  int64   `json:"created_at" db:"created_at"`
	UnlockedAt *int64  `json:"unlocked_at,omitempty" db:"unlocked_at"`
}

// Chapter is a user-authored manuscript chapter.
type Chapter struct {
	ID        string  `json:"id" db:"id"`
	UserID    string  `json:"user_id" db:"user_id"`
	Number    int     `json:"chapter_number" db:"chapter_number"`
	Title     *string `json:"title,omitempty" db:"title"`
	Content   *string `json:"content,omitempty" db:"content"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

// Page is one leaf of the manuscript reader.
type Page struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}
