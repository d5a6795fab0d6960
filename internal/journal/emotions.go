package journal

// Builtin describes a seeded, non-custom emotion.
type Builtin struct {
	ID     string
	Name   string
	Color  string
	Symbol string
}

// Builtins are seeded into every database. Names match the prose engine's
// emotion catalog so offline narration recognizes them.
var Builtins = []Builtin{
	{ID: "emo-joy", Name: "Joy", Color: "#fbbf24", Symbol: "☀"},
	{ID: "emo-sorrow", Name: "Sorrow", Color: "#3b82f6", Symbol: "☂"},
	{ID: "emo-courage", Name: "Courage", Color: "#ef4444", Symbol: "⚔"},
	{ID: "emo-fear", Name: "Fear", Color: "#6b7280", Symbol: "☾"},
	{ID: "emo-love", Name: "Love", Color: "#ec4899", Symbol: "♥"},
	{ID: "emo-anger", Name: "Anger", Color: "#dc2626", Symbol: "♨"},
	{ID: "emo-peace", Name: "Peace", Color: "#10b981", Symbol: "☮"},
	{ID: "emo-wonder", Name: "Wonder", Color: "#8b5cf6", Symbol: "✧"},
	{ID: "emo-hope", Name: "Hope", Color: "#22d3ee", Symbol: "✦"},
	{ID: "emo-loneliness", Name: "Loneliness", Color: "#64748b", Symbol: "☁"},
	{ID: "emo-gratitude", Name: "Gratitude", Color: "#f59e0b", Symbol: "❀"},
	{ID: "emo-determination", Name: "Determination", Color: "#f97316", Symbol: "▲"},
}

// DefaultCustomColor is used for custom emotions created without a color.
const DefaultCustomColor = "#8b5cf6"
