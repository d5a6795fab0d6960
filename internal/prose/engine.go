// Package prose synthesizes mythic narrative text offline from fixed
// catalogs. It never touches the network or any model configuration.
package prose

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MemoryInput is the memory to narrate.
type MemoryInput struct {
	Title       string
	Description string
	Emotions    []string
	Date        string // advisory, not used
}

// LetterInput is the letter to answer.
type LetterInput struct {
	LetterContent string
	UnlockDate    string
}

// Engine composes prose from catalogs using an injected random source.
type Engine struct {
	src Source
}

var (
	synonymPattern = buildSynonymPattern()
	synonymIndex   = buildSynonymIndex()
	emotionIndex   = buildEmotionIndex()
)

// New creates an Engine. A nil src uses DefaultSource.
func New(src Source) *Engine {
	if src == nil {
		src = DefaultSource()
	}
	return &Engine{src: src}
}

// NarrateMemory rewrites a memory as two or three sentences of second-person prose.
func (e *Engine) NarrateMemory(in MemoryInput) string {
	opening := e.pick(openings)
	phrase := e.emotionPhrase(in.Emotions)

	text := collapse(in.Description)
	if text == "" {
		text = collapse(in.Title)
	}
	text = trimTerminal(e.Substitute(text))

	var b strings.Builder
	b.WriteString(opening)
	b.WriteByte(' ')
	b.WriteString(phrase)
	b.WriteString(". ")
	if text != "" {
		b.WriteString("You ")
		b.WriteString(lowerFirst(text))
		b.WriteString(". ")
	}
	b.WriteString(memoryClosing)
	return b.String()
}

// NarrateFutureResponse answers a letter with three blank-line separated paragraphs.
// The letter itself is not echoed.
func (e *Engine) NarrateFutureResponse(_ LetterInput) string {
	return e.pick(letterOpenings) + "\n\n" + e.pick(letterMiddles) + "\n\n" + e.pick(letterClosings)
}

// Substitute replaces every whole-word, case-insensitive catalog word in text.
// Each occurrence gets its own draw; replacements are not substituted again.
func (e *Engine) Substitute(text string) string {
	return synonymPattern.ReplaceAllStringFunc(text, func(m string) string {
		return e.pick(synonymIndex[strings.ToLower(m)])
	})
}

func (e *Engine) emotionPhrase(labels []string) string {
	primary := ""
	if len(labels) > 0 {
		primary = strings.TrimSpace(labels[0])
	}
	if primary == "" {
		return unnamedInfluence
	}
	if phrases, ok := emotionIndex[strings.ToLower(primary)]; ok {
		return e.pick(phrases)
	}
	return strings.ToLower(primary) + unknownEmotion
}

func (e *Engine) pick(options []string) string {
	n := len(options)
	i := e.src.IntN(n)
	if i < 0 || i >= n {
		i = ((i % n) + n) % n
	}
	return options[i]
}

func buildSynonymPattern() *regexp.Regexp {
	words := make([]string, len(synonyms))
	for i, s := range synonyms {
		words[i] = regexp.QuoteMeta(s.word)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
}

func buildSynonymIndex() map[string][]string {
	idx := make(map[string][]string, len(synonyms))
	for _, s := range synonyms {
		idx[s.word] = s.synonyms
	}
	return idx
}

func buildEmotionIndex() map[string][]string {
	idx := make(map[string][]string, len(emotions))
	for _, e := range emotions {
		idx[strings.ToLower(e.label)] = e.phrases
	}
	return idx
}

// collapse trims s and folds internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimTerminal(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '!' || r == '?' || r == '…'
	})
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
