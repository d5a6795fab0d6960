package prose

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqSource replays vals in order, modulo n.
type seqSource struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *seqSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func fixed(vals ...int) *seqSource { return &seqSource{vals: vals} }

func phrasesFor(label string) []string {
	for _, e := range emotions {
		if e.label == label {
			return e.phrases
		}
	}
	return nil
}

func containsAny(s string, options []string) bool {
	for _, o := range options {
		if strings.Contains(s, o) {
			return true
		}
	}
	return false
}

func TestNarrateMemory_Composition(t *testing.T) {
	e := New(fixed(0))

	got := e.NarrateMemory(MemoryInput{
		Title:       "Beach walk",
		Description: "Walked along the shore with a friend.",
		Emotions:    []string{"Joy", "Peace"},
	})

	want := "In the tapestry of your existence, the light within you blazed. " +
		"You journeyed along the shore with a kindred spirit. " +
		"This moment was inscribed in the eternal ledger of your becoming."
	require.Equal(t, want, got)
}

func TestNarrateMemory_LowercasesFirstCharacter(t *testing.T) {
	e := New(fixed(0))

	got := e.NarrateMemory(MemoryInput{Title: "Ëmma Arrived", Emotions: []string{"Wonder"}})
	require.Contains(t, got, "You ëmma Arrived. ")
}

func TestNarrateMemory_FallsBackToTitle(t *testing.T) {
	e := New(fixed(1))

	got := e.NarrateMemory(MemoryInput{Title: "First day at work", Description: "   "})
	require.Contains(t, got, "You first ")
	require.NotRegexp(t, `(?i)\b(day|work)\b`, got)
}

func TestNarrateMemory_EmptySourceOmitsSentence(t *testing.T) {
	e := New(fixed(0))

	got := e.NarrateMemory(MemoryInput{})
	want := "In the tapestry of your existence, your spirit was moved by forces unseen. " +
		"This moment was inscribed in the eternal ledger of your becoming."
	require.Equal(t, want, got)
	require.NotContains(t, got, "You .")
}

func TestNarrateMemory_PunctuationOnlySourceOmitsSentence(t *testing.T) {
	e := New(fixed(0))

	got := e.NarrateMemory(MemoryInput{Title: "...", Description: "?!"})
	require.NotContains(t, got, "You ")
	require.True(t, strings.HasSuffix(got, memoryClosing))
}

func TestNarrateMemory_Totality(t *testing.T) {
	e := New(DefaultSource())

	inputs := []MemoryInput{
		{},
		{Title: "t"},
		{Description: "d"},
		{Emotions: []string{}},
		{Emotions: []string{""}},
		{Emotions: []string{"   ", "Joy"}},
		{Title: "\xff\xfe broken utf8", Emotions: []string{"\xff"}},
		{Title: "multi\n\nline\ttitle", Description: "so   much\n space"},
		{Description: strings.Repeat("walked day night ", 500)},
	}

	for _, in := range inputs {
		var got string
		require.NotPanics(t, func() { got = e.NarrateMemory(in) })
		require.NotEmpty(t, got)
		require.True(t, strings.HasSuffix(got, memoryClosing), "output %q", got)
		require.NotContains(t, got, "..")
		require.NotContains(t, got, "  ")
	}
}

func TestNarrateMemory_SentenceCount(t *testing.T) {
	e := New(DefaultSource())

	for i := 0; i < 100; i++ {
		withText := e.NarrateMemory(MemoryInput{Title: "Night", Description: "I saw the sea", Emotions: []string{"Hope"}})
		assert.Equal(t, 3, strings.Count(withText, "."), withText)

		withoutText := e.NarrateMemory(MemoryInput{Emotions: []string{"Hope"}})
		assert.Equal(t, 2, strings.Count(withoutText, "."), withoutText)
	}
}

func TestNarrateMemory_SubstitutionScope(t *testing.T) {
	e := New(DefaultSource())
	literal := regexp.MustCompile(`(?i)\bwalked\b`)
	walked := synonymIndex["walked"]

	for _, emotion := range append(EmotionLabels(), "", "Nostalgia") {
		for i := 0; i < 20; i++ {
			got := e.NarrateMemory(MemoryInput{
				Title:       "Evening",
				Description: "We walked, WALKED and Walked until dawn",
				Emotions:    []string{emotion},
			})
			require.False(t, literal.MatchString(got), "literal survived in %q", got)
			require.True(t, containsAny(got, walked), "no synonym in %q", got)
		}
	}
}

func TestSubstitute_IndependentDraws(t *testing.T) {
	e := New(fixed(0, 1, 2))

	got := e.Substitute("walked walked walked")
	require.Equal(t, "journeyed traversed wandered", got)
}

func TestSubstitute_WholeWordsOnly(t *testing.T) {
	e := New(fixed(0))

	got := e.Substitute("Today the workers sawed wood; homework waits. Sadly, day broke.")
	require.Equal(t, "Today the workers sawed wood; homework waits. Sadly, cycle of light broke.", got)
}

func TestSubstitute_NoChaining(t *testing.T) {
	// "love" -> "sacred bond"; "family" -> "sacred bond"; neither result is rewritten again.
	e := New(fixed(0, 1))

	got := e.Substitute("love family")
	require.Equal(t, "sacred bond sacred bond", got)
}

func TestNarrateMemory_EmotionSensitivity(t *testing.T) {
	e := New(DefaultSource())
	joy := phrasesFor("Joy")
	seen := make(map[string]bool)

	var others []string
	for _, em := range emotions {
		if em.label != "Joy" {
			others = append(others, em.phrases...)
		}
	}

	for i := 0; i < 200; i++ {
		got := e.NarrateMemory(MemoryInput{Title: "Festival", Emotions: []string{"Joy"}})

		matched := ""
		for _, p := range joy {
			if strings.Contains(got, p) {
				matched = p
			}
		}
		require.NotEmpty(t, matched, "no Joy phrase in %q", got)
		require.False(t, containsAny(got, others), "foreign emotion phrase in %q", got)
		seen[matched] = true
	}

	require.GreaterOrEqual(t, len(seen), 2, "randomization appears constant")
}

func TestNarrateMemory_EmotionLookupIgnoresCase(t *testing.T) {
	e := New(fixed(2))

	got := e.NarrateMemory(MemoryInput{Title: "x", Emotions: []string{" courage "}})
	require.Contains(t, got, "you faced the tempest unbowed")
}

func TestNarrateMemory_UnknownEmotion(t *testing.T) {
	e := New(fixed(0))

	got := e.NarrateMemory(MemoryInput{Title: "Old photos", Emotions: []string{"Nostalgia"}})
	require.Contains(t, got, "In the tapestry of your existence, nostalgia stirred within you. ")
}

func TestNarrateMemory_NoEmotion(t *testing.T) {
	e := New(DefaultSource())

	var all []string
	for _, em := range emotions {
		all = append(all, em.phrases...)
	}

	for i := 0; i < 200; i++ {
		got := e.NarrateMemory(MemoryInput{Title: "Quiet afternoon", Description: "Read by the window"})
		require.Contains(t, got, unnamedInfluence)
		require.False(t, containsAny(got, all), "emotion phrase in %q", got)
	}
}

func TestNarrateFutureResponse_Structure(t *testing.T) {
	e := New(DefaultSource())

	inputs := []LetterInput{
		{},
		{LetterContent: "Dear me, are you happy?", UnlockDate: "2030-01-01"},
		{LetterContent: strings.Repeat("long letter ", 1000)},
	}

	for _, in := range inputs {
		for i := 0; i < 50; i++ {
			got := e.NarrateFutureResponse(in)
			parts := strings.Split(got, "\n\n")
			require.Len(t, parts, 3, got)
			for _, p := range parts {
				require.NotEmpty(t, strings.TrimSpace(p))
			}
			require.Contains(t, letterOpenings, parts[0])
			require.Contains(t, letterMiddles, parts[1])
			require.Contains(t, letterClosings, parts[2])
			require.NotContains(t, got, "2030-01-01")
		}
	}
}

func TestNarrateFutureResponse_DrawOrder(t *testing.T) {
	e := New(fixed(4, 3, 2))

	got := e.NarrateFutureResponse(LetterInput{LetterContent: "hi"})
	want := letterOpenings[4] + "\n\n" + letterMiddles[3] + "\n\n" + letterClosings[2]
	require.Equal(t, want, got)
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := New(NewSeededSource(42))
	b := New(NewSeededSource(42))

	in := MemoryInput{Title: "Home", Description: "Felt happy at home all day", Emotions: []string{"Gratitude"}}
	for i := 0; i < 20; i++ {
		require.Equal(t, a.NarrateMemory(in), b.NarrateMemory(in))
	}
}

func TestPick_ClampsMisbehavingSource(t *testing.T) {
	e := New(fixed(-7, 100))

	require.NotPanics(t, func() {
		e.NarrateMemory(MemoryInput{Title: "walked", Emotions: []string{"Fear"}})
		e.NarrateFutureResponse(LetterInput{})
	})
}

func TestNew_NilSource(t *testing.T) {
	e := New(nil)
	require.NotEmpty(t, e.NarrateFutureResponse(LetterInput{}))
}

func TestCatalogs_AvoidSubstitutableWords(t *testing.T) {
	var fixedText []string
	fixedText = append(fixedText, openings...)
	fixedText = append(fixedText, memoryClosing, unnamedInfluence, unknownEmotion)
	for _, em := range emotions {
		fixedText = append(fixedText, em.phrases...)
	}

	for _, s := range fixedText {
		require.False(t, synonymPattern.MatchString(s), "catalog text %q contains a substitutable word", s)
	}
}

func TestCatalogSizes(t *testing.T) {
	require.GreaterOrEqual(t, len(openings), 8)
	require.GreaterOrEqual(t, len(letterOpenings), 5)
	require.GreaterOrEqual(t, len(letterMiddles), 5)
	require.GreaterOrEqual(t, len(letterClosings), 5)
	require.Len(t, EmotionLabels(), 12)
}
