package generate

import (
	"fmt"
	"strings"

	"github.com/chronos-mythica/mythica/internal/provider"
)

const memorySystemPrompt = `You are a mythic narrator who transforms ordinary life experiences into epic, poetic prose.
Your writing style is:
- Second person ("you") perspective
- Poetic and symbolic, using metaphors from mythology and the cosmos
- Deeply meaningful without being pretentious
- Concise but evocative (2-4 sentences)
- References emotions as cosmic forces or mythic elements

Transform the given memory/event into a mythic narrative passage. Do not use quotation marks around your response.`

const futureSelfSystemPrompt = `You are the user's future mythic self - a wiser, more evolved version of them looking back through time.
Your voice is:
- Warm, understanding, and gently encouraging
- Speaks with the wisdom of hindsight
- References the user's hopes and dreams with knowing compassion
- Uses poetic but accessible language
- Concise (3-5 sentences)
- Speaks as if responding to a letter from the past

Respond to their letter as if you are their future self who has already lived through what they're about to experience.
Do not use quotation marks. Speak directly to them.`

// profile is the provider instruction set for one request kind.
type profile struct {
	system      string
	maxTokens   int
	temperature float64
}

var profiles = map[Kind]profile{
	KindMythicProse:    {system: memorySystemPrompt, maxTokens: 300, temperature: 0.8},
	KindFutureResponse: {system: futureSelfSystemPrompt, maxTokens: 400, temperature: 0.9},
}

func userPrompt(req Request) string {
	switch r := req.(type) {
	case MemoryNarration:
		return fmt.Sprintf("Memory Title: %s\nDescription: %s\nEmotions: %s\nDate: %s\n\nTransform this memory into a short mythic narrative passage.",
			r.Title, r.Description, strings.Join(r.Emotions, ", "), r.Date)
	case FutureResponse:
		return fmt.Sprintf("Letter from past self:\n\"%s\"\n\nThis letter was written to be read on %s.\n\nRespond as their future mythic self, offering wisdom and perspective.",
			r.LetterContent, r.UnlockDate)
	}
	return ""
}

func chatRequest(req Request, model string) provider.ChatRequest {
	p := profiles[req.Kind()]
	return provider.ChatRequest{
		Model: model,
		Messages: []provider.Message{
			{Role: "system", Content: p.system},
			{Role: "user", Content: userPrompt(req)},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
}
