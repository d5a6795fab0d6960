package generate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned for a generation type outside the known set.
var ErrUnknownKind = errors.New("unknown generation kind")

// Kind discriminates the generation flows.
type Kind string

const (
	KindMythicProse    Kind = "mythic_prose"
	KindFutureResponse Kind = "future_response"
)

// ParseKind maps a wire discriminator to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMythicProse, KindFutureResponse:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ResultKey is the JSON key the generated text is returned under.
func (k Kind) ResultKey() string {
	if k == KindFutureResponse {
		return "response"
	}
	return "prose"
}

// Request is implemented only by MemoryNarration and FutureResponse.
type Request interface {
	Kind() Kind
	isRequest()
}

// MemoryNarration asks for a memory rewritten as mythic prose.
type MemoryNarration struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Emotions    []string `json:"emotions"`
	Date        string   `json:"date"`
}

func (MemoryNarration) Kind() Kind { return KindMythicProse }
func (MemoryNarration) isRequest() {}

// FutureResponse asks for the future self's reply to a letter.
type FutureResponse struct {
	LetterContent string `json:"letterContent"`
	UnlockDate    string `json:"unlockDate"`
}

func (FutureResponse) Kind() Kind { return KindFutureResponse }
func (FutureResponse) isRequest() {}

// DecodeRequest decodes data into the payload type for kind.
// Absent or null data decodes to the zero payload.
func DecodeRequest(kind Kind, data json.RawMessage) (Request, error) {
	empty := len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))

	switch kind {
	case KindMythicProse:
		var r MemoryNarration
		if !empty {
			if err := json.Unmarshal(data, &r); err != nil {
				return nil, fmt.Errorf("decode mythic_prose data: %w", err)
			}
		}
		return r, nil
	case KindFutureResponse:
		var r FutureResponse
		if !empty {
			if err := json.Unmarshal(data, &r); err != nil {
				return nil, fmt.Errorf("decode future_response data: %w", err)
			}
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Credential is the caller's provider key and model preference.
// A nil Credential or an empty APIKey means no provider call is made.
type Credential struct {
	APIKey string
	Model  string
}

func (c *Credential) present() bool {
	return c != nil && c.APIKey != ""
}
