// Package generate decides per request between provider generation and the
// offline prose engine. Provider failures never reach the caller.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chronos-mythica/mythica/internal/config"
	"github.com/chronos-mythica/mythica/internal/prose"
	"github.com/chronos-mythica/mythica/internal/provider"
)

// errEmptyCompletion marks a 2xx provider answer with no usable text.
var errEmptyCompletion = errors.New("provider returned empty text")

// Completer is the provider call. *provider.Client implements it.
type Completer interface {
	Complete(ctx context.Context, apiKey string, req provider.ChatRequest) (string, error)
}

// Source records which path produced a Result.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// Result is the generated text and where it came from.
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Generator is safe for concurrent use when its prose source is.
type Generator struct {
	engine       *prose.Engine
	completer    Completer
	defaultModel string
	logger       *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithDefaultModel sets the model used when the credential names none.
func WithDefaultModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.defaultModel = model
		}
	}
}

// WithLogger sets the logger that records provider failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Generator. A nil engine uses the default random source;
// a nil completer means every request takes the fallback path.
func New(engine *prose.Engine, completer Completer, opts ...Option) *Generator {
	if engine == nil {
		engine = prose.New(nil)
	}
	g := &Generator{
		engine:       engine,
		completer:    completer,
		defaultModel: config.DefaultModel,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces text for req. The only error is ErrUnknownKind for a nil
// or foreign Request; every well-formed request yields non-empty text.
func (g *Generator) Generate(ctx context.Context, req Request, cred *Credential) (Result, error) {
	req, ok := normalize(req)
	if !ok {
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownKind, req)
	}

	if !cred.present() || g.completer == nil {
		return g.fallback(req), nil
	}

	model := cred.Model
	if model == "" {
		model = g.defaultModel
	}

	text, err := g.attempt(ctx, req, cred.APIKey, model)
	if err != nil {
		g.logger.Warn("provider generation failed, using fallback",
			"kind", req.Kind(),
			"model", model,
			"error", err,
		)
		return g.fallback(req), nil
	}

	return Result{Text: text, Source: SourceProvider}, nil
}

// normalize dereferences pointer payloads so the rest of the flow sees values.
func normalize(req Request) (Request, bool) {
	switch r := req.(type) {
	case MemoryNarration, FutureResponse:
		return r, true
	case *MemoryNarration:
		if r != nil {
			return *r, true
		}
	case *FutureResponse:
		if r != nil {
			return *r, true
		}
	}
	return req, false
}

type outcome struct {
	text string
	err  error
}

// attempt makes the single provider call. A late answer after ctx ends is
// dropped into the buffered channel and never read.
func (g *Generator) attempt(ctx context.Context, req Request, apiKey, model string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chat := chatRequest(req, model)
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		text, err := g.completer.Complete(ctx, apiKey, chat)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			return "", o.err
		}
		if strings.TrimSpace(o.text) == "" {
			return "", errEmptyCompletion
		}
		return o.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *Generator) fallback(req Request) Result {
	var text string
	switch r := req.(type) {
	case MemoryNarration:
		text = g.engine.NarrateMemory(prose.MemoryInput{
			Title:       r.Title,
			Description: r.Description,
			Emotions:    r.Emotions,
			Date:        r.Date,
		})
	case FutureResponse:
		text = g.engine.NarrateFutureResponse(prose.LetterInput{
			LetterContent: r.LetterContent,
			UnlockDate:    r.UnlockDate,
		})
	}
	return Result{Text: text, Source: SourceFallback}
}
