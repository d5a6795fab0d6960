package ops

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/generate"
)

// GenerateInput is the inbound generation request: a type discriminator and
// its payload.
type GenerateInput struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GenerateOutput is the generated text and the path that produced it.
type GenerateOutput struct {
	Kind   generate.Kind   `json:"kind"`
	Text   string          `json:"text"`
	Source generate.Source `json:"source"`
}

// Generate validates the request kind, resolves the caller's credential, and
// runs the orchestrator. Provider failures are absorbed by the orchestrator.
func Generate(ctx context.Context, database *sqlx.DB, gen *generate.Generator, userID string, input GenerateInput) (*GenerateOutput, error) {
	kind, err := generate.ParseKind(input.Type)
	if err != nil {
		return nil, errors.NewInvalidKind(input.Type)
	}

	req, err := generate.DecodeRequest(kind, input.Data)
	if err != nil {
		return nil, errors.NewInvalidRequest("data does not match type " + string(kind))
	}

	cred, err := CredentialFor(ctx, database, userID)
	if err != nil {
		return nil, err
	}

	return run(ctx, gen, req, cred)
}

// run calls the orchestrator. A nil gen narrates offline.
func run(ctx context.Context, gen *generate.Generator, req generate.Request, cred *generate.Credential) (*GenerateOutput, error) {
	if gen == nil {
		gen = generate.New(nil, nil)
	}
	res, err := gen.Generate(ctx, req, cred)
	if err != nil {
		if stderrors.Is(err, generate.ErrUnknownKind) {
			return nil, errors.NewInvalidRequest("unsupported generation request")
		}
		return nil, errors.NewInternal(err)
	}
	return &GenerateOutput{Kind: req.Kind(), Text: res.Text, Source: res.Source}, nil
}
