package ops

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/db"
	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/generate"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// ProfileView is the client-facing profile. The API key itself never leaves.
type ProfileView struct {
	UserID         string  `json:"user_id"`
	DisplayName    *string `json:"display_name,omitempty"`
	PreferredModel string  `json:"preferred_model"`
	HasAPIKey      bool    `json:"has_api_key"`
	UpdatedAt      int64   `json:"updated_at"`
}

func viewProfile(p *journal.Profile) *ProfileView {
	return &ProfileView{
		UserID:         p.UserID,
		DisplayName:    p.DisplayName,
		PreferredModel: p.PreferredModel,
		HasAPIKey:      p.HasAPIKey(),
		UpdatedAt:      p.UpdatedAt,
	}
}

// GetProfile returns userID's profile.
func GetProfile(ctx context.Context, database *sqlx.DB, userID string) (*ProfileView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := db.GetProfile(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	return viewProfile(p), nil
}

// UpdateProfileInput holds optional changes. Nil fields are left alone;
// an empty OpenRouterAPIKey clears the stored key.
type UpdateProfileInput struct {
	DisplayName      *string `json:"display_name"`
	OpenRouterAPIKey *string `json:"openrouter_api_key"`
	PreferredModel   *string `json:"preferred_model"`
}

// UpdateProfile applies input to userID's profile.
func UpdateProfile(ctx context.Context, database *sqlx.DB, userID string, input UpdateProfileInput) (*ProfileView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := db.GetProfile(ctx, database, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		p.DisplayName = journal.CleanOptional(input.DisplayName)
	}
	if input.OpenRouterAPIKey != nil {
		p.OpenRouterAPIKey = journal.CleanOptional(input.OpenRouterAPIKey)
	}
	if input.PreferredModel != nil {
		model := strings.TrimSpace(*input.PreferredModel)
		if strings.ContainsAny(model, " \t\n") {
			return nil, errors.NewInvalidRequest("preferred_model must not contain whitespace")
		}
		p.PreferredModel = model
	}
	p.UpdatedAt = now().Unix()

	if err := db.UpdateProfile(ctx, database, p); err != nil {
		return nil, err
	}
	return viewProfile(p), nil
}

// CredentialFor loads userID's provider credential. A missing profile or key
// yields nil, which routes generation to the offline engine.
func CredentialFor(ctx context.Context, database *sqlx.DB, userID string) (*generate.Credential, error) {
	if userID == "" {
		return nil, nil
	}
	p, err := db.GetProfile(ctx, database, userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !p.HasAPIKey() {
		return nil, nil
	}
	return &generate.Credential{APIKey: *p.OpenRouterAPIKey, Model: p.PreferredModel}, nil
}
