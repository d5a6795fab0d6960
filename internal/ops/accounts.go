package ops

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/db"
	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// CreateUserInput contains parameters for the CreateUser operation.
type CreateUserInput struct {
	Email       string
	DisplayName string
}

// CreateUserOutput carries the new user and its first bearer token.
// The token is only ever returned here; the database keeps its hash.
type CreateUserOutput struct {
	User  journal.User `json:"user"`
	Token string       `json:"token"`
}

// CreateUser registers a user with an empty profile and issues a token.
func CreateUser(ctx context.Context, database *sqlx.DB, input CreateUserInput) (*CreateUserOutput, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, errors.NewInvalidRequest("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.NewInvalidRequest("email is not a valid address")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	u := &journal.User{
		ID:          id,
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		CreatedAt:   now().Unix(),
	}
	if err := db.InsertUser(ctx, database, u); err != nil {
		return nil, err
	}

	token, err := IssueToken(ctx, database, u.ID, "initial")
	if err != nil {
		return nil, err
	}

	return &CreateUserOutput{User: *u, Token: token}, nil
}

// IssueToken creates a new bearer token for userID.
func IssueToken(ctx context.Context, database *sqlx.DB, userID, label string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	token := "myth_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := db.InsertToken(ctx, database, HashToken(token), userID, label, now().Unix()); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user ID.
func Authenticate(ctx context.Context, database *sqlx.DB, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.NewUnauthorized()
	}
	return db.UserIDForToken(ctx, database, HashToken(token), now().Unix())
}

// HashToken is the stored form of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
