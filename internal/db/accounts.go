package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// InsertUser stores a new user together with an empty profile.
func InsertUser(ctx context.Context, db *sqlx.DB, u *journal.User) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO users (id, email, display_name, created_at)
		VALUES (:id, :email, :display_name, :created_at)
	`, u)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("a user with this email already exists")
		}
		return errors.NewInternal(err)
	}

	var displayName *string
	if u.DisplayName != "" {
		displayName = &u.DisplayName
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, openrouter_api_key, preferred_model, created_at, updated_at)
		VALUES (?, ?, NULL, '', ?, ?)
	`, u.ID, displayName, u.CreatedAt, u.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func GetUser(ctx context.Context, db *sqlx.DB, id string) (*journal.User, error) {
	var u journal.User
	err := db.GetContext(ctx, &u, `
		SELECT id, email, display_name, created_at FROM users WHERE id = ?
	`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("user", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &u, nil
}

// InsertToken records the hash of a bearer token for userID.
func InsertToken(ctx context.Context, db *sqlx.DB, tokenHash, userID, label string, createdAt int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO api_tokens (token_hash, user_id, label, created_at)
		VALUES (?, ?, ?, ?)
	`, tokenHash, userID, label, createdAt)
	if err != nil {
		if isForeignKeyError(err) {
			return errors.NewNotFound("user", userID)
		}
		if isUniqueConstraintError(err) {
			return errors.NewConflict("token already registered")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UserIDForToken resolves a token hash and stamps its last use.
func UserIDForToken(ctx context.Context, db *sqlx.DB, tokenHash string, usedAt int64) (string, error) {
	var userID string
	err := db.GetContext(ctx, &userID, `
		UPDATE api_tokens SET last_used_at = ?
		WHERE token_hash = ?
		RETURNING user_id
	`, usedAt, tokenHash)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.NewUnauthorized()
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return userID, nil
}

// GetProfile retrieves the profile for userID.
func GetProfile(ctx context.Context, db *sqlx.DB, userID string) (*journal.Profile, error) {
	var p journal.Profile
	err := db.GetContext(ctx, &p, `
		SELECT user_id, display_name, openrouter_api_key, preferred_model, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("profile", userID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &p, nil
}

// UpdateProfile writes the mutable profile fields.
func UpdateProfile(ctx context.Context, db *sqlx.DB, p *journal.Profile) error {
	result, err := db.NamedExecContext(ctx, `
		UPDATE profiles
		SET display_name = :display_name,
			openrouter_api_key = :openrouter_api_key,
			preferred_model = :preferred_model,
			updated_at = :updated_at
		WHERE user_id = :user_id
	`, p)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("profile", p.UserID)
	}
	return nil
}
