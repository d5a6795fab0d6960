package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

const emotionColumns = `id, name, color, symbol, is_custom, user_id, created_at`

// ListEmotions returns the built-in emotions plus userID's custom ones, by name.
func ListEmotions(ctx context.Context, db *sqlx.DB, userID string) ([]journal.Emotion, error) {
	var out []journal.Emotion
	err := db.SelectContext(ctx, &out, `
		SELECT `+emotionColumns+` FROM emotions
		WHERE is_custom = 0 OR user_id = ?
		ORDER BY name_norm, is_custom
	`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// EmotionsByID returns the emotions visible to userID among ids, keyed by ID.
// Unknown or foreign IDs are simply absent from the map.
func EmotionsByID(ctx context.Context, db *sqlx.DB, userID string, ids []string) (map[string]journal.Emotion, error) {
	out := make(map[string]journal.Emotion, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+emotionColumns+` FROM emotions
		WHERE id IN (?) AND (is_custom = 0 OR user_id = ?)
	`, ids, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var rows []journal.Emotion
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, e := range rows {
		out[e.ID] = e
	}
	return out, nil
}

// InsertEmotion stores a custom emotion. Names are unique per user,
// case-insensitively, and may not shadow a built-in.
func InsertEmotion(ctx context.Context, db *sqlx.DB, e *journal.Emotion) error {
	norm := journal.Normalize(e.Name)

	var clash int
	err := db.GetContext(ctx, &clash, `
		SELECT COUNT(*) FROM emotions WHERE name_norm = ? AND is_custom = 0
	`, norm)
	if err != nil {
		return errors.NewInternal(err)
	}
	if clash > 0 {
		return errors.NewConflict("an emotion named " + e.Name + " already exists")
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO emotions (id, name, name_norm, color, symbol, is_custom, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
	`, e.ID, e.Name, norm, e.Color, e.Symbol, e.UserID, e.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("an emotion named " + e.Name + " already exists")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// CreateMemory stores a memory, its ordered emotion links, and its stars in
// one transaction. m.Emotions must already be resolved.
func CreateMemory(ctx context.Context, db *sqlx.DB, m *journal.Memory, stars []journal.Star) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO memories (id, user_id, title, description, memory_date, mythic_prose, created_at, updated_at)
		VALUES (:id, :user_id, :title, :description, :memory_date, :mythic_prose, :created_at, :updated_at)
	`, m)
	if err != nil {
		return errors.NewInternal(err)
	}

	for i, e := range m.Emotions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO memory_emotions (memory_id, emotion_id, position, created_at)
			VALUES (?, ?, ?, ?)
		`, m.ID, e.ID, i, m.CreatedAt)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	for i := range stars {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO constellation_stars (id, user_id, emotion_id, memory_id, x_pos, y_pos, z_pos, brightness, created_at)
			VALUES (:id, :user_id, :emotion_id, :memory_id, :x_pos, :y_pos, :z_pos, :brightness, :created_at)
		`, &stars[i])
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetMemory retrieves one of userID's memories with its emotions.
func GetMemory(ctx context.Context, db *sqlx.DB, userID, id string) (*journal.Memory, error) {
	var m journal.Memory
	err := db.GetContext(ctx, &m, `
		SELECT id, user_id, title, description, memory_date, mythic_prose, created_at, updated_at
		FROM memories WHERE id = ? AND user_id = ?
	`, id, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("memory", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	memories := []journal.Memory{m}
	if err := attachEmotions(ctx, db, memories); err != nil {
		return nil, err
	}
	return &memories[0], nil
}

// ListMemories returns userID's memories newest first by memory date, with
// the total count for pagination.
func ListMemories(ctx context.Context, db *sqlx.DB, userID string, limit, offset int) ([]journal.Memory, int, error) {
	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM memories WHERE user_id = ?`, userID); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	var out []journal.Memory
	err := db.SelectContext(ctx, &out, `
		SELECT id, user_id, title, description, memory_date, mythic_prose, created_at, updated_at
		FROM memories WHERE user_id = ?
		ORDER BY memory_date DESC, created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	if err := attachEmotions(ctx, db, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SetMemoryProse replaces the mythic prose of a memory.
func SetMemoryProse(ctx context.Context, db *sqlx.DB, userID, id, prose string, updatedAt int64) error {
	result, err := db.ExecContext(ctx, `
		UPDATE memories SET mythic_prose = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, prose, updatedAt, id, userID)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("memory", id)
	}
	return nil
}

// attachEmotions loads the linked emotions of memories in one query, in
// link order.
func attachEmotions(ctx context.Context, db *sqlx.DB, memories []journal.Memory) error {
	if len(memories) == 0 {
		return nil
	}

	ids := make([]string, len(memories))
	index := make(map[string]int, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
		index[m.ID] = i
		memories[i].Emotions = []journal.Emotion{}
	}

	query, args, err := sqlx.In(`
		SELECT me.memory_id, e.id, e.name, e.color, e.symbol, e.is_custom, e.user_id, e.created_at
		FROM memory_emotions me
		JOIN emotions e ON e.id = me.emotion_id
		WHERE me.memory_id IN (?)
		ORDER BY me.memory_id, me.position
	`, ids)
	if err != nil {
		return errors.NewInternal(err)
	}

	var rows []struct {
		MemoryID string `db:"memory_id"`
		journal.Emotion
	}
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return errors.NewInternal(err)
	}

	for _, r := range rows {
		i := index[r.MemoryID]
		memories[i].Emotions = append(memories[i].Emotions, r.Emotion)
	}
	return nil
}

// ListStars returns all of userID's constellation stars, oldest first.
func ListStars(ctx context.Context, db *sqlx.DB, userID string) ([]journal.Star, error) {
	var out []journal.Star
	err := db.SelectContext(ctx, &out, `
		SELECT id, user_id, emotion_id, memory_id, x_pos, y_pos, z_pos, brightness, created_at
		FROM constellation_stars WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}
