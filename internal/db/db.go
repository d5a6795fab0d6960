package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/chronos-mythica/mythica/internal/config"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// FileName is the database file created under the base directory.
const FileName = "mythica.db"

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Init initializes the SQLite database at baseDir/mythica.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mythica.
func Init(baseDir string) (*sqlx.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to every pooled connection.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sqlx.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sqlx.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: accounts and journal tables
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS users (
		  id           TEXT PRIMARY KEY,
		  email        TEXT NOT NULL,
		  display_name TEXT NOT NULL DEFAULT '',
		  created_at   INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
		ON users(lower(email));

		CREATE TABLE IF NOT EXISTS api_tokens (
		  token_hash   TEXT PRIMARY KEY,
		  user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		  label        TEXT,
		  created_at   INTEGER NOT NULL,
		  last_used_at INTEGER
		);

		CREATE TABLE IF NOT EXISTS profiles (
		  user_id            TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		  display_name       TEXT,
		  openrouter_api_key TEXT,
		  preferred_model    TEXT NOT NULL DEFAULT '',
		  created_at         INTEGER NOT NULL,
		  updated_at         INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS emotions (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  name_norm  TEXT NOT NULL,
		  color      TEXT NOT NULL,
		  symbol     TEXT,
		  is_custom  INTEGER NOT NULL DEFAULT 0,
		  user_id    TEXT REFERENCES users(id) ON DELETE CASCADE,
		  created_at INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_emotions_scope_name
		ON emotions(coalesce(user_id, ''), name_norm);

		CREATE TABLE IF NOT EXISTS memories (
		  id           TEXT PRIMARY KEY,
		  user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		  title        TEXT NOT NULL,
		  description  TEXT,
		  memory_date  TEXT NOT NULL,
		  mythic_prose TEXT,
		  created_at   INTEGER NOT NULL,
		  updated_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_memories_user_date
		ON memories(user_id, memory_date DESC, created_at DESC);

		CREATE TABLE IF NOT EXISTS memory_emotions (
		  memory_id  TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
		  emotion_id TEXT NOT NULL REFERENCES emotions(id),
		  position   INTEGER NOT NULL,
		  created_at INTEGER NOT NULL,
		  PRIMARY KEY (memory_id, emotion_id)
		);

		CREATE TABLE IF NOT EXISTS constellation_stars (
		  id         TEXT PRIMARY KEY,
		  user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		  emotion_id TEXT REFERENCES emotions(id),
		  memory_id  TEXT REFERENCES memories(id) ON DELETE CASCADE,
		  x_pos      REAL NOT NULL,
		  y_pos      REAL NOT NULL,
		  z_pos      REAL NOT NULL,
		  brightness REAL NOT NULL,
		  created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_stars_user
		ON constellation_stars(user_id);

		CREATE TABLE IF NOT EXISTS future_letters (
		  id          TEXT PRIMARY KEY,
		  user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		  content     TEXT NOT NULL,
		  unlock_date TEXT NOT NULL,
		  response    TEXT,
		  is_unlocked INTEGER NOT NULL DEFAULT 0,
		  created_at  INTEGER NOT NULL,
		  unlocked_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_letters_user_unlock
		ON future_letters(user_id, unlock_date);

		CREATE TABLE IF NOT EXISTS manuscript_chapters (
		  id             TEXT PRIMARY KEY,
		  user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		  chapter_number INTEGER NOT NULL,
		  title          TEXT,
		  content        TEXT,
		  created_at     INTEGER NOT NULL,
		  updated_at     INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_chapters_user_number
		ON manuscript_chapters(user_id, chapter_number);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Migration 1 -> 2: built-in emotions
	if version < 2 {
		if err := seedEmotions(context.Background(), db); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	return nil
}

func seedEmotions(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, b := range journal.Builtins {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO emotions (id, name, name_norm, color, symbol, is_custom, user_id, created_at)
			VALUES (?, ?, ?, ?, ?, 0, NULL, 0)
		`, b.ID, b.Name, journal.Normalize(b.Name), b.Color, b.Symbol)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sqlx.DB) error {
	var journalMode string
	if err := db.Get(&journalMode, "PRAGMA journal_mode;"); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sqlx.DB) (int, error) {
	var version int
	if err := db.Get(&version, "PRAGMA user_version;"); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sqlx.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks if the error is a SQLite FOREIGN KEY violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
