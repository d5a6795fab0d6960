// Package ops implements the journal operations shared by the HTTP API, the
// manuscript reader, the MCP server, and the CLI. Every operation acts on
// behalf of one user ID.
package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/journal"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// now is the clock used for timestamps and date gates. Tests may replace it.
var now = time.Now

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// clampLimit applies list defaults and bounds.
func clampLimit(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}

// requireUser rejects operations with no acting user.
func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.NewUnauthorized()
	}
	return nil
}

// parseDateField validates a YYYY-MM-DD field. Blank yields today when
// defaultToday is set.
func parseDateField(field, value string, defaultToday bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if defaultToday {
			return journal.Today(now()), nil
		}
		return "", errors.NewInvalidRequest(field + " is required")
	}
	d, err := journal.ParseDate(value)
	if err != nil {
		return "", errors.NewInvalidRequest(field + " must be a YYYY-MM-DD date")
	}
	return d.Format(journal.DateLayout), nil
}
