package journal

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for memory and unlock dates.
const DateLayout = "2006-01-02"

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases, and collapses internal whitespace.
// Used for case-insensitive emotion name comparison.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// CleanOptional trims s and returns nil when nothing is left.
func CleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Today returns now's calendar date as a YYYY-MM-DD string.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
