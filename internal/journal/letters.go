package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Unlockable reports whether the letter's unlock date is today or earlier
// relative to now. Unparseable dates never unlock.
func Unlockable(l *FutureLetter, now time.Time) bool {
	if l.IsUnlocked {
		return true
	}
	d, err := ParseDate(l.UnlockDate)
	if err != nil {
		return false
	}
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return !d.After(today)
}

// UnlockLabel describes the distance to the unlock date, such as
// "Unlocks in 3 weeks" or "Unlocked 2 days ago".
func UnlockLabel(l *FutureLetter, now time.Time) string {
	d, err := ParseDate(l.UnlockDate)
	if err != nil {
		return "Unlock date unknown"
	}
	if Today(now) == d.Format(DateLayout) {
		return "Unlocks today"
	}
	distance := strings.TrimSpace(humanize.RelTime(d, now, "", ""))
	if d.Before(now) {
		return fmt.Sprintf("Unlocked %s ago", distance)
	}
	return fmt.Sprintf("Unlocks in %s", distance)
}
