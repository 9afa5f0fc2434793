package points

import (
	"fmt"
	"time"
)

// ResolveCompletionTime builds the completed_at timestamp for a
// completion recorded against selectedDate. The selected date's
// year/month/day are kept as-is and the time of day is taken from now,
// so a task marked done "as of yesterday" carries a plausible clock time
// instead of midnight — and never today's date.
func ResolveCompletionTime(selectedDate string, now time.Time) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", selectedDate, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", ErrInvalidInput, selectedDate)
	}

	return time.Date(
		d.Year(), d.Month(), d.Day(),
		now.Hour(), now.Minute(), now.Second(), 0,
		now.Location(),
	), nil
}
