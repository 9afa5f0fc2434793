package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/williamwmy/fantastic-task/internal/model"
)

// MaskLength is the number of weekday slots in a recurrence mask.
const MaskLength = 7

// DueTask pairs a due task with its index in the caller's original list.
// Callers key per-day completion-log entries by that index, so it must
// survive filtering.
type DueTask struct {
	Task  model.Task
	Index int
}

// WeekdayIndex re-indexes Go's Sunday-first weekday to Monday=0..Sunday=6.
func WeekdayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// ValidMask reports whether a recurrence mask is well-formed: empty, or
// exactly seven '0'/'1' characters.
func ValidMask(mask string) bool {
	if mask == "" {
		return true
	}
	if len(mask) != MaskLength {
		return false
	}
	return strings.Trim(mask, "01") == ""
}

// DueOn filters tasks to those due on the given calendar date. A task
// with an empty mask is due every day; otherwise the mask slot for the
// date's weekday (Monday first) decides. Input order and original
// indices are preserved.
func DueOn(tasks []model.Task, dateStr string) ([]DueTask, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
	}

	idx := WeekdayIndex(date)
	var due []DueTask
	for i, t := range tasks {
		if t.RecurrenceMask == "" || (len(t.RecurrenceMask) == MaskLength && t.RecurrenceMask[idx] == '1') {
			due = append(due, DueTask{Task: t, Index: i})
		}
	}
	return due, nil
}
