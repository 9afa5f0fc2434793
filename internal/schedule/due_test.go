package schedule

import (
	"testing"
	"time"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestWeekdayIndex(t *testing.T) {
	// 2025-08-04 is a Monday.
	for i := 0; i < 7; i++ {
		date := time.Date(2025, 8, 4+i, 0, 0, 0, 0, time.UTC)
		if got := WeekdayIndex(date); got != i {
			t.Errorf("WeekdayIndex(%s) = %d, want %d", date.Format("2006-01-02"), got, i)
		}
	}
}

func TestDueOnWeekdayMask(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "Homework", RecurrenceMask: "1111100"}, // Mon-Fri
	}

	// 2025-08-06 is a Wednesday
	due, err := DueOn(tasks, "2025-08-06")
	if err != nil {
		t.Fatalf("due on wednesday: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due task on Wednesday, got %d", len(due))
	}

	// 2025-08-09 is a Saturday
	due, err = DueOn(tasks, "2025-08-09")
	if err != nil {
		t.Fatalf("due on saturday: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected 0 due tasks on Saturday, got %d", len(due))
	}
}

func TestDueOnEmptyMaskAlwaysDue(t *testing.T) {
	tasks := []model.Task{{ID: 1, Title: "Feed cat"}}

	for _, dateStr := range []string{"2025-08-04", "2025-08-09", "2025-08-10", "2024-12-31", "2025-01-01"} {
		due, err := DueOn(tasks, dateStr)
		if err != nil {
			t.Fatalf("due on %s: %v", dateStr, err)
		}
		if len(due) != 1 {
			t.Errorf("expected task with no mask due on %s", dateStr)
		}
	}
}

func TestDueOnPreservesOrderAndIndices(t *testing.T) {
	tasks := []model.Task{
		{ID: 10, Title: "Weekend only", RecurrenceMask: "0000011"},
		{ID: 11, Title: "Every day"},
		{ID: 12, Title: "Mon-Fri", RecurrenceMask: "1111100"},
		{ID: 13, Title: "Sunday", RecurrenceMask: "0000001"},
	}

	// 2025-08-05 is a Tuesday: expect indices 1 and 2, in that order.
	due, err := DueOn(tasks, "2025-08-05")
	if err != nil {
		t.Fatalf("due on tuesday: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due tasks, got %d", len(due))
	}
	if due[0].Index != 1 || due[0].Task.ID != 11 {
		t.Errorf("due[0] = {index %d, id %d}, want {1, 11}", due[0].Index, due[0].Task.ID)
	}
	if due[1].Index != 2 || due[1].Task.ID != 12 {
		t.Errorf("due[1] = {index %d, id %d}, want {2, 12}", due[1].Index, due[1].Task.ID)
	}
}

func TestDueOnSundayUsesLastSlot(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "Sunday chore", RecurrenceMask: "0000001"},
	}

	// 2025-08-10 is a Sunday
	due, err := DueOn(tasks, "2025-08-10")
	if err != nil {
		t.Fatalf("due on sunday: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("expected Sunday chore due on Sunday, got %d tasks", len(due))
	}
}

func TestDueOnInvalidDate(t *testing.T) {
	if _, err := DueOn(nil, "not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestValidMask(t *testing.T) {
	cases := []struct {
		mask string
		want bool
	}{
		{"", true},
		{"1111100", true},
		{"0000000", true},
		{"111110", false},
		{"11111000", false},
		{"111x100", false},
	}
	for _, c := range cases {
		if got := ValidMask(c.mask); got != c.want {
			t.Errorf("ValidMask(%q) = %v, want %v", c.mask, got, c.want)
		}
	}
}
