package model

import "time"

// Task is a chore that can recur weekly. RecurrenceMask is either empty
// (due every day) or seven '0'/'1' characters, Monday first.
type Task struct {
	ID               int64     `json:"id"`
	FamilyID         int64     `json:"family_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Points           int       `json:"points"`
	EstimatedMinutes *int      `json:"estimated_minutes"`
	RecurrenceMask   string    `json:"recurrence_mask"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Assignment ties a task to a calendar date and optionally an assignee.
// AutoCreated marks assignments minted implicitly when a completion was
// recorded without one; their due date is the completion date.
type Assignment struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	MemberID    *int64    `json:"member_id"`
	DueDate     string    `json:"due_date"`
	Completed   bool      `json:"completed"`
	AutoCreated bool      `json:"auto_created"`
	CreatedAt   time.Time `json:"created_at"`
}
