package model

import "time"

// Completion records a task being done. PointsAwarded is a display
// total; BasePoints and BonusPoints are the authoritative snapshot the
// ledger entries are built from, captured at creation so a later task
// edit cannot change what a pending completion pays out.
type Completion struct {
	ID               int64     `json:"id"`
	TaskID           int64     `json:"task_id"`
	AssignmentID     *int64    `json:"assignment_id"`
	MemberID         int64     `json:"member_id"`
	CompletedAt      time.Time `json:"completed_at"`
	PointsAwarded    int       `json:"points_awarded"`
	BasePoints       int       `json:"base_points"`
	BonusPoints      int       `json:"bonus_points"`
	Comment          string    `json:"comment"`
	TimeSpentMinutes *int      `json:"time_spent_minutes"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}
