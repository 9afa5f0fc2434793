package model

import "time"

// Transaction types recorded in the points ledger.
const (
	TxEarned  = "earned"
	TxSpent   = "spent"
	TxBonus   = "bonus"
	TxPenalty = "penalty"
)

// PointsTransaction is one append-only ledger row. Points and BonusPoints
// are pointers because historical rows may carry NULL in either column;
// every aggregation must treat nil as zero.
type PointsTransaction struct {
	ID              int64     `json:"id"`
	MemberID        int64     `json:"member_id"`
	CompletionID    *int64    `json:"completion_id"`
	Points          *int      `json:"points"`
	BonusPoints     *int      `json:"bonus_points"`
	TransactionType string    `json:"transaction_type"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

// Total returns points + bonus_points with NULLs coalesced to zero.
func (t PointsTransaction) Total() int {
	var sum int
	if t.Points != nil {
		sum += *t.Points
	}
	if t.BonusPoints != nil {
		sum += *t.BonusPoints
	}
	return sum
}

type PointBalance struct {
	MemberID       int64  `json:"member_id"`
	MemberNickname string `json:"member_nickname"`
	Balance        int    `json:"balance"`
}
