package model

import "time"

// Roles a family member can hold. Admins manage the family, members are
// ordinary adults, children may have their completions gated behind
// verification.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleChild  = "child"
)

type Member struct {
	ID            int64     `json:"id"`
	FamilyID      int64     `json:"family_id"`
	Nickname      string    `json:"nickname"`
	Role          string    `json:"role"`
	HasPIN        bool      `json:"has_pin"`
	PointsBalance int       `json:"points_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
