package model

import "time"

type Family struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	RequireChildVerification bool      `json:"require_child_verification"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}
