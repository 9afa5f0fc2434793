package points

import "github.com/williamwmy/fantastic-task/internal/model"

// Status is a completion's verification state. Approved and rejected are
// terminal; only approved completions affect the ledger.
type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Resolved reports whether the status is terminal.
func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal
// verification transition. Only pending completions can be resolved, and
// resolving is the only transition there is.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.Resolved()
}

// InitialStatus decides the state a new completion starts in: pending
// when the family gates children behind verification and the completing
// member is a child, approved otherwise.
func InitialStatus(requireChildVerification bool, role string) Status {
	if requireChildVerification && role == model.RoleChild {
		return StatusPending
	}
	return StatusApproved
}
