package points

import (
	"testing"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStatusResolved(t *testing.T) {
	if StatusPending.Resolved() {
		t.Error("pending should not be resolved")
	}
	if !StatusApproved.Resolved() {
		t.Error("approved should be resolved")
	}
	if !StatusRejected.Resolved() {
		t.Error("rejected should be resolved")
	}
}

func TestInitialStatus(t *testing.T) {
	cases := []struct {
		require bool
		role    string
		want    Status
	}{
		{true, model.RoleChild, StatusPending},
		{true, model.RoleMember, StatusApproved},
		{true, model.RoleAdmin, StatusApproved},
		{false, model.RoleChild, StatusApproved},
		{false, model.RoleMember, StatusApproved},
	}
	for _, c := range cases {
		if got := InitialStatus(c.require, c.role); got != c.want {
			t.Errorf("InitialStatus(%v, %s) = %s, want %s", c.require, c.role, got, c.want)
		}
	}
}
