package auth

import (
	"context"
	"testing"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		MemberID:  1,
		FamilyID:  2,
		Role:      model.RoleAdmin,
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.MemberID != 1 {
		t.Errorf("MemberID = %d, want 1", got.MemberID)
	}
	if got.FamilyID != 2 {
		t.Errorf("FamilyID = %d, want 2", got.FamilyID)
	}
	if got.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, model.RoleAdmin)
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestFamilyID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{FamilyID: 42})
	if FamilyID(ctx) != 42 {
		t.Errorf("FamilyID = %d, want 42", FamilyID(ctx))
	}
	if FamilyID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestMemberID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{MemberID: 7})
	if MemberID(ctx) != 7 {
		t.Errorf("MemberID = %d, want 7", MemberID(ctx))
	}
	if MemberID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(WithAuth(context.Background(), AuthContext{Role: model.RoleAdmin})) {
		t.Error("expected IsAdmin = true for admin role")
	}
	if IsAdmin(WithAuth(context.Background(), AuthContext{Role: model.RoleMember})) {
		t.Error("expected IsAdmin = false for member role")
	}
	if IsAdmin(context.Background()) {
		t.Error("expected IsAdmin = false for missing context")
	}
}

func TestCanVerify(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{model.RoleAdmin, true},
		{model.RoleMember, true},
		{model.RoleChild, false},
	}
	for _, tc := range cases {
		ctx := WithAuth(context.Background(), AuthContext{Role: tc.role})
		if got := CanVerify(ctx); got != tc.want {
			t.Errorf("CanVerify(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}
	if CanVerify(context.Background()) {
		t.Error("expected CanVerify = false for missing context")
	}
}
