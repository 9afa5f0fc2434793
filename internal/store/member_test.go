package store

import (
	"testing"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestMemberCRUD(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)

	m, err := members.Create(testFamilyID, "Alice", model.RoleAdmin)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.Nickname != "Alice" {
		t.Errorf("nickname = %q, want %q", m.Nickname, "Alice")
	}
	if m.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", m.Role)
	}
	if m.PointsBalance != 0 {
		t.Errorf("points_balance = %d, want 0", m.PointsBalance)
	}
	if m.HasPIN {
		t.Error("new member should not have a PIN")
	}

	byNick, err := members.GetByNickname(testFamilyID, "Alice")
	if err != nil {
		t.Fatalf("get by nickname: %v", err)
	}
	if byNick == nil || byNick.ID != m.ID {
		t.Errorf("get by nickname = %+v, want id %d", byNick, m.ID)
	}

	// Nicknames are unique per family.
	if _, err := members.Create(testFamilyID, "Alice", model.RoleChild); err == nil {
		t.Error("expected duplicate nickname to fail")
	}

	updated, err := members.Update(m.ID, "Alice B", model.RoleMember)
	if err != nil {
		t.Fatalf("update member: %v", err)
	}
	if updated.Nickname != "Alice B" || updated.Role != model.RoleMember {
		t.Errorf("updated = %+v", updated)
	}

	if err := members.Delete(m.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	got, _ := members.GetByID(m.ID)
	if got != nil {
		t.Error("expected nil for deleted member")
	}
}

func TestMemberBalance(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)

	m, err := members.Create(testFamilyID, "Alice", model.RoleMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := members.UpdateBalance(m.ID, 12); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	got, _ := members.GetByID(m.ID)
	if got.PointsBalance != 12 {
		t.Errorf("balance = %d, want 12", got.PointsBalance)
	}

	// The schema refuses negative balances outright.
	if err := members.UpdateBalance(m.ID, -1); err == nil {
		t.Error("expected negative balance write to fail")
	}
}

func TestMemberPIN(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)

	m, err := members.Create(testFamilyID, "Alice", model.RoleMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := members.SetPIN(m.ID, "$2a$10$fakehashforalice"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	hash, err := members.GetPINHash(m.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "$2a$10$fakehashforalice" {
		t.Errorf("hash = %q", hash)
	}
	got, _ := members.GetByID(m.ID)
	if !got.HasPIN {
		t.Error("HasPIN should be true after SetPIN")
	}

	if err := members.ClearPIN(m.ID); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	hash, err = members.GetPINHash(m.ID)
	if err != nil {
		t.Fatalf("get pin hash after clear: %v", err)
	}
	if hash != "" {
		t.Errorf("hash after clear = %q, want empty", hash)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)

	a, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	b, _ := members.Create(testFamilyID, "Bob", model.RoleChild)
	c, _ := members.Create(testFamilyID, "Carol", model.RoleChild)

	members.UpdateBalance(a.ID, 5)
	members.UpdateBalance(b.ID, 20)
	members.UpdateBalance(c.ID, 10)

	board, err := members.Leaderboard(testFamilyID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("got %d rows, want 3", len(board))
	}
	want := []string{"Bob", "Carol", "Alice"}
	for i, nick := range want {
		if board[i].MemberNickname != nick {
			t.Errorf("board[%d] = %q, want %q", i, board[i].MemberNickname, nick)
		}
	}
}
