package store

import (
	"testing"
	"time"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestSessionLifecycle(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	sessions := NewSessionStore(db)

	m, err := members.Create(testFamilyID, "Alice", model.RoleMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	sess, err := sessions.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now().UTC().Add(29 * 24 * time.Hour)) {
		t.Errorf("expires_at = %v, want ~30 days out", sess.ExpiresAt)
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.MemberID != m.ID {
		t.Errorf("session = %+v, want member %d", got, m.ID)
	}

	if err := sessions.Delete(sess.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted session: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted session")
	}
}

func TestExpiredSessionNotReturned(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	sessions := NewSessionStore(db)

	m, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	sess, err := sessions.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := db.Exec(
		`UPDATE sessions SET expires_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Hour), sess.ID,
	); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expired session must not resolve")
	}

	deleted, err := sessions.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
