package store

import (
	"testing"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestSubscribeUpsertsOnEndpoint(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	push := NewPushStore(db)

	a, _ := members.Create(testFamilyID, "Alice", model.RoleAdmin)
	b, _ := members.Create(testFamilyID, "Bob", model.RoleMember)

	if _, err := push.Subscribe(a.ID, "https://push.example/ep1", "p256-a", "auth-a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Same endpoint from another member takes over the subscription.
	second, err := push.Subscribe(b.ID, "https://push.example/ep1", "p256-b", "auth-b")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if second.MemberID != b.ID {
		t.Errorf("member_id = %d, want %d", second.MemberID, b.ID)
	}

	subs, err := push.ListByMember(a.ID)
	if err != nil {
		t.Fatalf("list by member: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("old member still has %d subscriptions, want 0", len(subs))
	}
}

func TestListAdminsByFamily(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	push := NewPushStore(db)

	admin, _ := members.Create(testFamilyID, "Mum", model.RoleAdmin)
	child, _ := members.Create(testFamilyID, "Kid", model.RoleChild)

	if _, err := push.Subscribe(admin.ID, "https://push.example/admin", "k", "a"); err != nil {
		t.Fatalf("subscribe admin: %v", err)
	}
	if _, err := push.Subscribe(child.ID, "https://push.example/child", "k", "a"); err != nil {
		t.Fatalf("subscribe child: %v", err)
	}

	subs, err := push.ListAdminsByFamily(testFamilyID)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	if subs[0].MemberID != admin.ID {
		t.Errorf("member_id = %d, want admin %d", subs[0].MemberID, admin.ID)
	}
}

func TestDeleteByEndpoint(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	push := NewPushStore(db)

	m, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	if _, err := push.Subscribe(m.ID, "https://push.example/gone", "k", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := push.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ := push.ListByMember(m.ID)
	if len(subs) != 0 {
		t.Errorf("got %d subscriptions, want 0", len(subs))
	}
}
