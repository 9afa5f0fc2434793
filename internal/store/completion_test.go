package store

import (
	"testing"
	"time"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestCompletionLifecycle(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	completions := NewCompletionStore(db)

	m, err := members.Create(testFamilyID, "Alice", model.RoleMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	task, err := tasks.Create(testFamilyID, "Vacuum", "", 5, nil, "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	when := time.Date(2025, 8, 6, 15, 30, 0, 0, time.UTC)
	c, err := completions.Create(CompletionParams{
		TaskID:           task.ID,
		MemberID:         m.ID,
		CompletedAt:      when,
		BasePoints:       5,
		BonusPoints:      2,
		Comment:          "done quickly",
		TimeSpentMinutes: intPtr(10),
		Status:           "approved",
	})
	if err != nil {
		t.Fatalf("create completion: %v", err)
	}
	if !c.CompletedAt.Equal(when) {
		t.Errorf("completed_at = %v, want %v", c.CompletedAt, when)
	}
	if c.BasePoints != 5 || c.BonusPoints != 2 {
		t.Errorf("base/bonus = %d/%d, want 5/2", c.BasePoints, c.BonusPoints)
	}
	if c.PointsAwarded != 7 {
		t.Errorf("points_awarded = %d, want 7", c.PointsAwarded)
	}
	if c.Comment != "done quickly" {
		t.Errorf("comment = %q", c.Comment)
	}
	if c.TimeSpentMinutes == nil || *c.TimeSpentMinutes != 10 {
		t.Errorf("time_spent_minutes = %v, want 10", c.TimeSpentMinutes)
	}
	if c.AssignmentID != nil {
		t.Errorf("assignment_id = %v, want nil", c.AssignmentID)
	}

	byTask, err := completions.ListByTask(task.ID)
	if err != nil {
		t.Fatalf("list by task: %v", err)
	}
	if len(byTask) != 1 {
		t.Errorf("got %d completions, want 1", len(byTask))
	}

	if err := completions.UpdateStatus(c.ID, "rejected"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ := completions.GetByID(c.ID)
	if got.Status != "rejected" {
		t.Errorf("status = %q, want rejected", got.Status)
	}

	if err := completions.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = completions.GetByID(c.ID)
	if got != nil {
		t.Error("expected nil for deleted completion")
	}
}

func TestListPendingByFamilyOldestFirst(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	completions := NewCompletionStore(db)

	m, _ := members.Create(testFamilyID, "Kid", model.RoleChild)
	task, _ := tasks.Create(testFamilyID, "Tidy", "", 3, nil, "")

	older, err := completions.Create(CompletionParams{
		TaskID: task.ID, MemberID: m.ID,
		CompletedAt: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		Status:      "pending",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newer, err := completions.Create(CompletionParams{
		TaskID: task.ID, MemberID: m.ID,
		CompletedAt: time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC),
		Status:      "pending",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Approved completions stay out of the review queue.
	if _, err := completions.Create(CompletionParams{
		TaskID: task.ID, MemberID: m.ID,
		CompletedAt: time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC),
		Status:      "approved",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := completions.ListPendingByFamily(testFamilyID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].ID != older.ID || pending[1].ID != newer.ID {
		t.Errorf("order = [%d %d], want [%d %d]", pending[0].ID, pending[1].ID, older.ID, newer.ID)
	}
}

func TestUpdateStatusFrom(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	completions := NewCompletionStore(db)

	m, _ := members.Create(testFamilyID, "Kid", model.RoleChild)
	task, _ := tasks.Create(testFamilyID, "Tidy", "", 3, nil, "")
	c, err := completions.Create(CompletionParams{
		TaskID: task.ID, MemberID: m.ID,
		CompletedAt: time.Now().UTC(),
		Status:      "pending",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	changed, err := completions.UpdateStatusFrom(c.ID, "pending", "rejected")
	if err != nil {
		t.Fatalf("update status from: %v", err)
	}
	if !changed {
		t.Fatal("first flip should change the row")
	}

	// The guard makes a second resolution a no-op.
	changed, err = completions.UpdateStatusFrom(c.ID, "pending", "approved")
	if err != nil {
		t.Fatalf("update status from: %v", err)
	}
	if changed {
		t.Error("resolved completion must not flip again")
	}
	got, _ := completions.GetByID(c.ID)
	if got.Status != "rejected" {
		t.Errorf("status = %q, want rejected", got.Status)
	}
}

func TestListByDateRange(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	completions := NewCompletionStore(db)

	m, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	task, _ := tasks.Create(testFamilyID, "Vacuum", "", 5, nil, "")

	for _, day := range []int{1, 5, 9} {
		if _, err := completions.Create(CompletionParams{
			TaskID: task.ID, MemberID: m.ID,
			CompletedAt: time.Date(2025, 8, day, 12, 0, 0, 0, time.UTC),
			Status:      "approved",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	start := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 8, 0, 0, 0, 0, time.UTC)
	got, err := completions.ListByDateRange(testFamilyID, start, end)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d completions, want 1", len(got))
	}
	if got[0].CompletedAt.Day() != 5 {
		t.Errorf("completed_at day = %d, want 5", got[0].CompletedAt.Day())
	}
}

func TestDeleteTaskCascadesToCompletions(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	completions := NewCompletionStore(db)

	m, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	task, _ := tasks.Create(testFamilyID, "Vacuum", "", 5, nil, "")

	c, err := completions.Create(CompletionParams{
		TaskID: task.ID, MemberID: m.ID,
		CompletedAt: time.Now().UTC(),
		Status:      "approved",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := tasks.Delete(task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	got, err := completions.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get completion: %v", err)
	}
	if got != nil {
		t.Error("completion should cascade-delete with its task")
	}
}
