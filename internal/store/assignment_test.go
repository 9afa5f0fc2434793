package store

import (
	"testing"

	"github.com/williamwmy/fantastic-task/internal/model"
)

func TestAssignmentCRUD(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	assignments := NewAssignmentStore(db)

	m, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	task, _ := tasks.Create(testFamilyID, "Vacuum", "", 5, nil, "")

	a, err := assignments.Create(task.ID, &m.ID, "2025-08-06", false)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if a.DueDate != "2025-08-06" {
		t.Errorf("due_date = %q", a.DueDate)
	}
	if a.Completed {
		t.Error("new assignment should not be completed")
	}
	if a.AutoCreated {
		t.Error("auto_created should be false")
	}

	if err := assignments.SetCompleted(a.ID, true); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	got, _ := assignments.GetByID(a.ID)
	if !got.Completed {
		t.Error("assignment should be completed")
	}

	if err := assignments.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = assignments.GetByID(a.ID)
	if got != nil {
		t.Error("expected nil for deleted assignment")
	}
}

func TestAssignmentUnassigned(t *testing.T) {
	db := setupDB(t)
	tasks := NewTaskStore(db)
	assignments := NewAssignmentStore(db)

	task, _ := tasks.Create(testFamilyID, "Vacuum", "", 5, nil, "")
	a, err := assignments.Create(task.ID, nil, "2025-08-06", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.MemberID != nil {
		t.Errorf("member_id = %v, want nil", a.MemberID)
	}
	if !a.AutoCreated {
		t.Error("auto_created should be true")
	}
}

func TestListByDate(t *testing.T) {
	db := setupDB(t)
	members := NewMemberStore(db)
	tasks := NewTaskStore(db)
	assignments := NewAssignmentStore(db)

	m, _ := members.Create(testFamilyID, "Alice", model.RoleMember)
	task, _ := tasks.Create(testFamilyID, "Vacuum", "", 5, nil, "")

	if _, err := assignments.Create(task.ID, &m.ID, "2025-08-06", false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := assignments.Create(task.ID, &m.ID, "2025-08-07", false); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A task in another family must not leak into the listing.
	families := NewFamilyStore(db)
	other, _ := families.Create("Other", true)
	otherTask, _ := tasks.Create(other.ID, "Other chore", "", 1, nil, "")
	if _, err := assignments.Create(otherTask.ID, nil, "2025-08-06", false); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := assignments.ListByDate(testFamilyID, "2025-08-06")
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d assignments, want 1", len(got))
	}
	if got[0].DueDate != "2025-08-06" {
		t.Errorf("due_date = %q", got[0].DueDate)
	}

	if err := members.Delete(m.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	// The assignment survives with the assignee cleared.
	got, err = assignments.ListByDate(testFamilyID, "2025-08-06")
	if err != nil {
		t.Fatalf("list after member delete: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d assignments, want 1", len(got))
	}
	if got[0].MemberID != nil {
		t.Errorf("member_id = %v, want nil after member delete", got[0].MemberID)
	}
}
