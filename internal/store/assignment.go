package store

import (
	"database/sql"
	"fmt"

	"github.com/williamwmy/fantastic-task/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var memberID sql.NullInt64
	var completed, autoCreated int

	err := scanner.Scan(&a.ID, &a.TaskID, &memberID, &a.DueDate, &completed, &autoCreated, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if memberID.Valid {
		a.MemberID = &memberID.Int64
	}
	a.Completed = completed != 0
	a.AutoCreated = autoCreated != 0
	return &a, nil
}

const assignmentCols = `id, task_id, member_id, due_date, completed, auto_created, created_at`

func (s *AssignmentStore) Create(taskID int64, memberID *int64, dueDate string, autoCreated bool) (*model.Assignment, error) {
	var mID sql.NullInt64
	if memberID != nil {
		mID = sql.NullInt64{Int64: *memberID, Valid: true}
	}
	var auto int
	if autoCreated {
		auto = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO assignments (task_id, member_id, due_date, auto_created) VALUES (?, ?, ?, ?)`,
		taskID, mID, dueDate, auto,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssignmentStore) GetByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) ListByTask(taskID int64) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE task_id = ? ORDER BY due_date DESC, id DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func (s *AssignmentStore) ListByDate(familyID int64, dueDate string) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.task_id, a.member_id, a.due_date, a.completed, a.auto_created, a.created_at
		 FROM assignments a JOIN tasks t ON t.id = a.task_id
		 WHERE t.family_id = ? AND a.due_date = ? ORDER BY a.id ASC`,
		familyID, dueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments by date: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func (s *AssignmentStore) SetCompleted(id int64, completed bool) error {
	var c int
	if completed {
		c = 1
	}
	_, err := s.db.Exec(`UPDATE assignments SET completed = ? WHERE id = ?`, c, id)
	if err != nil {
		return fmt.Errorf("set assignment completed: %w", err)
	}
	return nil
}

func (s *AssignmentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
