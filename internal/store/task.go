package store

import (
	"database/sql"
	"fmt"

	"github.com/williamwmy/fantastic-task/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var estimated sql.NullInt64
	var active int

	err := scanner.Scan(
		&t.ID, &t.FamilyID, &t.Title, &t.Description, &t.Points,
		&estimated, &t.RecurrenceMask, &active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if estimated.Valid {
		v := int(estimated.Int64)
		t.EstimatedMinutes = &v
	}
	t.Active = active != 0
	return &t, nil
}

const taskCols = `id, family_id, title, description, points, estimated_minutes, recurrence_mask, active, created_at, updated_at`

func (s *TaskStore) Create(familyID int64, title, description string, points int, estimatedMinutes *int, recurrenceMask string) (*model.Task, error) {
	var est sql.NullInt64
	if estimatedMinutes != nil {
		est = sql.NullInt64{Int64: int64(*estimatedMinutes), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (family_id, title, description, points, estimated_minutes, recurrence_mask) VALUES (?, ?, ?, ?, ?, ?)`,
		familyID, title, description, points, est, recurrenceMask,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByFamily(familyID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE family_id = ? ORDER BY id ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListActiveByFamily returns only active tasks, in creation order so due
// filtering preserves stable indices.
func (s *TaskStore) ListActiveByFamily(familyID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE family_id = ? AND active = 1 ORDER BY id ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, title, description string, points int, estimatedMinutes *int, recurrenceMask string, active bool) (*model.Task, error) {
	var est sql.NullInt64
	if estimatedMinutes != nil {
		est = sql.NullInt64{Int64: int64(*estimatedMinutes), Valid: true}
	}
	var act int
	if active {
		act = 1
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, points = ?, estimated_minutes = ?, recurrence_mask = ?, active = ?, updated_at = datetime('now') WHERE id = ?`,
		title, description, points, est, recurrenceMask, act, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
