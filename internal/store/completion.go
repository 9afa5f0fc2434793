package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/williamwmy/fantastic-task/internal/model"
)

type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	var assignmentID sql.NullInt64
	var timeSpent sql.NullInt64

	err := scanner.Scan(
		&c.ID, &c.TaskID, &assignmentID, &c.MemberID, &c.CompletedAt,
		&c.PointsAwarded, &c.BasePoints, &c.BonusPoints, &c.Comment,
		&timeSpent, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignmentID.Valid {
		c.AssignmentID = &assignmentID.Int64
	}
	if timeSpent.Valid {
		v := int(timeSpent.Int64)
		c.TimeSpentMinutes = &v
	}
	return &c, nil
}

const completionCols = `id, task_id, assignment_id, member_id, completed_at, points_awarded, base_points, bonus_points, comment, time_spent_minutes, status, created_at`

type CompletionParams struct {
	TaskID           int64
	AssignmentID     *int64
	MemberID         int64
	CompletedAt      time.Time
	BasePoints       int
	BonusPoints      int
	Comment          string
	TimeSpentMinutes *int
	Status           string
}

func (s *CompletionStore) Create(p CompletionParams) (*model.Completion, error) {
	var aID sql.NullInt64
	if p.AssignmentID != nil {
		aID = sql.NullInt64{Int64: *p.AssignmentID, Valid: true}
	}
	var spent sql.NullInt64
	if p.TimeSpentMinutes != nil {
		spent = sql.NullInt64{Int64: int64(*p.TimeSpentMinutes), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO completions (task_id, assignment_id, member_id, completed_at, points_awarded, base_points, bonus_points, comment, time_spent_minutes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TaskID, aID, p.MemberID, p.CompletedAt.UTC(), p.BasePoints+p.BonusPoints, p.BasePoints, p.BonusPoints, p.Comment, spent, p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CompletionStore) GetByID(id int64) (*model.Completion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

func (s *CompletionStore) ListByTask(taskID int64) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completions WHERE task_id = ? ORDER BY completed_at DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (s *CompletionStore) ListByMember(memberID int64) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completions WHERE member_id = ? ORDER BY completed_at DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by member: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// ListPendingByFamily returns completions awaiting verification, oldest
// first so reviewers work through the backlog in order.
func (s *CompletionStore) ListPendingByFamily(familyID int64) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.task_id, c.assignment_id, c.member_id, c.completed_at, c.points_awarded, c.base_points, c.bonus_points, c.comment, c.time_spent_minutes, c.status, c.created_at
		 FROM completions c JOIN members m ON m.id = c.member_id
		 WHERE m.family_id = ? AND c.status = 'pending' ORDER BY c.created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (s *CompletionStore) ListByDateRange(familyID int64, start, end time.Time) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.task_id, c.assignment_id, c.member_id, c.completed_at, c.points_awarded, c.base_points, c.bonus_points, c.comment, c.time_spent_minutes, c.status, c.created_at
		 FROM completions c JOIN members m ON m.id = c.member_id
		 WHERE m.family_id = ? AND c.completed_at >= ? AND c.completed_at < ?
		 ORDER BY c.completed_at DESC`,
		familyID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by range: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (s *CompletionStore) UpdateStatus(id int64, status string) error {
	_, err := s.db.Exec(`UPDATE completions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update completion status: %w", err)
	}
	return nil
}

// UpdateStatusFrom flips a completion's status only while it still holds
// from, reporting whether a row changed. Verification uses it so two
// racing resolutions cannot both win.
func (s *CompletionStore) UpdateStatusFrom(id int64, from, to string) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE completions SET status = ? WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("update completion status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *CompletionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM completions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

// CountByAssignment reports how many completions still reference an
// assignment; undo uses it to decide whether an auto-created assignment
// is orphaned.
func (s *CompletionStore) CountByAssignment(assignmentID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completions WHERE assignment_id = ?`,
		assignmentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions by assignment: %w", err)
	}
	return count, nil
}

func collectCompletions(rows *sql.Rows) ([]model.Completion, error) {
	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}
