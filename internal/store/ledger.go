package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/williamwmy/fantastic-task/internal/model"
)

// ErrCompletionResolved reports that a completion's status no longer
// matches what ApplyCompletion expected, so nothing was written.
var ErrCompletionResolved = errors.New("completion already resolved")

// LedgerStore is the append-only points ledger. Rows are never updated;
// corrections are offsetting entries, and deletes happen only when an
// undo removes a completion together with its transactions.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.PointsTransaction, error) {
	var t model.PointsTransaction
	var completionID sql.NullInt64
	var points, bonus sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.MemberID, &completionID, &points, &bonus,
		&t.TransactionType, &t.Description, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completionID.Valid {
		t.CompletionID = &completionID.Int64
	}
	if points.Valid {
		v := int(points.Int64)
		t.Points = &v
	}
	if bonus.Valid {
		v := int(bonus.Int64)
		t.BonusPoints = &v
	}
	return &t, nil
}

const transactionCols = `id, member_id, completion_id, points, bonus_points, transaction_type, description, created_at`

// Entry describes one ledger row to record. Nil point fields are stored
// as NULL, matching rows that predate the bonus column.
type Entry struct {
	Points          *int
	BonusPoints     *int
	TransactionType string
	Description     string
}

func (s *LedgerStore) Record(memberID int64, completionID *int64, e Entry) (*model.PointsTransaction, error) {
	result, err := s.db.Exec(
		`INSERT INTO point_transactions (member_id, completion_id, points, bonus_points, transaction_type, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		memberID, nullableID(completionID), nullableInt(e.Points), nullableInt(e.BonusPoints), e.TransactionType, e.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+transactionCols+` FROM point_transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// ListByCompletion returns the ledger rows tagged with a completion id.
// Undo subtracts exactly these, never a time-window guess.
func (s *LedgerStore) ListByCompletion(completionID int64) ([]model.PointsTransaction, error) {
	rows, err := s.db.Query(
		`SELECT `+transactionCols+` FROM point_transactions WHERE completion_id = ? ORDER BY id ASC`,
		completionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions by completion: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListByMember returns a member's transactions, newest first, optionally
// filtered by transaction type.
func (s *LedgerStore) ListByMember(memberID int64, txType string) ([]model.PointsTransaction, error) {
	query := `SELECT ` + transactionCols + ` FROM point_transactions WHERE member_id = ?`
	args := []any{memberID}
	if txType != "" {
		query += ` AND transaction_type = ?`
		args = append(args, txType)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions by member: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// SumForMember re-sums the whole ledger for a member, coalescing NULL
// point columns to zero.
func (s *LedgerStore) SumForMember(memberID int64) (int, error) {
	var sum int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(COALESCE(points, 0) + COALESCE(bonus_points, 0)), 0)
		 FROM point_transactions WHERE member_id = ?`,
		memberID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

// ApplyCompletion records the entries for a completion, marks the
// completion approved, and writes the new member balance in one
// transaction, so a failure leaves all three untouched. The status flip
// is guarded on fromStatus; ErrCompletionResolved is returned (and the
// whole transaction rolled back) when the completion has moved on, so a
// completion can never be credited twice.
func (s *LedgerStore) ApplyCompletion(memberID, completionID int64, fromStatus string, entries []Entry, newBalance int) ([]model.PointsTransaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE completions SET status = 'approved' WHERE id = ? AND status = ?`,
		completionID, fromStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("approve completion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrCompletionResolved
	}

	var ids []int64
	for _, e := range entries {
		result, err := tx.Exec(
			`INSERT INTO point_transactions (member_id, completion_id, points, bonus_points, transaction_type, description)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			memberID, completionID, nullableInt(e.Points), nullableInt(e.BonusPoints), e.TransactionType, e.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if _, err := tx.Exec(
		`UPDATE members SET points_balance = ?, updated_at = datetime('now') WHERE id = ?`,
		newBalance, memberID,
	); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	var recorded []model.PointsTransaction
	for _, id := range ids {
		row := s.db.QueryRow(`SELECT `+transactionCols+` FROM point_transactions WHERE id = ?`, id)
		t, err := scanTransaction(row)
		if err != nil {
			return nil, fmt.Errorf("read back transaction: %w", err)
		}
		recorded = append(recorded, *t)
	}
	return recorded, nil
}

// ReverseCompletion undoes a completion: in one transaction it deletes the
// completion's ledger rows, the completion itself, an orphaned
// auto-created assignment, and writes the already-clamped new balance.
func (s *LedgerStore) ReverseCompletion(memberID, completionID int64, assignmentID *int64, newBalance int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM point_transactions WHERE completion_id = ?`, completionID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM completions WHERE id = ?`, completionID); err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}

	if assignmentID != nil {
		if _, err := tx.Exec(
			`DELETE FROM assignments WHERE id = ? AND auto_created = 1
			 AND NOT EXISTS (SELECT 1 FROM completions WHERE assignment_id = ?)`,
			*assignmentID, *assignmentID,
		); err != nil {
			return fmt.Errorf("delete assignment: %w", err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE members SET points_balance = ?, updated_at = datetime('now') WHERE id = ?`,
		newBalance, memberID,
	); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return tx.Commit()
}

func collectTransactions(rows *sql.Rows) ([]model.PointsTransaction, error) {
	var transactions []model.PointsTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
