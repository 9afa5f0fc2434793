package store

import (
	"database/sql"
	"fmt"

	"github.com/williamwmy/fantastic-task/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	var require int
	err := scanner.Scan(&f.ID, &f.Name, &require, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.RequireChildVerification = require != 0
	return &f, nil
}

const familyCols = `id, name, require_child_verification, created_at, updated_at`

func (s *FamilyStore) Create(name string, requireChildVerification bool) (*model.Family, error) {
	var require int
	if requireChildVerification {
		require = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO families (name, require_child_verification) VALUES (?, ?)`,
		name, require,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) Update(id int64, name string, requireChildVerification bool) (*model.Family, error) {
	var require int
	if requireChildVerification {
		require = 1
	}

	_, err := s.db.Exec(
		`UPDATE families SET name = ?, require_child_verification = ?, updated_at = datetime('now') WHERE id = ?`,
		name, require, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update family: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM families WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	return nil
}
