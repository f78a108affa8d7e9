package store

import (
	"database/sql"
	"strings"
)

// AddDependent adds a family member owned by ownerID. Name is mandatory.
func (s *Store) AddDependent(d *Dependent, ownerID int64) (*Dependent, error) {
	if d == nil || strings.TrimSpace(d.Name) == "" {
		return nil, invalid("name", "required")
	}
	if ownerID <= 0 {
		return nil, invalid("ownerAccountId", "required")
	}

	createdAt := d.CreatedAt
	if createdAt == 0 {
		createdAt = nowMillis()
	}

	out := &Dependent{
		OwnerAccountID:    &ownerID,
		Name:              d.Name,
		Relation:          d.Relation,
		Age:               d.Age,
		Gender:            d.Gender,
		MedicalConditions: d.MedicalConditions,
		CreatedAt:         createdAt,
	}

	err := s.withTx("add dependent", func(tx *sql.Tx) error {
		id, err := insertDependentTx(tx, out)
		if err != nil {
			return err
		}
		out.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DependentsByAccount returns the family members owned by accountID,
// ordered by id.
func (s *Store) DependentsByAccount(accountID int64) ([]*Dependent, error) {
	if accountID <= 0 {
		return nil, invalid("accountId", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, account_id, name, relation, age, gender, medical_conditions, created_at
		FROM dependents WHERE account_id = ? ORDER BY id
	`, accountID)
	if err != nil {
		return nil, storeErr("list dependents", err)
	}
	defer rows.Close()

	var dependents []*Dependent
	for rows.Next() {
		var d Dependent
		var owner sql.NullInt64
		if err := rows.Scan(&d.ID, &owner, &d.Name, &d.Relation, &d.Age, &d.Gender, &d.MedicalConditions, &d.CreatedAt); err != nil {
			return nil, storeErr("list dependents", err)
		}
		if owner.Valid {
			d.OwnerAccountID = &owner.Int64
		}
		dependents = append(dependents, &d)
	}
	return dependents, rows.Err()
}

// insertDependentTx issues the dependent INSERT inside the caller's
// transaction. Cascading writes (walk-in registration) depend on this
// running in the same transaction as the appointment insert.
func insertDependentTx(tx *sql.Tx, d *Dependent) (int64, error) {
	var owner any
	if d.OwnerAccountID != nil {
		owner = *d.OwnerAccountID
	}

	res, err := tx.Exec(`
		INSERT INTO dependents (account_id, name, relation, age, gender, medical_conditions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, owner, d.Name, d.Relation, d.Age, d.Gender, d.MedicalConditions, d.CreatedAt)
	if err != nil {
		return 0, storeErr("insert dependent", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert dependent", err)
	}
	return id, nil
}
