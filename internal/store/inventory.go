package store

import (
	"database/sql"
	"strings"
)

// UpsertInventory inserts or replaces the stock row for the facility/vaccine
// pair. Quantity, age bounds and description are set to the given values
// outright, not accumulated. A zero MaxAge means "no upper bound" and is
// stored as 100.
func (s *Store) UpsertInventory(facilityID int64, item *InventoryItem) (*InventoryItem, error) {
	if facilityID <= 0 {
		return nil, invalid("facilityId", "required")
	}
	if item == nil || strings.TrimSpace(item.VaccineName) == "" {
		return nil, invalid("vaccineName", "required")
	}

	maxAge := item.MaxAge
	if maxAge == 0 {
		maxAge = 100
	}

	out := &InventoryItem{
		FacilityID:  facilityID,
		VaccineName: item.VaccineName,
		Quantity:    item.Quantity,
		MinAge:      item.MinAge,
		MaxAge:      maxAge,
		Description: item.Description,
		UpdatedAt:   nowMillis(),
	}

	// Check-then-act inside one transaction rather than ON CONFLICT, so the
	// unique constraint is never tripped on the repeat-stock path.
	err := s.withTx("upsert inventory", func(tx *sql.Tx) error {
		var existingID int64
		err := tx.QueryRow(`
			SELECT id FROM inventory WHERE facility_id = ? AND vaccine_name = ?
		`, facilityID, item.VaccineName).Scan(&existingID)

		switch {
		case err == sql.ErrNoRows:
			res, err := tx.Exec(`
				INSERT INTO inventory (facility_id, vaccine_name, quantity, min_age, max_age, description, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, facilityID, out.VaccineName, out.Quantity, out.MinAge, out.MaxAge, out.Description, out.UpdatedAt)
			if err != nil {
				return storeErr("insert inventory", err)
			}
			out.ID, err = res.LastInsertId()
			if err != nil {
				return storeErr("insert inventory", err)
			}
			return nil

		case err != nil:
			return storeErr("upsert inventory", err)

		default:
			_, err := tx.Exec(`
				UPDATE inventory
				SET quantity = ?, min_age = ?, max_age = ?, description = ?, updated_at = ?
				WHERE id = ?
			`, out.Quantity, out.MinAge, out.MaxAge, out.Description, out.UpdatedAt, existingID)
			if err != nil {
				return storeErr("update inventory", err)
			}
			out.ID = existingID
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InventoryByFacility returns the facility's full stock list, including
// zero-quantity rows, ordered by vaccine name.
func (s *Store) InventoryByFacility(facilityID int64) ([]*InventoryItem, error) {
	if facilityID <= 0 {
		return nil, invalid("facilityId", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, facility_id, vaccine_name, quantity, min_age, max_age, description, updated_at
		FROM inventory WHERE facility_id = ? ORDER BY vaccine_name
	`, facilityID)
	if err != nil {
		return nil, storeErr("list inventory", err)
	}
	defer rows.Close()
	return scanInventory(rows)
}

// FindAvailableInventory returns the facility's in-stock vaccines, further
// filtered to those whose age range covers the given age when age is non-nil.
func (s *Store) FindAvailableInventory(facilityID int64, age *int64) ([]*InventoryItem, error) {
	if facilityID <= 0 {
		return nil, invalid("facilityId", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	query := `
		SELECT id, facility_id, vaccine_name, quantity, min_age, max_age, description, updated_at
		FROM inventory WHERE facility_id = ? AND quantity > 0
	`
	args := []any{facilityID}
	if age != nil {
		query += " AND min_age <= ? AND max_age >= ?"
		args = append(args, *age, *age)
	}
	query += " ORDER BY vaccine_name"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("find available inventory", err)
	}
	defer rows.Close()
	return scanInventory(rows)
}

// RemoveInventory deletes one stock row by id. Returns false when no row
// has that id.
func (s *Store) RemoveInventory(id int64) (bool, error) {
	if id <= 0 {
		return false, invalid("inventoryId", "required")
	}

	var deleted bool
	err := s.withTx("remove inventory", func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM inventory WHERE id = ?", id)
		if err != nil {
			return storeErr("remove inventory", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("remove inventory", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

func scanInventory(rows *sql.Rows) ([]*InventoryItem, error) {
	var items []*InventoryItem
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ID, &it.FacilityID, &it.VaccineName, &it.Quantity,
			&it.MinAge, &it.MaxAge, &it.Description, &it.UpdatedAt); err != nil {
			return nil, storeErr("scan inventory", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan inventory", err)
	}
	return items, nil
}
