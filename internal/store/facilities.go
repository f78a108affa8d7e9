package store

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"
)

// InsertFacility registers a healthcare facility. Name and email are
// mandatory; the email is lower-cased and must be unique within the
// facilities table. The returned record carries no password.
func (s *Store) InsertFacility(f *Facility) (*Facility, error) {
	if f == nil {
		return nil, invalid("facility", "missing data")
	}
	if strings.TrimSpace(f.Name) == "" {
		return nil, invalid("name", "required")
	}
	email := normalizeEmail(f.Email)
	if email == "" {
		return nil, invalid("email", "required")
	}

	hash, err := hashPassword(f.Password)
	if err != nil {
		return nil, storeErr("hash password", err)
	}

	createdAt := f.CreatedAt
	if createdAt == 0 {
		createdAt = nowMillis()
	}

	out := &Facility{
		Name:      f.Name,
		Email:     email,
		Location:  f.Location,
		Category:  f.Category,
		Vaccines:  f.Vaccines,
		CreatedAt: createdAt,
	}

	err = s.withTx("insert facility", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO facilities (name, email, password, location, category, vaccines, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, f.Name, email, hash, f.Location, f.Category, f.Vaccines, createdAt)
		if err != nil {
			return storeErr("insert facility", err)
		}
		out.ID, err = res.LastInsertId()
		if err != nil {
			return storeErr("insert facility", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetFacilityByEmail returns the facility with the given (case-insensitive)
// email, or nil when no row matches. The password is never returned.
func (s *Store) GetFacilityByEmail(email string) (*Facility, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	var f Facility
	err := s.db.QueryRow(`
		SELECT id, name, email, location, category, vaccines, created_at
		FROM facilities WHERE email = ?
	`, email).Scan(&f.ID, &f.Name, &f.Email, &f.Location, &f.Category, &f.Vaccines, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get facility by email", err)
	}
	return &f, nil
}

// ListFacilities returns all facilities ordered by id, passwords stripped.
func (s *Store) ListFacilities() ([]*Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, name, email, location, category, vaccines, created_at
		FROM facilities ORDER BY id
	`)
	if err != nil {
		return nil, storeErr("list facilities", err)
	}
	defer rows.Close()
	return scanFacilities(rows)
}

// FindFacilitiesByText searches facilities whose location, name or category
// contains the query as a case-insensitive substring. Matches are ranked:
// location matches first, then name matches, then everything else, with
// alphabetical name (then id) tie-breaks inside each tier. An empty query
// returns all rows unranked.
//
// If the ranked query fails, the error is logged and a plain location-only
// search runs instead; only a failure of that fallback reaches the caller.
func (s *Store) FindFacilitiesByText(query string) ([]*Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	q := strings.TrimSpace(query)
	if q == "" {
		rows, err := s.db.Query(`
			SELECT id, name, email, location, category, vaccines, created_at
			FROM facilities ORDER BY id
		`)
		if err != nil {
			return nil, storeErr("search facilities", err)
		}
		defer rows.Close()
		return scanFacilities(rows)
	}

	pattern := "%" + q + "%"
	facilities, err := s.searchRanked(pattern)
	if err == nil {
		return facilities, nil
	}

	s.log.Warn("ranked facility search failed, falling back to location-only search",
		zap.String("query", q), zap.Error(err))

	rows, err := s.db.Query(`
		SELECT id, name, email, location, category, vaccines, created_at
		FROM facilities
		WHERE location LIKE ? COLLATE NOCASE
		ORDER BY name COLLATE NOCASE, id
	`, pattern)
	if err != nil {
		return nil, storeErr("search facilities", err)
	}
	defer rows.Close()
	return scanFacilities(rows)
}

func (s *Store) searchRanked(pattern string) ([]*Facility, error) {
	rows, err := s.db.Query(`
		SELECT id, name, email, location, category, vaccines, created_at
		FROM facilities
		WHERE location LIKE ? COLLATE NOCASE
		   OR name LIKE ? COLLATE NOCASE
		   OR category LIKE ? COLLATE NOCASE
		ORDER BY
			CASE
				WHEN location LIKE ? COLLATE NOCASE THEN 1
				WHEN name LIKE ? COLLATE NOCASE THEN 2
				ELSE 3
			END,
			name COLLATE NOCASE,
			id
	`, pattern, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFacilities(rows)
}

func scanFacilities(rows *sql.Rows) ([]*Facility, error) {
	var facilities []*Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Location, &f.Category, &f.Vaccines, &f.CreatedAt); err != nil {
			return nil, storeErr("scan facility", err)
		}
		facilities = append(facilities, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan facility", err)
	}
	return facilities, nil
}
