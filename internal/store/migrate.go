package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaxicare/vaxidata/pkg/classify"
)

// MigrateMisclassifiedFacilities scans the accounts table for rows whose
// name reads like a healthcare facility (keyword match) and relocates them
// into the facilities table, preserving the password hash so the principal
// can still log in. Each candidate moves in its own transaction; a failure
// is logged and skipped so one bad row cannot stall the rest. Returns the
// number of rows relocated.
func (s *Store) MigrateMisclassifiedFacilities() (int, error) {
	candidates, err := s.misclassifiedAccounts()
	if err != nil {
		return 0, err
	}

	relocated := 0
	for _, c := range candidates {
		if err := s.relocateAccount(c); err != nil {
			s.log.Warn("skipping account during facility migration",
				zap.Int64("accountId", c.id),
				zap.String("name", c.name),
				zap.Error(err))
			continue
		}
		relocated++
	}

	if relocated > 0 {
		s.log.Info("relocated misclassified facility accounts",
			zap.Int("count", relocated))
	}
	return relocated, nil
}

// migrationCandidate is an account row read with its password hash, which
// reads never otherwise expose.
type migrationCandidate struct {
	id           int64
	email        string
	passwordHash string
	name         string
	phone        string
	address      string
	createdAt    int64
}

func (s *Store) misclassifiedAccounts() ([]migrationCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, email, password, name, phone, address, created_at
		FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, storeErr("scan accounts for migration", err)
	}
	defer rows.Close()

	var candidates []migrationCandidate
	for rows.Next() {
		var c migrationCandidate
		if err := rows.Scan(&c.id, &c.email, &c.passwordHash, &c.name, &c.phone, &c.address, &c.createdAt); err != nil {
			return nil, storeErr("scan accounts for migration", err)
		}
		if s.cls.Classify(c.name) == classify.Relocate {
			candidates = append(candidates, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan accounts for migration", err)
	}
	return candidates, nil
}

// relocateAccount moves one account row into the facilities table and
// deletes the original, in a single transaction. If a facility already
// exists with the same email the account row is simply deleted as stale.
func (s *Store) relocateAccount(c migrationCandidate) error {
	return s.withTx("relocate account", func(tx *sql.Tx) error {
		email := c.email
		if email == "" {
			email = fmt.Sprintf("facility_%d_%d@migrated.local", c.id, nowMillis())
		}

		var existing int64
		err := tx.QueryRow("SELECT id FROM facilities WHERE email = ?", email).Scan(&existing)
		switch {
		case err == sql.ErrNoRows:
			_, err := tx.Exec(`
				INSERT INTO facilities (name, email, password, location, category, vaccines, created_at)
				VALUES (?, ?, ?, ?, 'Hospital', 'All standard vaccines', ?)
			`, c.name, email, c.passwordHash, c.address, c.createdAt)
			if err != nil {
				return storeErr("relocate account", err)
			}
		case err != nil:
			return storeErr("relocate account", err)
		default:
			// Facility row already present; the account copy is stale.
		}

		if _, err := tx.Exec("DELETE FROM accounts WHERE id = ?", c.id); err != nil {
			return storeErr("relocate account", err)
		}
		return nil
	})
}
