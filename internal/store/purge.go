package store

import "database/sql"

// PurgeAll deletes every row from every table in one transaction. The
// schema stays in place, so inserts work immediately afterwards. Child
// tables are cleared before their referents.
func (s *Store) PurgeAll() error {
	s.log.Warn("purging all data")

	return s.withTx("purge all", func(tx *sql.Tx) error {
		for _, table := range []string{
			"appointments",
			"dependents",
			"inventory",
			"reports",
			"facilities",
			"accounts",
		} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return storeErr("purge "+table, err)
			}
		}
		return nil
	})
}
