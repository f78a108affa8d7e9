package store

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"github.com/vaxicare/vaxidata/pkg/classify"
)

// Store is the SQLite-backed data store. A single connection serves all
// callers; the mutex serializes writes so every transaction runs alone.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	log *zap.Logger
	cls *classify.Classifier
}

// facilitiesTable is split out of the schema because the repair path
// recreates this one table from scratch.
const facilitiesTable = `
CREATE TABLE IF NOT EXISTS facilities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT UNIQUE,
    password TEXT,
    location TEXT,
    category TEXT,
    vaccines TEXT,
    created_at INTEGER NOT NULL
);
`

// schema defines all six entity tables.
// Note: no foreign keys - referential integrity managed at application level.
const schema = `
-- Accounts (individual account holders)
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT UNIQUE,
    password TEXT,
    name TEXT NOT NULL,
    phone TEXT,
    address TEXT,
    created_at INTEGER NOT NULL
);

-- Facilities (healthcare facility accounts)
` + facilitiesTable + `

-- Dependents (family members; account_id NULL for walk-in patients)
CREATE TABLE IF NOT EXISTS dependents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER,
    name TEXT NOT NULL,
    relation TEXT,
    age INTEGER,
    gender TEXT,
    medical_conditions TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dependents_owner ON dependents(account_id);

-- Appointments (account_id NULL for walk-ins)
CREATE TABLE IF NOT EXISTS appointments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER,
    facility_id INTEGER NOT NULL,
    dependent_id INTEGER,
    vaccine TEXT,
    date TEXT,
    time TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_appointments_account ON appointments(account_id);
CREATE INDEX IF NOT EXISTS idx_appointments_facility ON appointments(facility_id);

-- Vaccine inventory (one row per facility/vaccine pair)
CREATE TABLE IF NOT EXISTS inventory (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    facility_id INTEGER NOT NULL,
    vaccine_name TEXT NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 0,
    min_age INTEGER NOT NULL DEFAULT 0,
    max_age INTEGER NOT NULL DEFAULT 100,
    description TEXT,
    updated_at INTEGER NOT NULL,
    UNIQUE(facility_id, vaccine_name)
);

-- Medical reports (free-standing; findings serialized as JSON)
CREATE TABLE IF NOT EXISTS reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    patient_id INTEGER NOT NULL,
    patient_name TEXT,
    description TEXT,
    findings TEXT,
    author_id INTEGER,
    author_kind TEXT,
    image BLOB,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id);
`

// Open opens (creating if necessary) the store at dsn and brings the schema
// to current. A nil logger disables logging. Safe to call on every start:
// schema creation is idempotent.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storeErr("open", err)
	}

	// One connection only. The mutex already serializes access, and with
	// ":memory:" every extra pooled connection would see its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &SchemaError{Op: "initialize", Err: err}
	}

	cls, err := classify.New()
	if err != nil {
		db.Close()
		return nil, storeErr("open", err)
	}

	return &Store{db: db, log: log, cls: cls}, nil
}

// OpenInMemory opens a throwaway in-memory store. Used by tests.
func OpenInMemory(log *zap.Logger) (*Store, error) {
	return Open(":memory:", log)
}

// InitializeSchema re-runs the idempotent schema bootstrap. Open already did
// this; the method exists for callers that purge and want to re-arm
// explicitly.
func (s *Store) InitializeSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrNotInitialized
	}
	if _, err := s.db.Exec(schema); err != nil {
		return &SchemaError{Op: "initialize", Err: err}
	}
	return nil
}

// Close closes the database connection. Subsequent operations return
// ErrNotInitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// withTx runs fn inside one transaction. Any error from fn rolls the whole
// transaction back and is returned unchanged; begin/commit failures are
// wrapped as StoreError. This is the only way writes reach the database.
func (s *Store) withTx(op string, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrNotInitialized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return storeErr(op, err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr(op, err)
	}
	return nil
}

// RepairFacilityTable drops and recreates the facilities table. This is a
// last-resort destructive fix for a stale column set: all facility rows are
// lost. Fails with SchemaError if either statement fails.
func (s *Store) RepairFacilityTable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrNotInitialized
	}

	s.log.Warn("rebuilding facilities table, existing facility rows will be lost")

	tx, err := s.db.Begin()
	if err != nil {
		return &SchemaError{Op: "repair facilities", Err: err}
	}
	if _, err := tx.Exec("DROP TABLE IF EXISTS facilities"); err != nil {
		tx.Rollback()
		return &SchemaError{Op: "drop facilities", Err: err}
	}
	if _, err := tx.Exec(facilitiesTable); err != nil {
		tx.Rollback()
		return &SchemaError{Op: "recreate facilities", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &SchemaError{Op: "repair facilities", Err: err}
	}
	return nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Compile-time interface check
var _ Storer = (*Store)(nil)
