package store

import (
	"database/sql"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// InsertAccount registers an individual account. Email and name are
// mandatory; the email is lower-cased before storage and must be unique
// within the accounts table. The stored password is a bcrypt hash; the
// returned record carries no password.
func (s *Store) InsertAccount(a *Account) (*Account, error) {
	if a == nil {
		return nil, invalid("account", "missing data")
	}
	email := normalizeEmail(a.Email)
	if email == "" {
		return nil, invalid("email", "required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return nil, invalid("name", "required")
	}

	hash, err := hashPassword(a.Password)
	if err != nil {
		return nil, storeErr("hash password", err)
	}

	createdAt := a.CreatedAt
	if createdAt == 0 {
		createdAt = nowMillis()
	}

	out := &Account{
		Email:     email,
		Name:      a.Name,
		Phone:     a.Phone,
		Address:   a.Address,
		CreatedAt: createdAt,
	}

	err = s.withTx("insert account", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO accounts (email, password, name, phone, address, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, email, hash, a.Name, a.Phone, a.Address, createdAt)
		if err != nil {
			return storeErr("insert account", err)
		}
		out.ID, err = res.LastInsertId()
		if err != nil {
			return storeErr("insert account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccountByEmail returns the account with the given (case-insensitive)
// email, or nil when no row matches. The password is never returned.
func (s *Store) GetAccountByEmail(email string) (*Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	var a Account
	err := s.db.QueryRow(`
		SELECT id, email, name, phone, address, created_at
		FROM accounts WHERE email = ?
	`, email).Scan(&a.ID, &a.Email, &a.Name, &a.Phone, &a.Address, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get account by email", err)
	}
	return &a, nil
}

// ListAccounts returns all accounts ordered by id, passwords stripped.
func (s *Store) ListAccounts() ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, email, name, phone, address, created_at
		FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Phone, &a.Address, &a.CreatedAt); err != nil {
			return nil, storeErr("list accounts", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// Authenticate verifies email/password against the table selected by kind.
// It returns nil (no error) when no row matches or the password is wrong;
// the session record carries no password.
func (s *Store) Authenticate(email, password string, kind ActorKind) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("credentials", "email and password are required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	switch kind {
	case ActorFacility:
		var f Facility
		var hash string
		err := s.db.QueryRow(`
			SELECT id, name, email, password, location, category, vaccines, created_at
			FROM facilities WHERE email = ?
		`, email).Scan(&f.ID, &f.Name, &f.Email, &hash, &f.Location, &f.Category, &f.Vaccines, &f.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, storeErr("authenticate facility", err)
		}
		if !checkPassword(hash, password) {
			return nil, nil
		}
		return &Session{Kind: ActorFacility, Facility: &f}, nil

	case ActorAccount:
		var a Account
		var hash string
		err := s.db.QueryRow(`
			SELECT id, email, password, name, phone, address, created_at
			FROM accounts WHERE email = ?
		`, email).Scan(&a.ID, &a.Email, &hash, &a.Name, &a.Phone, &a.Address, &a.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, storeErr("authenticate account", err)
		}
		if !checkPassword(hash, password) {
			return nil, nil
		}
		return &Session{Kind: ActorAccount, Account: &a}, nil

	default:
		return nil, invalid("kind", "must be account or facility")
	}
}

// Login authenticates against the requested kind first and falls back to the
// other principal table when nothing matches, so a facility operator typing
// into the account form still gets in.
func (s *Store) Login(email, password string, kind ActorKind) (*Session, error) {
	sess, err := s.Authenticate(email, password, kind)
	if err != nil || sess != nil {
		return sess, err
	}

	other := ActorFacility
	if kind == ActorFacility {
		other = ActorAccount
	}
	return s.Authenticate(email, password, other)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
