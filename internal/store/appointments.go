package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// CreateAppointment books a vaccine slot for an account (optionally for one
// of its dependents). AccountID and FacilityID are mandatory; the facility
// reference is verified inside the writing transaction.
func (s *Store) CreateAppointment(a *Appointment) (*Appointment, error) {
	if a == nil {
		return nil, invalid("appointment", "missing data")
	}
	if a.AccountID == nil || *a.AccountID <= 0 {
		return nil, invalid("accountId", "required")
	}
	if a.FacilityID <= 0 {
		return nil, invalid("facilityId", "required")
	}

	status := a.Status
	if status == "" {
		status = StatusPending
	}
	createdAt := a.CreatedAt
	if createdAt == 0 {
		createdAt = nowMillis()
	}

	out := &Appointment{
		AccountID:   a.AccountID,
		FacilityID:  a.FacilityID,
		DependentID: a.DependentID,
		Vaccine:     a.Vaccine,
		Date:        a.Date,
		Time:        a.Time,
		Status:      status,
		CreatedAt:   createdAt,
	}

	err := s.withTx("create appointment", func(tx *sql.Tx) error {
		id, err := insertAppointmentTx(tx, out)
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

// CreateWalkInAppointment registers a patient with no owning account: one
// synthetic dependent plus one appointment for today's date, created inside
// a single transaction so a failure of either insert leaves neither row.
// The returned detail row is re-read (joined with the dependent) in that
// same transaction.
func (s *Store) CreateWalkInAppointment(w *WalkIn) (*AppointmentDetail, error) {
	if w == nil || w.FacilityID <= 0 {
		return nil, invalid("facilityId", "required")
	}
	if strings.TrimSpace(w.PatientName) == "" {
		return nil, invalid("patientName", "required")
	}

	now := time.Now()
	createdAt := now.UnixMilli()
	gender := w.PatientGender
	if gender == "" {
		gender = "unknown"
	}
	var age int64
	if w.PatientAge != nil {
		age = *w.PatientAge
	}

	dependent := &Dependent{
		Name:              w.PatientName,
		Relation:          "Walk-in Patient",
		Age:               age,
		Gender:            gender,
		MedicalConditions: w.MedicalConditions,
		CreatedAt:         createdAt,
	}

	var detail *AppointmentDetail
	err := s.withTx("create walk-in appointment", func(tx *sql.Tx) error {
		dependentID, err := insertDependentTx(tx, dependent)
		if err != nil {
			return err
		}

		appt := &Appointment{
			FacilityID:  w.FacilityID,
			DependentID: &dependentID,
			Vaccine:     w.Vaccine,
			Date:        now.Format("2006-01-02"),
			Time:        now.Format("15:04"),
			Status:      StatusPending,
			CreatedAt:   createdAt,
		}
		apptID, err := insertAppointmentTx(tx, appt)
		if err != nil {
			return err
		}

		detail, err = readWalkInDetailTx(tx, apptID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// AppointmentsByAccount returns the account's appointments joined with the
// facility and dependent rows, one flat row per appointment.
func (s *Store) AppointmentsByAccount(accountID int64) ([]*AppointmentDetail, error) {
	if accountID <= 0 {
		return nil, invalid("accountId", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT a.id, a.account_id, a.facility_id, a.dependent_id, a.vaccine,
		       a.date, a.time, a.status, a.created_at,
		       f.name, u.name,
		       d.name, d.relation, d.age, d.gender, d.medical_conditions
		FROM appointments a
		LEFT JOIN facilities f ON a.facility_id = f.id
		LEFT JOIN accounts u ON a.account_id = u.id
		LEFT JOIN dependents d ON a.dependent_id = d.id
		WHERE a.account_id = ?
		ORDER BY a.id
	`, accountID)
	if err != nil {
		return nil, storeErr("appointments by account", err)
	}
	defer rows.Close()
	return scanAppointmentDetails(rows)
}

// AppointmentsByFacility returns the facility's appointments joined with the
// owning account and patient dependent rows. Walk-ins carry nil account
// fields.
func (s *Store) AppointmentsByFacility(facilityID int64) ([]*AppointmentDetail, error) {
	if facilityID <= 0 {
		return nil, invalid("facilityId", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT a.id, a.account_id, a.facility_id, a.dependent_id, a.vaccine,
		       a.date, a.time, a.status, a.created_at,
		       f.name, u.name,
		       d.name, d.relation, d.age, d.gender, d.medical_conditions
		FROM appointments a
		LEFT JOIN facilities f ON a.facility_id = f.id
		LEFT JOIN accounts u ON a.account_id = u.id
		LEFT JOIN dependents d ON a.dependent_id = d.id
		WHERE a.facility_id = ?
		ORDER BY a.id
	`, facilityID)
	if err != nil {
		return nil, storeErr("appointments by facility", err)
	}
	defer rows.Close()
	return scanAppointmentDetails(rows)
}

// SetAppointmentStatus transitions an appointment to the given status.
// Returns false (no error) when no appointment has that id.
func (s *Store) SetAppointmentStatus(id int64, status AppointmentStatus) (bool, error) {
	if id <= 0 {
		return false, invalid("appointmentId", "required")
	}
	if status != StatusPending && status != StatusCompleted {
		return false, invalid("status", "must be pending or completed")
	}

	var updated bool
	err := s.withTx("set appointment status", func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE appointments SET status = ? WHERE id = ?", status, id)
		if err != nil {
			return storeErr("set appointment status", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("set appointment status", err)
		}
		updated = n > 0
		return nil
	})
	return updated, err
}

// CancelAppointment hard-deletes an appointment. There is no soft-cancel
// state; the second call for the same id returns false.
func (s *Store) CancelAppointment(id int64) (bool, error) {
	if id <= 0 {
		return false, invalid("appointmentId", "required")
	}

	var deleted bool
	err := s.withTx("cancel appointment", func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM appointments WHERE id = ?", id)
		if err != nil {
			return storeErr("cancel appointment", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("cancel appointment", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// insertAppointmentTx verifies the facility reference and issues the
// appointment INSERT inside the caller's transaction.
func insertAppointmentTx(tx *sql.Tx, a *Appointment) (int64, error) {
	var exists int
	err := tx.QueryRow("SELECT 1 FROM facilities WHERE id = ?", a.FacilityID).Scan(&exists)
	if err == sql.ErrNoRows {
		return 0, storeErr("insert appointment", fmt.Errorf("facility %d does not exist", a.FacilityID))
	}
	if err != nil {
		return 0, storeErr("insert appointment", err)
	}

	var accountID, dependentID any
	if a.AccountID != nil {
		accountID = *a.AccountID
	}
	if a.DependentID != nil {
		dependentID = *a.DependentID
	}

	res, err := tx.Exec(`
		INSERT INTO appointments (account_id, facility_id, dependent_id, vaccine, date, time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, accountID, a.FacilityID, dependentID, a.Vaccine, a.Date, a.Time, a.Status, a.CreatedAt)
	if err != nil {
		return 0, storeErr("insert appointment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert appointment", err)
	}
	return id, nil
}

// readWalkInDetailTx re-reads a freshly inserted appointment joined with its
// dependent, inside the same transaction that created both.
func readWalkInDetailTx(tx *sql.Tx, apptID int64) (*AppointmentDetail, error) {
	row := tx.QueryRow(`
		SELECT a.id, a.account_id, a.facility_id, a.dependent_id, a.vaccine,
		       a.date, a.time, a.status, a.created_at,
		       f.name, u.name,
		       d.name, d.relation, d.age, d.gender, d.medical_conditions
		FROM appointments a
		LEFT JOIN facilities f ON a.facility_id = f.id
		LEFT JOIN accounts u ON a.account_id = u.id
		LEFT JOIN dependents d ON a.dependent_id = d.id
		WHERE a.id = ?
	`, apptID)

	detail, err := scanAppointmentDetail(row.Scan)
	if err != nil {
		return nil, storeErr("read walk-in appointment", err)
	}
	return detail, nil
}

func scanAppointmentDetails(rows *sql.Rows) ([]*AppointmentDetail, error) {
	var details []*AppointmentDetail
	for rows.Next() {
		detail, err := scanAppointmentDetail(rows.Scan)
		if err != nil {
			return nil, storeErr("scan appointment", err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan appointment", err)
	}
	return details, nil
}

func scanAppointmentDetail(scan func(dest ...any) error) (*AppointmentDetail, error) {
	var detail AppointmentDetail
	var accountID, dependentID, depAge sql.NullInt64
	var facilityName, accountName, depName, depRelation, depGender, depConditions sql.NullString

	err := scan(
		&detail.ID, &accountID, &detail.FacilityID, &dependentID, &detail.Vaccine,
		&detail.Date, &detail.Time, &detail.Status, &detail.CreatedAt,
		&facilityName, &accountName,
		&depName, &depRelation, &depAge, &depGender, &depConditions,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		detail.AccountID = &accountID.Int64
	}
	if dependentID.Valid {
		detail.DependentID = &dependentID.Int64
	}
	if facilityName.Valid {
		detail.FacilityName = &facilityName.String
	}
	if accountName.Valid {
		detail.AccountName = &accountName.String
	}
	if depName.Valid {
		detail.DependentName = &depName.String
	}
	if depRelation.Valid {
		detail.DependentRelation = &depRelation.String
	}
	if depAge.Valid {
		detail.DependentAge = &depAge.Int64
	}
	if depGender.Valid {
		detail.DependentGender = &depGender.String
	}
	if depConditions.Valid {
		detail.DependentConditions = &depConditions.String
	}

	return &detail, nil
}
