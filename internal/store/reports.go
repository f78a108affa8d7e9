package store

import (
	"database/sql"
	"encoding/json"
)

// AddReport stores a medical report for a patient. The structured findings
// are serialized to JSON in a single column; the optional image is stored
// as a blob.
func (s *Store) AddReport(r *Report) (*Report, error) {
	if r == nil {
		return nil, invalid("report", "missing data")
	}
	if r.PatientID <= 0 {
		return nil, invalid("patientId", "required")
	}

	findings, err := json.Marshal(r.Findings)
	if err != nil {
		return nil, storeErr("encode report findings", err)
	}

	createdAt := r.CreatedAt
	if createdAt == 0 {
		createdAt = nowMillis()
	}

	out := &Report{
		PatientID:   r.PatientID,
		PatientName: r.PatientName,
		Description: r.Description,
		Findings:    r.Findings,
		AuthorID:    r.AuthorID,
		AuthorKind:  r.AuthorKind,
		Image:       r.Image,
		CreatedAt:   createdAt,
	}

	err = s.withTx("add report", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO reports (patient_id, patient_name, description, findings, author_id, author_kind, image, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, out.PatientID, out.PatientName, out.Description, string(findings),
			out.AuthorID, string(out.AuthorKind), out.Image, createdAt)
		if err != nil {
			return storeErr("add report", err)
		}
		out.ID, err = res.LastInsertId()
		if err != nil {
			return storeErr("add report", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReportsByPatient returns the patient's reports, newest first.
func (s *Store) ReportsByPatient(patientID int64) ([]*Report, error) {
	if patientID <= 0 {
		return nil, invalid("patientId", "required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, patient_id, patient_name, description, findings, author_id, author_kind, image, created_at
		FROM reports WHERE patient_id = ? ORDER BY created_at DESC, id DESC
	`, patientID)
	if err != nil {
		return nil, storeErr("reports by patient", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// ReportsByAuthor returns the reports written by one author, newest first.
func (s *Store) ReportsByAuthor(authorID int64, kind ActorKind) ([]*Report, error) {
	if authorID <= 0 {
		return nil, invalid("authorId", "required")
	}
	if kind != ActorAccount && kind != ActorFacility {
		return nil, invalid("authorKind", "must be account or facility")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(`
		SELECT id, patient_id, patient_name, description, findings, author_id, author_kind, image, created_at
		FROM reports WHERE author_id = ? AND author_kind = ? ORDER BY created_at DESC, id DESC
	`, authorID, string(kind))
	if err != nil {
		return nil, storeErr("reports by author", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// DeleteReport deletes one report by id. Returns false when no row has
// that id.
func (s *Store) DeleteReport(id int64) (bool, error) {
	if id <= 0 {
		return false, invalid("reportId", "required")
	}

	var deleted bool
	err := s.withTx("delete report", func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM reports WHERE id = ?", id)
		if err != nil {
			return storeErr("delete report", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("delete report", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

func scanReports(rows *sql.Rows) ([]*Report, error) {
	var reports []*Report
	for rows.Next() {
		var r Report
		var findings sql.NullString
		var kind string
		if err := rows.Scan(&r.ID, &r.PatientID, &r.PatientName, &r.Description,
			&findings, &r.AuthorID, &kind, &r.Image, &r.CreatedAt); err != nil {
			return nil, storeErr("scan report", err)
		}
		r.AuthorKind = ActorKind(kind)
		if findings.Valid && findings.String != "" {
			if err := json.Unmarshal([]byte(findings.String), &r.Findings); err != nil {
				return nil, storeErr("decode report findings", err)
			}
		}
		reports = append(reports, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan report", err)
	}
	return reports, nil
}
