package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"lifetag-access/internal/domain/records"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) Create(ctx context.Context, rec records.MedicalRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (
			id, patient_id,
			uploaded_by_id, uploaded_by_role,
			title, description,
			file_name, content_type, file_url,
			status, created_at, voided_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rec.ID,
		rec.PatientID,
		rec.UploadedByID,
		string(rec.UploadedByRole),
		rec.Title,
		rec.Description,
		rec.FileName,
		rec.ContentType,
		rec.FileURL,
		string(rec.Status),
		rec.CreatedAt,
		toNullTime(rec.VoidedAt),
	)
	return err
}

func (r *RecordsRepo) GetByID(ctx context.Context, id string) (records.MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return records.MedicalRecord{}, records.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, patient_id,
			uploaded_by_id, uploaded_by_role,
			title, description,
			file_name, content_type, file_url,
			status, created_at, voided_at
		FROM medical_records
		WHERE id = $1
	`, id)

	return scanRecord(row)
}

func (r *RecordsRepo) ListByPatient(ctx context.Context, patientID string) ([]records.MedicalRecord, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id,
			uploaded_by_id, uploaded_by_role,
			title, description,
			file_name, content_type, file_url,
			status, created_at, voided_at
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.MedicalRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (r *RecordsRepo) Void(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET status = 'voided', voided_at = now()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		// puede ser inexistente o ya voided; ya-voided es no-op
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func scanRecord(row rowScanner) (records.MedicalRecord, error) {
	var rec records.MedicalRecord
	var role, status string
	var voidedAt sql.NullTime

	if err := row.Scan(
		&rec.ID,
		&rec.PatientID,
		&rec.UploadedByID,
		&role,
		&rec.Title,
		&rec.Description,
		&rec.FileName,
		&rec.ContentType,
		&rec.FileURL,
		&status,
		&rec.CreatedAt,
		&voidedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.MedicalRecord{}, records.ErrNotFound
		}
		return records.MedicalRecord{}, err
	}

	rec.UploadedByRole = records.UploaderRole(role)
	rec.Status = records.RecordStatus(status)
	if voidedAt.Valid {
		t := voidedAt.Time
		rec.VoidedAt = &t
	}

	return rec, nil
}
