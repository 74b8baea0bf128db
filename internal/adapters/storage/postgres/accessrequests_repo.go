package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"lifetag-access/internal/domain/accessrequests"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type AccessRequestsRepo struct {
	db *sql.DB
}

func NewAccessRequestsRepo(db *sql.DB) *AccessRequestsRepo {
	return &AccessRequestsRepo{db: db}
}

const accessRequestColumns = `
	id, doctor_id, patient_id, notes,
	status, requested_at, responded_at, expires_at
`

// CreatePending es un solo write condicional: el INSERT...WHERE NOT EXISTS
// descarta pares con solicitud activa, y el índice único parcial sobre
// pendientes (ver migrations/schema.sql) cierra la carrera entre dos
// submits que pasaron el subquery a la vez.
func (r *AccessRequestsRepo) CreatePending(ctx context.Context, req accessrequests.AccessRequest) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO access_requests (
			id, doctor_id, patient_id, notes,
			status, requested_at
		)
		SELECT $1, $2, $3, $4, 'pending', $5
		WHERE NOT EXISTS (
			SELECT 1 FROM access_requests
			WHERE doctor_id = $2
			  AND patient_id = $3
			  AND (
				status = 'pending'
				OR (status = 'approved' AND expires_at > $5)
			  )
		)
	`,
		req.ID,
		req.DoctorID,
		req.PatientID,
		req.Notes,
		req.RequestedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return accessrequests.ErrConflict
		}
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return accessrequests.ErrConflict
	}
	return nil
}

func (r *AccessRequestsRepo) GetByID(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE id = $1
	`, id)

	return scanAccessRequest(row)
}

// TransitionFromPending: el WHERE status='pending' es el compare-and-set.
// Cero rows afectados significa que otro respond ganó (o el id no existe).
func (r *AccessRequestsRepo) TransitionFromPending(ctx context.Context, id string, to accessrequests.Status, respondedAt time.Time, expiresAt *time.Time) (accessrequests.AccessRequest, error) {
	if !accessrequests.CanTransition(accessrequests.StatusPending, to) {
		return accessrequests.AccessRequest{}, accessrequests.ErrConflict
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE access_requests
		SET
			status = $2,
			responded_at = $3,
			expires_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+accessRequestColumns,
		id,
		string(to),
		respondedAt,
		toNullTime(expiresAt),
	)

	req, err := scanAccessRequest(row)
	if err != nil {
		if errors.Is(err, accessrequests.ErrNotFound) {
			return accessrequests.AccessRequest{}, r.conflictOrNotFound(ctx, id)
		}
		return accessrequests.AccessRequest{}, err
	}
	return req, nil
}

func (r *AccessRequestsRepo) TransitionFromApproved(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE access_requests
		SET status = 'revoked'
		WHERE id = $1 AND status = 'approved'
		RETURNING `+accessRequestColumns,
		id,
	)

	req, err := scanAccessRequest(row)
	if err != nil {
		if errors.Is(err, accessrequests.ErrNotFound) {
			return accessrequests.AccessRequest{}, r.conflictOrNotFound(ctx, id)
		}
		return accessrequests.AccessRequest{}, err
	}
	return req, nil
}

func (r *AccessRequestsRepo) FindApproved(ctx context.Context, doctorID, patientID string) (accessrequests.AccessRequest, error) {
	doctorID = strings.TrimSpace(doctorID)
	patientID = strings.TrimSpace(patientID)
	if doctorID == "" || patientID == "" {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}

	// Ante data sucia con más de un approved, gana el de expiración
	// más lejana.
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE doctor_id = $1
		  AND patient_id = $2
		  AND status = 'approved'
		ORDER BY expires_at DESC
		LIMIT 1
	`, doctorID, patientID)

	return scanAccessRequest(row)
}

func (r *AccessRequestsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, "doctor_id", doctorID)
}

func (r *AccessRequestsRepo) ListByPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, "patient_id", patientID)
}

func (r *AccessRequestsRepo) list(ctx context.Context, column, value string) ([]accessrequests.AccessRequest, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE `+column+` = $1
		ORDER BY requested_at DESC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]accessrequests.AccessRequest, 0)
	for rows.Next() {
		req, err := scanAccessRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}

	return out, rows.Err()
}

// conflictOrNotFound distingue "no existe" de "existe pero en otro estado"
// cuando un CAS no afectó filas.
func (r *AccessRequestsRepo) conflictOrNotFound(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return accessrequests.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccessRequest(row rowScanner) (accessrequests.AccessRequest, error) {
	var req accessrequests.AccessRequest
	var status string
	var respondedAt, expiresAt sql.NullTime

	if err := row.Scan(
		&req.ID,
		&req.DoctorID,
		&req.PatientID,
		&req.Notes,
		&status,
		&req.RequestedAt,
		&respondedAt,
		&expiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
		}
		return accessrequests.AccessRequest{}, err
	}

	req.Status = accessrequests.Status(status)
	if respondedAt.Valid {
		t := respondedAt.Time
		req.RespondedAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		req.ExpiresAt = &t
	}

	return req, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
