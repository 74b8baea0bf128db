package accessrequests

import (
	"context"
	"errors"
	"strings"
	"time"

	"lifetag-access/internal/ports/auth"
	"lifetag-access/internal/ports/directory"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// DurationPolicy acota la duración que un paciente puede elegir al aprobar.
// Es política configurable, no una constante del dominio.
type DurationPolicy struct {
	MinMinutes int
	MaxMinutes int
}

func DefaultDurationPolicy() DurationPolicy {
	return DurationPolicy{MinMinutes: 5, MaxMinutes: 43200} // 5 min .. 30 días
}

func (p DurationPolicy) allows(minutes int) bool {
	min := p.MinMinutes
	if min <= 0 {
		min = 1
	}
	return minutes >= min && minutes <= p.MaxMinutes
}

// Notifier publica cambios de estado a las partes interesadas.
// Best-effort: un Publish perdido no afecta correctitud (las listas
// se refrescan por polling).
type Notifier interface {
	Publish(userID string, payload any)
}

// ChangeEvent es el payload que viaja por el notifier.
type ChangeEvent struct {
	RequestID string    `json:"request_id"`
	DoctorID  string    `json:"doctor_id"`
	PatientID string    `json:"patient_id"`
	Status    Status    `json:"status"`
	At        time.Time `json:"at"`
}

type Service struct {
	repo     Repository
	dir      directory.Directory
	notifier Notifier // puede ser nil
	policy   DurationPolicy
	now      func() time.Time
}

func NewService(repo Repository, dir directory.Directory, policy DurationPolicy) *Service {
	if policy.MaxMinutes <= 0 {
		policy = DefaultDurationPolicy()
	}
	return &Service{
		repo:   repo,
		dir:    dir,
		policy: policy,
		now:    time.Now,
	}
}

// WithNotifier engancha el hub de notificaciones (opcional).
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// Submit crea una solicitud pendiente del doctor hacia el paciente.
// La unicidad por par activo la garantiza el repo en un write condicional;
// acá no hay check-then-insert en dos pasos.
func (s *Service) Submit(ctx context.Context, doctorID, patientID, notes string) (AccessRequest, error) {
	doctorID = strings.TrimSpace(doctorID)
	patientID = strings.TrimSpace(patientID)

	if doctorID == "" || patientID == "" {
		return AccessRequest{}, ErrInvalidInput
	}

	doc, err := s.dir.Doctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return AccessRequest{}, ErrForbidden
		}
		return AccessRequest{}, err
	}
	if doc.Blocked {
		return AccessRequest{}, ErrForbidden
	}

	if _, err := s.dir.Patient(ctx, patientID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return AccessRequest{}, ErrNotFound
		}
		return AccessRequest{}, err
	}

	now := s.now()
	r := AccessRequest{
		ID:          uuid.NewString(),
		DoctorID:    doctorID,
		PatientID:   patientID,
		Notes:       strings.TrimSpace(notes),
		Status:      StatusPending,
		RequestedAt: now,
	}

	if err := s.repo.CreatePending(ctx, r); err != nil {
		return AccessRequest{}, err
	}

	s.publish(r.PatientID, r)
	return r, nil
}

// Respond aplica la decisión del paciente sobre una solicitud pendiente.
// La transición es un CAS en el repo: si otro respond ganó primero, el
// perdedor ve ErrConflict, nunca un estado pisado.
func (s *Service) Respond(ctx context.Context, patientID, requestID string, decision Decision, durationMinutes int) (AccessRequest, error) {
	patientID = strings.TrimSpace(patientID)
	requestID = strings.TrimSpace(requestID)

	if patientID == "" || requestID == "" {
		return AccessRequest{}, ErrInvalidInput
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return AccessRequest{}, ErrInvalidInput
	}

	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return AccessRequest{}, err
	}
	if r.PatientID != patientID {
		return AccessRequest{}, ErrForbidden
	}

	now := s.now()

	to := StatusRejected
	var expiresAt *time.Time
	if decision == DecisionApprove {
		if !s.policy.allows(durationMinutes) {
			return AccessRequest{}, ErrInvalidInput
		}
		to = StatusApproved
		t := now.Add(time.Duration(durationMinutes) * time.Minute)
		expiresAt = &t
	}

	updated, err := s.repo.TransitionFromPending(ctx, requestID, to, now, expiresAt)
	if err != nil {
		return AccessRequest{}, err
	}

	s.publish(updated.DoctorID, updated)
	return updated, nil
}

// Revoke retira un grant aprobado. Sobre solicitudes ya terminales
// (revoked, rejected, o approved vencido) es un no-op que devuelve el
// estado actual, no un error.
func (s *Service) Revoke(ctx context.Context, patientID, requestID string) (AccessRequest, error) {
	patientID = strings.TrimSpace(patientID)
	requestID = strings.TrimSpace(requestID)

	if patientID == "" || requestID == "" {
		return AccessRequest{}, ErrInvalidInput
	}

	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return AccessRequest{}, err
	}
	if r.PatientID != patientID {
		return AccessRequest{}, ErrForbidden
	}

	switch r.EffectiveStatus(s.now()) {
	case StatusPending:
		// Una pendiente no se revoca, se rechaza.
		return AccessRequest{}, ErrConflict
	case StatusRejected, StatusRevoked, StatusExpired:
		// Idempotente: ya no hay acceso que retirar.
		return r, nil
	}

	updated, err := s.repo.TransitionFromApproved(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// Otro revoke ganó la carrera; devolver lo que quedó.
			return s.repo.GetByID(ctx, requestID)
		}
		return AccessRequest{}, err
	}

	s.publish(updated.DoctorID, updated)
	return updated, nil
}

// ListActive devuelve las solicitudes cuyo estado efectivo es pending o
// approved, del lado del caller. Se consume por polling; hasta un intervalo
// de staleness es aceptable (el gate es quien manda).
func (s *Service) ListActive(ctx context.Context, callerID string, role auth.Role) ([]AccessRequest, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, ErrInvalidInput
	}

	var (
		items []AccessRequest
		err   error
	)
	switch role {
	case auth.RoleDoctor:
		items, err = s.repo.ListByDoctor(ctx, callerID)
	case auth.RolePatient:
		items, err = s.repo.ListByPatient(ctx, callerID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]AccessRequest, 0, len(items))
	for _, r := range items {
		if r.ActiveAt(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListAll devuelve el historial completo del lado del caller (auditoría).
func (s *Service) ListAll(ctx context.Context, callerID string, role auth.Role) ([]AccessRequest, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, ErrInvalidInput
	}

	switch role {
	case auth.RoleDoctor:
		return s.repo.ListByDoctor(ctx, callerID)
	case auth.RolePatient:
		return s.repo.ListByPatient(ctx, callerID)
	default:
		return nil, ErrForbidden
	}
}

func (s *Service) publish(userID string, r AccessRequest) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(userID, ChangeEvent{
		RequestID: r.ID,
		DoctorID:  r.DoctorID,
		PatientID: r.PatientID,
		Status:    r.Status,
		At:        s.now(),
	})
}
