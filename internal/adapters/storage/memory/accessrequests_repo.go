package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"lifetag-access/internal/domain/accessrequests"
)

type accessRequestsRepo struct {
	mu   sync.Mutex
	byID map[string]accessrequests.AccessRequest
}

func NewAccessRequestsRepo() accessrequests.Repository {
	return &accessRequestsRepo{
		byID: make(map[string]accessrequests.AccessRequest),
	}
}

// CreatePending hace el check-de-par-activo y el insert bajo el mismo lock:
// es el equivalente en memoria del write condicional de postgres. Dos
// submits simultáneos serializan acá y solo uno inserta.
func (r *accessRequestsRepo) CreatePending(ctx context.Context, req accessrequests.AccessRequest) error {
	if req.ID == "" {
		return errors.New("request id required")
	}
	if req.Status != accessrequests.StatusPending {
		return errors.New("create requires status pending")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[req.ID]; exists {
		return errors.New("request already exists")
	}

	for _, existing := range r.byID {
		if existing.DoctorID != req.DoctorID || existing.PatientID != req.PatientID {
			continue
		}
		if existing.ActiveAt(req.RequestedAt) {
			return accessrequests.ErrConflict
		}
	}

	r.byID[req.ID] = req
	return nil
}

func (r *accessRequestsRepo) GetByID(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	return req, nil
}

func (r *accessRequestsRepo) TransitionFromPending(ctx context.Context, id string, to accessrequests.Status, respondedAt time.Time, expiresAt *time.Time) (accessrequests.AccessRequest, error) {
	if !accessrequests.CanTransition(accessrequests.StatusPending, to) {
		return accessrequests.AccessRequest{}, accessrequests.ErrConflict
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	if req.Status != accessrequests.StatusPending {
		return accessrequests.AccessRequest{}, accessrequests.ErrConflict
	}

	req.Status = to
	t := respondedAt
	req.RespondedAt = &t
	req.ExpiresAt = expiresAt

	r.byID[id] = req
	return req, nil
}

func (r *accessRequestsRepo) TransitionFromApproved(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	if req.Status != accessrequests.StatusApproved {
		return accessrequests.AccessRequest{}, accessrequests.ErrConflict
	}

	req.Status = accessrequests.StatusRevoked

	r.byID[id] = req
	return req, nil
}

// Si por data sucia existieran múltiples approved para el par,
// gana el de expiración más lejana.
func (r *accessRequestsRepo) FindApproved(ctx context.Context, doctorID, patientID string) (accessrequests.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var winner accessrequests.AccessRequest
	has := false

	for _, req := range r.byID {
		if req.DoctorID != doctorID || req.PatientID != patientID {
			continue
		}
		if req.Status != accessrequests.StatusApproved {
			continue
		}

		if !has {
			winner = req
			has = true
			continue
		}
		if req.ExpiresAt != nil && winner.ExpiresAt != nil && req.ExpiresAt.After(*winner.ExpiresAt) {
			winner = req
		}
	}

	if !has {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	return winner, nil
}

func (r *accessRequestsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]accessrequests.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]accessrequests.AccessRequest, 0)
	for _, req := range r.byID {
		if req.DoctorID == doctorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *accessRequestsRepo) ListByPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]accessrequests.AccessRequest, 0)
	for _, req := range r.byID {
		if req.PatientID == patientID {
			out = append(out, req)
		}
	}
	return out, nil
}
