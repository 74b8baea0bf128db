package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"lifetag-access/internal/domain/records"
)

type recordsRepo struct {
	mu   sync.RWMutex
	byID map[string]records.MedicalRecord
}

func NewRecordsRepo() records.Repository {
	return &recordsRepo{
		byID: make(map[string]records.MedicalRecord),
	}
}

func (r *recordsRepo) Create(ctx context.Context, rec records.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *recordsRepo) GetByID(ctx context.Context, id string) (records.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return records.MedicalRecord{}, records.ErrNotFound
	}
	return rec, nil
}

func (r *recordsRepo) ListByPatient(ctx context.Context, patientID string) ([]records.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.MedicalRecord, 0)
	for _, rec := range r.byID {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}

	// orden estable, más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *recordsRepo) Void(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return records.ErrNotFound
	}
	if rec.Status == records.RecordStatusVoided {
		return nil
	}

	now := time.Now()
	rec.Status = records.RecordStatusVoided
	rec.VoidedAt = &now

	r.byID[id] = rec
	return nil
}
