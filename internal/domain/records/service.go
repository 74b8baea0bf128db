package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type AddInput struct {
	Title       string
	Description string
	FileName    string
	ContentType string
	FileURL     string
}

func (s *Service) Add(ctx context.Context, patientID, uploaderID string, uploaderRole UploaderRole, in AddInput) (MedicalRecord, error) {
	patientID = strings.TrimSpace(patientID)
	uploaderID = strings.TrimSpace(uploaderID)

	if patientID == "" || uploaderID == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	if uploaderRole != UploaderPatient && uploaderRole != UploaderDoctor {
		return MedicalRecord{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return MedicalRecord{}, ErrInvalidInput
	}

	rec := MedicalRecord{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		UploadedByID:   uploaderID,
		UploadedByRole: uploaderRole,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		FileName:       strings.TrimSpace(in.FileName),
		ContentType:    strings.TrimSpace(in.ContentType),
		FileURL:        strings.TrimSpace(in.FileURL),
		Status:         RecordStatusActive,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return MedicalRecord{}, err
	}
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]MedicalRecord, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Void anula el registro (no se borra; queda para auditoría).
func (s *Service) Void(ctx context.Context, id string) (MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	if err := s.repo.Void(ctx, id); err != nil {
		return MedicalRecord{}, err
	}
	return s.repo.GetByID(ctx, id)
}
