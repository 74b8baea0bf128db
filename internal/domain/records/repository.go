package records

import "context"

type Repository interface {
	Create(ctx context.Context, rec MedicalRecord) error
	GetByID(ctx context.Context, id string) (MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID string) ([]MedicalRecord, error)
	Void(ctx context.Context, id string) error
}
