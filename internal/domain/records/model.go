package records

import "time"

// UploaderRole indica quién subió el registro.
type UploaderRole string

const (
	UploaderPatient UploaderRole = "patient"
	UploaderDoctor  UploaderRole = "doctor"
)

// RecordStatus: los registros nunca se borran físicamente; se anulan.
type RecordStatus string

const (
	RecordStatusActive RecordStatus = "active"
	RecordStatusVoided RecordStatus = "voided"
)

// MedicalRecord es la metadata de un registro clínico del paciente.
// Los bytes del archivo viven en el storage externo; acá solo la referencia.
type MedicalRecord struct {
	ID        string
	PatientID string

	UploadedByID   string
	UploadedByRole UploaderRole

	Title       string
	Description string

	FileName    string
	ContentType string
	FileURL     string // referencia al storage externo

	Status RecordStatus

	CreatedAt time.Time
	VoidedAt  *time.Time
}
