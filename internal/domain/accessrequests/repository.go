package accessrequests

import (
	"context"
	"time"
)

// Repository persiste solicitudes de acceso.
//
// Las garantías de concurrencia viven acá, no en memoria compartida:
//   - CreatePending es un "insert si no existe solicitud activa para el par"
//     en un solo write condicional. Dos submits simultáneos => un ganador.
//   - TransitionFromPending / TransitionFromApproved son compare-and-set
//     sobre el status almacenado: si el row ya no está en el estado esperado,
//     devuelven ErrConflict y no pisan nada.
type Repository interface {
	// CreatePending inserta r (status pending) solo si no existe otra
	// solicitud activa (pending, o approved sin vencer a r.RequestedAt)
	// para el mismo (doctor, paciente). Devuelve ErrConflict si existe.
	CreatePending(ctx context.Context, r AccessRequest) error

	GetByID(ctx context.Context, id string) (AccessRequest, error)

	// TransitionFromPending aplica pending -> to (approved|rejected) de forma
	// atómica. expiresAt solo viene para approved. Devuelve el row actualizado,
	// o ErrConflict si el status ya no era pending.
	TransitionFromPending(ctx context.Context, id string, to Status, respondedAt time.Time, expiresAt *time.Time) (AccessRequest, error)

	// TransitionFromApproved aplica approved -> revoked de forma atómica.
	// Devuelve ErrConflict si el status almacenado ya no era approved.
	TransitionFromApproved(ctx context.Context, id string) (AccessRequest, error)

	// FindApproved devuelve la solicitud con status almacenado approved para
	// el par, si existe. Es un snapshot read; el gate decide con el reloj.
	FindApproved(ctx context.Context, doctorID, patientID string) (AccessRequest, error)

	ListByDoctor(ctx context.Context, doctorID string) ([]AccessRequest, error)
	ListByPatient(ctx context.Context, patientID string) ([]AccessRequest, error)
}
