package accessrequests

import "time"

// Status es el estado almacenado de una solicitud de acceso.
// StatusExpired nunca se persiste: es una vista derivada del reloj
// (ver EffectiveStatus).
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusRevoked  Status = "revoked"

	// Derivado, solo lectura.
	StatusExpired Status = "expired"
)

// Decision es la respuesta del paciente a una solicitud pendiente.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// AccessRequest es la solicitud de un doctor para leer los registros
// de un paciente, y a la vez el grant resultante si el paciente aprueba.
// Nunca se borra: queda como traza de auditoría.
type AccessRequest struct {
	ID string

	DoctorID  string // quien solicita
	PatientID string // quien consiente

	Notes string

	Status Status

	RequestedAt time.Time
	RespondedAt *time.Time // nil mientras status == pending
	ExpiresAt   *time.Time // se fija al aprobar y nunca se edita; sobrevive a la revocación
}

// EffectiveStatus calcula el estado real al momento `now`.
// Un approved con expires_at vencido se reporta como expired sin
// necesidad de ningún write ni job de fondo.
func (r AccessRequest) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusApproved && r.ExpiresAt != nil && !now.Before(*r.ExpiresAt) {
		return StatusExpired
	}
	return r.Status
}

// ActiveAt indica si la solicitud bloquea nuevas solicitudes del mismo
// par (doctor, paciente): pendiente o aprobada y no vencida.
func (r AccessRequest) ActiveAt(now time.Time) bool {
	switch r.EffectiveStatus(now) {
	case StatusPending, StatusApproved:
		return true
	default:
		return false
	}
}

// CanTransition valida las transiciones legales sobre estado almacenado:
// pending -> approved|rejected, approved -> revoked. Todo lo demás es ilegal;
// la expiración no es una transición (es derivada).
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusRevoked
	default:
		return false
	}
}
