package accessrequests

import (
	"context"
	"errors"
)

// IsGranted responde: ¿puede este doctor leer los registros de este
// paciente ahora mismo?
//
// El estado efectivo se recalcula siempre contra el reloj; nunca se
// confía en el status almacenado por sí solo. Por eso la expiración corta
// el acceso sin depender de ningún sweep: basta el read + comparación.
//
// Es una lectura pura: no muta el store para responder.
func (s *Service) IsGranted(ctx context.Context, doctorID, patientID string) (bool, error) {
	r, err := s.repo.FindApproved(ctx, doctorID, patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return r.EffectiveStatus(s.now()) == StatusApproved, nil
}
