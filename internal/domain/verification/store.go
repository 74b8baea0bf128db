package verification

import (
	"context"
	"errors"
	"time"
)

var ErrCodeNotFound = errors.New("verification: code not found")

// Code es un código de verificación emitido para un sujeto.
// La expiración es un timestamp explícito: el estado vigente/vencido se
// recalcula siempre contra el reloj, igual que con los grants. Nunca se
// confía en un flag cacheado.
type Code struct {
	SubjectID string
	Target    string // identificador que se está verificando (p.ej. doc. de identidad)
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c Code) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Store guarda a lo sumo un código vigente por sujeto.
//
// Consume es atómico y de un solo uso: devuelve el código y lo elimina en
// la misma operación. Cada código soporta exactamente un intento de
// confirmación, acertado o no.
type Store interface {
	Put(ctx context.Context, c Code) error
	Consume(ctx context.Context, subjectID string) (Code, error)
}
