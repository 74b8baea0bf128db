package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrCodeInvalid cubre vencido, inexistente y código incorrecto por igual:
	// el caller no puede distinguir cuál fue.
	ErrCodeInvalid = errors.New("code invalid or expired")
)

var targetPattern = regexp.MustCompile(`^\d{12}$`)

type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue emite un código de 6 dígitos para el sujeto. Reemplaza cualquier
// código anterior del mismo sujeto.
func (s *Service) Issue(ctx context.Context, subjectID, target string) (Code, error) {
	subjectID = strings.TrimSpace(subjectID)
	target = strings.TrimSpace(target)

	if subjectID == "" {
		return Code{}, ErrInvalidInput
	}
	if !targetPattern.MatchString(target) {
		return Code{}, ErrInvalidInput
	}

	code, err := sixDigits()
	if err != nil {
		return Code{}, err
	}

	now := s.now()
	c := Code{
		SubjectID: subjectID,
		Target:    target,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Put(ctx, c); err != nil {
		return Code{}, err
	}
	return c, nil
}

// Confirm consume el código del sujeto y lo valida. Un código se consume en
// el primer intento, acierte o no; vencido, inexistente e incorrecto fallan
// igual (ErrCodeInvalid).
// Devuelve los últimos 4 dígitos del target verificado.
func (s *Service) Confirm(ctx context.Context, subjectID, code string) (string, error) {
	subjectID = strings.TrimSpace(subjectID)
	code = strings.TrimSpace(code)

	if subjectID == "" || code == "" {
		return "", ErrInvalidInput
	}

	c, err := s.store.Consume(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return "", ErrCodeInvalid
		}
		return "", err
	}

	if c.ExpiredAt(s.now()) || c.Code != code {
		return "", ErrCodeInvalid
	}

	return c.Target[len(c.Target)-4:], nil
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("verification: rand: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
