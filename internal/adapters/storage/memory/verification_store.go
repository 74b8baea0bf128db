package memory

import (
	"context"
	"sync"

	"lifetag-access/internal/domain/verification"
)

type verificationStore struct {
	mu        sync.Mutex
	bySubject map[string]verification.Code
}

func NewVerificationStore() verification.Store {
	return &verificationStore{
		bySubject: make(map[string]verification.Code),
	}
}

func (s *verificationStore) Put(ctx context.Context, c verification.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// reemplaza cualquier código anterior del sujeto
	s.bySubject[c.SubjectID] = c
	return nil
}

// Consume es get+delete bajo el mismo lock: un código, un intento.
func (s *verificationStore) Consume(ctx context.Context, subjectID string) (verification.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.bySubject[subjectID]
	if !ok {
		return verification.Code{}, verification.ErrCodeNotFound
	}
	delete(s.bySubject, subjectID)
	return c, nil
}
