package verification

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testStore struct {
	bySubject map[string]Code
}

func newTestStore() *testStore {
	return &testStore{bySubject: map[string]Code{}}
}

func (s *testStore) Put(ctx context.Context, c Code) error {
	s.bySubject[c.SubjectID] = c
	return nil
}

func (s *testStore) Consume(ctx context.Context, subjectID string) (Code, error) {
	c, ok := s.bySubject[subjectID]
	if !ok {
		return Code{}, ErrCodeNotFound
	}
	delete(s.bySubject, subjectID)
	return c, nil
}

func TestService_Issue_SixDigitCode(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, 5*time.Minute)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c, err := svc.Issue(context.Background(), "pat-1", "123456789012")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if len(c.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", c.Code)
	}
	if !c.ExpiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("expected ExpiresAt = issued + ttl, got %v", c.ExpiresAt)
	}
}

func TestService_Issue_RejectsBadTarget(t *testing.T) {
	svc := NewService(newTestStore(), 5*time.Minute)

	for _, target := range []string{"", "12345", "1234567890123", "12345678901a"} {
		if _, err := svc.Issue(context.Background(), "pat-1", target); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("target %q: expected ErrInvalidInput, got %v", target, err)
		}
	}
}

func TestService_Issue_ReplacesPreviousCode(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, 5*time.Minute)

	c1, _ := svc.Issue(context.Background(), "pat-1", "123456789012")
	c2, _ := svc.Issue(context.Background(), "pat-1", "123456789012")

	// solo el último código vale
	if _, err := svc.Confirm(context.Background(), "pat-1", c1.Code); c1.Code != c2.Code && !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected old code invalid, got %v", err)
	}
}

func TestService_Confirm_HappyPath(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, 5*time.Minute)

	c, err := svc.Issue(context.Background(), "pat-1", "123456789012")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	last4, err := svc.Confirm(context.Background(), "pat-1", c.Code)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if last4 != "9012" {
		t.Fatalf("expected last4 = 9012, got %q", last4)
	}

	// el código ya se consumió
	if _, err := svc.Confirm(context.Background(), "pat-1", c.Code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid on reuse, got %v", err)
	}
}

func TestService_Confirm_WrongCodeBurnsAttempt(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, 5*time.Minute)

	c, _ := svc.Issue(context.Background(), "pat-1", "123456789012")

	// un intento fallido consume el código igual
	if _, err := svc.Confirm(context.Background(), "pat-1", "000000"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid for wrong code, got %v", err)
	}
	if _, err := svc.Confirm(context.Background(), "pat-1", c.Code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected the right code to fail after a burned attempt, got %v", err)
	}
}

func TestService_Confirm_ExpiredCode(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, 5*time.Minute)

	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	c, _ := svc.Issue(context.Background(), "pat-1", "123456789012")

	svc.now = func() time.Time { return t0.Add(6 * time.Minute) }

	if _, err := svc.Confirm(context.Background(), "pat-1", c.Code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid for expired code, got %v", err)
	}
}

func TestService_Confirm_NoCodeIssued(t *testing.T) {
	svc := NewService(newTestStore(), 5*time.Minute)

	if _, err := svc.Confirm(context.Background(), "pat-1", "123456"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid without an issued code, got %v", err)
	}
}
