package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lifetag-access/internal/domain/verification"

	"github.com/redis/go-redis/v9"
)

// Open conecta a Redis y hace ping. Si Redis no está disponible devuelve
// error; el caller decide si degrada al store en memoria.
func Open(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type VerificationStore struct {
	client *redis.Client
}

func NewVerificationStore(client *redis.Client) *VerificationStore {
	return &VerificationStore{client: client}
}

func key(subjectID string) string {
	return "verification:code:" + subjectID
}

type storedCode struct {
	Target    string    `json:"target"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *VerificationStore) Put(ctx context.Context, c verification.Code) error {
	b, err := json.Marshal(storedCode{
		Target:    c.Target,
		Code:      c.Code,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
	})
	if err != nil {
		return err
	}

	// El TTL de Redis es limpieza; la fuente de verdad del vencimiento es
	// ExpiresAt, que el servicio recalcula contra su propio reloj.
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	return s.client.Set(ctx, key(c.SubjectID), b, ttl).Err()
}

// Consume usa GETDEL: lectura y eliminación en una sola operación atómica,
// así cada código soporta exactamente un intento.
func (s *VerificationStore) Consume(ctx context.Context, subjectID string) (verification.Code, error) {
	raw, err := s.client.GetDel(ctx, key(subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return verification.Code{}, verification.ErrCodeNotFound
		}
		return verification.Code{}, err
	}

	var sc storedCode
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return verification.Code{}, err
	}

	return verification.Code{
		SubjectID: subjectID,
		Target:    sc.Target,
		Code:      sc.Code,
		IssuedAt:  sc.IssuedAt,
		ExpiresAt: sc.ExpiresAt,
	}, nil
}
