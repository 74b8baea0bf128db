package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lifetag-access/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenInvalid = errors.New("token invalid")
)

// Verifier implementa auth.AuthVerifier con tokens HS256 emitidos por el
// servicio de identidad. Este servicio NO emite tokens, solo los valida.
type Verifier struct {
	secret []byte
}

func New(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

type tokenClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	// Tokens viejos traen el user id en `sub` en vez de `uid`.
	userID := strings.TrimSpace(tc.UserID)
	if userID == "" {
		userID = strings.TrimSpace(tc.Subject)
	}
	if userID == "" {
		return auth.Claims{}, errors.New("token claims missing user id")
	}

	return auth.Claims{
		UserID: userID,
		Role:   auth.Role(strings.TrimSpace(tc.Role)),
		Email:  strings.TrimSpace(tc.Email),
	}, nil
}
