package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
)

const (
	revokedPrefix = "auth:revoked:"
	resetPrefix   = "auth:reset:"
)

// ErrTokenNotFound el token de reseteo no existe, expiró o ya se usó.
var ErrTokenNotFound = fmt.Errorf("token de reseteo: %w", domain.ErrNotFound)

// SessionStore lista de jti revocados (cierre de sesión) y tokens de reseteo.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore construye el store sobre un cliente ya conectado.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke marca el jti como revocado hasta que el token expire por sí solo.
func (s *SessionStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revocar token: %w", err)
	}
	return nil
}

// IsRevoked indica si el jti fue revocado.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("consultar revocación: %w", err)
	}
	return n > 0, nil
}

// SaveResetToken guarda token -> accountID con expiración.
func (s *SessionStore) SaveResetToken(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetPrefix+token, accountID, ttl).Err(); err != nil {
		return fmt.Errorf("guardar token de reseteo: %w", err)
	}
	return nil
}

// ConsumeResetToken devuelve el accountID y borra el token en la misma operación (un solo uso).
func (s *SessionStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	accountID, err := s.client.GetDel(ctx, resetPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consumir token de reseteo: %w", err)
	}
	return accountID, nil
}
