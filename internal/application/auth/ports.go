package auth

import (
	"context"
	"time"
)

// SessionStore revocación de tokens y tokens de reseteo de contraseña.
// ConsumeResetToken devuelve un error que envuelve domain.ErrNotFound si el token
// no existe, venció o ya se usó.
type SessionStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	SaveResetToken(ctx context.Context, token, accountID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// MailQueue encola el correo con el enlace de reseteo.
type MailQueue interface {
	EnqueuePasswordReset(ctx context.Context, to, displayName, link string) error
}
