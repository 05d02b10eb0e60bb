package auth

import (
	"context"
	"net/url"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/documents"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/redisstore"
	"github.com/jhoicas/greengrocer-ims/pkg/jwt"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

type queuedMail struct{ to, name, link string }

type fakeQueue struct{ sent []queuedMail }

func (q *fakeQueue) EnqueuePasswordReset(_ context.Context, to, name, link string) error {
	q.sent = append(q.sent, queuedMail{to, name, link})
	return nil
}

func newAuth(t *testing.T) (*AuthUseCase, *fakeQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memstore.New(memstore.WithUnique(docstore.Accounts, "email"))
	queue := &fakeQueue{}
	uc := NewAuthUseCase(
		documents.NewAccountRepository(store),
		redisstore.NewSessionStore(client),
		queue,
		JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "test"},
		"http://localhost:3000/reset-password",
		logger.Nop(),
	)
	return uc, queue
}

// ── Alta e inicio de sesión ─────────────────────────────────────────────────

func TestSignUp_DejaSesionIniciada(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	res, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "Ana@Example.com", Password: "secreto1", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana@example.com", res.Account.Email)

	claims, err := uc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, claims.UserID)
}

func TestSignUp_EmailDuplicado(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)

	_, err = uc.SignUp(ctx, dto.SignUpRequest{Email: "ANA@example.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestSignIn_CredencialesInvalidasNoDistinguen(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "nadie@example.com", Password: "secreto1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", res.Account.DisplayName, "sin nombre se usa el email")
}

func TestSignOut_RevocaElToken(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	res, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)
	claims, err := uc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, uc.SignOut(ctx, claims))
	_, err = uc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other, err := uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)
	_, err = uc.Authenticate(ctx, other.Token)
	assert.NoError(t, err, "solo se revoca el token cerrado")
}

func TestAuthenticate_TokenAjeno(t *testing.T) {
	uc, _ := newAuth(t)
	token, err := jwt.Generate("otro-secreto", "u1", "a@b.c", "x", 5)
	require.NoError(t, err)
	_, err = uc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ── Reseteo de contraseña ───────────────────────────────────────────────────

func TestPasswordReset_FlujoCompleto(t *testing.T) {
	uc, queue := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto1", DisplayName: "Ana"})
	require.NoError(t, err)

	require.NoError(t, uc.RequestPasswordReset(ctx, "ana@example.com"))
	require.Len(t, queue.sent, 1)
	assert.Equal(t, "Ana", queue.sent[0].name)

	link, err := url.Parse(queue.sent[0].link)
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	require.NoError(t, uc.ResetPassword(ctx, dto.PasswordResetConfirmRequest{Token: token, NewPassword: "nueva-clave"}))
	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "nueva-clave"})
	assert.NoError(t, err)
	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "secreto1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = uc.ResetPassword(ctx, dto.PasswordResetConfirmRequest{Token: token, NewPassword: "otra-mas"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el token es de un solo uso")
}

func TestPasswordReset_EmailDesconocidoSeAceptaEnSilencio(t *testing.T) {
	uc, queue := newAuth(t)
	require.NoError(t, uc.RequestPasswordReset(context.Background(), "nadie@example.com"))
	assert.Empty(t, queue.sent)
}

// ── Perfil ──────────────────────────────────────────────────────────────────

func TestUpdateProfile(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	res, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)

	updated, err := uc.UpdateProfile(ctx, res.Account.ID, dto.UpdateProfileRequest{DisplayName: "  Ana María "})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.DisplayName)

	me, err := uc.Me(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", me.DisplayName)

	_, err = uc.Me(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
