package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
	"github.com/jhoicas/greengrocer-ims/pkg/jwt"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

// ResetTokenTTL vigencia del enlace de reseteo.
const ResetTokenTTL = time.Hour

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta, inicio y cierre de sesión,
// reseteo de contraseña y perfil.
type AuthUseCase struct {
	accounts     repository.AccountRepository
	sessions     SessionStore
	mail         MailQueue
	jwtCfg       JWTConfig
	resetURLBase string
	log          *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(accounts repository.AccountRepository, sessions SessionStore, mail MailQueue, jwtCfg JWTConfig, resetURLBase string, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		accounts:     accounts,
		sessions:     sessions,
		mail:         mail,
		jwtCfg:       jwtCfg,
		resetURLBase: resetURLBase,
		log:          log,
	}
}

// SignUp crea la cuenta con la contraseña hasheada con bcrypt y deja la sesión iniciada.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) SignUp(ctx context.Context, in dto.SignUpRequest) (*dto.AuthResponse, error) {
	existing, err := uc.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = in.Email
	}
	account := &entity.Account{
		Email:        in.Email,
		DisplayName:  name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		// Dos altas simultáneas: el índice único decide.
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	uc.log.Info().Str("account_id", account.ID).Msg("cuenta creada")
	return uc.issue(account)
}

// SignIn verifica email/password y genera el JWT. No distingue email desconocido
// de contraseña incorrecta.
func (uc *AuthUseCase) SignIn(ctx context.Context, in dto.SignInRequest) (*dto.AuthResponse, error) {
	account, err := uc.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return uc.issue(account)
}

// Authenticate valida el token y rechaza los revocados. Lo usa el middleware HTTP.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	revoked, err := uc.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("token revocado: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}

// SignOut revoca el token hasta su expiración.
func (uc *AuthUseCase) SignOut(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return domain.ErrUnauthorized
	}
	return uc.sessions.Revoke(ctx, claims.ID, claims.Expiry())
}

// RequestPasswordReset genera un token de un solo uso y encola el correo.
// Un email desconocido se acepta en silencio para no revelar qué cuentas existen.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		uc.log.Debug().Msg("reseteo solicitado para email desconocido")
		return nil
	}
	token := uuid.NewString()
	if err := uc.sessions.SaveResetToken(ctx, token, account.ID, ResetTokenTTL); err != nil {
		return err
	}
	if err := uc.mail.EnqueuePasswordReset(ctx, account.Email, account.DisplayName, uc.resetLink(token)); err != nil {
		return fmt.Errorf("encolar correo de reseteo: %w", err)
	}
	return nil
}

func (uc *AuthUseCase) resetLink(token string) string {
	sep := "?"
	if strings.Contains(uc.resetURLBase, "?") {
		sep = "&"
	}
	return uc.resetURLBase + sep + "token=" + url.QueryEscape(token)
}

// ResetPassword consume el token y fija la nueva contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.PasswordResetConfirmRequest) error {
	accountID, err := uc.sessions.ConsumeResetToken(ctx, in.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("token inválido o vencido: %w", domain.ErrInvalidInput)
		}
		return err
	}
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now()
	return uc.accounts.Update(ctx, account)
}

// Me devuelve la cuenta de la sesión.
func (uc *AuthUseCase) Me(ctx context.Context, uid string) (*dto.AccountResponse, error) {
	account, err := uc.accounts.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}
	return toAccountResponse(account), nil
}

// UpdateProfile cambia el nombre visible.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, uid string, in dto.UpdateProfileRequest) (*dto.AccountResponse, error) {
	account, err := uc.accounts.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUserNotFound
	}
	account.DisplayName = strings.TrimSpace(in.DisplayName)
	account.UpdatedAt = time.Now()
	if err := uc.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

func (uc *AuthUseCase) issue(account *entity.Account) (*dto.AuthResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, account.ID, account.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		Account:   *toAccountResponse(account),
	}, nil
}

func toAccountResponse(a *entity.Account) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
