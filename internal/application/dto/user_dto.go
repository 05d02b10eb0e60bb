package dto

import "time"

// SignUpRequest entrada para crear una cuenta.
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"displayName" validate:"omitempty,max=200"`
}

// SignInRequest entrada para iniciar sesión.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse salida de una cuenta (sin hash de contraseña).
type AccountResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthResponse token de sesión más la cuenta.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Account   AccountResponse `json:"account"`
}

// UpdateProfileRequest entrada para PATCH /api/auth/me.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=200"`
}

// PasswordResetRequest entrada para solicitar el enlace de reseteo.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest entrada para fijar la nueva contraseña.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// SeedResponse resultado de POST /api/seed.
type SeedResponse struct {
	Seeded bool `json:"seeded"`
}
