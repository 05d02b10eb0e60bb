package entity

import "time"

// Account cuenta de acceso (email/contraseña). PasswordHash nunca se expone en la API.
type Account struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a *Account) SetID(id string) { a.ID = id }
