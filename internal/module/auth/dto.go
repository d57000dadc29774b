package auth

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest represents the input for user login.
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the input for user registration.
type RegisterRequest struct {
	FirstName   string   `json:"firstName" binding:"max=100"`
	LastName    string   `json:"lastName" binding:"max=100"`
	UserName    string   `json:"userName" binding:"required,max=100"`
	Password    string   `json:"password" binding:"required,min=10,max=72,containsany=0123456789"`
	Email       string   `json:"email" binding:"required,email"`
	PhoneNumber string   `json:"phoneNumber" binding:"max=30"`
	Roles       []string `json:"roles"`
}

// TokenResponse is the access token returned after login.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RegisterResponse represents the public user data returned after registration.
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"userName"`
	Email    string    `json:"email"`
	Roles    []string  `json:"roles"`
}

func (r RegisterRequest) toInput() RegisterInput {
	return RegisterInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		UserName:    r.UserName,
		Password:    r.Password,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Roles:       r.Roles,
	}
}
