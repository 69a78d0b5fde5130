package models

import (
	"time"

	"github.com/google/uuid"
)

// User holds login credentials. Profile data lives in Profile, keyed by the same id.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string    `gorm:"unique;not null"`
	Password         string    `gorm:"not null"`
	EmailVerified    bool      `gorm:"default:false"`
	VerificationCode string    `gorm:"size:6"`
	Role             string    `gorm:"type:varchar(50);default:'user'"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// RefreshToken model stores issued refresh tokens for rotation and revocation
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TokenID   string    `gorm:"unique;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Revoked   bool      `gorm:"default:false"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// SignupRequest carries the registration form. Every field is required once trimmed.
type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	BusinessAddress string `json:"business_address"`
	Email           string `json:"email"`
	Password        string `json:"password"`
}

type SignupResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// SessionResponse describes the caller's current session.
type SessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// UserRegisteredEvent is published to SNS after a successful signup.
type UserRegisteredEvent struct {
	EventType        string    `json:"event_type"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	VerificationCode string    `json:"verification_code"`
	Timestamp        time.Time `json:"timestamp"`
}
