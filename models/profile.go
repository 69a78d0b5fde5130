package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public profile of a user. Its ID equals the owning User's ID.
type Profile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName       string    `gorm:"type:text" json:"first_name"`
	LastName        string    `gorm:"type:text" json:"last_name"`
	Email           string    `gorm:"type:text" json:"email"`
	Phone           string    `gorm:"type:text" json:"phone"`
	BusinessAddress string    `gorm:"type:text" json:"business_address"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpdateProfileRequest replaces the editable profile fields.
type UpdateProfileRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	BusinessAddress string `json:"business_address" binding:"required"`
}
