package dto

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,max=35"`
	City     *string `json:"city" validate:"omitempty,max=35"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPairResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *UserPublic `json:"user"`
}

// UserUpdateRequest serves PUT and PATCH; absent fields are left unchanged.
type UserUpdateRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,max=35"`
	City     *string `json:"city" validate:"omitempty,max=35"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=255"`
}

// UserPublic is what other users may see.
type UserPublic struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Phone  *string   `json:"phone"`
	City   *string   `json:"city"`
	Avatar *string   `json:"avatar"`
}

func NewUserPublic(u *models.User) *UserPublic {
	return &UserPublic{ID: u.ID, Email: u.Email, Phone: u.Phone, City: u.City, Avatar: u.Avatar}
}

// UserDetail is the full record returned to the user themselves.
type UserDetail struct {
	models.User
	Payments []models.Payment `json:"payments"`
}
