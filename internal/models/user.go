package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// User logs in by email; there is no separate username.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Phone     *string    `gorm:"size:35" json:"phone"`
	City      *string    `gorm:"size:35" json:"city"`
	Avatar    *string    `gorm:"size:255" json:"avatar"`
	Role      Role       `gorm:"size:20;not null;default:'user'" json:"role"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin *time.Time `gorm:"index" json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
