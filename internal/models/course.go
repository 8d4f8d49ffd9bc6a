package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:150;not null" json:"name"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Image       *string    `gorm:"size:255" json:"image"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;index" json:"owner"`
	CreatedAt   time.Time  `gorm:"index" json:"-"`
	UpdatedAt   time.Time  `json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Lesson rows go away with their course; the owner reference is cleared.
type Lesson struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:150;not null" json:"name"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Image       *string    `gorm:"size:255" json:"image"`
	Link        *string    `gorm:"size:250" json:"link"`
	CourseID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"course"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;index" json:"owner"`
	CreatedAt   time.Time  `gorm:"index" json:"-"`
	UpdatedAt   time.Time  `json:"-"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Owner  *User   `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
