package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentTransfer PaymentType = "transfer"
	PaymentStripe   PaymentType = "stripe"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentCash, PaymentTransfer, PaymentStripe:
		return true
	}
	return false
}

// Payment references survive deletion of the user, course or lesson; the
// reference is set to NULL by the schema.
type Payment struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID  `gorm:"type:uuid;index" json:"user"`
	CourseID    *uuid.UUID  `gorm:"type:uuid;index" json:"course"`
	LessonID    *uuid.UUID  `gorm:"type:uuid;index" json:"lesson"`
	PaymentDate time.Time   `gorm:"autoCreateTime;index" json:"payment_date"`
	Amount      float64     `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentType PaymentType `gorm:"size:10;not null" json:"payment_type"`
	SessionID   *string     `gorm:"size:255" json:"session_id"`
	Link        *string     `gorm:"size:400" json:"link"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"-"`
	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:SET NULL" json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Payment) HasSession() bool {
	return p.SessionID != nil && *p.SessionID != "" && p.Link != nil && *p.Link != ""
}
