package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Opportunity represents a volunteer opportunity
type Opportunity struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Title       string    `json:"title" db:"title" gorm:"type:text;not null"`
	Time        string    `json:"time" db:"time" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null"`
	Category    string    `json:"category" db:"category" gorm:"type:text;index"`
	Published   bool      `json:"published" db:"published" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"not null;index"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (Opportunity) TableName() string { return "volunteer_opportunities" }

func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &o.ID)
	return nil
}
