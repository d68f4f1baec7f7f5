package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Testimonial struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Name      string    `json:"name" db:"name" gorm:"type:text;not null"`
	Role      string    `json:"role" db:"role" gorm:"type:text"`
	Quote     string    `json:"quote" db:"quote" gorm:"type:text;not null"`
	Category  string    `json:"category" db:"category" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (Testimonial) TableName() string { return "testimonials" }

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &t.ID)
	return nil
}
