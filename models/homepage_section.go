package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HomepageSection is one editable block of the homepage, unique by Section.
type HomepageSection struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Section    string    `json:"section" db:"section" gorm:"type:text;not null;uniqueIndex"`
	Content    string    `json:"content" db:"content" gorm:"type:text;not null"`
	OrderIndex int       `json:"order_index" db:"order_index" gorm:"not null"`
	Visible    bool      `json:"visible" db:"visible" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (HomepageSection) TableName() string { return "homepage_content" }

func (s *HomepageSection) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &s.ID)
	return nil
}
