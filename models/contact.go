package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is a message submitted through the public contact form.
// Status and Priority are free-form.
type Contact struct {
	ID        uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Name      string     `json:"name" db:"name" gorm:"type:text;not null"`
	Email     string     `json:"email" db:"email" gorm:"type:text;not null;index"`
	Phone     *string    `json:"phone" db:"phone" gorm:"type:text"`
	Subject   string     `json:"subject" db:"subject" gorm:"type:text"`
	Message   string     `json:"message" db:"message" gorm:"type:text;not null"`
	Status    string     `json:"status" db:"status" gorm:"type:text;index"`
	Priority  string     `json:"priority" db:"priority" gorm:"type:text"`
	Response  *string    `json:"response" db:"response" gorm:"type:text"`
	RepliedAt *time.Time `json:"replied_at" db:"replied_at"`
	IPAddress string     `json:"ip_address" db:"ip_address" gorm:"type:text"`
	UserAgent string     `json:"user_agent" db:"user_agent" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at" db:"created_at" gorm:"not null;index"`
}

func (Contact) TableName() string { return "contacts" }

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &c.ID)
	return nil
}
