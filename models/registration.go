package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration is a member account. PasswordHash is never serialized.
type Registration struct {
	ID                uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Name              string     `json:"name" db:"name" gorm:"type:text;not null"`
	Email             string     `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	Phone             *string    `json:"phone" db:"phone" gorm:"type:text"`
	PasswordHash      string     `json:"-" db:"password_hash" gorm:"type:text;not null"`
	RegistrationType  string     `json:"registration_type" db:"registration_type" gorm:"type:text"`
	Status            string     `json:"status" db:"status" gorm:"type:text;index"`
	EmailVerified     bool       `json:"email_verified" db:"email_verified" gorm:"not null"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at" db:"email_verified_at"`
	DateOfBirth       *string    `json:"date_of_birth" db:"date_of_birth" gorm:"type:text"`
	Address           *string    `json:"address" db:"address" gorm:"type:text"`
	City              *string    `json:"city" db:"city" gorm:"type:text"`
	State             *string    `json:"state" db:"state" gorm:"type:text"`
	Country           *string    `json:"country" db:"country" gorm:"type:text"`
	PostalCode        *string    `json:"postal_code" db:"postal_code" gorm:"type:text"`
	Bio               *string    `json:"bio" db:"bio" gorm:"type:text"`
	ProfilePictureURL *string    `json:"profile_picture_url" db:"profile_picture_url" gorm:"type:text"`
	IPAddress         string     `json:"ip_address" db:"ip_address" gorm:"type:text"`
	UserAgent         string     `json:"user_agent" db:"user_agent" gorm:"type:text"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at" gorm:"not null;index"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (Registration) TableName() string { return "registrations" }

func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &r.ID)
	return nil
}
