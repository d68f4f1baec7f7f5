package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FormSubmission is a generic form post. Data holds the raw field map; each field is
// also stored as a FormResponse row.
type FormSubmission struct {
	ID        uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	FormName  string         `json:"form_name" db:"form_name" gorm:"type:text;not null;index"`
	FormType  string         `json:"form_type" db:"form_type" gorm:"type:text;not null;index"`
	Email     *string        `json:"email" db:"email" gorm:"type:text"`
	Name      *string        `json:"name" db:"name" gorm:"type:text"`
	Phone     *string        `json:"phone" db:"phone" gorm:"type:text"`
	Data      datatypes.JSON `json:"data" db:"data" gorm:"not null"`
	Status    string         `json:"status" db:"status" gorm:"type:text;index"`
	IPAddress string         `json:"ip_address" db:"ip_address" gorm:"type:text"`
	UserAgent string         `json:"user_agent" db:"user_agent" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at" db:"created_at" gorm:"not null;index"`
}

func (FormSubmission) TableName() string { return "form_submissions" }

func (s *FormSubmission) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &s.ID)
	return nil
}

// FormResponse is a single field of a FormSubmission.
type FormResponse struct {
	ID               uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	FormSubmissionID uuid.UUID `json:"form_submission_id" db:"form_submission_id" gorm:"type:uuid;not null;index"`
	FieldName        string    `json:"field_name" db:"field_name" gorm:"type:text;not null"`
	FieldValue       string    `json:"field_value" db:"field_value" gorm:"type:text"`
	FieldType        string    `json:"field_type" db:"field_type" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" db:"created_at" gorm:"not null"`
}

func (FormResponse) TableName() string { return "form_responses" }

func (r *FormResponse) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &r.ID)
	return nil
}
