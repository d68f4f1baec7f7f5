package models

import "time"

// Setting is a site-wide key/value setting, unique by Key.
type Setting struct {
	Key         string    `json:"key" db:"key" gorm:"type:text;primaryKey"`
	Value       string    `json:"value" db:"value" gorm:"type:text;not null"`
	Description *string   `json:"description" db:"description" gorm:"type:text"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (Setting) TableName() string { return "website_settings" }
