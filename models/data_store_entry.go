package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DataStoreEntry backs the schemaless key/value facility used for backup and restore.
type DataStoreEntry struct {
	ID        uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Key       string         `json:"key" db:"key" gorm:"type:varchar(255);not null;uniqueIndex"`
	Value     datatypes.JSON `json:"value" db:"value" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (DataStoreEntry) TableName() string { return "data_store" }

func (e *DataStoreEntry) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &e.ID)
	return nil
}
