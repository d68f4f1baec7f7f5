package database

import (
	"context"
	"errors"
	"time"

	"github.com/chiaview/site-backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DataStoreRepo is the Postgres side of the generic key/value store.
type DataStoreRepo struct {
	table[models.DataStoreEntry]
}

func NewDataStoreRepo(db *gorm.DB) *DataStoreRepo {
	return &DataStoreRepo{table[models.DataStoreEntry]{db: db, key: "key"}}
}

// Get returns the raw JSON stored under key, or nil when the key is absent.
func (r *DataStoreRepo) Get(ctx context.Context, key string) (datatypes.JSON, error) {
	entry, err := r.FindByKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (r *DataStoreRepo) Set(ctx context.Context, key string, value datatypes.JSON) error {
	entry := models.DataStoreEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// All returns every entry keyed by its key.
func (r *DataStoreRepo) All(ctx context.Context) (map[string]datatypes.JSON, error) {
	var entries []models.DataStoreEntry
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make(map[string]datatypes.JSON, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}
