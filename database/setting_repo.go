package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepo struct {
	table[models.Setting]
}

func NewSettingRepo(db *gorm.DB) *SettingRepo {
	return &SettingRepo{table[models.Setting]{db: db, key: "key"}}
}

func (r *SettingRepo) List(ctx context.Context) ([]models.Setting, error) {
	rows, _, err := r.list(ctx, nil, "key ASC", Page{})
	return rows, err
}

// Upsert writes the setting keyed on Key, replacing value and description.
func (r *SettingRepo) Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error) {
	columns := []string{"value", "description", "updated_at"}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	return r.FindByKey(ctx, setting.Key)
}
