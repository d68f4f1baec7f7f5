package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HomepageRepo struct {
	table[models.HomepageSection]
}

func NewHomepageRepo(db *gorm.DB) *HomepageRepo {
	return &HomepageRepo{table[models.HomepageSection]{db: db, key: "id"}}
}

// List returns every section in display order.
func (r *HomepageRepo) List(ctx context.Context) ([]models.HomepageSection, error) {
	rows, _, err := r.list(ctx, nil, "order_index ASC", Page{})
	return rows, err
}

// Upsert inserts the section or overwrites the existing row with the same Section name,
// then returns the stored row.
func (r *HomepageRepo) Upsert(ctx context.Context, section *models.HomepageSection) (*models.HomepageSection, error) {
	var stored models.HomepageSection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "section"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "order_index", "visible", "updated_at"}),
		}).Create(section).Error
		if err != nil {
			return err
		}
		return tx.Where("section = ?", section.Section).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
