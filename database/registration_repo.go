package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
)

type RegistrationFilter struct {
	Status string
	Type   string
}

type RegistrationRepo struct {
	table[models.Registration]
}

func NewRegistrationRepo(db *gorm.DB) *RegistrationRepo {
	return &RegistrationRepo{table[models.Registration]{db: db, key: "id"}}
}

func (r *RegistrationRepo) List(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	rows, _, err := r.list(ctx, func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Type != "" {
			q = q.Where("registration_type = ?", f.Type)
		}
		return q
	}, "created_at DESC", Page{})
	return rows, err
}

// EmailExists reports whether a registration already uses the (lower-cased) email.
func (r *RegistrationRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
