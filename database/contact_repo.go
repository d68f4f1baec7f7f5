package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
)

type ContactFilter struct {
	Status string
	Email  string
}

type ContactRepo struct {
	table[models.Contact]
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{table[models.Contact]{db: db, key: "id"}}
}

// List returns every matching contact, newest first.
func (r *ContactRepo) List(ctx context.Context, f ContactFilter) ([]models.Contact, error) {
	rows, _, err := r.list(ctx, func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Email != "" {
			q = q.Where("email = ?", f.Email)
		}
		return q
	}, "created_at DESC", Page{})
	return rows, err
}
