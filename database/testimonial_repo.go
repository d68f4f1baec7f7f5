package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
)

type TestimonialRepo struct {
	table[models.Testimonial]
}

func NewTestimonialRepo(db *gorm.DB) *TestimonialRepo {
	return &TestimonialRepo{table[models.Testimonial]{db: db, key: "id"}}
}

// List returns testimonials newest first, optionally limited to one category.
func (r *TestimonialRepo) List(ctx context.Context, category string, page Page) ([]models.Testimonial, int64, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		if category != "" {
			q = q.Where("category = ?", category)
		}
		return q
	}, "created_at DESC", page)
}
