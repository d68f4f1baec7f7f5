package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
)

type OpportunityFilter struct {
	Query     string
	Category  string
	Published *bool
}

type OpportunityRepo struct {
	table[models.Opportunity]
}

func NewOpportunityRepo(db *gorm.DB) *OpportunityRepo {
	return &OpportunityRepo{table[models.Opportunity]{db: db, key: "id"}}
}

func (r *OpportunityRepo) List(ctx context.Context, f OpportunityFilter, page Page) ([]models.Opportunity, int64, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		q = search(q, f.Query, "title", "description")
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.Published != nil {
			q = q.Where("published = ?", *f.Published)
		}
		return q
	}, "created_at DESC", page)
}
