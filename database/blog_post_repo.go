package database

import (
	"context"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
)

// BlogPostFilter narrows a blog post listing. Nil booleans are not applied.
type BlogPostFilter struct {
	Query     string
	Category  string
	Published *bool
	Featured  *bool
}

type BlogPostRepo struct {
	table[models.BlogPost]
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{table[models.BlogPost]{db: db, key: "id"}}
}

// List returns posts newest first along with the total number of matches.
func (r *BlogPostRepo) List(ctx context.Context, f BlogPostFilter, page Page) ([]models.BlogPost, int64, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		q = search(q, f.Query, "title", "excerpt")
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.Published != nil {
			q = q.Where("published = ?", *f.Published)
		}
		if f.Featured != nil {
			q = q.Where("featured = ?", *f.Featured)
		}
		return q
	}, "created_at DESC", page)
}
