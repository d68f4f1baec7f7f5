package database

import (
	"context"
	"errors"

	"github.com/chiaview/site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NewsletterRepo struct {
	table[models.NewsletterSubscription]
}

func NewNewsletterRepo(db *gorm.DB) *NewsletterRepo {
	return &NewsletterRepo{table[models.NewsletterSubscription]{db: db, key: "id"}}
}

// FindByEmail returns nil without error when nobody uses the email.
func (r *NewsletterRepo) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Subscribe upserts on email, resetting the row to a fresh unconfirmed subscription.
func (r *NewsletterRepo) Subscribe(ctx context.Context, sub *models.NewsletterSubscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "status", "subscription_date", "email_confirmed"}),
	}).Create(sub).Error
}
