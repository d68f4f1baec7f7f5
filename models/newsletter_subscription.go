package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SubscriptionStatusSubscribed = "subscribed"

type NewsletterSubscription struct {
	ID               uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Email            string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	Name             *string   `json:"name" db:"name" gorm:"type:text"`
	Status           string    `json:"status" db:"status" gorm:"type:text;not null"`
	SubscriptionDate time.Time `json:"subscription_date" db:"subscription_date" gorm:"not null"`
	EmailConfirmed   bool      `json:"email_confirmed" db:"email_confirmed" gorm:"not null"`
}

func (NewsletterSubscription) TableName() string { return "newsletter_subscriptions" }

func (n *NewsletterSubscription) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &n.ID)
	return nil
}
