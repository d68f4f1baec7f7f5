package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost represents a post shown on the public blog
type BlogPost struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null;default:(gen_random_uuid())"`
	Title     string    `json:"title" db:"title" gorm:"type:text;not null"`
	Category  string    `json:"category" db:"category" gorm:"type:text;index"`
	Excerpt   string    `json:"excerpt" db:"excerpt" gorm:"type:text;not null"`
	Content   string    `json:"content" db:"content" gorm:"type:text;not null"`
	ImageURL  *string   `json:"image_url" db:"image_url" gorm:"type:text"`
	Featured  bool      `json:"featured" db:"featured" gorm:"not null"`
	Published bool      `json:"published" db:"published" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (BlogPost) TableName() string { return "blog_posts" }

func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	assignID(tx, &p.ID)
	return nil
}
