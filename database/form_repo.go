package database

import (
	"context"
	"time"

	"github.com/chiaview/site-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type FormFilter struct {
	FormName string
	FormType string
	Status   string
}

type FormRepo struct {
	table[models.FormSubmission]
}

func NewFormRepo(db *gorm.DB) *FormRepo {
	return &FormRepo{table[models.FormSubmission]{db: db, key: "id"}}
}

func (r *FormRepo) List(ctx context.Context, f FormFilter, page Page) ([]models.FormSubmission, int64, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		if f.FormName != "" {
			q = q.Where("form_name = ?", f.FormName)
		}
		if f.FormType != "" {
			q = q.Where("form_type = ?", f.FormType)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		return q
	}, "created_at DESC", page)
}

// AddWithResponses stores the submission, then its field rows. A failure on the field
// rows is logged and does not undo the submission.
func (r *FormRepo) AddWithResponses(ctx context.Context, sub *models.FormSubmission, responses []models.FormResponse) error {
	if err := r.Add(ctx, sub); err != nil {
		return err
	}
	if len(responses) == 0 {
		return nil
	}
	// created_at carries the field order; Postgres keeps microseconds.
	stamp := time.Now()
	for i := range responses {
		responses[i].FormSubmissionID = sub.ID
		responses[i].CreatedAt = stamp.Add(time.Duration(i) * time.Microsecond)
	}
	if err := r.db.WithContext(ctx).Create(&responses).Error; err != nil {
		log.Error().Err(err).Str("submissionId", sub.ID.String()).Msg("failed to store form field responses")
	}
	return nil
}

// Responses returns the field rows of one submission in insertion order.
func (r *FormRepo) Responses(ctx context.Context, submissionID any) ([]models.FormResponse, error) {
	responses := []models.FormResponse{}
	err := r.db.WithContext(ctx).
		Where("form_submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// DeleteWithResponses removes the field rows and then the submission in one transaction.
func (r *FormRepo) DeleteWithResponses(ctx context.Context, submissionID any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_submission_id = ?", submissionID).Delete(&models.FormResponse{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", submissionID).Delete(&models.FormSubmission{}).Error
	})
}
