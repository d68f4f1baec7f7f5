package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills an empty identifier on insert. Postgres assigns it through the
// gen_random_uuid() column default and hands it back with RETURNING; other dialects
// (the sqlite test databases) get one generated here. Request payloads never carry one.
func assignID(tx *gorm.DB, id *uuid.UUID) {
	if *id != uuid.Nil || tx.Dialector.Name() == "postgres" {
		return
	}
	*id = uuid.New()
}

// All lists every table model, in migration order.
func All() []any {
	return []any{
		&BlogPost{},
		&Opportunity{},
		&Testimonial{},
		&HomepageSection{},
		&Setting{},
		&Contact{},
		&FormSubmission{},
		&FormResponse{},
		&Registration{},
		&NewsletterSubscription{},
		&DataStoreEntry{},
	}
}
