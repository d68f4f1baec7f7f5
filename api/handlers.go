package api

import (
	"github.com/alexedwards/argon2id"

	"github.com/chiaview/site-backend/config"
	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/services"
)

// Dependencies are the clients the handlers need, built once in main.
type Dependencies struct {
	Database database.Database
	Auth     *services.AdminAuth
	// Stores holds one key/value store per provider name; /api/data uses the one
	// named by DB_PROVIDER.
	Stores     map[string]services.KVStore
	Payments   *services.Payments
	Notifier   ContactNotifier
	Uploader   Uploader
	HashParams *argon2id.Params
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, provider string, secureCookie bool) *routeHandlers {
	db := deps.Database

	dataHandlers := make(map[string]dataHandler, len(deps.Stores))
	for name, store := range deps.Stores {
		dataHandlers[name] = newDataHandler(store)
	}
	defaultData, ok := dataHandlers[provider]
	if !ok {
		defaultData = dataHandlers[config.ProviderSupabase]
	}

	return &routeHandlers{
		blogPostHandler:     newBlogPostHandler(db.BlogPostRepo()),
		opportunityHandler:  newOpportunityHandler(db.OpportunityRepo()),
		testimonialHandler:  newTestimonialHandler(db.TestimonialRepo()),
		homepageHandler:     newHomepageHandler(db.HomepageRepo()),
		settingHandler:      newSettingHandler(db.SettingRepo()),
		contactHandler:      newContactHandler(db.ContactRepo(), deps.Notifier),
		formHandler:         newFormHandler(db.FormRepo()),
		registrationHandler: newRegistrationHandler(db.RegistrationRepo(), deps.HashParams),
		newsletterHandler:   newNewsletterHandler(db.NewsletterRepo()),
		dataHandlers:        dataHandlers,
		defaultDataHandler:  defaultData,
		adminHandler:        newAdminHandler(deps.Auth, secureCookie),
		paymentHandler:      newPaymentHandler(deps.Payments),
		uploadHandler:       newUploadHandler(deps.Uploader),
	}
}
