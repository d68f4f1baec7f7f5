package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chiaview/site-backend/config"
	"github.com/chiaview/site-backend/services"
)

// setupAPIRoutes mounts the JSON API under /api.
func setupAPIRoutes(r chi.Router, handlers *routeHandlers, auth *services.AdminAuth) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/blogposts", handlers.blogPostHandler.getAllBlogPosts())
		r.Post("/blogposts", handlers.blogPostHandler.createBlogPost())
		r.Get("/blogposts/{id}", handlers.blogPostHandler.getBlogPost())
		r.Patch("/blogposts/{id}", handlers.blogPostHandler.updateBlogPost())
		r.Delete("/blogposts/{id}", handlers.blogPostHandler.deleteBlogPost())

		r.Get("/opportunities", handlers.opportunityHandler.getAllOpportunities())
		r.Post("/opportunities", handlers.opportunityHandler.createOpportunity())
		r.Get("/opportunities/{id}", handlers.opportunityHandler.getOpportunity())
		r.Patch("/opportunities/{id}", handlers.opportunityHandler.updateOpportunity())
		r.Delete("/opportunities/{id}", handlers.opportunityHandler.deleteOpportunity())

		r.Get("/testimonials", handlers.testimonialHandler.getAllTestimonials())
		r.Post("/testimonials", handlers.testimonialHandler.createTestimonial())
		r.Get("/testimonials/{id}", handlers.testimonialHandler.getTestimonial())
		r.Patch("/testimonials/{id}", handlers.testimonialHandler.updateTestimonial())
		r.Delete("/testimonials/{id}", handlers.testimonialHandler.deleteTestimonial())

		r.Get("/homepage", handlers.homepageHandler.getAllSections())
		r.Post("/homepage", handlers.homepageHandler.saveSection())
		r.Get("/homepage/{id}", handlers.homepageHandler.getSection())
		r.Patch("/homepage/{id}", handlers.homepageHandler.updateSection())
		r.Delete("/homepage/{id}", handlers.homepageHandler.deleteSection())

		r.Get("/settings", handlers.settingHandler.getAllSettings())
		r.Post("/settings", handlers.settingHandler.saveSetting())
		r.Get("/settings/{key}", handlers.settingHandler.getSetting())
		r.Patch("/settings/{key}", handlers.settingHandler.updateSetting())
		r.Delete("/settings/{key}", handlers.settingHandler.deleteSetting())

		r.Post("/contact/send", handlers.contactHandler.sendContact())
		r.Get("/contact", handlers.contactHandler.getAllContacts())
		r.With(requireAdmin(auth)).Get("/contact/export", handlers.contactHandler.exportContacts())
		r.Get("/contact/{id}", handlers.contactHandler.getContact())
		r.Patch("/contact/{id}", handlers.contactHandler.updateContact())
		r.Delete("/contact/{id}", handlers.contactHandler.deleteContact())

		r.Post("/forms", handlers.formHandler.submitForm())
		r.Get("/forms", handlers.formHandler.getAllSubmissions())
		r.Get("/forms/{id}", handlers.formHandler.getSubmission())
		r.Patch("/forms/{id}", handlers.formHandler.updateSubmission())
		r.Delete("/forms/{id}", handlers.formHandler.deleteSubmission())

		r.Post("/registrations", handlers.registrationHandler.createRegistration())
		r.Get("/registrations", handlers.registrationHandler.getAllRegistrations())
		r.Get("/registrations/{id}", handlers.registrationHandler.getRegistration())
		r.Patch("/registrations/{id}", handlers.registrationHandler.updateRegistration())
		r.Delete("/registrations/{id}", handlers.registrationHandler.deleteRegistration())

		r.Post("/newsletter/subscribe", handlers.newsletterHandler.subscribe())

		for _, provider := range []string{config.ProviderSupabase, config.ProviderFirebase} {
			if h, ok := handlers.dataHandlers[provider]; ok {
				mountDataRoutes(r, "/"+provider, h, true)
			}
		}
		if handlers.defaultDataHandler.store != nil {
			mountDataRoutes(r, "/data", handlers.defaultDataHandler, false)
		}

		r.Post("/admin/login", handlers.adminHandler.login())
		r.Post("/admin/logout", handlers.adminHandler.logout())
		r.Get("/admin/me", handlers.adminHandler.me())

		r.Post("/stripe/create-payment-intent", handlers.paymentHandler.createPaymentIntent())
		r.Post("/stripe/webhook", handlers.paymentHandler.webhook())

		r.With(requireAdmin(auth)).Post("/uploads", handlers.uploadHandler.uploadImage())
	})
}

// mountDataRoutes serves one key/value store. Provider-specific stores keep their
// values under /data/{key}; the generic one uses /{key} directly under its prefix.
func mountDataRoutes(r chi.Router, prefix string, h dataHandler, nested bool) {
	keyPath := prefix + "/{key}"
	if nested {
		keyPath = prefix + "/data/{key}"
	}
	r.Get(keyPath, h.getData())
	r.Post(keyPath, h.saveData())
	r.Delete(keyPath, h.deleteData())
	r.Get(prefix+"/export", h.exportData())
	r.Post(prefix+"/import", h.importData())
}

// setupAdminRoutes serves the built admin frontend behind the session guard. Unknown
// paths fall back to index.html so client-side routes resolve.
func setupAdminRoutes(r chi.Router, staticDir string) {
	r.Group(func(r chi.Router) {
		r.Use(adminGuard)

		serve := func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "admin frontend not configured", http.StatusNotFound)
		}
		if staticDir != "" {
			fs := http.StripPrefix("/Admin", http.FileServer(http.Dir(staticDir)))
			serve = func(w http.ResponseWriter, r *http.Request) {
				rel := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/Admin"))
				if rel != "/" {
					if _, err := os.Stat(filepath.Join(staticDir, rel)); err != nil {
						http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
						return
					}
				}
				fs.ServeHTTP(w, r)
			}
		}

		r.Get("/Admin", serve)
		r.Get("/Admin/*", serve)
	})
}
