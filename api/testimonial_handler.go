package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
)

// Testimonials are stored as written; unlike posts and opportunities they are not
// passed through the sanitizer.
type testimonialHandler struct {
	responder       Responder
	logger          zerolog.Logger
	testimonialRepo *database.TestimonialRepo
}

func newTestimonialHandler(testimonialRepo *database.TestimonialRepo) testimonialHandler {
	logger := log.With().Str("handlerName", "testimonialHandler").Logger()

	return testimonialHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		testimonialRepo: testimonialRepo,
	}
}

type testimonialRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Role     string `json:"role"`
	Quote    string `json:"quote" validate:"notblank"`
	Category string `json:"category"`
}

type testimonialPatch struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Quote    *string `json:"quote"`
	Category *string `json:"category"`
}

type TestimonialResponse struct {
	Success     bool                `json:"success"`
	Testimonial *models.Testimonial `json:"testimonial"`
}

type TestimonialCollection struct {
	Success      bool                 `json:"success"`
	Testimonials []models.Testimonial `json:"testimonials"`
	Total        int64                `json:"total"`
	Offset       int                  `json:"offset"`
	Limit        int                  `json:"limit"`
}

func (h testimonialHandler) getAllTestimonials() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pageParams(r, 20)
		category := stringParam(r, "category")
		if category == "All" {
			category = ""
		}

		testimonials, total, err := h.testimonialRepo.List(r.Context(), category, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "testimonials", err))
			return
		}

		h.responder.WriteJSON(w, TestimonialCollection{
			Success:      true,
			Testimonials: testimonials,
			Total:        total,
			Offset:       page.Offset,
			Limit:        page.Limit,
		})
	}
}

func (h testimonialHandler) getTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testimonial, err := h.testimonialRepo.FindByKey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "testimonial", err))
			return
		}

		h.responder.WriteJSON(w, TestimonialResponse{Success: true, Testimonial: testimonial})
	}
}

func (h testimonialHandler) createTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req testimonialRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateRequest(req, errs.NewBadRequestError("Missing name or quote")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial := models.Testimonial{
			Name:     req.Name,
			Role:     orDefault(req.Role, "Community Member"),
			Quote:    req.Quote,
			Category: orDefault(req.Category, "General"),
		}
		if err := h.testimonialRepo.Add(r.Context(), &testimonial); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("add", "testimonial", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, TestimonialResponse{Success: true, Testimonial: &testimonial})
	}
}

func (h testimonialHandler) updateTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req testimonialPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{"updated_at": time.Now()}
		for column, value := range map[string]*string{
			"name":     req.Name,
			"role":     req.Role,
			"quote":    req.Quote,
			"category": req.Category,
		} {
			if value != nil {
				fields[column] = *value
			}
		}

		testimonial, err := h.testimonialRepo.Update(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "testimonial", err))
			return
		}

		h.responder.WriteJSON(w, TestimonialResponse{Success: true, Testimonial: testimonial})
	}
}

func (h testimonialHandler) deleteTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.testimonialRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "testimonial", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true})
	}
}
