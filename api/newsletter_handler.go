package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
)

type newsletterHandler struct {
	responder      Responder
	logger         zerolog.Logger
	newsletterRepo *database.NewsletterRepo
}

func newNewsletterHandler(newsletterRepo *database.NewsletterRepo) newsletterHandler {
	logger := log.With().Str("handlerName", "newsletterHandler").Logger()

	return newsletterHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		newsletterRepo: newsletterRepo,
	}
}

type subscribeRequest struct {
	Email string `json:"email" validate:"notblank,simpleemail"`
	Name  string `json:"name"`
}

func (subscribeRequest) ruleMessage(string, string) string {
	return invalidSubscriberEmail
}

const invalidSubscriberEmail = "Please provide a valid email address."

type SubscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// subscribe adds an email to the newsletter list
// @Summary Subscribe to newsletter
// @Tags Newsletter
// @Accept json
// @Produce json
// @Param subscription body subscribeRequest true "Subscriber"
// @Success 200 {object} SubscribeResponse "Already subscribed"
// @Success 201 {object} SubscribeResponse "Subscribed"
// @Failure 400 {object} ErrorResponse "Please provide a valid email address."
// @Failure 500 {object} ErrorResponse "Failed to subscribe."
// @Router /api/newsletter/subscribe [post]
func (h newsletterHandler) subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateRequest(req, errs.NewInvalidFieldError("email", invalidSubscriberEmail)); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		email := strings.ToLower(req.Email)
		// a failed lookup falls through to the upsert
		existing, err := h.newsletterRepo.FindByEmail(r.Context(), email)
		if err != nil {
			h.logger.Warn().Err(err).Msg("subscription lookup failed")
		}
		if existing != nil && existing.Status == models.SubscriptionStatusSubscribed {
			h.responder.WriteJSON(w, SubscribeResponse{Success: true, Message: "You are already subscribed!"})
			return
		}

		err = h.newsletterRepo.Subscribe(r.Context(), &models.NewsletterSubscription{
			Email:            email,
			Name:             stringOrNil(req.Name),
			Status:           models.SubscriptionStatusSubscribed,
			SubscriptionDate: time.Now(),
			EmailConfirmed:   false,
		})
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to subscribe.", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, SubscribeResponse{Success: true, Message: "Thank you for subscribing!"})
	}
}
