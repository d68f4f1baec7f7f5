package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/services"
)

const maxWebhookBody = 1 << 20

type paymentHandler struct {
	responder Responder
	logger    zerolog.Logger
	payments  *services.Payments
}

func newPaymentHandler(payments *services.Payments) paymentHandler {
	logger := log.With().Str("handlerName", "paymentHandler").Logger()

	return paymentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		payments:  payments,
	}
}

type paymentIntentRequest struct {
	Amount       float64        `json:"amount"`
	Currency     string         `json:"currency"`
	DonationType string         `json:"donationType"`
	Category     string         `json:"category"`
	IsMonthly    jsonBool       `json:"isMonthly"`
	Metadata     map[string]any `json:"metadata"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

// metadataStrings renders caller metadata values as Stripe metadata strings.
func metadataStrings(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = string(b)
	}
	return out
}

// createPaymentIntent opens a Stripe payment intent for a donation
// @Summary Create donation payment intent
// @Description amount is in major units and must be at least 1
// @Tags Payments
// @Accept json
// @Produce json
// @Param donation body paymentIntentRequest true "Donation"
// @Success 200 {object} services.DonationIntent
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 500 {object} ErrorResponse "Failed to create payment intent"
// @Router /api/stripe/create-payment-intent [post]
func (h paymentHandler) createPaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentIntentRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		intent, err := h.payments.CreateDonationIntent(r.Context(), services.DonationRequest{
			Amount:       req.Amount,
			Currency:     req.Currency,
			DonationType: req.DonationType,
			Category:     req.Category,
			IsMonthly:    bool(req.IsMonthly),
			Metadata:     metadataStrings(req.Metadata),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, intent)
	}
}

// webhook verifies and dispatches a Stripe event. The body must be read raw so the
// signature can be checked over the exact bytes Stripe sent.
func (h paymentHandler) webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("webhook", err))
			return
		}

		eventType, err := h.payments.HandleWebhook(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Debug().Str("eventType", string(eventType)).Msg("webhook processed")
		h.responder.WriteJSON(w, WebhookResponse{Received: true})
	}
}
