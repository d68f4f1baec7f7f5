package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/chiaview/site-backend/errs"
)

// PaymentGateway creates payment intents. *StripeGateway is the production
// implementation.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns nil when secretKey is empty so callers can tell that
// payments are not configured.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{api: sc}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	params.Context = ctx
	return g.api.PaymentIntents.New(params)
}

// DonationRequest is a donation in major currency units.
type DonationRequest struct {
	Amount       float64
	Currency     string
	DonationType string
	Category     string
	IsMonthly    bool
	Metadata     map[string]string
}

type DonationIntent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

type Payments struct {
	gateway       PaymentGateway
	webhookSecret string
}

// NewPayments accepts a nil gateway; every call then fails as not configured.
func NewPayments(gateway PaymentGateway, webhookSecret string) *Payments {
	return &Payments{gateway: gateway, webhookSecret: webhookSecret}
}

func (p *Payments) configured() bool {
	if p.gateway == nil {
		return false
	}
	if g, ok := p.gateway.(*StripeGateway); ok && g == nil {
		return false
	}
	return true
}

// MinorUnits converts a major-unit amount to cents, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func donationDescription(isMonthly bool, category string) string {
	kind := "One-time"
	if isMonthly {
		kind = "Monthly"
	}
	desc := fmt.Sprintf("Chia View %s Donation", kind)
	if category != "" {
		desc += " - " + category
	}
	return desc
}

// CreateDonationIntent validates the amount and opens a payment intent. Caller
// metadata is applied first; donationType, category and isMonthly always win.
func (p *Payments) CreateDonationIntent(ctx context.Context, req DonationRequest) (*DonationIntent, error) {
	if !p.configured() {
		return nil, errs.NewNotConfiguredError("Payment processing not configured")
	}
	if math.IsNaN(req.Amount) || req.Amount < 1 {
		return nil, errs.NewBadRequestError("Invalid amount")
	}

	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(req.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(donationDescription(req.IsMonthly, req.Category)),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("donationType", orDefault(req.DonationType, "general"))
	params.AddMetadata("category", orDefault(req.Category, "general"))
	params.AddMetadata("isMonthly", strconv.FormatBool(req.IsMonthly))

	intent, err := p.gateway.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, errs.NewUpstreamError("Failed to create payment intent", "stripe", err)
	}

	log.Info().Str("paymentIntentId", intent.ID).Int64("amount", *params.Amount).Str("currency", currency).Msg("payment intent created")
	return &DonationIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// HandleWebhook verifies the Stripe-Signature header over the raw payload and
// dispatches the event. Once the signature checks out the event is acknowledged, even
// when its type is unknown or its object cannot be decoded.
func (p *Payments) HandleWebhook(payload []byte, signature string) (stripe.EventType, error) {
	if !p.configured() || p.webhookSecret == "" {
		return "", errs.NewNotConfiguredError("Webhook not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", errs.NewSignatureError(err)
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Warn().Err(err).Str("type", string(event.Type)).Msg("undecodable payment intent in webhook")
			break
		}
		log.Info().
			Str("paymentIntentId", intent.ID).
			Float64("amount", float64(intent.Amount)/100).
			Str("currency", string(intent.Currency)).
			Interface("metadata", intent.Metadata).
			Msg("payment succeeded")
	case stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Warn().Err(err).Str("type", string(event.Type)).Msg("undecodable payment intent in webhook")
			break
		}
		log.Warn().Str("paymentIntentId", intent.ID).Msg("payment failed")
	default:
		log.Debug().Str("type", string(event.Type)).Msg("unhandled webhook event")
	}
	return event.Type, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
