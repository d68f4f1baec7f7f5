package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/chiaview/site-backend/errs"
)

type recordingGateway struct {
	calls  []*stripe.PaymentIntentParams
	result *stripe.PaymentIntent
	err    error
}

func (g *recordingGateway) CreatePaymentIntent(_ context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	g.calls = append(g.calls, params)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func TestMinorUnits(t *testing.T) {
	assert.EqualValues(t, 1050, MinorUnits(10.50))
	assert.EqualValues(t, 100, MinorUnits(1))
	assert.EqualValues(t, 1999, MinorUnits(19.99))
}

func TestCreateDonationIntent(t *testing.T) {
	gw := &recordingGateway{result: &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}}
	payments := NewPayments(gw, "")

	intent, err := payments.CreateDonationIntent(context.Background(), DonationRequest{
		Amount:    10.50,
		Category:  "youth",
		IsMonthly: true,
		Metadata:  map[string]string{"isMonthly": "spoofed", "campaign": "spring"},
	})
	require.NoError(t, err)
	assert.Equal(t, &DonationIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, intent)

	require.Len(t, gw.calls, 1)
	params := gw.calls[0]
	assert.EqualValues(t, 1050, *params.Amount)
	assert.Equal(t, "usd", *params.Currency)
	assert.True(t, *params.AutomaticPaymentMethods.Enabled)
	assert.Equal(t, "Chia View Monthly Donation - youth", *params.Description)
	assert.Equal(t, map[string]string{
		"donationType": "general",
		"category":     "youth",
		"isMonthly":    "true",
		"campaign":     "spring",
	}, params.Metadata)
}

func TestCreateDonationIntentOneTimeWithoutCategory(t *testing.T) {
	gw := &recordingGateway{result: &stripe.PaymentIntent{ID: "pi_2"}}

	_, err := NewPayments(gw, "").CreateDonationIntent(context.Background(), DonationRequest{Amount: 25, Currency: "eur"})
	require.NoError(t, err)

	params := gw.calls[0]
	assert.Equal(t, "Chia View One-time Donation", *params.Description)
	assert.Equal(t, "eur", *params.Currency)
	assert.Equal(t, "general", params.Metadata["category"])
	assert.Equal(t, "false", params.Metadata["isMonthly"])
}

func TestCreateDonationIntentRejectsSmallAmounts(t *testing.T) {
	for _, amount := range []float64{0, -5, 0.99} {
		gw := &recordingGateway{}
		_, err := NewPayments(gw, "").CreateDonationIntent(context.Background(), DonationRequest{Amount: amount})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, errs.StatusCode(err))
		assert.Equal(t, "Invalid amount", err.Error())
		assert.Empty(t, gw.calls)
	}
}

func TestCreateDonationIntentNotConfigured(t *testing.T) {
	_, err := NewPayments(nil, "").CreateDonationIntent(context.Background(), DonationRequest{Amount: 10})
	assert.True(t, errs.IsNotConfigured(err))
	assert.Equal(t, "Payment processing not configured", err.Error())

	_, err = NewPayments(NewStripeGateway(""), "").CreateDonationIntent(context.Background(), DonationRequest{Amount: 10})
	assert.True(t, errs.IsNotConfigured(err))
}

func TestCreateDonationIntentGatewayFailure(t *testing.T) {
	gw := &recordingGateway{err: fmt.Errorf("card_declined")}
	_, err := NewPayments(gw, "").CreateDonationIntent(context.Background(), DonationRequest{Amount: 10})
	assert.True(t, errs.IsUpstreamFailure(err))
	assert.Equal(t, "Failed to create payment intent", err.Error())
}

// signPayload builds a Stripe-Signature header for payload.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": "2020-08-27",
		"type": %q,
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "amount": 1050, "currency": "usd", "metadata": {"category": "youth"}}}
	}`, eventType))
}

func TestHandleWebhook(t *testing.T) {
	payments := NewPayments(&recordingGateway{}, "whsec_test")

	for _, eventType := range []string{"payment_intent.succeeded", "payment_intent.payment_failed", "customer.created"} {
		payload := eventPayload(eventType)
		got, err := payments.HandleWebhook(payload, signPayload(payload, "whsec_test", time.Now()))
		require.NoError(t, err, eventType)
		assert.Equal(t, stripe.EventType(eventType), got)
	}
}

func TestHandleWebhookAcknowledgesUndecodableIntent(t *testing.T) {
	payments := NewPayments(&recordingGateway{}, "whsec_test")

	for _, eventType := range []string{"payment_intent.succeeded", "payment_intent.payment_failed"} {
		payload := []byte(fmt.Sprintf(`{"id":"evt_2","object":"event","api_version":"2020-08-27","type":%q,`+
			`"data":{"object":{"id":"pi_2","object":"payment_intent","amount":"ten"}}}`, eventType))
		got, err := payments.HandleWebhook(payload, signPayload(payload, "whsec_test", time.Now()))
		require.NoError(t, err, eventType)
		assert.Equal(t, stripe.EventType(eventType), got)
	}
}

func TestHandleWebhookBadSignature(t *testing.T) {
	payments := NewPayments(&recordingGateway{}, "whsec_test")
	payload := eventPayload("payment_intent.succeeded")

	_, err := payments.HandleWebhook(payload, signPayload(payload, "whsec_other", time.Now()))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errs.StatusCode(err))
	assert.True(t, errs.IsSignatureMismatch(err))

	_, err = payments.HandleWebhook(payload, "")
	assert.True(t, errs.IsSignatureMismatch(err))
}

func TestHandleWebhookNotConfigured(t *testing.T) {
	_, err := NewPayments(&recordingGateway{}, "").HandleWebhook([]byte(`{}`), "")
	assert.True(t, errs.IsNotConfigured(err))
	assert.Equal(t, "Webhook not configured", err.Error())
}
