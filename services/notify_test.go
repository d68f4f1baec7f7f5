package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/chiaview/site-backend/models"
)

type fakeSMS struct {
	sent []*twilioApi.CreateMessageParams
	err  error
}

func (f *fakeSMS) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.sent = append(f.sent, params)
	return &twilioApi.ApiV2010Message{}, f.err
}

func TestEmailSender(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	t.Cleanup(srv.Close)

	sender := NewEmailSender(srv.URL, "re_key", "Chia View <noreply@chiaview.org>")
	require.NoError(t, sender.SendEmail(context.Background(), "Hi", "<p>x</p>", []string{"office@chiaview.org"}))
	assert.Equal(t, []string{"office@chiaview.org"}, got.To)
	assert.Equal(t, "Chia View <noreply@chiaview.org>", got.From)

	assert.Error(t, sender.SendEmail(context.Background(), "Hi", "x", nil))
}

func TestEmailSenderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	t.Cleanup(srv.Close)

	err := NewEmailSender(srv.URL, "k", "f").SendEmail(context.Background(), "s", "b", []string{"a@b.co"})
	require.Error(t, err)
	assert.Contains(t, err.(interface{ GetFullError() string }).GetFullError(), "invalid from")
}

func TestNewEmailSenderRequiresKey(t *testing.T) {
	assert.Nil(t, NewEmailSender(ResendBaseURL, "", "from"))
}

func TestContactNotifier(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	sms := &fakeSMS{err: errors.New("twilio down")}
	notifier := NewContactNotifier(NewEmailSender(srv.URL, "k", "from@x.org"), "office@x.org", sms, "+15550001", "+15550002")

	contact := models.Contact{ID: uuid.New(), Name: "Ruth", Email: "ruth@x.org", Subject: "Visit", Message: "<b>hello</b>"}
	assert.NotPanics(t, func() { notifier.ContactReceived(context.Background(), contact) })

	assert.Equal(t, 1, calls)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+15550002", *sms.sent[0].To)
	assert.Equal(t, "New contact from Ruth: Visit", *sms.sent[0].Body)
}

func TestContactNotifierWithoutChannels(t *testing.T) {
	var notifier *ContactNotifier
	assert.NotPanics(t, func() { notifier.ContactReceived(context.Background(), models.Contact{}) })
	assert.NotPanics(t, func() { NewContactNotifier(nil, "", nil, "", "").ContactReceived(context.Background(), models.Contact{}) })
}
