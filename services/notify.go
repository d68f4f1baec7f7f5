package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
)

const ResendBaseURL = "https://api.resend.com"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// EmailSender sends one email through Resend.
type EmailSender struct {
	client *resty.Client
	from   string
}

func NewEmailSender(baseURL, apiKey, from string) *EmailSender {
	if apiKey == "" || from == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &EmailSender{client: client, from: from}
}

// SendEmail sends an HTML email to recipients.
func (s *EmailSender) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return errs.NewBadRequestError("at least one recipient is required")
	}

	var result ResendEmailResponse
	var failure ResendErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(ResendEmailRequest{From: s.from, To: recipients, Subject: subject, Html: body}).
		SetResult(&result).
		SetError(&failure).
		Post("/emails")
	if err != nil {
		return errs.NewUpstreamError("Failed to send email", "resend", err)
	}
	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = resp.String()
		}
		return errs.NewUpstreamError("Failed to send email", "resend", errs.NewApiErr(resp.StatusCode(), msg))
	}

	log.Info().Str("emailId", result.ID).Msg("Successfully sent email via Resend")
	return nil
}

// SMSSender is the part of the Twilio API used for notifications.
type SMSSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

func NewTwilioSender(accountSID, authToken string) SMSSender {
	if accountSID == "" || authToken == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return client.Api
}

// ContactNotifier tells the site owners about new contact messages. Either channel
// may be absent; failures are logged and never returned.
type ContactNotifier struct {
	email   *EmailSender
	emailTo []string
	sms     SMSSender
	smsFrom string
	smsTo   string
}

func NewContactNotifier(email *EmailSender, emailTo string, sms SMSSender, smsFrom, smsTo string) *ContactNotifier {
	n := &ContactNotifier{email: email, sms: sms, smsFrom: smsFrom, smsTo: smsTo}
	if emailTo != "" {
		n.emailTo = []string{emailTo}
	}
	return n
}

func (n *ContactNotifier) ContactReceived(ctx context.Context, c models.Contact) {
	if n == nil {
		return
	}
	logger := log.With().Str("contactId", c.ID.String()).Logger()

	if n.email != nil && len(n.emailTo) > 0 {
		subject := fmt.Sprintf("New contact message: %s", c.Subject)
		body := fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; wrote:</p><p>%s</p>",
			html.EscapeString(c.Name), html.EscapeString(c.Email), html.EscapeString(c.Message))
		if err := n.email.SendEmail(ctx, subject, body, n.emailTo); err != nil {
			logger.Warn().Err(err).Msg("contact email notification failed")
		}
	}

	if n.sms != nil && n.smsFrom != "" && n.smsTo != "" {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(n.smsTo)
		params.SetFrom(n.smsFrom)
		params.SetBody(fmt.Sprintf("New contact from %s: %s", c.Name, c.Subject))
		if _, err := n.sms.CreateMessage(params); err != nil {
			logger.Warn().Err(err).Msg("contact SMS notification failed")
		}
	}
}
