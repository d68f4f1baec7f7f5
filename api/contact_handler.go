package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
	"github.com/chiaview/site-backend/services"
)

const notifyTimeout = 15 * time.Second

// ContactNotifier is told about every stored contact message.
type ContactNotifier interface {
	ContactReceived(ctx context.Context, c models.Contact)
}

type contactHandler struct {
	responder   Responder
	logger      zerolog.Logger
	contactRepo *database.ContactRepo
	notifier    ContactNotifier
}

func newContactHandler(contactRepo *database.ContactRepo, notifier ContactNotifier) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		contactRepo: contactRepo,
		notifier:    notifier,
	}
}

type contactRequest struct {
	Name    string  `json:"name" validate:"notblank"`
	Email   string  `json:"email" validate:"notblank"`
	Subject string  `json:"subject"`
	Message string  `json:"message" validate:"notblank"`
	Phone   *string `json:"phone"`
}

type contactPatch struct {
	Status   string          `json:"status"`
	Priority string          `json:"priority"`
	Response json.RawMessage `json:"response"`
}

type ContactSentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ContactID string `json:"contactId"`
}

type ContactResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Contact *models.Contact `json:"contact"`
}

type ContactCollection struct {
	Success  bool             `json:"success"`
	Contacts []models.Contact `json:"contacts"`
	Count    int              `json:"count"`
}

// sendContact stores a public contact-form message
// @Summary Submit contact form
// @Description Stores the message with status "new" and notifies the site owners
// @Tags Contact
// @Accept json
// @Produce json
// @Param contact body contactRequest true "Contact message"
// @Success 201 {object} ContactSentResponse
// @Failure 400 {object} ErrorResponse "Missing required fields: name, email, message"
// @Failure 500 {object} ErrorResponse "Failed to submit contact form"
// @Router /api/contact/send [post]
func (h contactHandler) sendContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateRequest(req, errs.NewMissingFieldsError("name", "email", "message")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		contact := models.Contact{
			Name:      strings.TrimSpace(req.Name),
			Email:     strings.TrimSpace(req.Email),
			Phone:     trimmedOrNil(req.Phone),
			Subject:   orDefault(strings.TrimSpace(req.Subject), "No Subject"),
			Message:   strings.TrimSpace(req.Message),
			Status:    "new",
			Priority:  "normal",
			IPAddress: clientIP(r),
			UserAgent: userAgent(r),
		}
		if err := h.contactRepo.Add(r.Context(), &contact); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("submit", "contact form", err))
			return
		}
		h.logger.Info().Str("contactId", contact.ID.String()).Msg("contact saved")

		h.responder.WriteJSONStatus(w, http.StatusCreated, ContactSentResponse{
			Success:   true,
			Message:   "Thank you for contacting us! We will get back to you soon.",
			ContactID: contact.ID.String(),
		})

		if h.notifier != nil {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), notifyTimeout)
			go func() {
				defer cancel()
				h.notifier.ContactReceived(ctx, contact)
			}()
		}
	}
}

func contactFilter(r *http.Request) database.ContactFilter {
	return database.ContactFilter{
		Status: stringParam(r, "status"),
		Email:  stringParam(r, "email"),
	}
}

// getAllContacts lists every matching message, newest first, without paging.
func (h contactHandler) getAllContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := h.contactRepo.List(r.Context(), contactFilter(r))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "contacts", err))
			return
		}

		h.responder.WriteJSON(w, ContactCollection{Success: true, Contacts: contacts, Count: len(contacts)})
	}
}

// exportContacts downloads the same listing as an xlsx workbook.
func (h contactHandler) exportContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := h.contactRepo.List(r.Context(), contactFilter(r))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "contacts", err))
			return
		}

		workbook, err := services.ContactsWorkbook(contacts)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to export contacts", err))
			return
		}

		fileName := fmt.Sprintf("contacts-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
		w.WriteHeader(http.StatusOK)
		if _, err := workbook.WriteTo(w); err != nil {
			h.logger.Error().Err(err).Msg("error writing contacts export")
		}
	}
}

func (h contactHandler) getContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contact, err := h.contactRepo.FindByKey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "contact", err))
			return
		}

		h.responder.WriteJSON(w, ContactResponse{Success: true, Contact: contact})
	}
}

// updateContact changes triage fields. A non-empty response marks the contact replied.
func (h contactHandler) updateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{}
		if req.Status != "" {
			fields["status"] = req.Status
		}
		if req.Priority != "" {
			fields["priority"] = req.Priority
		}
		if req.Response != nil {
			var response *string
			if err := json.Unmarshal(req.Response, &response); err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("response", "response must be a string"))
				return
			}
			fields["response"] = response
			if response != nil && *response != "" {
				fields["replied_at"] = time.Now()
			}
		}

		contact, err := h.contactRepo.Update(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "contact", err))
			return
		}

		h.responder.WriteJSON(w, ContactResponse{
			Success: true,
			Message: "Contact updated successfully",
			Contact: contact,
		})
	}
}

func (h contactHandler) deleteContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.contactRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "contact", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true, Message: "Contact deleted successfully"})
	}
}
