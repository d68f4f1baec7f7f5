package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
)

type registrationHandler struct {
	responder        Responder
	logger           zerolog.Logger
	registrationRepo *database.RegistrationRepo
	hashParams       *argon2id.Params
}

func newRegistrationHandler(registrationRepo *database.RegistrationRepo, hashParams *argon2id.Params) registrationHandler {
	logger := log.With().Str("handlerName", "registrationHandler").Logger()
	if hashParams == nil {
		hashParams = argon2id.DefaultParams
	}

	return registrationHandler{
		responder:        NewResponder(logger),
		logger:           logger,
		registrationRepo: registrationRepo,
		hashParams:       hashParams,
	}
}

type registrationRequest struct {
	Name             string  `json:"name" validate:"notblank"`
	Email            string  `json:"email" validate:"notblank,simpleemail"`
	Password         string  `json:"password" validate:"notblank,min=8"`
	ConfirmPassword  string  `json:"confirmPassword" validate:"eqfield=Password"`
	Phone            *string `json:"phone"`
	RegistrationType string  `json:"registrationType"`
	DateOfBirth      string  `json:"dateOfBirth"`
	Address          *string `json:"address"`
	City             *string `json:"city"`
	State            *string `json:"state"`
	Country          *string `json:"country"`
	PostalCode       *string `json:"postalCode"`
}

func (registrationRequest) ruleMessage(field, tag string) string {
	switch {
	case field == "email":
		return "Invalid email format"
	case field == "password" && tag == "min":
		return "Password must be at least 8 characters long"
	case field == "confirmPassword":
		return "Passwords do not match"
	}
	return ""
}

type registrationPatch struct {
	Name              optional[string] `json:"name"`
	Phone             optional[string] `json:"phone"`
	Status            optional[string] `json:"status"`
	EmailVerified     optional[bool]   `json:"email_verified"`
	DateOfBirth       optional[string] `json:"dateOfBirth"`
	Address           optional[string] `json:"address"`
	City              optional[string] `json:"city"`
	State             optional[string] `json:"state"`
	Country           optional[string] `json:"country"`
	PostalCode        optional[string] `json:"postalCode"`
	Bio               optional[string] `json:"bio"`
	ProfilePictureURL optional[string] `json:"profilePictureUrl"`
}

type RegistrationCreatedResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	User    *models.Registration `json:"user"`
	UserID  string               `json:"userId"`
}

type RegistrationResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message,omitempty"`
	Registration *models.Registration `json:"registration"`
}

type RegistrationCollection struct {
	Success       bool                  `json:"success"`
	Registrations []models.Registration `json:"registrations"`
	Count         int                   `json:"count"`
}

var errEmailRegistered = errs.NewConflictError("Email already registered")

// createRegistration creates a member account
// @Summary Register
// @Description Emails are stored lower-cased; the password is stored as an argon2id hash
// @Tags Registrations
// @Accept json
// @Produce json
// @Param registration body registrationRequest true "Registration"
// @Success 201 {object} RegistrationCreatedResponse
// @Failure 400 {object} ErrorResponse "Missing required fields: name, email, password"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse "Failed to create registration"
// @Router /api/registrations [post]
func (h registrationHandler) createRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registrationRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateRequest(req, errs.NewMissingFieldsError("name", "email", "password")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		exists, err := h.registrationRepo.EmailExists(r.Context(), email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "registration", err))
			return
		}
		if exists {
			h.responder.WriteError(w, errEmailRegistered)
			return
		}

		hash, err := argon2id.CreateHash(req.Password, h.hashParams)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("Failed to create registration", err))
			return
		}

		registration := models.Registration{
			Name:             strings.TrimSpace(req.Name),
			Email:            email,
			Phone:            trimmedOrNil(req.Phone),
			PasswordHash:     hash,
			RegistrationType: orDefault(req.RegistrationType, "member"),
			Status:           "active",
			EmailVerified:    false,
			DateOfBirth:      stringOrNil(req.DateOfBirth),
			Address:          trimmedOrNil(req.Address),
			City:             trimmedOrNil(req.City),
			State:            trimmedOrNil(req.State),
			Country:          trimmedOrNil(req.Country),
			PostalCode:       trimmedOrNil(req.PostalCode),
			IPAddress:        clientIP(r),
			UserAgent:        userAgent(r),
		}
		if err := h.registrationRepo.Add(r.Context(), &registration); err != nil {
			if errs.IsUniqueViolation(err) {
				h.responder.WriteError(w, errEmailRegistered)
				return
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "registration", err))
			return
		}
		h.logger.Info().Str("registrationId", registration.ID.String()).Msg("registration created")

		h.responder.WriteJSONStatus(w, http.StatusCreated, RegistrationCreatedResponse{
			Success: true,
			Message: "Registration successful! Please verify your email.",
			User:    &registration,
			UserID:  registration.ID.String(),
		})
	}
}

func (h registrationHandler) getAllRegistrations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registrations, err := h.registrationRepo.List(r.Context(), database.RegistrationFilter{
			Status: stringParam(r, "status"),
			Type:   stringParam(r, "type"),
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "registrations", err))
			return
		}

		h.responder.WriteJSON(w, RegistrationCollection{
			Success:       true,
			Registrations: registrations,
			Count:         len(registrations),
		})
	}
}

func (h registrationHandler) getRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registration, err := h.registrationRepo.FindByKey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "registration", err))
			return
		}

		h.responder.WriteJSON(w, RegistrationResponse{Success: true, Registration: registration})
	}
}

// updateRegistration changes profile fields. Setting email_verified to true stamps
// email_verified_at.
func (h registrationHandler) updateRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registrationPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{"updated_at": time.Now()}
		setNonNull(fields, "name", req.Name)
		setOptional(fields, "phone", req.Phone)
		setOptional(fields, "status", req.Status)
		setNonNull(fields, "email_verified", req.EmailVerified)
		if req.EmailVerified.Value != nil && *req.EmailVerified.Value {
			fields["email_verified_at"] = time.Now()
		}
		setOptional(fields, "date_of_birth", req.DateOfBirth)
		setOptional(fields, "address", req.Address)
		setOptional(fields, "city", req.City)
		setOptional(fields, "state", req.State)
		setOptional(fields, "country", req.Country)
		setOptional(fields, "postal_code", req.PostalCode)
		setOptional(fields, "bio", req.Bio)
		setOptional(fields, "profile_picture_url", req.ProfilePictureURL)

		registration, err := h.registrationRepo.Update(r.Context(), chi.URLParam(r, "id"), fields)
		if err == nil && registration == nil {
			err = gorm.ErrRecordNotFound
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "registration", err))
			return
		}

		h.responder.WriteJSON(w, RegistrationResponse{
			Success:      true,
			Message:      "Registration updated successfully",
			Registration: registration,
		})
	}
}

func (h registrationHandler) deleteRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.registrationRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "registration", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true, Message: "Registration deleted successfully"})
	}
}
