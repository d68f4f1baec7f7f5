package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
)

type formHandler struct {
	responder Responder
	logger    zerolog.Logger
	formRepo  *database.FormRepo
}

func newFormHandler(formRepo *database.FormRepo) formHandler {
	logger := log.With().Str("handlerName", "formHandler").Logger()

	return formHandler{
		responder: NewResponder(logger),
		logger:    logger,
		formRepo:  formRepo,
	}
}

type formRequest struct {
	FormName string          `json:"formName" validate:"notblank"`
	FormType string          `json:"formType" validate:"notblank"`
	Email    *string         `json:"email"`
	Name     *string         `json:"name"`
	Phone    *string         `json:"phone"`
	Data     json.RawMessage `json:"data"`
}

type formStatusPatch struct {
	Status string `json:"status"`
}

type FormSubmittedResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

type FormSubmissionResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message,omitempty"`
	Submission     *models.FormSubmission `json:"submission"`
	FieldResponses []models.FormResponse  `json:"fieldResponses,omitempty"`
}

type FormSubmissionCollection struct {
	Success     bool                    `json:"success"`
	Submissions []models.FormSubmission `json:"submissions"`
	Count       int                     `json:"count"`
	Total       int64                   `json:"total"`
	Offset      int                     `json:"offset"`
	Limit       int                     `json:"limit"`
}

// formData unwraps data sent as a JSON-encoded string.
func formData(raw json.RawMessage) (json.RawMessage, error) {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return raw, nil
	}
	if !json.Valid([]byte(encoded)) {
		return nil, errors.New("data is not valid JSON")
	}
	return json.RawMessage(encoded), nil
}

// fieldResponses flattens an object or array into one row per entry, keeping the
// order the entries were sent in. Scalars produce no rows.
func fieldResponses(data json.RawMessage) ([]models.FormResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, nil
	}

	var rows []models.FormResponse
	for i := 0; dec.More(); i++ {
		name := strconv.Itoa(i)
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name = keyTok.(string)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fieldValue, fieldType := describeField(value)
		rows = append(rows, models.FormResponse{
			FieldName:  name,
			FieldValue: fieldValue,
			FieldType:  fieldType,
		})
	}
	return rows, nil
}

// describeField renders a value as stored text plus the name of its JSON kind
// (string, number, boolean, object; null and arrays count as object).
func describeField(value json.RawMessage) (string, string) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, "string"
	}

	var compact bytes.Buffer
	text := string(value)
	if err := json.Compact(&compact, value); err == nil {
		text = compact.String()
	}

	switch {
	case text == "true" || text == "false":
		return text, "boolean"
	case strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") || text == "null":
		return text, "object"
	default:
		return text, "number"
	}
}

// submitForm stores any site form as a submission plus one row per field
// @Summary Submit form
// @Tags Forms
// @Accept json
// @Produce json
// @Param form body formRequest true "Form submission"
// @Success 201 {object} FormSubmittedResponse
// @Failure 400 {object} ErrorResponse "Missing required fields: formName, formType, data"
// @Failure 500 {object} ErrorResponse "Failed to submit form"
// @Router /api/forms [post]
func (h formHandler) submitForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		missing := errs.NewMissingFieldsError("formName", "formType", "data")
		if err := validateRequest(req, missing); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var present any
		if req.Data == nil || json.Unmarshal(req.Data, &present) != nil || !truthy(present) {
			h.responder.WriteError(w, missing)
			return
		}

		data, err := formData(req.Data)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("data", "data must be valid JSON"))
			return
		}
		responses, err := fieldResponses(data)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("data", "data must be valid JSON"))
			return
		}

		submission := models.FormSubmission{
			FormName:  req.FormName,
			FormType:  req.FormType,
			Email:     trimmedOrNil(req.Email),
			Name:      trimmedOrNil(req.Name),
			Phone:     trimmedOrNil(req.Phone),
			Data:      datatypes.JSON(data),
			Status:    "new",
			IPAddress: clientIP(r),
			UserAgent: userAgent(r),
		}
		if err := h.formRepo.AddWithResponses(r.Context(), &submission, responses); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("submit", "form", err))
			return
		}
		h.logger.Info().Str("submissionId", submission.ID.String()).Str("formName", submission.FormName).Msg("form submission saved")

		h.responder.WriteJSONStatus(w, http.StatusCreated, FormSubmittedResponse{
			Success:      true,
			Message:      "Form submitted successfully",
			SubmissionID: submission.ID.String(),
		})
	}
}

func (h formHandler) getAllSubmissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pageParams(r, 50)
		submissions, total, err := h.formRepo.List(r.Context(), database.FormFilter{
			FormName: stringParam(r, "formName"),
			FormType: stringParam(r, "formType"),
			Status:   stringParam(r, "status"),
		}, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "submissions", err))
			return
		}

		h.responder.WriteJSON(w, FormSubmissionCollection{
			Success:     true,
			Submissions: submissions,
			Count:       len(submissions),
			Total:       total,
			Offset:      page.Offset,
			Limit:       page.Limit,
		})
	}
}

func (h formHandler) getSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		submission, err := h.formRepo.FindByKey(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "submission", err))
			return
		}
		responses, err := h.formRepo.Responses(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "submission", err))
			return
		}

		h.responder.WriteJSON(w, FormSubmissionResponse{
			Success:        true,
			Submission:     submission,
			FieldResponses: responses,
		})
	}
}

func (h formHandler) updateSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formStatusPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Status == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("Status is required"))
			return
		}

		submission, err := h.formRepo.Update(r.Context(), chi.URLParam(r, "id"), map[string]any{"status": req.Status})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "submission", err))
			return
		}

		h.responder.WriteJSON(w, FormSubmissionResponse{
			Success:    true,
			Message:    "Submission status updated",
			Submission: submission,
		})
	}
}

func (h formHandler) deleteSubmission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.formRepo.DeleteWithResponses(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, errs.NewTransactionFailedError("delete submission", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true, Message: "Submission deleted successfully"})
	}
}
