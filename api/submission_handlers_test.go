package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendContact(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/contact/send", map[string]any{"name": "Ama", "email": "ama@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: name, email, message", decodeBody[ErrorResponse](t, rec).Error)

	req := httptest.NewRequest(http.MethodPost, "/api/contact/send",
		strings.NewReader(`{"name":" Ama ","email":"ama@example.com","message":" Hello "}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-IP", "203.0.113.7")
	req.Header.Set("User-Agent", "contact-test")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sent := decodeBody[ContactSentResponse](t, rec)
	assert.True(t, sent.Success)
	require.NotEmpty(t, sent.ContactID)

	select {
	case c := <-env.notified:
		assert.Equal(t, sent.ContactID, c.ID.String())
	case <-time.After(2 * time.Second):
		t.Fatal("contact notification not sent")
	}

	rec = env.request(http.MethodGet, "/api/contact/"+sent.ContactID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	contact := decodeBody[ContactResponse](t, rec).Contact
	assert.Equal(t, "Ama", contact.Name)
	assert.Equal(t, "Hello", contact.Message)
	assert.Equal(t, "No Subject", contact.Subject)
	assert.Equal(t, "new", contact.Status)
	assert.Equal(t, "normal", contact.Priority)
	assert.Equal(t, "203.0.113.7", contact.IPAddress)
	assert.Equal(t, "contact-test", contact.UserAgent)
}

func TestUpdateContact(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/contact/send", map[string]any{"name": "Ama", "email": "ama@example.com", "message": "Hi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[ContactSentResponse](t, rec).ContactID
	<-env.notified

	rec = env.request(http.MethodPatch, "/api/contact/"+id, map[string]any{"priority": "high", "status": ""})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	contact := decodeBody[ContactResponse](t, rec).Contact
	assert.Equal(t, "high", contact.Priority)
	assert.Equal(t, "new", contact.Status, "empty status is ignored")
	assert.Nil(t, contact.RepliedAt)

	rec = env.request(http.MethodPatch, "/api/contact/"+id, map[string]any{"status": "replied", "response": "Thanks!"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ContactResponse](t, rec)
	assert.Equal(t, "Contact updated successfully", resp.Message)
	require.NotNil(t, resp.Contact.Response)
	assert.Equal(t, "Thanks!", *resp.Contact.Response)
	assert.NotNil(t, resp.Contact.RepliedAt)

	rec = env.request(http.MethodGet, "/api/contact?status=replied", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[ContactCollection](t, rec)
	assert.Equal(t, 1, list.Count)

	rec = env.request(http.MethodDelete, "/api/contact/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Contact deleted successfully", decodeBody[DeletedResponse](t, rec).Message)
}

func TestExportContactsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/contact/send", map[string]any{"name": "Ama", "email": "ama@example.com", "message": "Hi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	<-env.notified

	rec = env.request(http.MethodGet, "/api/contact/export", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody[ErrorResponse](t, rec).Error)

	rec = env.request(http.MethodGet, "/api/contact/export", nil, env.login())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contacts-")
	assert.NotZero(t, rec.Body.Len())
}

func TestSubmitForm(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"missing data", `{"formName":"volunteer","formType":"signup"}`, http.StatusBadRequest, "Missing required fields: formName, formType, data"},
		{"empty string data", `{"formName":"volunteer","formType":"signup","data":""}`, http.StatusBadRequest, "Missing required fields: formName, formType, data"},
		{"missing form name", `{"formType":"signup","data":{"a":1}}`, http.StatusBadRequest, "Missing required fields: formName, formType, data"},
		{"string that is not JSON", `{"formName":"v","formType":"s","data":"not json"}`, http.StatusBadRequest, "data must be valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPost, "/api/forms", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.error, decodeBody[ErrorResponse](t, rec).Error)
		})
	}

	rec := env.request(http.MethodGet, "/api/forms", nil)
	assert.Zero(t, decodeBody[FormSubmissionCollection](t, rec).Total)
}

func TestFormSubmissionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/forms", map[string]any{
		"formName": "volunteer",
		"formType": "signup",
		"email":    " ama@example.com ",
		"data":     `{"name":"Ama","age":30,"newsletter":true,"skills":["cooking"]}`,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decodeBody[FormSubmittedResponse](t, rec)
	assert.Equal(t, "Form submitted successfully", submitted.Message)

	rec = env.request(http.MethodGet, "/api/forms/"+submitted.SubmissionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[FormSubmissionResponse](t, rec)
	assert.JSONEq(t, `{"name":"Ama","age":30,"newsletter":true,"skills":["cooking"]}`, string(got.Submission.Data))
	require.NotNil(t, got.Submission.Email)
	assert.Equal(t, "ama@example.com", *got.Submission.Email)
	assert.Equal(t, "new", got.Submission.Status)

	fields := map[string][2]string{}
	for _, fr := range got.FieldResponses {
		fields[fr.FieldName] = [2]string{fr.FieldValue, fr.FieldType}
	}
	assert.Equal(t, map[string][2]string{
		"name":       {"Ama", "string"},
		"age":        {"30", "number"},
		"newsletter": {"true", "boolean"},
		"skills":     {`["cooking"]`, "object"},
	}, fields)

	rec = env.request(http.MethodPatch, "/api/forms/"+submitted.SubmissionID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Status is required", decodeBody[ErrorResponse](t, rec).Error)

	rec = env.request(http.MethodPatch, "/api/forms/"+submitted.SubmissionID, map[string]any{"status": "reviewed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reviewed", decodeBody[FormSubmissionResponse](t, rec).Submission.Status)

	rec = env.request(http.MethodGet, "/api/forms?status=reviewed&formName=volunteer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[FormSubmissionCollection](t, rec)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 50, list.Limit)

	rec = env.request(http.MethodDelete, "/api/forms/"+submitted.SubmissionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	responses, err := env.db.FormRepo().Responses(context.Background(), submitted.SubmissionID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestFieldResponsesOfArrayData(t *testing.T) {
	rows, err := fieldResponses(json.RawMessage(`["a", 2]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[0].FieldName)
	assert.Equal(t, "a", rows[0].FieldValue)
	assert.Equal(t, "1", rows[1].FieldName)
	assert.Equal(t, "number", rows[1].FieldType)

	rows, err = fieldResponses(json.RawMessage(`42`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func validRegistration() map[string]any {
	return map[string]any{
		"name":            "Ama Mensah",
		"email":           "Ama@Example.com",
		"password":        "long-enough",
		"confirmPassword": "long-enough",
	}
}

func TestCreateRegistrationValidation(t *testing.T) {
	env := newTestEnv(t)

	with := func(key string, value any) map[string]any {
		body := validRegistration()
		if value == nil {
			delete(body, key)
		} else {
			body[key] = value
		}
		return body
	}

	tests := []struct {
		name  string
		body  map[string]any
		error string
	}{
		{"missing name", with("name", nil), "Missing required fields: name, email, password"},
		{"missing password", with("password", nil), "Missing required fields: name, email, password"},
		{"bad email", with("email", "not-an-email"), "Invalid email format"},
		{"short password", with("password", "short"), "Password must be at least 8 characters long"},
		{"confirmation mismatch", with("confirmPassword", "different"), "Passwords do not match"},
		{"confirmation omitted", with("confirmPassword", nil), "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPost, "/api/registrations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.error, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestRegistrationLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/registrations", validRegistration())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	created := decodeBody[RegistrationCreatedResponse](t, rec)
	assert.Equal(t, "ama@example.com", created.User.Email)
	assert.Equal(t, "member", created.User.RegistrationType)
	assert.Equal(t, "active", created.User.Status)
	assert.False(t, created.User.EmailVerified)
	assert.Equal(t, created.User.ID.String(), created.UserID)

	stored, err := env.db.RegistrationRepo().FindByKey(context.Background(), created.UserID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	rec = env.request(http.MethodPost, "/api/registrations", validRegistration())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", decodeBody[ErrorResponse](t, rec).Error)

	rec = env.request(http.MethodPatch, "/api/registrations/"+created.UserID, map[string]any{"email_verified": true, "city": "Accra", "phone": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[RegistrationResponse](t, rec).Registration
	assert.True(t, updated.EmailVerified)
	assert.NotNil(t, updated.EmailVerifiedAt)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Accra", *updated.City)
	assert.Equal(t, "Ama Mensah", updated.Name)

	rec = env.request(http.MethodPatch, "/api/registrations/"+created.UserID, map[string]any{"email_verified": nil, "name": nil, "bio": "Teacher"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decodeBody[RegistrationResponse](t, rec).Registration
	assert.True(t, updated.EmailVerified, "null leaves a not-null column alone")
	assert.Equal(t, "Ama Mensah", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "Teacher", *updated.Bio)

	rec = env.request(http.MethodGet, "/api/registrations?type=member", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[RegistrationCollection](t, rec).Count)

	rec = env.request(http.MethodDelete, "/api/registrations/"+created.UserID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Registration deleted successfully", decodeBody[DeletedResponse](t, rec).Message)

	rec = env.request(http.MethodPatch, "/api/registrations/"+created.UserID, map[string]any{"city": "Kumasi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewsletterSubscribe(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{{}, {"email": "nope"}} {
		rec := env.request(http.MethodPost, "/api/newsletter/subscribe", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please provide a valid email address.", decodeBody[ErrorResponse](t, rec).Error)
	}

	rec := env.request(http.MethodPost, "/api/newsletter/subscribe", map[string]any{"email": "Reader@Example.com", "name": "Reader"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Thank you for subscribing!", decodeBody[SubscribeResponse](t, rec).Message)

	rec = env.request(http.MethodPost, "/api/newsletter/subscribe", map[string]any{"email": "reader@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You are already subscribed!", decodeBody[SubscribeResponse](t, rec).Message)

	sub, err := env.db.NewsletterRepo().FindByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.NotNil(t, sub.Name)
	assert.Equal(t, "Reader", *sub.Name)
}

func TestDataStoreRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, prefix := range []string{"/api/supabase/data/", "/api/data/"} {
		t.Run(prefix, func(t *testing.T) {
			key := prefix + "prefs"

			rec := env.request(http.MethodGet, key, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())

			rec = env.request(http.MethodPost, key, map[string]any{"merge": false})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing key or data", decodeBody[ErrorResponse](t, rec).Error)

			rec = env.request(http.MethodPost, key, map[string]any{"data": map[string]any{"theme": "dark"}})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "Data saved successfully", decodeBody[MessageResponse](t, rec).Message)

			rec = env.request(http.MethodGet, key, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":true,"data":{"theme":"dark"}}`, rec.Body.String())

			rec = env.request(http.MethodDelete, key, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			rec = env.request(http.MethodGet, key, nil)
			assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())
		})
	}
}

func TestDataExportImport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/data/import", map[string]any{"backup": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid backup format", decodeBody[ErrorResponse](t, rec).Error)

	rec = env.request(http.MethodPost, "/api/data/import", map[string]any{"backup": map[string]any{"data": map[string]any{}}})
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decodeBody[ImportResponse](t, rec)
	assert.Equal(t, "No data to restore", empty.Message)
	assert.Zero(t, empty.ItemsRestored)

	rec = env.request(http.MethodPost, "/api/supabase/import", map[string]any{
		"backup": map[string]any{"data": map[string]any{"a": 1, "b": []string{"x"}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decodeBody[ImportResponse](t, rec).ItemsRestored)

	rec = env.request(http.MethodGet, "/api/supabase/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := decodeBody[ExportResponse](t, rec)
	require.NotNil(t, exported.Backup)
	assert.Equal(t, "1.0", exported.Backup.Version)
	assert.Equal(t, "supabase", exported.Backup.Provider)
	assert.JSONEq(t, `1`, string(exported.Backup.Data["a"]))
	assert.JSONEq(t, `["x"]`, string(exported.Backup.Data["b"]))
	assert.True(t, strings.HasPrefix(exported.FileName, "backup-supabase-"))
}
