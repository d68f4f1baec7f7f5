package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Request & Input-Validation Errors
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrInvalidField     = errors.New("invalid field")
	ErrInvalidJSON      = errors.New("invalid JSON")
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

// NewMissingFieldsError names every blank or absent field, e.g.
// "Missing required fields: title, excerpt, content".
func NewMissingFieldsError(fields ...string) *ApiErr {
	label := "field"
	if len(fields) > 1 {
		label = "fields"
	}
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("Missing required %s: %s", label, strings.Join(fields, ", ")),
		Field:      strings.Join(fields, ","),
	}
}

// NewInvalidFieldError carries a user-facing message as the error text.
func NewInvalidFieldError(fieldName string, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%s", message),
		Field:      fieldName,
		Cause:      ErrInvalidField,
	}
}

func NewInvalidJSONError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidJSON,
		Details:    "Invalid JSON format",
		Cause:      cause,
		Field:      "json",
	}
}
