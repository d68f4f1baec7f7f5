package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// External Service Errors
var (
	ErrUpstreamFailed     = errors.New("upstream service failed")
	ErrSignatureMismatch  = errors.New("signature verification failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NewUpstreamError reports a failed call to a third-party provider
// (identity service, realtime database, payment gateway, storage).
func NewUpstreamError(message, service string, cause error) *ApiErr {
	e := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        errors.New(message),
		Cause:      fmt.Errorf("%s: %w: %w", service, ErrUpstreamFailed, cause),
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func NewSignatureError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New("Webhook signature verification failed"),
		kind:       ErrSignatureMismatch,
		Cause:      cause,
	}
}

func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamFailed)
}

func IsSignatureMismatch(err error) bool {
	return errors.Is(err, ErrSignatureMismatch)
}
