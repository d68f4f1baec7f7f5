package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/chiaview/site-backend/errs"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// decodeJSON reads the request body into dst. An empty body decodes as an empty
// object so that the caller reports missing fields rather than a parse error.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

// ruleMessenger lets a request type phrase its own validation failures.
type ruleMessenger interface {
	ruleMessage(field, tag string) string
}

// validateRequest checks req's validate tags. Any failed required or notblank rule
// yields missing; otherwise the first failed rule becomes a 400 on that field.
func validateRequest(req any, missing error) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.NewBadRequestError(err.Error())
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			return missing
		}
	}

	fe := fieldErrs[0]
	msg := fmt.Sprintf("Invalid %s", fe.Field())
	if m, ok := req.(ruleMessenger); ok {
		if custom := m.ruleMessage(fe.Field(), fe.Tag()); custom != "" {
			msg = custom
		}
	}
	return errs.NewInvalidFieldError(fe.Field(), msg)
}

// jsonBool decodes any JSON value by truthiness: false, 0, "" and null are false.
type jsonBool bool

func (b *jsonBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = jsonBool(truthy(v))
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// boolOr returns the decoded flag or fallback when it was absent.
func boolOr(b *jsonBool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return bool(*b)
}

// trimmedOrNil trims s and maps an absent or blank value to nil.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// stringOrNil maps the empty string to nil.
func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// clientIP reports the caller address the way the proxy in front of the site passes it.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Client-IP"); ip != "" {
		return ip
	}
	return "unknown"
}

func userAgent(r *http.Request) string {
	return orDefault(r.Header.Get("User-Agent"), "unknown")
}

// optional records whether a field appeared in the body at all, so that an explicit
// null can clear a column while an absent field leaves it alone.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// setOptional copies a present field into the update set.
func setOptional[T any](fields map[string]any, column string, o optional[T]) {
	if o.Set {
		fields[column] = o.Value
	}
}

// setNonNull is setOptional for not-null columns: an explicit null counts as absent.
func setNonNull[T any](fields map[string]any, column string, o optional[T]) {
	if o.Set && o.Value != nil {
		fields[column] = *o.Value
	}
}
