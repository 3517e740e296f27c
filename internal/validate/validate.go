// Package validate checks path identifiers and request bodies before they
// reach the resource services. Every failure is an *apperr.Error.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
)

// MaxBodySize is the largest accepted request body, in bytes.
const MaxBodySize = 10_000

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match what clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Identifier returns the trimmed "id" path parameter.
func Identifier(params map[string]string) (string, error) {
	raw, ok := params["id"]
	if !ok {
		return "", apperr.New(apperr.MissingIdentifier, "ID is required")
	}
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", apperr.New(apperr.InvalidIdentifier, "Invalid ID")
	}
	return id, nil
}

// Header looks a header up case-insensitively.
func Header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// DecodeBody checks the content type and size of body and decodes it into dst.
// An empty body decodes as {}; the content type is checked regardless.
func DecodeBody(headers map[string]string, body string, dst any) error {
	contentType := strings.ToLower(strings.TrimSpace(Header(headers, "Content-Type")))
	if !strings.HasPrefix(contentType, "application/json") {
		return apperr.New(apperr.InvalidContentType, "Invalid content type")
	}

	if body == "" {
		body = "{}"
	}
	if len(body) > MaxBodySize {
		return apperr.New(apperr.PayloadTooLarge, "Request body too large")
	}

	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return apperr.Wrap(apperr.InvalidJSON, "Invalid JSON format", err)
	}
	return nil
}

// Payload applies the struct tag rules of v. message prefixes the returned error,
// e.g. "Invalid order" becomes "Invalid order: address is required".
func Payload(v any, message string) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.InvalidPayload, message, err)
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, describe(fe))
	}
	return apperr.Wrap(apperr.InvalidPayload, message+": "+strings.Join(details, ", "), err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "min":
		return fe.Field() + " must not be empty"
	case "ne":
		return fmt.Sprintf("%s must not be %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
