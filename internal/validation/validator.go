// Package validation checks request payloads with go-playground/validator and
// reports problems as VALIDATION_ERROR failures.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// GetValidator returns the shared validator. Field names are reported by their json tag.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s and returns a classified failure listing every bad field.
func Struct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewValidation(err.Error(), nil)
	}

	fields := make([]FieldError, 0, len(validationErrs))
	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msg := translateError(fe)
		fields = append(fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: msg})
		messages = append(messages, msg)
	}
	return apperrors.NewValidation(strings.Join(messages, "; "), map[string]any{"fields": fields})
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"url":      "%s must be a valid URL",
}

var errorMessageWithParam = map[string]string{
	"min":      "%s must be at least %s characters long",
	"max":      "%s must be at most %s characters long",
	"gte":      "%s must be greater than or equal to %s",
	"eqfield":  "%s must match %s",
	"datetime": "%s must be a date in the format %s",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}
