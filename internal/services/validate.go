package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names, e.g. user_profile.first_name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks v against its validate tags and reports failures as a
// validation error keyed by JSON field path.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, "invalid input", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields[ns] = describe(fe)
	}
	return apperr.ValidationFields("invalid input", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// parseIntInRange accepts a JSON number or numeric string holding an
// integer in [min, max].
func parseIntInRange(field string, raw interface{}, min, max int) (int, error) {
	invalid := apperr.ValidationFields("invalid "+field, map[string]string{
		field: fmt.Sprintf("must be an integer between %d and %d", min, max),
	})

	var n int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, invalid
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, invalid
		}
		n = parsed
	default:
		return 0, invalid
	}

	if n < int64(min) || n > int64(max) {
		return 0, invalid
	}
	return int(n), nil
}

// notFound converts a repository miss into typed; other errors are wrapped.
func notFound(err error, typed *apperr.Error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return typed
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
