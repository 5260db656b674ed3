package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v, err := newValidator()
		if err != nil {
			panic(fmt.Sprintf("validation: %v", err))
		}
		validate = v
	})
	return validate
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients see the keys they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("competitioncode", validateCompetitionCode); err != nil {
		return nil, fmt.Errorf("register competitioncode: %w", err)
	}
	return v, nil
}

// Struct validates a request struct using its `validate` tags.
func Struct(s any) error {
	return instance().Struct(s)
}

// FormatValidationError turns validator errors into a field to message map.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := fieldPath(e.Namespace())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "email":
			errs[field] = "Invalid email format"
		case "competitioncode":
			errs[field] = "Must be 6 letters or digits"
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("Must be %s or more", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be more than %s", e.Param())
		case "unique":
			errs[field] = "Must not contain duplicates"
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// fieldPath strips the root struct name from a namespace like "SubmitRequest.predictions[0].homeScore".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

const CompetitionCodeLength = 6

func validateCompetitionCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != CompetitionCodeLength {
		return false
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
