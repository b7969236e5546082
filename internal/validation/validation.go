// Package validation checks request and service inputs against struct tags and reports every
// violated field at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/support-portal/internal/domain"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// enumValues backs the custom enum tags. Create and update paths share these.
var enumValues = map[string][]string{
	"ticket_status":    stringsOf(domain.TicketStatuses),
	"ticket_priority":  stringsOf(domain.TicketPriorities),
	"ticket_category":  stringsOf(domain.TicketCategories),
	"company_size":     stringsOf(domain.CompanySizes),
	"primary_interest": stringsOf(domain.PrimaryInterests),
	"preferred_time":   stringsOf(domain.PreferredTimes),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})

	for tag, allowed := range enumValues {
		allowed := allowed
		mustRegister(v, tag, func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for _, candidate := range allowed {
				if value == candidate {
					return true
				}
			}
			return false
		})
	}
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "password_bytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	mustRegister(v, "password_strength", func(fl validator.FieldLevel) bool {
		var lower, upper, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return lower && upper && digit
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and returns a VALIDATION_FAILED DomainError whose details list every
// offending field, keyed by its JSON name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}

	grouped := map[string][]string{}
	for _, fe := range fieldErrs {
		grouped[fe.Field()] = append(grouped[fe.Field()], describe(fe))
	}
	details := make(map[string]any, len(grouped))
	fields := make([]string, 0, len(grouped))
	for field, msgs := range grouped {
		details[field] = msgs
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return apperrors.NewValidationError("invalid fields: "+strings.Join(fields, ", "), details)
}

// Field builds a single-field validation error, for inputs that do not come from a struct.
func Field(field, message string) error {
	return apperrors.NewValidationError("invalid fields: "+field, map[string]any{field: []string{message}})
}

// Allowed returns the accepted values for an enum tag.
func Allowed(tag string) []string {
	return append([]string(nil), enumValues[tag]...)
}

func describe(fe validator.FieldError) string {
	if allowed, ok := enumValues[fe.Tag()]; ok {
		return "must be one of: " + strings.Join(allowed, ", ")
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "username":
		return "may only contain letters, numbers and underscores"
	case "password_bytes":
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	case "password_strength":
		return "must contain a lowercase letter, an uppercase letter and a number"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
