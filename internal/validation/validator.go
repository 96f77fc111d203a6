// package validation provides helper functions for request data validation.
// It uses the go-playground/validator library and includes custom validation rules.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate = validator.New()

	customIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	inviteCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)
)

func init() {
	rules := map[string]validator.Func{
		// custom_id allows letters, numbers, hyphens and underscores.
		"custom_id": func(fl validator.FieldLevel) bool {
			return matchOrEmpty(customIDPattern, fl.Field().String())
		},
		// invite_code is six letters or digits in any case, surrounding spaces ignored.
		"invite_code": func(fl validator.FieldLevel) bool {
			return matchOrEmpty(inviteCodePattern, strings.TrimSpace(fl.Field().String()))
		},
		// decimal_amount is a non-negative decimal number such as "12.50".
		"decimal_amount": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}

			d, err := decimal.NewFromString(s)

			return err == nil && !d.IsNegative()
		},
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register custom validation %q: %v", tag, err))
		}
	}
}

// Empty strings are left to the 'required' tag.
func matchOrEmpty(re *regexp.Regexp, s string) bool {
	return s == "" || re.MatchString(s)
}

// ValidationError is a custom error type that holds a slice of validation error messages.
type ValidationError struct {
	Errors []string
}

// Error returns a single string concatenating all validation error messages.
func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct performs validation on a given struct based on its validation tags.
// If validation fails, it returns a *ValidationError with user-friendly messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate: %w", err)
	}

	messages := make([]string, 0, len(fieldErrors))

	for _, fe := range fieldErrors {
		var message string

		switch fe.Tag() {
		case "custom_id":
			message = fmt.Sprintf("field '%s' must contain only letters, numbers, hyphens, and underscores", fe.Field())
		case "invite_code":
			message = fmt.Sprintf("field '%s' must be a 6 character invite code", fe.Field())
		case "decimal_amount":
			message = fmt.Sprintf("field '%s' must be a non-negative decimal number", fe.Field())
		case "oneof":
			message = fmt.Sprintf("field '%s' must be one of: %s", fe.Field(), fe.Param())
		default:
			message = fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		}

		messages = append(messages, message)
	}

	return &ValidationError{Errors: messages}
}
