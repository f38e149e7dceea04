package handler

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/user-admin/internal/pkg/password"
)

// ValidationError carries one message per offending request field, keyed by
// the field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("password_length", passwordLength)
	_ = v.RegisterValidation("password_policy", passwordPolicy)
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				name := fieldName(fe)
				if _, seen := fields[name]; !seen {
					fields[name] = fieldError(fe)
				}
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

// passwordLength caps the password in bytes, the unit bcrypt counts in.
func passwordLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= password.MaxBytes
}

// passwordPolicy requires at least one digit, one lowercase letter, one
// uppercase letter and one character that is neither.
func passwordPolicy(fl validator.FieldLevel) bool {
	var digit, lower, upper, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		default:
			special = true
		}
	}
	return digit && lower && upper && special
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// fieldName strips slice indexes so every roles[i] error lands on "roles".
func fieldName(fe validator.FieldError) string {
	name, _, _ := strings.Cut(fe.Field(), "[")
	return name
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ReplaceAll(fieldName(fe), "_", " ")
	switch fe.Tag() {
	case "required":
		return "the " + field + " field is required"
	case "email":
		return "the " + field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("the %s field must have at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("the %s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("the %s may not be greater than %s characters", field, fe.Param())
	case "password_length":
		return fmt.Sprintf("the %s may not be greater than %d bytes", field, password.MaxBytes)
	case "eqfield":
		return "the " + field + " confirmation does not match"
	case "password_policy":
		return "the " + field + " must contain at least one digit, one lowercase character, one uppercase character and one special character"
	default:
		return fmt.Sprintf("the %s failed validation (%s)", field, fe.Tag())
	}
}
