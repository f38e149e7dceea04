package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUsernameTaken      = errors.New("username has already been taken")
	ErrEmailTaken         = errors.New("email has already been taken")
	ErrAPITokenTaken      = errors.New("api token has already been taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrForbidden          = errors.New("access forbidden")
	ErrPasswordTooLong    = errors.New("password may not be greater than 72 bytes")
)

// FieldOf returns the input field a uniqueness or input error belongs to, or ""
// when err is neither.
func FieldOf(err error) string {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return "username"
	case errors.Is(err, ErrEmailTaken):
		return "email"
	case errors.Is(err, ErrAPITokenTaken):
		return "api_token"
	case errors.Is(err, ErrRoleNotFound):
		return "roles"
	case errors.Is(err, ErrPasswordTooLong):
		return "password"
	}
	return ""
}
