package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// checkbox accepts the values an HTML checkbox or a JSON client may send for
// is_active: true/false, "on"/"off", "1"/"0", "true"/"false".
type checkbox bool

func (c *checkbox) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = false
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*c = checkbox(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("is_active: expected boolean or string, got %s", data)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true", "yes":
		*c = true
	case "", "off", "0", "false", "no":
		*c = false
	default:
		return fmt.Errorf("is_active: unrecognised value %q", s)
	}
	return nil
}

func (c *checkbox) ptr() *bool {
	if c == nil {
		return nil
	}
	b := bool(*c)
	return &b
}

// --- Request / Response types ---

type createUserRequest struct {
	Username             string    `json:"username"              validate:"required,max=255"`
	Email                string    `json:"email"                 validate:"required,email,max=255"`
	Phone                string    `json:"phone"                 validate:"max=32"`
	APIToken             string    `json:"api_token"             validate:"required,max=255"`
	IsActive             *checkbox `json:"is_active"             swaggertype:"boolean"`
	Roles                []string  `json:"roles"                 validate:"required,min=1,dive,required"`
	Password             string    `json:"password"              validate:"required,min=14,password_length,password_policy,eqfield=PasswordConfirmation"`
	PasswordConfirmation string    `json:"password_confirmation"`
}

type updateUserRequest struct {
	Username             string    `json:"username"              validate:"required,max=255"`
	Email                string    `json:"email"                 validate:"required,email,max=255"`
	Phone                string    `json:"phone"                 validate:"max=32"`
	IsActive             *checkbox `json:"is_active"             swaggertype:"boolean"`
	Roles                []string  `json:"roles"                 validate:"required,min=1,dive,required"`
	Password             string    `json:"password"              validate:"omitempty,min=14,password_length,password_policy,eqfield=PasswordConfirmation"`
	PasswordConfirmation string    `json:"password_confirmation"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	APIToken  string    `json:"api_token"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userListResponse struct {
	Data []userListItem `json:"data"`
}

type userListItem struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Phone        *string     `json:"phone"`
	APIToken     string      `json:"api_token"`
	IsActive     bool        `json:"is_active"`
	Roles        []string    `json:"roles"`
	RolesDisplay string      `json:"roles_display"`
	Actions      userActions `json:"actions"`
}

type userActions struct {
	View        bool `json:"view"`
	Edit        bool `json:"edit"`
	Delete      bool `json:"delete"`
	RotateToken bool `json:"rotate_token"`
}

type deleteUserResponse struct {
	Deleted bool `json:"deleted"`
}

type rotateTokenResponse struct {
	APIToken string `json:"api_token"`
}

type rolesResponse struct {
	Data []string `json:"data"`
}
