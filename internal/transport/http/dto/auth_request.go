package dto

import (
	"strings"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// -------- Core auth --------

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=30,username_format"`
	Password string `json:"password" validate:"required,min=8,max=72,password_strength"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	return validateStruct(r)
}

// LoginRequest accepts a username or an email as the identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	return validateStruct(r)
}

// RefreshRequest may be empty when the refresh token travels in the
// HttpOnly cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (r *RefreshRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	return nil
}

// -------- Password change (authenticated) --------

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,password_strength"`
}

func (r *PasswordChangeRequest) Validate() error {
	return validateStruct(r)
}

// -------- Password reset --------

// Step A: request reset (the handler always answers 202 to avoid enumeration).
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

// Optional pre-check: validate reset token (GET ...?token=...)
type PasswordResetValidateQuery struct {
	Token string `json:"-"` // filled from query param, not JSON
}

func (q *PasswordResetValidateQuery) Validate() error {
	q.Token = strings.TrimSpace(q.Token)
	if q.Token == "" {
		return domain.ErrMissingField("token")
	}
	return nil
}

// Step B: confirm reset
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,password_strength"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return validateStruct(r)
}

// -------- Email verification --------

type VerifyEmailConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *VerifyEmailConfirmRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return validateStruct(r)
}

// -------- Role assignment --------

type SetUserRoleRequest struct {
	Role string `json:"role"`
}

func (r *SetUserRoleRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if r.Role == "" {
		return domain.ErrMissingField("role")
	}
	if !domain.IsValidRole(r.Role) {
		return domain.ErrInvalidRole(r.Role)
	}
	return nil
}
