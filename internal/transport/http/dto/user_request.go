package dto

import "strings"

// UpdateMeRequest carries a partial self-update. Nil fields are left alone.
type UpdateMeRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Username *string `json:"username" validate:"omitempty,min=3,max=30,username_format"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72,password_strength"`
}

func (r *UpdateMeRequest) Validate() error {
	normalizeEmail(r.Email)
	trimPtr(r.Username)
	trimPtr(r.FullName)
	return validateStruct(r)
}

// AdminUpdateUserRequest is the admin variant; it may additionally flip the
// active flag.
type AdminUpdateUserRequest struct {
	UpdateMeRequest
	Active *bool `json:"active"`
}

func (r *AdminUpdateUserRequest) Validate() error {
	normalizeEmail(r.Email)
	trimPtr(r.Username)
	trimPtr(r.FullName)
	return validateStruct(r)
}

func normalizeEmail(p *string) {
	if p != nil {
		*p = strings.TrimSpace(strings.ToLower(*p))
	}
}

func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}
