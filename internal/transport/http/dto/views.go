package dto

import (
	"net/http"
	"strconv"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// UserView is the standard user payload returned by the API.
// The password hash never leaves the server.
type UserView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	AvatarFileID  string    `json:"avatar_file_id,omitempty"`
	Role          string    `json:"role"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FullName:      u.FullName,
		Bio:           u.Bio,
		AvatarFileID:  u.AvatarFileID,
		Role:          u.Role,
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// TokensView is the standard access token payload.
// (The refresh token is also set as an HttpOnly cookie for browser clients.)
type TokensView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// AuthData is returned by register/login.
type AuthData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

// RefreshData is returned by refresh.
type RefreshData struct {
	Tokens TokensView `json:"tokens"`
}

// MeData is returned by /me.
type MeData struct {
	User UserView `json:"user"`
}

// StatusData is the generic {"status": ...} payload.
type StatusData struct {
	Status string `json:"status"`
}

// TokenValidData is returned by the reset-token pre-check.
type TokenValidData struct {
	Valid bool `json:"valid"`
}

// FileView is the standard stored file payload.
type FileView struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url,omitempty"`
}

func NewFileView(f domain.StoredFile) FileView {
	return FileView{
		ID:          f.ID,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		CreatedAt:   f.CreatedAt,
	}
}

// PageView is the standard paginated list payload.
type PageView struct {
	Items      any `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// ParsePagination reads page/page_size query params. Missing or malformed
// values fall back to the defaults; the application layer clamps the range.
func ParsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 20

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}
	return page, pageSize
}
