package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// Register creates a new account and signs it in. Uniqueness of email
// and username is enforced by the repository; duplicates come back as
// conflict errors.
func (s *Service) Register(ctx context.Context, email, username, password, fullName string) (RegisterResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if username == "" {
		return RegisterResult{}, domain.ErrMissingField("username")
	}
	if password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:            uuid.NewString(),
		Email:         email,
		Username:      username,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(fullName),
		Role:          domain.RoleUser,
		Active:        true,
		EmailVerified: false,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return RegisterResult{}, err
	}

	toks, err := s.issueTokens(ctx, created.ID, created.Role)
	if err != nil {
		return RegisterResult{}, err
	}

	// Welcome email is best effort; a down broker must not block signup.
	if err := s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID:   created.ID,
		Email:    created.Email,
		Username: created.Username,
	}); err != nil {
		s.audit("auth.register.publish_failed", map[string]string{
			"user_id":    created.ID,
			"error_code": domain.Code(err),
		})
	}

	return RegisterResult{User: created, Tokens: toks}, nil
}
