package auth

import (
	"context"
	"strings"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// Login authenticates by username or email and issues tokens.
// IMPORTANT: must not leak whether the identifier exists (avoid user
// enumeration). Disabled accounts fail the same way for the same reason.
func (s *Service) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)

	if identifier == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		// Hide not-found behind invalid credentials
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if !u.Active {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	toks, err := s.issueTokens(ctx, u.ID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, Tokens: toks}, nil
}
