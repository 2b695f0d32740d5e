package auth

import (
	"context"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// Refresh rotates a refresh token and issues a new access token.
// Rotation rule: old refresh token becomes invalid once used successfully.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if refreshToken == "" {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	userID, err := s.sessions.GetUserIDByRefreshToken(ctx, refreshToken)
	if err != nil {
		// Hide details: treat as invalid
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	// Load user to get the current role; the access token must reflect
	// role changes made since the session was created.
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	if !u.Active {
		return AuthTokens{}, domain.ErrAccountDisabled()
	}

	newRefresh, err := s.sessions.RotateRefreshToken(ctx, refreshToken, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	access, err := s.signer.SignAccessToken(u.ID, u.Role, s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenSignFailed(err)
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}
