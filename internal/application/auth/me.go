package auth

import (
	"context"

	"github.com/baechuer/go-api-starter/internal/domain"
)

func (s *Service) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
